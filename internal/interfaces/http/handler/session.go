package handler

import (
	sessionapp "github.com/compliport/backend/internal/application/session"
	"github.com/compliport/backend/internal/domain/session"
	"github.com/compliport/backend/internal/infrastructure/auth"
	"github.com/compliport/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHandler exposes session admission and lifecycle endpoints
type SessionHandler struct {
	BaseHandler
	sessions *sessionapp.Service
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions *sessionapp.Service) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// RegisterPublicRoutes registers the admission route. It stays outside
// the auth middleware because a caller cannot hold a session token
// before admission.
func (h *SessionHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.Admit)
}

// RegisterRoutes registers the authenticated session routes
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/sessions")
	{
		sessions.GET("", h.List)
		sessions.DELETE("/current", h.Logout)
		sessions.POST("/current/heartbeat", h.Heartbeat)
	}
}

// AdmitRequest identifies the user opening a session. Identity is
// verified upstream; this service only enforces concurrency caps.
type AdmitRequest struct {
	UserID         string `json:"user_id" binding:"required,uuid"`
	OrganizationID string `json:"organization_id" binding:"required,uuid"`
}

// AdmitResponse pairs the opened session with its bearer token
type AdmitResponse struct {
	SessionID string             `json:"session_id"`
	Token     *auth.SessionToken `json:"token"`
}

// Admit opens a session for a user. When the organization's tier caps
// concurrent sessions and the pool is full, the oldest session is
// evicted to make room.
func (h *SessionHandler) Admit(c *gin.Context) {
	var req AdmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	userID := uuid.MustParse(req.UserID)
	orgID := uuid.MustParse(req.OrganizationID)

	client := session.Client{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	sess, token, err := h.sessions.Admit(c.Request.Context(), userID, orgID, client)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, AdmitResponse{
		SessionID: sess.ID.String(),
		Token:     token,
	})
}

// Logout invalidates the caller's current session
func (h *SessionHandler) Logout(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == uuid.Nil {
		h.Unauthorized(c, "no session bound to request")
		return
	}

	if err := h.sessions.Invalidate(c.Request.Context(), sessionID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Heartbeat records activity on the caller's session so it does not
// idle out. The auth middleware already touches on every request, so
// this exists for clients that are otherwise quiet.
func (h *SessionHandler) Heartbeat(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == uuid.Nil {
		h.Unauthorized(c, "no session bound to request")
		return
	}

	if err := h.sessions.Touch(c.Request.Context(), sessionID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// List returns the caller organization's active sessions
func (h *SessionHandler) List(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	if orgID == uuid.Nil {
		h.Unauthorized(c, "organization not resolved from session")
		return
	}

	sessions, err := h.sessions.ActiveSessions(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sessions)
}
