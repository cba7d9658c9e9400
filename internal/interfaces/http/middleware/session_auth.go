package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/compliport/backend/internal/infrastructure/auth"
	"github.com/compliport/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys set by the session auth middleware.
const (
	SessionIDKey      = "session_id"
	SessionUserIDKey  = "session_user_id"
	OrganizationIDKey = "organization_id"

	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// SessionVerifier checks whether a session is still live and records
// activity on it. The session application service satisfies this.
type SessionVerifier interface {
	IsValid(ctx context.Context, sessionID uuid.UUID) (bool, error)
	Touch(ctx context.Context, sessionID uuid.UUID) error
}

// SessionAuthConfig holds configuration for the session auth middleware.
type SessionAuthConfig struct {
	Tokens   *auth.TokenService
	Sessions SessionVerifier
	// SkipPaths bypass authentication entirely (health checks, login).
	SkipPaths []string
	Logger    *zap.Logger
}

// SessionAuth authenticates requests with a bearer session token. The
// token signature ties the request to a session row; the verifier then
// decides whether that session is still live, so an evicted or
// logged-out session is rejected even while its token is unexpired.
// Valid requests have their session touched to keep it from idling out.
func SessionAuth(cfg SessionAuthConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		tokenString, err := bearerToken(c)
		if err != nil {
			reject(c, dto.ErrCodeUnauthorized, err.Error())
			return
		}

		claims, err := cfg.Tokens.Validate(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				reject(c, dto.ErrCodeTokenExpired, "Session token has expired")
				return
			}
			reject(c, dto.ErrCodeTokenInvalid, "Invalid session token")
			return
		}

		sessionID, err := claims.GetSessionUUID()
		if err != nil {
			reject(c, dto.ErrCodeTokenInvalid, "Invalid session token")
			return
		}

		ctx := c.Request.Context()
		valid, err := cfg.Sessions.IsValid(ctx, sessionID)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("Session validity check failed",
					zap.String("session_id", sessionID.String()),
					zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "Could not verify session", GetRequestID(c)))
			return
		}
		if !valid {
			reject(c, "SESSION_INVALID", "Session is no longer valid")
			return
		}

		if err := cfg.Sessions.Touch(ctx, sessionID); err != nil && cfg.Logger != nil {
			// A failed touch only delays idle detection, so the
			// request proceeds.
			cfg.Logger.Warn("Failed to touch session",
				zap.String("session_id", sessionID.String()),
				zap.Error(err))
		}

		c.Set(SessionIDKey, sessionID.String())
		c.Set(SessionUserIDKey, claims.UserID)
		c.Set(OrganizationIDKey, claims.OrganizationID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", errors.New("authorization header is not a bearer token")
	}
	token := strings.TrimPrefix(header, BearerPrefix)
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}

func reject(c *gin.Context, code, message string) {
	status := dto.GetHTTPStatus(code)
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetSessionID returns the authenticated session ID, or uuid.Nil when
// the request was not authenticated.
func GetSessionID(c *gin.Context) uuid.UUID {
	return parseUUIDKey(c, SessionIDKey)
}

// GetSessionUserID returns the authenticated user's ID.
func GetSessionUserID(c *gin.Context) uuid.UUID {
	return parseUUIDKey(c, SessionUserIDKey)
}

// GetOrganizationID returns the organization the session belongs to.
func GetOrganizationID(c *gin.Context) uuid.UUID {
	return parseUUIDKey(c, OrganizationIDKey)
}

func parseUUIDKey(c *gin.Context, key string) uuid.UUID {
	raw := c.GetString(key)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
