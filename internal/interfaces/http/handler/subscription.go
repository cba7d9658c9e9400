package handler

import (
	subapp "github.com/compliport/backend/internal/application/subscription"
	"github.com/compliport/backend/internal/domain/shared"
	"github.com/compliport/backend/internal/interfaces/http/dto"
	"github.com/compliport/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SubscriptionHandler exposes the subscription ledger endpoints
type SubscriptionHandler struct {
	BaseHandler
	ledger *subapp.LedgerService
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(ledger *subapp.LedgerService) *SubscriptionHandler {
	return &SubscriptionHandler{ledger: ledger}
}

// RegisterRoutes registers subscription routes on the given group
func (h *SubscriptionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	subs := rg.Group("/subscriptions")
	{
		subs.POST("", h.Activate)
		subs.GET("", h.History)
		subs.GET("/active", h.Active)
		subs.DELETE("/active", h.Cancel)
	}
}

// ActivateRequest carries the payload for activating a subscription
type ActivateRequest struct {
	TierID           string `json:"tier_id" binding:"required,uuid"`
	PaymentConfirmed bool   `json:"payment_confirmed"`
}

// Activate starts a subscription on a tier for the caller's
// organization, superseding any currently active one
func (h *SubscriptionHandler) Activate(c *gin.Context) {
	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orgID := middleware.GetOrganizationID(c)
	if orgID == uuid.Nil {
		h.Unauthorized(c, "organization not resolved from session")
		return
	}
	tierID := uuid.MustParse(req.TierID)

	sub, err := h.ledger.Activate(c.Request.Context(), orgID, tierID, req.PaymentConfirmed)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sub)
}

// Active returns the caller's currently active subscription
func (h *SubscriptionHandler) Active(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	if orgID == uuid.Nil {
		h.Unauthorized(c, "organization not resolved from session")
		return
	}

	sub, err := h.ledger.ActiveSubscription(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sub)
}

// Cancel cancels the caller's active subscription. Cancelling when
// nothing is active is a no-op.
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	if orgID == uuid.Nil {
		h.Unauthorized(c, "organization not resolved from session")
		return
	}

	if err := h.ledger.Cancel(c.Request.Context(), orgID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// History lists the caller's subscription rows, newest first
func (h *SubscriptionHandler) History(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	if orgID == uuid.Nil {
		h.Unauthorized(c, "organization not resolved from session")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.ledger.History(c.Request.Context(), orgID, shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
