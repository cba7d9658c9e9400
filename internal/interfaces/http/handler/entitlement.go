package handler

import (
	"github.com/compliport/backend/internal/application/entitlement"
	"github.com/compliport/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EntitlementHandler exposes the entitlement facade endpoints
type EntitlementHandler struct {
	BaseHandler
	entitlements *entitlement.Service
}

// NewEntitlementHandler creates a new EntitlementHandler
func NewEntitlementHandler(service *entitlement.Service) *EntitlementHandler {
	return &EntitlementHandler{entitlements: service}
}

// RegisterRoutes registers entitlement routes on the given group
func (h *EntitlementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ent := rg.Group("/entitlements")
	{
		ent.GET("/:feature/authorize", h.Authorize)
	}
	usage := rg.Group("/usage")
	{
		usage.POST("", h.RecordUsage)
		usage.GET("", h.UsageSummary)
	}
}

// Authorize answers whether the caller's organization may use a
// feature right now, without consuming any quota. A denial is a
// successful response carrying the decision, not an error.
func (h *EntitlementHandler) Authorize(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	if orgID == uuid.Nil {
		h.Unauthorized(c, "organization not resolved from session")
		return
	}

	decision, err := h.entitlements.Authorize(c.Request.Context(), orgID, c.Param("feature"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, decision)
}

// RecordUsageRequest carries a usage event for a metered feature
type RecordUsageRequest struct {
	FeatureKey string `json:"feature_key" binding:"required"`
	Amount     int64  `json:"amount" binding:"omitempty,min=1"`
}

// RecordUsage consumes quota for a metered feature. The decision
// reports whether the consumption fit under the ceiling.
func (h *EntitlementHandler) RecordUsage(c *gin.Context) {
	var req RecordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Amount == 0 {
		req.Amount = 1
	}

	orgID := middleware.GetOrganizationID(c)
	if orgID == uuid.Nil {
		h.Unauthorized(c, "organization not resolved from session")
		return
	}

	decision, err := h.entitlements.RecordUsage(c.Request.Context(), orgID, req.FeatureKey, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, decision)
}

// UsageSummary reports the caller's current-period usage per feature
func (h *EntitlementHandler) UsageSummary(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	if orgID == uuid.Nil {
		h.Unauthorized(c, "organization not resolved from session")
		return
	}

	summary, err := h.entitlements.UsageSummary(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
