package handler

import (
	"github.com/compliport/backend/internal/application/catalog"
	domain "github.com/compliport/backend/internal/domain/catalog"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CatalogHandler exposes tier and feature administration endpoints
type CatalogHandler struct {
	BaseHandler
	catalog *catalog.Service
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(service *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: service}
}

// RegisterRoutes registers catalog routes on the given group
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tiers := rg.Group("/tiers")
	{
		tiers.POST("", h.CreateTier)
		tiers.GET("", h.ListTiers)
		tiers.PUT("/:code/price", h.UpdateTierPrice)
		tiers.DELETE("/:code", h.DeactivateTier)
		tiers.PUT("/:code/features/:key", h.GrantFeature)
	}
	features := rg.Group("/features")
	{
		features.POST("", h.CreateFeature)
		features.GET("", h.ListFeatures)
	}
}

// CreateTierRequest carries the payload for creating a tier
type CreateTierRequest struct {
	Code         string              `json:"code" binding:"required"`
	DisplayName  string              `json:"display_name" binding:"required"`
	Description  string              `json:"description"`
	MonthlyPrice float64             `json:"monthly_price" binding:"min=0"`
	YearlyPrice  float64             `json:"yearly_price" binding:"min=0"`
	Rank         int                 `json:"rank"`
	Caps         domain.ResourceCaps `json:"caps"`
}

// CreateTier creates a new catalog tier
func (h *CatalogHandler) CreateTier(c *gin.Context) {
	var req CreateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tier, err := h.catalog.CreateTier(c.Request.Context(), catalog.CreateTierInput{
		Code:         req.Code,
		DisplayName:  req.DisplayName,
		Description:  req.Description,
		MonthlyPrice: decimal.NewFromFloat(req.MonthlyPrice),
		YearlyPrice:  decimal.NewFromFloat(req.YearlyPrice),
		Rank:         req.Rank,
		Caps:         req.Caps,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tier)
}

// ListTiers lists tiers with their capability matrix rows
func (h *CatalogHandler) ListTiers(c *gin.Context) {
	var req struct {
		IncludeInactive bool `form:"include_inactive"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tiers, err := h.catalog.ListTiers(c.Request.Context(), !req.IncludeInactive)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tiers)
}

// UpdateTierPriceRequest carries the new monthly price for a tier
type UpdateTierPriceRequest struct {
	MonthlyPrice float64 `json:"monthly_price" binding:"min=0"`
}

// UpdateTierPrice changes a tier's monthly price
func (h *CatalogHandler) UpdateTierPrice(c *gin.Context) {
	var req UpdateTierPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tier, err := h.catalog.UpdateTierPrice(c.Request.Context(), c.Param("code"), decimal.NewFromFloat(req.MonthlyPrice))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tier)
}

// DeactivateTier retires a tier from sale
func (h *CatalogHandler) DeactivateTier(c *gin.Context) {
	if err := h.catalog.DeactivateTier(c.Request.Context(), c.Param("code")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateFeatureRequest carries the payload for registering a feature
type CreateFeatureRequest struct {
	Key         string `json:"key" binding:"required"`
	Description string `json:"description"`
	Module      string `json:"module"`
	Premium     bool   `json:"premium"`
	Kind        string `json:"kind" binding:"required,oneof=boolean metered concurrency"`
}

// CreateFeature registers a new feature definition
func (h *CatalogHandler) CreateFeature(c *gin.Context) {
	var req CreateFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	feature, err := h.catalog.CreateFeature(c.Request.Context(), catalog.CreateFeatureInput{
		Key:         req.Key,
		Description: req.Description,
		Module:      req.Module,
		Premium:     req.Premium,
		Kind:        domain.FeatureKind(req.Kind),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, feature)
}

// ListFeatures lists all registered features
func (h *CatalogHandler) ListFeatures(c *gin.Context) {
	features, err := h.catalog.ListFeatures(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, features)
}

// GrantFeatureRequest carries a capability matrix cell
type GrantFeatureRequest struct {
	Enabled bool   `json:"enabled"`
	Limit   *int64 `json:"limit" binding:"omitempty,min=0"`
}

// GrantFeature sets a tier's capability for a feature, overwriting any
// existing grant for the same cell
func (h *CatalogHandler) GrantFeature(c *gin.Context) {
	var req GrantFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	grant, err := h.catalog.GrantFeature(c.Request.Context(), c.Param("code"), c.Param("key"), req.Enabled, req.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, grant)
}
