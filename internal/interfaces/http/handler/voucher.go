package handler

import (
	"time"

	subapp "github.com/compliport/backend/internal/application/subscription"
	"github.com/compliport/backend/internal/domain/shared"
	"github.com/compliport/backend/internal/interfaces/http/dto"
	"github.com/compliport/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VoucherHandler exposes sponsor voucher endpoints
type VoucherHandler struct {
	BaseHandler
	vouchers *subapp.VoucherService
}

// NewVoucherHandler creates a new VoucherHandler
func NewVoucherHandler(vouchers *subapp.VoucherService) *VoucherHandler {
	return &VoucherHandler{vouchers: vouchers}
}

// RegisterRoutes registers voucher routes on the given group
func (h *VoucherHandler) RegisterRoutes(rg *gin.RouterGroup) {
	vouchers := rg.Group("/vouchers")
	{
		vouchers.POST("", h.Create)
		vouchers.GET("", h.List)
		vouchers.GET("/:code", h.Get)
		vouchers.POST("/redeem", h.Redeem)
		vouchers.DELETE("/:code", h.Deactivate)
	}
}

// CreateVoucherRequest carries the payload for minting a voucher
type CreateVoucherRequest struct {
	Code            string    `json:"code" binding:"required"`
	TierCode        string    `json:"tier_code" binding:"required"`
	DiscountPercent float64   `json:"discount_percent" binding:"min=0,max=100"`
	SponsorName     string    `json:"sponsor_name"`
	ValidFrom       time.Time `json:"valid_from"`
	ValidUntil      time.Time `json:"valid_until" binding:"required"`
	MaxUses         int       `json:"max_uses" binding:"required,min=1"`
}

// Create mints a new sponsor voucher for a tier
func (h *VoucherHandler) Create(c *gin.Context) {
	var req CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	voucher, err := h.vouchers.Create(c.Request.Context(), subapp.CreateVoucherInput{
		Code:            req.Code,
		TierCode:        req.TierCode,
		DiscountPercent: decimal.NewFromFloat(req.DiscountPercent),
		SponsorName:     req.SponsorName,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
		MaxUses:         req.MaxUses,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, voucher)
}

// RedeemRequest carries the voucher code to redeem
type RedeemRequest struct {
	Code string `json:"code" binding:"required"`
}

// Redeem redeems a voucher for the caller's organization and returns
// the subscription it minted
func (h *VoucherHandler) Redeem(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orgID := middleware.GetOrganizationID(c)
	if orgID == uuid.Nil {
		h.Unauthorized(c, "organization not resolved from session")
		return
	}

	sub, err := h.vouchers.Redeem(c.Request.Context(), req.Code, orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sub)
}

// Get returns a single voucher with its redemption status
func (h *VoucherHandler) Get(c *gin.Context) {
	voucher, err := h.vouchers.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, voucher)
}

// Deactivate pulls a voucher from circulation
func (h *VoucherHandler) Deactivate(c *gin.Context) {
	if err := h.vouchers.Deactivate(c.Request.Context(), c.Param("code")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// List pages through vouchers
func (h *VoucherHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.vouchers.List(c.Request.Context(), shared.Filter{
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
