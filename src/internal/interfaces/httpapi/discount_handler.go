package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackyeh168/salon_crm/src/internal/application/discount"
	"github.com/shopspring/decimal"
)

// DiscountClaimer 兌換折扣
type DiscountClaimer interface {
	Execute(ctx context.Context, cmd discount.ClaimDiscountCommand) (*discount.ClaimDiscountResult, error)
}

// DiscountHandler 結帳時兌換顧客的一次性折扣
type DiscountHandler struct {
	claimer DiscountClaimer
	auth    *Authenticator
}

// NewDiscountHandler 建立 handler
func NewDiscountHandler(claimer DiscountClaimer, auth *Authenticator) *DiscountHandler {
	return &DiscountHandler{claimer: claimer, auth: auth}
}

// RegisterRoutes 註冊路由
func (h *DiscountHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/customers/:id/discounts/:kind/claim", h.auth.Require(ObjectDiscount, ActionClaim), h.Claim)
}

type claimDiscountRequest struct {
	Subtotal decimal.Decimal `json:"subtotal"`
}

type claimDiscountResponse struct {
	CustomerID     string    `json:"customer_id"`
	Kind           string    `json:"kind"`
	Percent        string    `json:"percent"`
	Subtotal       string    `json:"subtotal"`
	DiscountAmount string    `json:"discount_amount"`
	Total          string    `json:"total"`
	ClaimedAt      time.Time `json:"claimed_at"`
}

// Claim POST /api/customers/:id/discounts/:kind/claim
func (h *DiscountHandler) Claim(c *gin.Context) {
	var req claimDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.claimer.Execute(c.Request.Context(), discount.ClaimDiscountCommand{
		SalonID:    staffFrom(c).SalonID,
		CustomerID: c.Param("id"),
		Kind:       c.Param("kind"),
		Subtotal:   req.Subtotal,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, claimDiscountResponse{
		CustomerID:     result.CustomerID,
		Kind:           string(result.Kind),
		Percent:        result.Percent.String(),
		Subtotal:       result.Subtotal.StringFixed(2),
		DiscountAmount: result.DiscountAmount.StringFixed(2),
		Total:          result.Total.StringFixed(2),
		ClaimedAt:      result.ClaimedAt,
	})
}
