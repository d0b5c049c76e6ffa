package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	customerapp "github.com/jackyeh168/salon_crm/src/internal/application/customer"
)

// CustomerRegistrar 建立顧客
type CustomerRegistrar interface {
	Execute(ctx context.Context, cmd customerapp.RegisterCustomerCommand) (*customerapp.RegisterCustomerResult, error)
}

// CustomerHandler 櫃台建立顧客
type CustomerHandler struct {
	registrar CustomerRegistrar
	auth      *Authenticator
}

// NewCustomerHandler 建立 handler
func NewCustomerHandler(registrar CustomerRegistrar, auth *Authenticator) *CustomerHandler {
	return &CustomerHandler{registrar: registrar, auth: auth}
}

// RegisterRoutes 註冊路由
func (h *CustomerHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/customers", h.auth.Require(ObjectCustomer, ActionRegister), h.Register)
}

type registerCustomerRequest struct {
	Name       string `json:"name" binding:"required"`
	ReferredBy string `json:"referred_by"`
}

type registerCustomerResponse struct {
	CustomerID   string `json:"customer_id"`
	Name         string `json:"name"`
	LoyaltyLevel string `json:"loyalty_level"`
	ReferredBy   string `json:"referred_by,omitempty"`
}

// Register POST /api/customers
func (h *CustomerHandler) Register(c *gin.Context) {
	var req registerCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.registrar.Execute(c.Request.Context(), customerapp.RegisterCustomerCommand{
		SalonID:    staffFrom(c).SalonID,
		Name:       req.Name,
		ReferredBy: req.ReferredBy,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registerCustomerResponse{
		CustomerID:   result.CustomerID,
		Name:         result.Name,
		LoyaltyLevel: result.LoyaltyLevel,
		ReferredBy:   result.ReferredBy,
	})
}
