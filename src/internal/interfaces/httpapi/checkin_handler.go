package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	checkinapp "github.com/jackyeh168/salon_crm/src/internal/application/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
)

// TokenRedeemer 兌換報到碼
type TokenRedeemer interface {
	Execute(ctx context.Context, cmd checkinapp.RedeemVisitTokenCommand) (*checkinapp.RedeemVisitTokenResult, error)
}

// CheckinHandler 顧客掃碼報到（公開端點）
type CheckinHandler struct {
	redeemer TokenRedeemer
}

// NewCheckinHandler 建立 handler
func NewCheckinHandler(redeemer TokenRedeemer) *CheckinHandler {
	return &CheckinHandler{redeemer: redeemer}
}

// RegisterRoutes 註冊路由
func (h *CheckinHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/checkin", h.Redeem)
}

type checkinRequest struct {
	Token    string          `json:"token"`
	Services json.RawMessage `json:"services"`
}

type checkinCustomer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type checkinResponse struct {
	Success  bool            `json:"success"`
	Customer checkinCustomer `json:"customer"`
	Message  string          `json:"message"`
	VisitID  string          `json:"visit_id"`
}

// Redeem POST /api/checkin
//
// body: {"token": "...", "services": "..." | ["..."]}；token 也可放在 query string。
func (h *CheckinHandler) Redeem(c *gin.Context) {
	var req checkinRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request payload: "+err.Error())
			return
		}
	}
	if req.Token == "" {
		req.Token = c.Query("token")
	}

	result, err := h.redeemer.Execute(c.Request.Context(), checkinapp.RedeemVisitTokenCommand{
		Token:    req.Token,
		Services: decodeServices(req.Services),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, checkinResponse{
		Success: true,
		Customer: checkinCustomer{
			ID:   result.CustomerID,
			Name: result.CustomerName,
		},
		Message: checkinapp.WelcomeMessage(result.CustomerName),
		VisitID: result.VisitID,
	})
}

// decodeServices services 可以是 JSON 陣列或字串
func decodeServices(raw json.RawMessage) checkin.ServiceList {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var labels []string
	if err := json.Unmarshal(raw, &labels); err == nil {
		return checkin.NewServiceList(labels)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return checkin.ParseServicesParam(s)
	}
	return nil
}
