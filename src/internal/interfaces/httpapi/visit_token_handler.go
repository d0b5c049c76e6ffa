package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	checkinapp "github.com/jackyeh168/salon_crm/src/internal/application/checkin"
)

// TokenIssuer 簽發報到碼
type TokenIssuer interface {
	Execute(ctx context.Context, cmd checkinapp.IssueVisitTokenCommand) (*checkinapp.IssueVisitTokenResult, error)
}

// TokenStatusQuery 查詢報到碼狀態
type TokenStatusQuery interface {
	Execute(ctx context.Context, q checkinapp.GetVisitTokenStatusQuery) (*checkinapp.VisitTokenStatus, error)
}

// QRCodeConfig 外部 QR 圖片服務
type QRCodeConfig struct {
	Endpoint string
	Size     int
}

// VisitTokenHandler 員工端簽發與輪詢報到碼
type VisitTokenHandler struct {
	issuer TokenIssuer
	status TokenStatusQuery
	auth   *Authenticator
	qr     QRCodeConfig
}

// NewVisitTokenHandler 建立 handler
func NewVisitTokenHandler(issuer TokenIssuer, status TokenStatusQuery, auth *Authenticator, qr QRCodeConfig) *VisitTokenHandler {
	return &VisitTokenHandler{issuer: issuer, status: status, auth: auth, qr: qr}
}

// RegisterRoutes 註冊路由
func (h *VisitTokenHandler) RegisterRoutes(router *gin.RouterGroup) {
	tokens := router.Group("/visit-tokens")
	{
		tokens.POST("", h.auth.Require(ObjectVisitToken, ActionIssue), h.Issue)
		tokens.GET("/:token/status", h.auth.Require(ObjectVisitToken, ActionView), h.Status)
	}
}

type issueTokenRequest struct {
	CustomerID string   `json:"customer_id" binding:"required"`
	Services   []string `json:"services"`
}

type issueTokenResponse struct {
	TokenID       string    `json:"token_id"`
	Token         string    `json:"token"`
	RedemptionURL string    `json:"redemption_url"`
	QRCodeURL     string    `json:"qr_code_url"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Issue POST /api/visit-tokens
func (h *VisitTokenHandler) Issue(c *gin.Context) {
	var req issueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	staff := staffFrom(c)
	result, err := h.issuer.Execute(c.Request.Context(), checkinapp.IssueVisitTokenCommand{
		SalonID:    staff.SalonID,
		CustomerID: req.CustomerID,
		IssuerID:   staff.ID,
		Services:   req.Services,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issueTokenResponse{
		TokenID:       result.TokenID,
		Token:         result.Token,
		RedemptionURL: result.RedemptionURL,
		QRCodeURL:     checkinapp.QRCodeImageURL(h.qr.Endpoint, h.qr.Size, result.RedemptionURL),
		ExpiresAt:     result.ExpiresAt,
	})
}

type tokenStatusResponse struct {
	State            string     `json:"state"`
	UsedAt           *time.Time `json:"used_at,omitempty"`
	ExpiresAt        time.Time  `json:"expires_at"`
	RemainingSeconds int        `json:"remaining_seconds"`
}

// Status GET /api/visit-tokens/:token/status
func (h *VisitTokenHandler) Status(c *gin.Context) {
	status, err := h.status.Execute(c.Request.Context(), checkinapp.GetVisitTokenStatusQuery{
		SalonID: staffFrom(c).SalonID,
		Token:   c.Param("token"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenStatusResponse{
		State:            string(status.State),
		UsedAt:           status.UsedAt,
		ExpiresAt:        status.ExpiresAt,
		RemainingSeconds: int(status.Remaining / time.Second),
	})
}
