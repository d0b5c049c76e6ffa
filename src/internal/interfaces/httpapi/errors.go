package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	checkinapp "github.com/jackyeh168/salon_crm/src/internal/application/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
)

// ===========================
// 錯誤回應
// ===========================

type errorBody struct {
	Success       bool   `json:"success"`
	Error         string `json:"error"`
	Message       string `json:"message"`
	Details       string `json:"details,omitempty"`
	CanRegenerate bool   `json:"can_regenerate,omitempty"`
}

var checkinStatus = map[checkin.ErrorCode]int{
	checkin.ErrCodeMissingToken:        http.StatusBadRequest,
	checkin.ErrCodeInvalidToken:        http.StatusNotFound,
	checkin.ErrCodeCustomerNotFound:    http.StatusNotFound,
	checkin.ErrCodeTokenAlreadyUsed:    http.StatusConflict,
	checkin.ErrCodeTokenExpired:        http.StatusGone,
	checkin.ErrCodeVisitCreationFailed: http.StatusInternalServerError,
	checkin.ErrCodeUnexpected:          http.StatusInternalServerError,
}

var customerStatus = map[customer.ErrorCode]int{
	customer.ErrCodeInvalidCustomerID:    http.StatusBadRequest,
	customer.ErrCodeInvalidSalonID:       http.StatusBadRequest,
	customer.ErrCodeInvalidStaffID:       http.StatusBadRequest,
	customer.ErrCodeInvalidDiscountKind:  http.StatusBadRequest,
	customer.ErrCodeInvalidAmount:        http.StatusBadRequest,
	customer.ErrCodeInvalidPercent:       http.StatusBadRequest,
	customer.ErrCodeInvalidDisplayName:   http.StatusBadRequest,
	customer.ErrCodeReferrerNotFound:     http.StatusUnprocessableEntity,
	customer.ErrCodeCustomerNotFound:     http.StatusNotFound,
	customer.ErrCodeSalonNotFound:        http.StatusNotFound,
	customer.ErrCodeDiscountNotAvailable: http.StatusConflict,
}

// respondError 把領域錯誤轉成 HTTP 狀態碼與錯誤內容
//
// 報到流程錯誤使用顧客端訊息；其他未知錯誤一律 500 UNEXPECTED_ERROR。
func respondError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	c.Set("error_code", body.Error)
	c.AbortWithStatusJSON(status, body)
}

func errorResponse(err error) (int, errorBody) {
	var checkinErr *checkin.DomainError
	if errors.As(err, &checkinErr) {
		status, ok := checkinStatus[checkinErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		return status, errorBody{
			Error:         string(checkinErr.Code),
			Message:       checkinapp.UserMessage(checkinErr.Code),
			Details:       detailsOf(checkinErr.Context),
			CanRegenerate: checkinapp.CanRegenerate(checkinErr.Code),
		}
	}

	var customerErr *customer.DomainError
	if errors.As(err, &customerErr) {
		status, ok := customerStatus[customerErr.Code]
		if ok {
			return status, errorBody{
				Error:   string(customerErr.Code),
				Message: customerErr.Message,
			}
		}
	}

	return http.StatusInternalServerError, errorBody{
		Error:   string(checkin.ErrCodeUnexpected),
		Message: checkinapp.UserMessage(checkin.ErrCodeUnexpected),
		Details: err.Error(),
	}
}

func detailsOf(ctx map[string]interface{}) string {
	if v, ok := ctx["details"]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

// badRequest 請求格式錯誤
func badRequest(c *gin.Context, message string) {
	c.Set("error_code", "INVALID_REQUEST")
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{
		Error:   "INVALID_REQUEST",
		Message: message,
	})
}
