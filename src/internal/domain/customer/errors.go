package customer

import "fmt"

// ===========================
// 錯誤代碼定義
// ===========================

// ErrorCode 錯誤代碼類型
type ErrorCode string

const (
	ErrCodeInvalidCustomerID    ErrorCode = "CUSTOMER_ID_INVALID"
	ErrCodeInvalidSalonID       ErrorCode = "SALON_ID_INVALID"
	ErrCodeInvalidStaffID       ErrorCode = "STAFF_ID_INVALID"
	ErrCodeInvalidDisplayName   ErrorCode = "CUSTOMER_NAME_INVALID"
	ErrCodeCustomerNotFound     ErrorCode = "CUSTOMER_NOT_FOUND"
	ErrCodeSalonNotFound        ErrorCode = "SALON_NOT_FOUND"
	ErrCodeReferrerNotFound     ErrorCode = "REFERRER_NOT_FOUND"
	ErrCodeDiscountNotAvailable ErrorCode = "DISCOUNT_NOT_AVAILABLE"
	ErrCodeInvalidDiscountKind  ErrorCode = "DISCOUNT_KIND_INVALID"
	ErrCodeInvalidAmount        ErrorCode = "AMOUNT_INVALID"
	ErrCodeInvalidPercent       ErrorCode = "DISCOUNT_PERCENT_INVALID"
	ErrCodeRepositoryError      ErrorCode = "REPOSITORY_ERROR"
)

// DomainError 領域錯誤
//
// Code 用於 HTTP 狀態碼映射，Context 用於日誌。
type DomainError struct {
	Code    ErrorCode
	Message string
	Context map[string]interface{}
}

// Error 實現 error 接口
func (e *DomainError) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s (context: %+v)", e.Code, e.Message, e.Context)
}

// WithContext 添加上下文信息（返回新的錯誤實例，保持不可變性）
func (e *DomainError) WithContext(keyValues ...interface{}) error {
	if len(keyValues)%2 != 0 {
		panic("WithContext requires even number of arguments (key-value pairs)")
	}

	ctx := make(map[string]interface{}, len(e.Context)+len(keyValues)/2)
	for k, v := range e.Context {
		ctx[k] = v
	}
	for i := 0; i < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			panic(fmt.Sprintf("context key must be string, got %T", keyValues[i]))
		}
		ctx[key] = keyValues[i+1]
	}

	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Context: ctx,
	}
}

// Is 實現 errors.Is 接口（比較錯誤代碼）
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ID 相關錯誤
var (
	ErrInvalidCustomerID = &DomainError{
		Code:    ErrCodeInvalidCustomerID,
		Message: "無效的顧客 ID",
	}

	ErrInvalidSalonID = &DomainError{
		Code:    ErrCodeInvalidSalonID,
		Message: "無效的沙龍 ID",
	}

	ErrInvalidStaffID = &DomainError{
		Code:    ErrCodeInvalidStaffID,
		Message: "無效的員工 ID",
	}

	ErrInvalidDisplayName = &DomainError{
		Code:    ErrCodeInvalidDisplayName,
		Message: "顧客名稱不能為空",
	}
)

// 倉儲相關錯誤
var (
	ErrCustomerNotFound = &DomainError{
		Code:    ErrCodeCustomerNotFound,
		Message: "顧客不存在",
	}

	ErrReferrerNotFound = &DomainError{
		Code:    ErrCodeReferrerNotFound,
		Message: "推薦人不存在於此沙龍",
	}

	ErrSalonNotFound = &DomainError{
		Code:    ErrCodeSalonNotFound,
		Message: "沙龍不存在",
	}

	ErrRepositoryError = &DomainError{
		Code:    ErrCodeRepositoryError,
		Message: "倉儲操作失敗",
	}
)

// 折扣相關錯誤
var (
	ErrDiscountNotAvailable = &DomainError{
		Code:    ErrCodeDiscountNotAvailable,
		Message: "顧客目前沒有可使用的折扣",
	}

	ErrInvalidDiscountKind = &DomainError{
		Code:    ErrCodeInvalidDiscountKind,
		Message: "無效的折扣類型",
	}

	ErrInvalidAmount = &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: "金額不能為負數",
	}

	ErrInvalidPercent = &DomainError{
		Code:    ErrCodeInvalidPercent,
		Message: "折扣百分比必須在 0-100 之間",
	}
)
