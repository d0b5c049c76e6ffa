package checkin

import "fmt"

// ===========================
// 錯誤代碼定義
// ===========================

// ErrorCode 錯誤代碼類型
//
// 報到流程的錯誤代碼直接作為 API 回應的 error 欄位，前端依此顯示訊息。
type ErrorCode string

const (
	ErrCodeMissingToken        ErrorCode = "MISSING_TOKEN"
	ErrCodeInvalidToken        ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired        ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTokenAlreadyUsed    ErrorCode = "TOKEN_ALREADY_USED"
	ErrCodeCustomerNotFound    ErrorCode = "CUSTOMER_NOT_FOUND"
	ErrCodeVisitCreationFailed ErrorCode = "VISIT_CREATION_FAILED"
	ErrCodeUnexpected          ErrorCode = "UNEXPECTED_ERROR"

	ErrCodeTokenNotFound       ErrorCode = "VISIT_TOKEN_NOT_FOUND"
	ErrCodeTokenValueDuplicate ErrorCode = "VISIT_TOKEN_DUPLICATE"
	ErrCodeInvalidTokenID      ErrorCode = "VISIT_TOKEN_ID_INVALID"
	ErrCodeInvalidVisitID      ErrorCode = "VISIT_ID_INVALID"
	ErrCodeRepositoryError     ErrorCode = "REPOSITORY_ERROR"
)

// DomainError 領域錯誤
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

// WithContext 添加上下文信息（返回新的錯誤實例）
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

// 兌換流程錯誤（依檢查順序排列）
var (
	ErrMissingToken = &DomainError{
		Code:    ErrCodeMissingToken,
		Message: "缺少報到碼",
	}

	ErrInvalidToken = &DomainError{
		Code:    ErrCodeInvalidToken,
		Message: "無效的報到碼",
	}

	ErrTokenExpired = &DomainError{
		Code:    ErrCodeTokenExpired,
		Message: "報到碼已過期",
	}

	ErrTokenAlreadyUsed = &DomainError{
		Code:    ErrCodeTokenAlreadyUsed,
		Message: "報到碼已使用",
	}

	ErrCustomerNotFound = &DomainError{
		Code:    ErrCodeCustomerNotFound,
		Message: "找不到報到碼對應的顧客",
	}

	ErrVisitCreationFailed = &DomainError{
		Code:    ErrCodeVisitCreationFailed,
		Message: "建立來店紀錄失敗",
	}

	ErrUnexpected = &DomainError{
		Code:    ErrCodeUnexpected,
		Message: "發生未預期的錯誤",
	}
)

// 倉儲與 ID 相關錯誤
var (
	ErrTokenNotFound = &DomainError{
		Code:    ErrCodeTokenNotFound,
		Message: "報到碼不存在",
	}

	ErrTokenValueDuplicate = &DomainError{
		Code:    ErrCodeTokenValueDuplicate,
		Message: "報到碼重複",
	}

	ErrInvalidTokenID = &DomainError{
		Code:    ErrCodeInvalidTokenID,
		Message: "無效的報到碼 ID",
	}

	ErrInvalidVisitID = &DomainError{
		Code:    ErrCodeInvalidVisitID,
		Message: "無效的來店紀錄 ID",
	}

	ErrRepositoryError = &DomainError{
		Code:    ErrCodeRepositoryError,
		Message: "倉儲操作失敗",
	}
)
