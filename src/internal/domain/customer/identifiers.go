package customer

import (
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// 實體 ID 類型定義
// ===========================

// CustomerMarker 是 CustomerID 的標記類型
type CustomerMarker struct{}

// CustomerID 顧客的唯一標識符
type CustomerID = shared.EntityID[CustomerMarker]

// NewCustomerID 生成新的顧客 ID（UUID v4）
func NewCustomerID() CustomerID {
	return shared.NewEntityID[CustomerMarker]()
}

// CustomerIDFromString 從字串解析顧客 ID
func CustomerIDFromString(s string) (CustomerID, error) {
	return shared.EntityIDFromString[CustomerMarker](s, ErrInvalidCustomerID)
}

// SalonMarker 是 SalonID 的標記類型
type SalonMarker struct{}

// SalonID 沙龍（租戶）的唯一標識符
//
// 所有寫入都以 SalonID 限定範圍。
type SalonID = shared.EntityID[SalonMarker]

// NewSalonID 生成新的沙龍 ID
func NewSalonID() SalonID {
	return shared.NewEntityID[SalonMarker]()
}

// SalonIDFromString 從字串解析沙龍 ID
func SalonIDFromString(s string) (SalonID, error) {
	return shared.EntityIDFromString[SalonMarker](s, ErrInvalidSalonID)
}

// StaffMarker 是 StaffID 的標記類型
type StaffMarker struct{}

// StaffID 員工（發出報到碼的人）的唯一標識符
type StaffID = shared.EntityID[StaffMarker]

// NewStaffID 生成新的員工 ID
func NewStaffID() StaffID {
	return shared.NewEntityID[StaffMarker]()
}

// StaffIDFromString 從字串解析員工 ID
func StaffIDFromString(s string) (StaffID, error) {
	return shared.EntityIDFromString[StaffMarker](s, ErrInvalidStaffID)
}
