package customer

import (
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// Repository 介面
// ===========================

// CustomerRepository 顧客倉儲介面
//
// 顧客由櫃台建立（Save），報到與折扣流程只讀取與更新。
type CustomerRepository interface {
	// Save 保存新顧客
	Save(ctx shared.TransactionContext, customer *Customer) error

	// FindByID 根據 ID 查找顧客
	// 返回：找到的顧客，或 ErrCustomerNotFound
	FindByID(ctx shared.TransactionContext, customerID CustomerID) (*Customer, error)

	// FindByIDInSalon 根據 ID 查找顧客，限定沙龍範圍
	// 返回：找到的顧客，或 ErrCustomerNotFound（包含跨租戶存取）
	FindByIDInSalon(ctx shared.TransactionContext, salonID SalonID, customerID CustomerID) (*Customer, error)

	// Update 寫回整筆顧客狀態
	// 只用在「讀取、修改、寫回」同一事務內完成的流程（折扣兌換）。
	// 錯誤：ErrCustomerNotFound（如果顧客不存在）
	Update(ctx shared.TransactionContext, customer *Customer) error

	// 以下只寫入指定欄位，其他欄位維持資料庫中的現值。
	// 錯誤：ErrCustomerNotFound（如果顧客不存在）

	// UpdateLastVisit 寫入 last_visit_at
	UpdateLastVisit(ctx shared.TransactionContext, customerID CustomerID, at time.Time) error

	// UpdateLoyaltyLevel 寫入 loyalty_level，並設定 has_loyalty_discount = true
	UpdateLoyaltyLevel(ctx shared.TransactionContext, customerID CustomerID, level loyalty.Level, at time.Time) error

	// IncrementReferralCount referral_count 加 1 並設定 has_referral_discount = true
	// 返回：更新後的 referral_count
	IncrementReferralCount(ctx shared.TransactionContext, customerID CustomerID, at time.Time) (int, error)

	// GrantReferralDiscount 設定 has_referral_discount = true
	GrantReferralDiscount(ctx shared.TransactionContext, customerID CustomerID, at time.Time) error
}

// SalonRepository 沙龍設定倉儲介面（唯讀）
type SalonRepository interface {
	// FindByID 返回沙龍設定，或 ErrSalonNotFound
	FindByID(ctx shared.TransactionContext, salonID SalonID) (*Salon, error)
}
