package checkin

import (
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// Repository 介面
// ===========================

// VisitTokenRepository 報到碼倉儲介面
//
// 報到碼只新增、查詢與寫入一次 used_at，永不刪除。
type VisitTokenRepository interface {
	// Save 保存新簽發的報到碼
	// 錯誤：ErrTokenValueDuplicate（token 值唯一索引衝突）
	Save(ctx shared.TransactionContext, token *VisitToken) error

	// FindByValue 以精確 token 值查找
	// 返回：找到的報到碼，或 ErrTokenNotFound
	FindByValue(ctx shared.TransactionContext, value TokenValue) (*VisitToken, error)

	// MarkUsed 無條件寫入 used_at
	MarkUsed(ctx shared.TransactionContext, tokenID VisitTokenID, usedAt time.Time) error

	// ClaimUnused 條件式寫入：UPDATE ... SET used_at = ? WHERE id = ? AND used_at IS NULL
	// 返回：是否由本次呼叫搶到（影響筆數為 1）
	ClaimUnused(ctx shared.TransactionContext, tokenID VisitTokenID, usedAt time.Time) (bool, error)
}

// VisitRepository 來店紀錄倉儲介面
type VisitRepository interface {
	// Save 新增來店紀錄
	Save(ctx shared.TransactionContext, visit *Visit) error

	// CountByCustomer 重新計算顧客的來店總次數（COUNT，不使用快取欄位）
	CountByCustomer(ctx shared.TransactionContext, customerID customer.CustomerID) (int, error)

	// FindByCustomer 依來店時間由新到舊列出
	FindByCustomer(ctx shared.TransactionContext, customerID customer.CustomerID) ([]*Visit, error)
}

// ReferralRewardRepository 推薦獎勵倉儲介面
type ReferralRewardRepository interface {
	Save(ctx shared.TransactionContext, reward *ReferralReward) error
	FindByReferrer(ctx shared.TransactionContext, referrerID customer.CustomerID) ([]*ReferralReward, error)
}
