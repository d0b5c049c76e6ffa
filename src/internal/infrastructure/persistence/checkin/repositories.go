package checkin

import (
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"github.com/jackyeh168/salon_crm/src/internal/infrastructure/persistence"
	"gorm.io/gorm"
)

// ===========================
// VisitTokenRepositoryImpl
// ===========================

// VisitTokenRepositoryImpl 報到碼倉儲實現（GORM）
type VisitTokenRepositoryImpl struct {
	db *gorm.DB
}

// NewVisitTokenRepository 創建報到碼倉儲
func NewVisitTokenRepository(db *gorm.DB) *VisitTokenRepositoryImpl {
	return &VisitTokenRepositoryImpl{db: db}
}

// Save 保存新簽發的報到碼
//
// 錯誤處理：
// - token 唯一索引衝突 → checkin.ErrTokenValueDuplicate
// - 其他資料庫錯誤 → checkin.ErrRepositoryError
func (r *VisitTokenRepositoryImpl) Save(ctx shared.TransactionContext, token *checkin.VisitToken) error {
	db := persistence.ResolveDB(ctx, r.db)

	if err := db.Create(visitTokenToGORM(token)).Error; err != nil {
		if persistence.IsUniqueConstraintError(err) {
			return checkin.ErrTokenValueDuplicate.WithContext("token_id", token.TokenID().String())
		}
		return checkin.ErrRepositoryError.WithContext(
			"operation", "save_visit_token",
			"database_error", err.Error(),
		)
	}
	return nil
}

// FindByValue 以精確 token 值查找
func (r *VisitTokenRepositoryImpl) FindByValue(ctx shared.TransactionContext, value checkin.TokenValue) (*checkin.VisitToken, error) {
	db := persistence.ResolveDB(ctx, r.db)

	var model VisitTokenGORM
	if err := db.Where("token = ?", value.String()).First(&model).Error; err != nil {
		if persistence.IsNotFound(err) {
			return nil, checkin.ErrTokenNotFound
		}
		return nil, checkin.ErrRepositoryError.WithContext(
			"operation", "find_visit_token",
			"database_error", err.Error(),
		)
	}
	return model.toDomain()
}

// MarkUsed 無條件寫入 used_at
func (r *VisitTokenRepositoryImpl) MarkUsed(ctx shared.TransactionContext, tokenID checkin.VisitTokenID, usedAt time.Time) error {
	db := persistence.ResolveDB(ctx, r.db)

	result := db.Model(&VisitTokenGORM{}).
		Where("id = ?", tokenID.String()).
		Update("used_at", usedAt)
	if result.Error != nil {
		return checkin.ErrRepositoryError.WithContext(
			"operation", "mark_token_used",
			"token_id", tokenID.String(),
			"database_error", result.Error.Error(),
		)
	}
	if result.RowsAffected == 0 {
		return checkin.ErrTokenNotFound.WithContext("token_id", tokenID.String())
	}
	return nil
}

// ClaimUnused 條件式寫入 used_at
//
// UPDATE visit_tokens SET used_at = ? WHERE id = ? AND used_at IS NULL
// 影響筆數為 1 表示本次呼叫搶到報到碼；0 表示已被使用。
func (r *VisitTokenRepositoryImpl) ClaimUnused(ctx shared.TransactionContext, tokenID checkin.VisitTokenID, usedAt time.Time) (bool, error) {
	db := persistence.ResolveDB(ctx, r.db)

	result := db.Model(&VisitTokenGORM{}).
		Where("id = ? AND used_at IS NULL", tokenID.String()).
		Update("used_at", usedAt)
	if result.Error != nil {
		return false, checkin.ErrRepositoryError.WithContext(
			"operation", "claim_token",
			"token_id", tokenID.String(),
			"database_error", result.Error.Error(),
		)
	}
	return result.RowsAffected == 1, nil
}

var _ checkin.VisitTokenRepository = (*VisitTokenRepositoryImpl)(nil)

// ===========================
// VisitRepositoryImpl
// ===========================

// VisitRepositoryImpl 來店紀錄倉儲實現（GORM）
type VisitRepositoryImpl struct {
	db *gorm.DB
}

// NewVisitRepository 創建來店紀錄倉儲
func NewVisitRepository(db *gorm.DB) *VisitRepositoryImpl {
	return &VisitRepositoryImpl{db: db}
}

// Save 新增來店紀錄
//
// 失敗時保留原始資料庫錯誤訊息，報到流程會把它帶到回應的 details。
func (r *VisitRepositoryImpl) Save(ctx shared.TransactionContext, visit *checkin.Visit) error {
	db := persistence.ResolveDB(ctx, r.db)

	model, err := visitToGORM(visit)
	if err != nil {
		return checkin.ErrRepositoryError.WithContext(
			"operation", "encode_services",
			"database_error", err.Error(),
		)
	}
	if err := db.Create(model).Error; err != nil {
		return checkin.ErrRepositoryError.WithContext(
			"operation", "save_visit",
			"database_error", err.Error(),
		)
	}
	return nil
}

// CountByCustomer 以 COUNT 重新計算來店總次數
func (r *VisitRepositoryImpl) CountByCustomer(ctx shared.TransactionContext, customerID customer.CustomerID) (int, error) {
	db := persistence.ResolveDB(ctx, r.db)

	var count int64
	if err := db.Model(&VisitGORM{}).Where("customer_id = ?", customerID.String()).Count(&count).Error; err != nil {
		return 0, checkin.ErrRepositoryError.WithContext(
			"operation", "count_visits",
			"customer_id", customerID.String(),
			"database_error", err.Error(),
		)
	}
	return int(count), nil
}

// FindByCustomer 依來店時間由新到舊列出
func (r *VisitRepositoryImpl) FindByCustomer(ctx shared.TransactionContext, customerID customer.CustomerID) ([]*checkin.Visit, error) {
	db := persistence.ResolveDB(ctx, r.db)

	var models []VisitGORM
	if err := db.Where("customer_id = ?", customerID.String()).Order("visited_at DESC").Find(&models).Error; err != nil {
		return nil, checkin.ErrRepositoryError.WithContext(
			"operation", "find_visits",
			"customer_id", customerID.String(),
			"database_error", err.Error(),
		)
	}

	visits := make([]*checkin.Visit, 0, len(models))
	for i := range models {
		v, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, nil
}

var _ checkin.VisitRepository = (*VisitRepositoryImpl)(nil)

// ===========================
// ReferralRewardRepositoryImpl
// ===========================

// ReferralRewardRepositoryImpl 推薦獎勵倉儲實現（GORM）
type ReferralRewardRepositoryImpl struct {
	db *gorm.DB
}

// NewReferralRewardRepository 創建推薦獎勵倉儲
func NewReferralRewardRepository(db *gorm.DB) *ReferralRewardRepositoryImpl {
	return &ReferralRewardRepositoryImpl{db: db}
}

// Save 新增推薦獎勵紀錄
func (r *ReferralRewardRepositoryImpl) Save(ctx shared.TransactionContext, reward *checkin.ReferralReward) error {
	db := persistence.ResolveDB(ctx, r.db)

	if err := db.Create(referralRewardToGORM(reward)).Error; err != nil {
		return checkin.ErrRepositoryError.WithContext(
			"operation", "save_referral_reward",
			"database_error", err.Error(),
		)
	}
	return nil
}

// FindByReferrer 列出推薦者的所有獎勵紀錄
func (r *ReferralRewardRepositoryImpl) FindByReferrer(ctx shared.TransactionContext, referrerID customer.CustomerID) ([]*checkin.ReferralReward, error) {
	db := persistence.ResolveDB(ctx, r.db)

	var models []ReferralRewardGORM
	if err := db.Where("referrer_id = ?", referrerID.String()).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, checkin.ErrRepositoryError.WithContext(
			"operation", "find_referral_rewards",
			"database_error", err.Error(),
		)
	}

	rewards := make([]*checkin.ReferralReward, 0, len(models))
	for i := range models {
		reward, err := models[i].toDomain()
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, reward)
	}
	return rewards, nil
}

var _ checkin.ReferralRewardRepository = (*ReferralRewardRepositoryImpl)(nil)
