package customer

import (
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"github.com/jackyeh168/salon_crm/src/internal/infrastructure/persistence"
	"gorm.io/gorm"
)

// ===========================
// CustomerRepositoryImpl
// ===========================

// CustomerRepositoryImpl 顧客倉儲實現（GORM）
//
// 將 GORM 錯誤轉換為 customer.DomainError，不包含業務邏輯。
type CustomerRepositoryImpl struct {
	db *gorm.DB
}

// NewCustomerRepository 創建新的顧客倉儲實例
func NewCustomerRepository(db *gorm.DB) *CustomerRepositoryImpl {
	return &CustomerRepositoryImpl{db: db}
}

// Save 新增顧客
func (r *CustomerRepositoryImpl) Save(ctx shared.TransactionContext, c *customer.Customer) error {
	db := persistence.ResolveDB(ctx, r.db)

	if err := db.Create(toGORM(c)).Error; err != nil {
		return customer.ErrRepositoryError.WithContext(
			"operation", "save_customer",
			"customer_id", c.CustomerID().String(),
			"database_error", err.Error(),
		)
	}
	return nil
}

// FindByID 根據 ID 查找顧客
//
// 錯誤處理：
// - gorm.ErrRecordNotFound → customer.ErrCustomerNotFound
// - 其他資料庫錯誤 → customer.ErrRepositoryError
func (r *CustomerRepositoryImpl) FindByID(ctx shared.TransactionContext, customerID customer.CustomerID) (*customer.Customer, error) {
	db := persistence.ResolveDB(ctx, r.db)

	var model CustomerGORM
	if err := db.Where("id = ?", customerID.String()).First(&model).Error; err != nil {
		return nil, r.mapFindError(err, "customer_id", customerID.String())
	}
	return model.toDomain()
}

// FindByIDInSalon 根據 ID 查找顧客，限定沙龍範圍
//
// 其他沙龍的顧客視為不存在。
func (r *CustomerRepositoryImpl) FindByIDInSalon(ctx shared.TransactionContext, salonID customer.SalonID, customerID customer.CustomerID) (*customer.Customer, error) {
	db := persistence.ResolveDB(ctx, r.db)

	var model CustomerGORM
	err := db.Where("id = ? AND salon_id = ?", customerID.String(), salonID.String()).First(&model).Error
	if err != nil {
		return nil, r.mapFindError(err, "customer_id", customerID.String())
	}
	return model.toDomain()
}

// Update 更新顧客狀態
//
// 使用 Select("*") 寫入所有欄位，false 與 NULL 也會寫回。
// RowsAffected = 0 表示記錄不存在。
func (r *CustomerRepositoryImpl) Update(ctx shared.TransactionContext, c *customer.Customer) error {
	db := persistence.ResolveDB(ctx, r.db)

	model := toGORM(c)
	result := db.Model(&CustomerGORM{}).
		Where("id = ? AND salon_id = ?", model.ID, model.SalonID).
		Select("*").
		Omit("id", "created_at").
		Updates(model)

	if result.Error != nil {
		return customer.ErrRepositoryError.WithContext(
			"operation", "update_customer",
			"customer_id", model.ID,
			"database_error", result.Error.Error(),
		)
	}
	if result.RowsAffected == 0 {
		return customer.ErrCustomerNotFound.WithContext(
			"customer_id", model.ID,
			"reason", "customer does not exist in database",
		)
	}
	return nil
}

// UpdateLastVisit 只寫入 last_visit_at
func (r *CustomerRepositoryImpl) UpdateLastVisit(ctx shared.TransactionContext, customerID customer.CustomerID, at time.Time) error {
	return r.updateColumns(ctx, "update_last_visit", customerID, map[string]interface{}{
		"last_visit_at": at,
		"updated_at":    at,
	})
}

// UpdateLoyaltyLevel 只寫入等級與升級折扣旗標
func (r *CustomerRepositoryImpl) UpdateLoyaltyLevel(ctx shared.TransactionContext, customerID customer.CustomerID, level loyalty.Level, at time.Time) error {
	return r.updateColumns(ctx, "update_loyalty_level", customerID, map[string]interface{}{
		"loyalty_level":        level.String(),
		"has_loyalty_discount": true,
		"updated_at":           at,
	})
}

// IncrementReferralCount 在資料庫端遞增 referral_count，再讀回最新值
//
// NULL 視為 0。
func (r *CustomerRepositoryImpl) IncrementReferralCount(ctx shared.TransactionContext, customerID customer.CustomerID, at time.Time) (int, error) {
	err := r.updateColumns(ctx, "increment_referral_count", customerID, map[string]interface{}{
		"referral_count":        gorm.Expr("COALESCE(referral_count, 0) + 1"),
		"has_referral_discount": true,
		"updated_at":            at,
	})
	if err != nil {
		return 0, err
	}

	db := persistence.ResolveDB(ctx, r.db)
	var model CustomerGORM
	if err := db.Select("referral_count").Where("id = ?", customerID.String()).First(&model).Error; err != nil {
		return 0, r.mapFindError(err, "customer_id", customerID.String())
	}
	if model.ReferralCount == nil {
		return 0, nil
	}
	return *model.ReferralCount, nil
}

// GrantReferralDiscount 只寫入推薦折扣旗標
func (r *CustomerRepositoryImpl) GrantReferralDiscount(ctx shared.TransactionContext, customerID customer.CustomerID, at time.Time) error {
	return r.updateColumns(ctx, "grant_referral_discount", customerID, map[string]interface{}{
		"has_referral_discount": true,
		"updated_at":            at,
	})
}

func (r *CustomerRepositoryImpl) updateColumns(ctx shared.TransactionContext, operation string, customerID customer.CustomerID, values map[string]interface{}) error {
	db := persistence.ResolveDB(ctx, r.db)

	result := db.Model(&CustomerGORM{}).
		Where("id = ?", customerID.String()).
		Updates(values)

	if result.Error != nil {
		return customer.ErrRepositoryError.WithContext(
			"operation", operation,
			"customer_id", customerID.String(),
			"database_error", result.Error.Error(),
		)
	}
	if result.RowsAffected == 0 {
		return customer.ErrCustomerNotFound.WithContext(
			"operation", operation,
			"customer_id", customerID.String(),
		)
	}
	return nil
}

func (r *CustomerRepositoryImpl) mapFindError(err error, key, value string) error {
	if persistence.IsNotFound(err) {
		return customer.ErrCustomerNotFound.WithContext(key, value)
	}
	return customer.ErrRepositoryError.WithContext(
		key, value,
		"database_error", err.Error(),
	)
}

var _ customer.CustomerRepository = (*CustomerRepositoryImpl)(nil)

// ===========================
// SalonRepositoryImpl
// ===========================

// SalonRepositoryImpl 沙龍設定倉儲實現（GORM）
type SalonRepositoryImpl struct {
	db *gorm.DB
}

// NewSalonRepository 創建新的沙龍倉儲實例
func NewSalonRepository(db *gorm.DB) *SalonRepositoryImpl {
	return &SalonRepositoryImpl{db: db}
}

// FindByID 返回沙龍設定
func (r *SalonRepositoryImpl) FindByID(ctx shared.TransactionContext, salonID customer.SalonID) (*customer.Salon, error) {
	db := persistence.ResolveDB(ctx, r.db)

	var model SalonGORM
	if err := db.Where("id = ?", salonID.String()).First(&model).Error; err != nil {
		if persistence.IsNotFound(err) {
			return nil, customer.ErrSalonNotFound.WithContext("salon_id", salonID.String())
		}
		return nil, customer.ErrRepositoryError.WithContext(
			"salon_id", salonID.String(),
			"database_error", err.Error(),
		)
	}
	return model.toDomain()
}

// Create 新增沙龍設定（初始資料與測試使用）
func (r *SalonRepositoryImpl) Create(ctx shared.TransactionContext, model *SalonGORM) error {
	db := persistence.ResolveDB(ctx, r.db)
	return db.Create(model).Error
}

var _ customer.SalonRepository = (*SalonRepositoryImpl)(nil)
