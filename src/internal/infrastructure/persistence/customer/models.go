package customer

import (
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/shopspring/decimal"
)

// ===========================
// GORM Models
// ===========================

// CustomerGORM 顧客資料表模型（只映射報到與忠誠度相關欄位）
type CustomerGORM struct {
	ID      string `gorm:"column:id;type:varchar(36);primaryKey"`
	SalonID string `gorm:"column:salon_id;type:varchar(36);index;not null"`
	Name    string `gorm:"column:name;type:varchar(255);not null"`

	LastVisitAt *time.Time `gorm:"column:last_visit_at"`

	LoyaltyLevel          string     `gorm:"column:loyalty_level;type:varchar(16);not null;default:BRONZE"`
	HasLoyaltyDiscount    bool       `gorm:"column:has_loyalty_discount;not null;default:false"`
	LoyaltyDiscountUsedAt *time.Time `gorm:"column:loyalty_discount_used_at"`

	ReferredBy          *string `gorm:"column:referred_by;type:varchar(36);index"`
	ReferralCount       *int    `gorm:"column:referral_count;default:0"`
	HasReferralDiscount bool    `gorm:"column:has_referral_discount;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定資料表名稱
func (CustomerGORM) TableName() string {
	return "customers"
}

// SalonGORM 沙龍設定資料表模型
//
// 門檻為 0 代表未設定（套用系統預設）。
type SalonGORM struct {
	ID   string `gorm:"column:id;type:varchar(36);primaryKey"`
	Name string `gorm:"column:name;type:varchar(255);not null"`

	LoyaltySilverMinVisits   int `gorm:"column:loyalty_silver_min_visits;not null;default:0"`
	LoyaltyGoldMinVisits     int `gorm:"column:loyalty_gold_min_visits;not null;default:0"`
	LoyaltyPlatinumMinVisits int `gorm:"column:loyalty_platinum_min_visits;not null;default:0"`
	LoyaltyVIPMinVisits      int `gorm:"column:loyalty_vip_min_visits;not null;default:0"`

	LoyaltyDiscountPercent  decimal.Decimal `gorm:"column:loyalty_discount_percent;type:numeric(5,2);not null;default:10"`
	ReferralDiscountPercent decimal.Decimal `gorm:"column:referral_discount_percent;type:numeric(5,2);not null;default:10"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定資料表名稱
func (SalonGORM) TableName() string {
	return "salons"
}

// Models 返回需要自動遷移的模型
func Models() []interface{} {
	return []interface{}{&SalonGORM{}, &CustomerGORM{}}
}

// ===========================
// Mapper Functions
// ===========================

func (m *CustomerGORM) toDomain() (*customer.Customer, error) {
	customerID, err := customer.CustomerIDFromString(m.ID)
	if err != nil {
		return nil, err
	}
	salonID, err := customer.SalonIDFromString(m.SalonID)
	if err != nil {
		return nil, err
	}
	level, err := loyalty.ParseLevel(m.LoyaltyLevel)
	if err != nil {
		return nil, err
	}

	// referred_by 為 NULL 或空字串時維持零值
	var referredBy customer.CustomerID
	if m.ReferredBy != nil && *m.ReferredBy != "" {
		referredBy, err = customer.CustomerIDFromString(*m.ReferredBy)
		if err != nil {
			return nil, err
		}
	}

	referralCount := 0
	if m.ReferralCount != nil {
		referralCount = *m.ReferralCount
	}

	return customer.ReconstructCustomer(
		customerID,
		salonID,
		m.Name,
		m.LastVisitAt,
		level,
		m.HasLoyaltyDiscount,
		m.LoyaltyDiscountUsedAt,
		referredBy,
		referralCount,
		m.HasReferralDiscount,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toGORM(c *customer.Customer) *CustomerGORM {
	var referredBy *string
	if c.IsReferred() {
		s := c.ReferredBy().String()
		referredBy = &s
	}
	referralCount := c.ReferralCount()

	return &CustomerGORM{
		ID:                    c.CustomerID().String(),
		SalonID:               c.SalonID().String(),
		Name:                  c.Name(),
		LastVisitAt:           c.LastVisitAt(),
		LoyaltyLevel:          c.LoyaltyLevel().String(),
		HasLoyaltyDiscount:    c.HasLoyaltyDiscount(),
		LoyaltyDiscountUsedAt: c.LoyaltyDiscountUsedAt(),
		ReferredBy:            referredBy,
		ReferralCount:         &referralCount,
		HasReferralDiscount:   c.HasReferralDiscount(),
		CreatedAt:             c.CreatedAt(),
		UpdatedAt:             c.UpdatedAt(),
	}
}

func (m *SalonGORM) toDomain() (*customer.Salon, error) {
	salonID, err := customer.SalonIDFromString(m.ID)
	if err != nil {
		return nil, err
	}
	return customer.ReconstructSalon(
		salonID,
		m.Name,
		m.LoyaltySilverMinVisits,
		m.LoyaltyGoldMinVisits,
		m.LoyaltyPlatinumMinVisits,
		m.LoyaltyVIPMinVisits,
		m.LoyaltyDiscountPercent,
		m.ReferralDiscountPercent,
	)
}
