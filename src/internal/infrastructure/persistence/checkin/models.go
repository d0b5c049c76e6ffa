package checkin

import (
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"gorm.io/datatypes"
)

// ===========================
// GORM Models
// ===========================

// VisitTokenGORM 報到碼資料表模型
//
// token 有唯一索引；紀錄永不刪除。
type VisitTokenGORM struct {
	ID         string     `gorm:"column:id;type:varchar(36);primaryKey"`
	SalonID    string     `gorm:"column:salon_id;type:varchar(36);index;not null"`
	CustomerID string     `gorm:"column:customer_id;type:varchar(36);index;not null"`
	CreatedBy  string     `gorm:"column:created_by;type:varchar(36);not null"`
	Token      string     `gorm:"column:token;type:varchar(64);uniqueIndex;not null"`
	ExpiresAt  time.Time  `gorm:"column:expires_at;not null"`
	UsedAt     *time.Time `gorm:"column:used_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null"`
}

// TableName 指定資料表名稱
func (VisitTokenGORM) TableName() string {
	return "visit_tokens"
}

// VisitGORM 來店紀錄資料表模型
//
// services 為 JSON 陣列，可為 NULL。
type VisitGORM struct {
	ID         string          `gorm:"column:id;type:varchar(36);primaryKey"`
	SalonID    string          `gorm:"column:salon_id;type:varchar(36);index;not null"`
	CustomerID string          `gorm:"column:customer_id;type:varchar(36);index;not null"`
	CreatedBy  string          `gorm:"column:created_by;type:varchar(36);not null"`
	VisitedAt  time.Time       `gorm:"column:visited_at;not null"`
	Services   *datatypes.JSON `gorm:"column:services"`
}

// TableName 指定資料表名稱
func (VisitGORM) TableName() string {
	return "visits"
}

// ReferralRewardGORM 推薦獎勵資料表模型（referred_id 沒有唯一約束）
type ReferralRewardGORM struct {
	ID         string    `gorm:"column:id;type:varchar(36);primaryKey"`
	SalonID    string    `gorm:"column:salon_id;type:varchar(36);index;not null"`
	ReferrerID string    `gorm:"column:referrer_id;type:varchar(36);index;not null"`
	ReferredID string    `gorm:"column:referred_id;type:varchar(36);index;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

// TableName 指定資料表名稱
func (ReferralRewardGORM) TableName() string {
	return "referral_rewards"
}

// Models 返回需要自動遷移的模型
func Models() []interface{} {
	return []interface{}{&VisitTokenGORM{}, &VisitGORM{}, &ReferralRewardGORM{}}
}

// ===========================
// Mapper Functions
// ===========================

func (m *VisitTokenGORM) toDomain() (*checkin.VisitToken, error) {
	tokenID, err := checkin.VisitTokenIDFromString(m.ID)
	if err != nil {
		return nil, err
	}
	salonID, err := customer.SalonIDFromString(m.SalonID)
	if err != nil {
		return nil, err
	}
	customerID, err := customer.CustomerIDFromString(m.CustomerID)
	if err != nil {
		return nil, err
	}
	issuerID, err := customer.StaffIDFromString(m.CreatedBy)
	if err != nil {
		return nil, err
	}

	return checkin.ReconstructVisitToken(
		tokenID,
		salonID,
		customerID,
		issuerID,
		checkin.TokenValueFrom(m.Token),
		m.ExpiresAt,
		m.UsedAt,
		m.CreatedAt,
	)
}

func visitTokenToGORM(t *checkin.VisitToken) *VisitTokenGORM {
	return &VisitTokenGORM{
		ID:         t.TokenID().String(),
		SalonID:    t.SalonID().String(),
		CustomerID: t.CustomerID().String(),
		CreatedBy:  t.IssuerID().String(),
		Token:      t.Token().String(),
		ExpiresAt:  t.ExpiresAt(),
		UsedAt:     t.UsedAt(),
		CreatedAt:  t.CreatedAt(),
	}
}

func (m *VisitGORM) toDomain() (*checkin.Visit, error) {
	visitID, err := checkin.VisitIDFromString(m.ID)
	if err != nil {
		return nil, err
	}
	salonID, err := customer.SalonIDFromString(m.SalonID)
	if err != nil {
		return nil, err
	}
	customerID, err := customer.CustomerIDFromString(m.CustomerID)
	if err != nil {
		return nil, err
	}
	issuerID, err := customer.StaffIDFromString(m.CreatedBy)
	if err != nil {
		return nil, err
	}

	var services checkin.ServiceList
	if m.Services != nil {
		services, err = checkin.ServiceListFromJSON(*m.Services)
		if err != nil {
			return nil, checkin.ErrRepositoryError.WithContext(
				"visit_id", m.ID,
				"reason", "invalid services JSON",
			)
		}
	}

	return checkin.ReconstructVisit(visitID, salonID, customerID, issuerID, m.VisitedAt, services), nil
}

func visitToGORM(v *checkin.Visit) (*VisitGORM, error) {
	model := &VisitGORM{
		ID:         v.VisitID().String(),
		SalonID:    v.SalonID().String(),
		CustomerID: v.CustomerID().String(),
		CreatedBy:  v.IssuerID().String(),
		VisitedAt:  v.VisitedAt(),
	}

	encoded, err := v.Services().JSON()
	if err != nil {
		return nil, err
	}
	if encoded != nil {
		services := datatypes.JSON(encoded)
		model.Services = &services
	}
	return model, nil
}

func (m *ReferralRewardGORM) toDomain() (*checkin.ReferralReward, error) {
	rewardID, err := checkin.ReferralRewardIDFromString(m.ID)
	if err != nil {
		return nil, err
	}
	salonID, err := customer.SalonIDFromString(m.SalonID)
	if err != nil {
		return nil, err
	}
	referrerID, err := customer.CustomerIDFromString(m.ReferrerID)
	if err != nil {
		return nil, err
	}
	referredID, err := customer.CustomerIDFromString(m.ReferredID)
	if err != nil {
		return nil, err
	}
	return checkin.ReconstructReferralReward(rewardID, salonID, referrerID, referredID, m.CreatedAt), nil
}

func referralRewardToGORM(r *checkin.ReferralReward) *ReferralRewardGORM {
	return &ReferralRewardGORM{
		ID:         r.RewardID().String(),
		SalonID:    r.SalonID().String(),
		ReferrerID: r.ReferrerID().String(),
		ReferredID: r.ReferredID().String(),
		CreatedAt:  r.CreatedAt(),
	}
}
