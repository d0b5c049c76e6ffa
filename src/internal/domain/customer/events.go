package customer

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
)

// ===========================
// LoyaltyLevelChanged 領域事件
// ===========================

// LoyaltyLevelChangedEvent 顧客等級變動事件
type LoyaltyLevelChangedEvent struct {
	eventID     string
	customerID  CustomerID
	previous    loyalty.Level
	current     loyalty.Level
	totalVisits int
	occurredAt  time.Time
}

// NewLoyaltyLevelChangedEvent 創建等級變動事件
func NewLoyaltyLevelChangedEvent(
	customerID CustomerID,
	previous loyalty.Level,
	current loyalty.Level,
	totalVisits int,
	at time.Time,
) *LoyaltyLevelChangedEvent {
	return &LoyaltyLevelChangedEvent{
		eventID:     uuid.New().String(),
		customerID:  customerID,
		previous:    previous,
		current:     current,
		totalVisits: totalVisits,
		occurredAt:  at,
	}
}

func (e *LoyaltyLevelChangedEvent) EventID() string       { return e.eventID }
func (e *LoyaltyLevelChangedEvent) EventType() string     { return "customer.loyalty_level_changed" }
func (e *LoyaltyLevelChangedEvent) OccurredAt() time.Time { return e.occurredAt }
func (e *LoyaltyLevelChangedEvent) AggregateID() string   { return e.customerID.String() }

// Previous 變動前等級
func (e *LoyaltyLevelChangedEvent) Previous() loyalty.Level { return e.previous }

// Current 變動後等級
func (e *LoyaltyLevelChangedEvent) Current() loyalty.Level { return e.current }

// TotalVisits 觸發變動時的來店總次數
func (e *LoyaltyLevelChangedEvent) TotalVisits() int { return e.totalVisits }

// ===========================
// ReferralRewarded 領域事件
// ===========================

// ReferralRewardedEvent 推薦成功事件（聚合根為推薦者）
type ReferralRewardedEvent struct {
	eventID       string
	referrerID    CustomerID
	referredID    CustomerID
	referralCount int
	occurredAt    time.Time
}

// NewReferralRewardedEvent 創建推薦成功事件
func NewReferralRewardedEvent(referrerID, referredID CustomerID, referralCount int, at time.Time) *ReferralRewardedEvent {
	return &ReferralRewardedEvent{
		eventID:       uuid.New().String(),
		referrerID:    referrerID,
		referredID:    referredID,
		referralCount: referralCount,
		occurredAt:    at,
	}
}

func (e *ReferralRewardedEvent) EventID() string       { return e.eventID }
func (e *ReferralRewardedEvent) EventType() string     { return "customer.referral_rewarded" }
func (e *ReferralRewardedEvent) OccurredAt() time.Time { return e.occurredAt }
func (e *ReferralRewardedEvent) AggregateID() string   { return e.referrerID.String() }

// ReferredID 被推薦顧客
func (e *ReferralRewardedEvent) ReferredID() CustomerID { return e.referredID }

// ReferralCount 推薦者累積推薦數
func (e *ReferralRewardedEvent) ReferralCount() int { return e.referralCount }
