package customer

import (
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// Customer 聚合根
// ===========================

// Customer 顧客聚合根（只包含報到與忠誠度相關欄位）
//
// 不變條件：
// - loyaltyLevel 是來店總次數與沙龍門檻的純函數，每次報到重新計算，不做增量調整
// - hasLoyaltyDiscount 在等級變動時設為 true，只由折扣兌換清除
// - referralCount >= 0
type Customer struct {
	customerID CustomerID
	salonID    SalonID
	name       string

	lastVisitAt *time.Time

	loyaltyLevel          loyalty.Level
	hasLoyaltyDiscount    bool
	loyaltyDiscountUsedAt *time.Time

	referredBy          CustomerID // 零值表示非推薦加入
	referralCount       int
	hasReferralDiscount bool

	createdAt time.Time
	updatedAt time.Time

	events []shared.DomainEvent
}

// NewCustomer 建立新顧客
//
// referredBy 可為零值（非推薦加入），推薦人是否存在由呼叫端確認。新顧客等級為 BRONZE。
func NewCustomer(salonID SalonID, name string, referredBy CustomerID, now time.Time) (*Customer, error) {
	if salonID.IsEmpty() {
		return nil, ErrInvalidSalonID.WithContext("reason", "salonID cannot be empty")
	}
	if name == "" {
		return nil, ErrInvalidDisplayName
	}

	return &Customer{
		customerID:   NewCustomerID(),
		salonID:      salonID,
		name:         name,
		loyaltyLevel: loyalty.LevelBronze,
		referredBy:   referredBy,
		createdAt:    now,
		updatedAt:    now,
		events:       make([]shared.DomainEvent, 0),
	}, nil
}

// ReconstructCustomer 從持久化存儲重建聚合根（不發布事件）
func ReconstructCustomer(
	customerID CustomerID,
	salonID SalonID,
	name string,
	lastVisitAt *time.Time,
	loyaltyLevel loyalty.Level,
	hasLoyaltyDiscount bool,
	loyaltyDiscountUsedAt *time.Time,
	referredBy CustomerID,
	referralCount int,
	hasReferralDiscount bool,
	createdAt time.Time,
	updatedAt time.Time,
) (*Customer, error) {
	if customerID.IsEmpty() {
		return nil, ErrInvalidCustomerID.WithContext("reason", "invalid customer ID in database")
	}
	if salonID.IsEmpty() {
		return nil, ErrInvalidSalonID.WithContext("reason", "invalid salon ID in database")
	}
	if referralCount < 0 {
		referralCount = 0
	}

	return &Customer{
		customerID:            customerID,
		salonID:               salonID,
		name:                  name,
		lastVisitAt:           lastVisitAt,
		loyaltyLevel:          loyaltyLevel,
		hasLoyaltyDiscount:    hasLoyaltyDiscount,
		loyaltyDiscountUsedAt: loyaltyDiscountUsedAt,
		referredBy:            referredBy,
		referralCount:         referralCount,
		hasReferralDiscount:   hasReferralDiscount,
		createdAt:             createdAt,
		updatedAt:             updatedAt,
		events:                make([]shared.DomainEvent, 0),
	}, nil
}

// ===========================
// 查詢方法
// ===========================

func (c *Customer) CustomerID() CustomerID            { return c.customerID }
func (c *Customer) SalonID() SalonID                  { return c.salonID }
func (c *Customer) Name() string                      { return c.name }
func (c *Customer) LastVisitAt() *time.Time           { return c.lastVisitAt }
func (c *Customer) LoyaltyLevel() loyalty.Level       { return c.loyaltyLevel }
func (c *Customer) HasLoyaltyDiscount() bool          { return c.hasLoyaltyDiscount }
func (c *Customer) LoyaltyDiscountUsedAt() *time.Time { return c.loyaltyDiscountUsedAt }
func (c *Customer) ReferredBy() CustomerID            { return c.referredBy }
func (c *Customer) ReferralCount() int                { return c.referralCount }
func (c *Customer) HasReferralDiscount() bool         { return c.hasReferralDiscount }
func (c *Customer) CreatedAt() time.Time              { return c.createdAt }
func (c *Customer) UpdatedAt() time.Time              { return c.updatedAt }

// IsReferred 是否由其他顧客推薦加入
func (c *Customer) IsReferred() bool {
	return !c.referredBy.IsEmpty()
}

// ===========================
// 命令方法
// ===========================

// RecordVisit 記錄最近一次來店時間
func (c *Customer) RecordVisit(at time.Time) {
	visitedAt := at
	c.lastVisitAt = &visitedAt
	c.updatedAt = at
}

// ApplyLoyaltyLevel 套用重新計算的等級
//
// 等級不同時更新並授予一次性升級折扣（無條件設為 true），返回 true；
// 相同時不做任何修改。
func (c *Customer) ApplyLoyaltyLevel(newLevel loyalty.Level, totalVisits int, at time.Time) bool {
	if newLevel == c.loyaltyLevel {
		return false
	}

	previous := c.loyaltyLevel
	c.loyaltyLevel = newLevel
	c.hasLoyaltyDiscount = true
	c.updatedAt = at

	c.addEvent(NewLoyaltyLevelChangedEvent(c.customerID, previous, newLevel, totalVisits, at))
	return true
}

// GrantReferralDiscount 被推薦者首次來店時獲得推薦折扣
func (c *Customer) GrantReferralDiscount(at time.Time) {
	c.hasReferralDiscount = true
	c.updatedAt = at
}

// RecordSuccessfulReferral 推薦者的被推薦人完成首次來店
//
// referralCount 是資料庫遞增後的推薦次數；同時授予推薦折扣。
func (c *Customer) RecordSuccessfulReferral(referredID CustomerID, referralCount int, at time.Time) {
	if referralCount < 0 {
		referralCount = 0
	}
	c.referralCount = referralCount
	c.hasReferralDiscount = true
	c.updatedAt = at

	c.addEvent(NewReferralRewardedEvent(c.customerID, referredID, c.referralCount, at))
}

// ClaimLoyaltyDiscount 兌換升級折扣
func (c *Customer) ClaimLoyaltyDiscount(at time.Time) error {
	if !c.hasLoyaltyDiscount {
		return ErrDiscountNotAvailable.WithContext(
			"customer_id", c.customerID.String(),
			"kind", string(DiscountKindLoyalty),
		)
	}
	usedAt := at
	c.hasLoyaltyDiscount = false
	c.loyaltyDiscountUsedAt = &usedAt
	c.updatedAt = at
	return nil
}

// ClaimReferralDiscount 兌換推薦折扣
func (c *Customer) ClaimReferralDiscount(at time.Time) error {
	if !c.hasReferralDiscount {
		return ErrDiscountNotAvailable.WithContext(
			"customer_id", c.customerID.String(),
			"kind", string(DiscountKindReferral),
		)
	}
	c.hasReferralDiscount = false
	c.updatedAt = at
	return nil
}

// ===========================
// 事件管理
// ===========================

func (c *Customer) addEvent(event shared.DomainEvent) {
	c.events = append(c.events, event)
}

// PullEvents 獲取所有待發布事件並清空列表
func (c *Customer) PullEvents() []shared.DomainEvent {
	events := c.events
	c.events = make([]shared.DomainEvent, 0)
	return events
}
