package checkin

import (
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
)

// DefaultTokenTTL 報到碼有效期（簽發時間 + 60 秒）
const DefaultTokenTTL = 60 * time.Second

// TokenState 報到碼在顯示端的狀態
type TokenState string

const (
	TokenStateWaiting   TokenState = "waiting"
	TokenStateExpired   TokenState = "expired"
	TokenStateConfirmed TokenState = "confirmed"
)

// IsTerminal expired 與 confirmed 為終態，輪詢到此停止
func (s TokenState) IsTerminal() bool {
	return s == TokenStateExpired || s == TokenStateConfirmed
}

// ===========================
// VisitToken 聚合根
// ===========================

// VisitToken 一次性報到碼
//
// 生命週期：ISSUED →（過期）EXPIRED，或 ISSUED →（兌換）REDEEMED。
// 可兌換條件：usedAt == nil 且 now <= expiresAt（毫秒精度）。
// usedAt 只寫入一次；紀錄永不刪除，作為稽核軌跡。
type VisitToken struct {
	tokenID    VisitTokenID
	salonID    customer.SalonID
	customerID customer.CustomerID
	issuerID   customer.StaffID
	token      TokenValue
	expiresAt  time.Time
	usedAt     *time.Time
	createdAt  time.Time
}

// NewVisitToken 簽發新的報到碼
//
// ttl <= 0 時使用 DefaultTokenTTL。
func NewVisitToken(
	salonID customer.SalonID,
	customerID customer.CustomerID,
	issuerID customer.StaffID,
	now time.Time,
	ttl time.Duration,
) (*VisitToken, error) {
	if salonID.IsEmpty() {
		return nil, customer.ErrInvalidSalonID.WithContext("reason", "salonID cannot be empty")
	}
	if customerID.IsEmpty() {
		return nil, customer.ErrInvalidCustomerID.WithContext("reason", "customerID cannot be empty")
	}
	if issuerID.IsEmpty() {
		return nil, customer.ErrInvalidStaffID.WithContext("reason", "issuerID cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &VisitToken{
		tokenID:    NewVisitTokenID(),
		salonID:    salonID,
		customerID: customerID,
		issuerID:   issuerID,
		token:      GenerateTokenValue(),
		expiresAt:  now.Add(ttl),
		createdAt:  now,
	}, nil
}

// ReconstructVisitToken 從持久化存儲重建
func ReconstructVisitToken(
	tokenID VisitTokenID,
	salonID customer.SalonID,
	customerID customer.CustomerID,
	issuerID customer.StaffID,
	token TokenValue,
	expiresAt time.Time,
	usedAt *time.Time,
	createdAt time.Time,
) (*VisitToken, error) {
	if tokenID.IsEmpty() {
		return nil, ErrInvalidTokenID.WithContext("reason", "invalid token ID in database")
	}
	if token.IsEmpty() {
		return nil, ErrInvalidToken.WithContext("reason", "empty token value in database")
	}

	return &VisitToken{
		tokenID:    tokenID,
		salonID:    salonID,
		customerID: customerID,
		issuerID:   issuerID,
		token:      token,
		expiresAt:  expiresAt,
		usedAt:     usedAt,
		createdAt:  createdAt,
	}, nil
}

func (v *VisitToken) TokenID() VisitTokenID           { return v.tokenID }
func (v *VisitToken) SalonID() customer.SalonID       { return v.salonID }
func (v *VisitToken) CustomerID() customer.CustomerID { return v.customerID }
func (v *VisitToken) IssuerID() customer.StaffID      { return v.issuerID }
func (v *VisitToken) Token() TokenValue               { return v.token }
func (v *VisitToken) ExpiresAt() time.Time            { return v.expiresAt }
func (v *VisitToken) UsedAt() *time.Time              { return v.usedAt }
func (v *VisitToken) CreatedAt() time.Time            { return v.createdAt }

// IsUsed 是否已兌換
func (v *VisitToken) IsUsed() bool {
	return v.usedAt != nil
}

// IsExpired 以 epoch 毫秒比較 now > expiresAt（剛好等於到期時間仍可兌換）
func (v *VisitToken) IsExpired(now time.Time) bool {
	return now.UnixMilli() > v.expiresAt.UnixMilli()
}

// CheckRedeemable 兌換前檢查
//
// 過期檢查先於已使用檢查：同時過期且已使用的報到碼回報 ErrTokenExpired。
func (v *VisitToken) CheckRedeemable(now time.Time) error {
	if v.IsExpired(now) {
		return ErrTokenExpired.WithContext(
			"token_id", v.tokenID.String(),
			"expires_at", v.expiresAt.Format(time.RFC3339Nano),
		)
	}
	if v.IsUsed() {
		return ErrTokenAlreadyUsed.WithContext(
			"token_id", v.tokenID.String(),
			"used_at", v.usedAt.Format(time.RFC3339Nano),
		)
	}
	return nil
}

// MarkUsed 記錄兌換時間（無條件覆寫）
func (v *VisitToken) MarkUsed(at time.Time) {
	usedAt := at
	v.usedAt = &usedAt
}

// State 顯示端狀態
//
// 已使用為 confirmed；未使用且 now >= expiresAt 為 expired；其餘為 waiting。
// 倒數到 0 即顯示過期，與兌換端「剛好到期仍有效」相差不到 1 毫秒。
func (v *VisitToken) State(now time.Time) TokenState {
	if v.IsUsed() {
		return TokenStateConfirmed
	}
	if now.UnixMilli() >= v.expiresAt.UnixMilli() {
		return TokenStateExpired
	}
	return TokenStateWaiting
}

// Remaining 距離到期的剩餘時間（不小於 0）
func (v *VisitToken) Remaining(now time.Time) time.Duration {
	remaining := v.expiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
