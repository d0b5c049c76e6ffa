package customer

import (
	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/shopspring/decimal"
)

// DefaultDiscountPercent 沙龍未設定折扣百分比時使用
var DefaultDiscountPercent = decimal.NewFromInt(10)

// Salon 沙龍（租戶）設定
//
// 本系統只讀取沙龍設定：等級門檻與兩種折扣百分比。
type Salon struct {
	salonID                 SalonID
	name                    string
	thresholds              loyalty.Thresholds
	loyaltyDiscountPercent  decimal.Decimal
	referralDiscountPercent decimal.Decimal
}

// ReconstructSalon 從持久化存儲重建沙龍設定
//
// 門檻為 0 時套用系統預設；百分比為零值時套用 DefaultDiscountPercent。
func ReconstructSalon(
	salonID SalonID,
	name string,
	silver, gold, platinum, vip int,
	loyaltyDiscountPercent decimal.Decimal,
	referralDiscountPercent decimal.Decimal,
) (*Salon, error) {
	if salonID.IsEmpty() {
		return nil, ErrInvalidSalonID.WithContext("reason", "invalid salon ID in database")
	}

	thresholds, err := loyalty.NewThresholds(silver, gold, platinum, vip)
	if err != nil {
		return nil, err
	}

	loyaltyPct, err := normalizePercent(loyaltyDiscountPercent)
	if err != nil {
		return nil, err
	}
	referralPct, err := normalizePercent(referralDiscountPercent)
	if err != nil {
		return nil, err
	}

	return &Salon{
		salonID:                 salonID,
		name:                    name,
		thresholds:              thresholds,
		loyaltyDiscountPercent:  loyaltyPct,
		referralDiscountPercent: referralPct,
	}, nil
}

func normalizePercent(p decimal.Decimal) (decimal.Decimal, error) {
	if p.IsZero() {
		return DefaultDiscountPercent, nil
	}
	if p.IsNegative() || p.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, ErrInvalidPercent.WithContext("percent", p.String())
	}
	return p, nil
}

func (s *Salon) SalonID() SalonID               { return s.salonID }
func (s *Salon) Name() string                   { return s.name }
func (s *Salon) Thresholds() loyalty.Thresholds { return s.thresholds }
func (s *Salon) LoyaltyDiscountPercent() decimal.Decimal {
	return s.loyaltyDiscountPercent
}
func (s *Salon) ReferralDiscountPercent() decimal.Decimal {
	return s.referralDiscountPercent
}

// DiscountPercent 依折扣類型返回百分比
func (s *Salon) DiscountPercent(kind DiscountKind) decimal.Decimal {
	if kind == DiscountKindReferral {
		return s.referralDiscountPercent
	}
	return s.loyaltyDiscountPercent
}
