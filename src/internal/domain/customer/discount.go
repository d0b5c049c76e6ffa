package customer

import (
	"github.com/shopspring/decimal"
)

// DiscountKind 折扣類型
type DiscountKind string

const (
	// DiscountKindLoyalty 升級折扣（等級變動時授予）
	DiscountKindLoyalty DiscountKind = "loyalty"
	// DiscountKindReferral 推薦折扣（推薦成功時雙方授予）
	DiscountKindReferral DiscountKind = "referral"
)

// ParseDiscountKind 解析折扣類型
func ParseDiscountKind(s string) (DiscountKind, error) {
	switch DiscountKind(s) {
	case DiscountKindLoyalty, DiscountKindReferral:
		return DiscountKind(s), nil
	default:
		return "", ErrInvalidDiscountKind.WithContext("kind", s)
	}
}

// DiscountCalculationService 折扣計算領域服務（無狀態）
type DiscountCalculationService struct{}

// NewDiscountCalculationService 創建折扣計算服務
func NewDiscountCalculationService() *DiscountCalculationService {
	return &DiscountCalculationService{}
}

// Calculate 計算折扣金額
//
// 折扣 = 小計 × 百分比 / 100，四捨五入到小數點後 2 位，且不超過小計。
func (s *DiscountCalculationService) Calculate(subtotal, percent decimal.Decimal) (decimal.Decimal, error) {
	if subtotal.IsNegative() {
		return decimal.Zero, ErrInvalidAmount.WithContext("subtotal", subtotal.String())
	}
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, ErrInvalidPercent.WithContext("percent", percent.String())
	}

	discount := subtotal.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
	if discount.GreaterThan(subtotal) {
		return subtotal, nil
	}
	return discount, nil
}
