package discount

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"github.com/jackyeh168/salon_crm/src/internal/infrastructure/logging"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ===========================
// ClaimDiscount Use Case
// ===========================

// Metrics 折扣指標
type Metrics interface {
	DiscountClaimed(kind string)
}

// NopMetrics 不記錄任何指標
type NopMetrics struct{}

func (NopMetrics) DiscountClaimed(string) {}

// ClaimDiscountCommand 兌換折扣的命令
//
// 輸入：
// - SalonID: 員工所在沙龍（租戶範圍）
// - CustomerID: 顧客 ID
// - Kind: "loyalty" 或 "referral"
// - Subtotal: 本次消費小計（不可為負）
type ClaimDiscountCommand struct {
	SalonID    string
	CustomerID string
	Kind       string
	Subtotal   decimal.Decimal
}

// ClaimDiscountResult 兌換結果
type ClaimDiscountResult struct {
	CustomerID     string
	Kind           customer.DiscountKind
	Percent        decimal.Decimal
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	ClaimedAt      time.Time
}

// ClaimDiscountUseCase 消耗顧客的一次性折扣旗標並計算折扣金額
//
// 升級折扣清除 has_loyalty_discount 並寫入 loyalty_discount_used_at；
// 推薦折扣清除 has_referral_discount。旗標未設定時返回 ErrDiscountNotAvailable。
type ClaimDiscountUseCase struct {
	customerRepo customer.CustomerRepository
	salonRepo    customer.SalonRepository
	txManager    shared.TransactionManager
	calculator   *customer.DiscountCalculationService
	clock        shared.Clock
	metrics      Metrics
	log          *zap.Logger
}

// NewClaimDiscountUseCase 創建 Use Case 實例
func NewClaimDiscountUseCase(
	customerRepo customer.CustomerRepository,
	salonRepo customer.SalonRepository,
	txManager shared.TransactionManager,
	clock shared.Clock,
	metrics Metrics,
	log *zap.Logger,
) *ClaimDiscountUseCase {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ClaimDiscountUseCase{
		customerRepo: customerRepo,
		salonRepo:    salonRepo,
		txManager:    txManager,
		calculator:   customer.NewDiscountCalculationService(),
		clock:        clock,
		metrics:      metrics,
		log:          log.Named("claim_discount"),
	}
}

// Execute 執行兌換
//
// 讀取、扣除旗標與寫回在同一事務內完成；同一折扣只能兌換一次。
func (uc *ClaimDiscountUseCase) Execute(ctx context.Context, cmd ClaimDiscountCommand) (*ClaimDiscountResult, error) {
	salonID, err := customer.SalonIDFromString(cmd.SalonID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse salon ID: %w", err)
	}
	customerID, err := customer.CustomerIDFromString(cmd.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse customer ID: %w", err)
	}
	kind, err := customer.ParseDiscountKind(cmd.Kind)
	if err != nil {
		return nil, err
	}
	if cmd.Subtotal.IsNegative() {
		return nil, customer.ErrInvalidAmount.WithContext("subtotal", cmd.Subtotal.String())
	}

	now := uc.clock.Now()
	var result *ClaimDiscountResult
	err = uc.txManager.InTransaction(ctx, func(tx shared.TransactionContext) error {
		c, err := uc.customerRepo.FindByIDInSalon(tx, salonID, customerID)
		if err != nil {
			return err
		}

		percent, err := uc.percentFor(tx, salonID, kind)
		if err != nil {
			return err
		}
		amount, err := uc.calculator.Calculate(cmd.Subtotal, percent)
		if err != nil {
			return err
		}

		if kind == customer.DiscountKindLoyalty {
			err = c.ClaimLoyaltyDiscount(now)
		} else {
			err = c.ClaimReferralDiscount(now)
		}
		if err != nil {
			return err
		}

		if err := uc.customerRepo.Update(tx, c); err != nil {
			return fmt.Errorf("failed to update customer: %w", err)
		}

		result = &ClaimDiscountResult{
			CustomerID:     customerID.String(),
			Kind:           kind,
			Percent:        percent,
			Subtotal:       cmd.Subtotal,
			DiscountAmount: amount,
			Total:          cmd.Subtotal.Sub(amount),
			ClaimedAt:      now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.DiscountClaimed(string(kind))
	logging.WithContext(ctx, uc.log).Info("discount claimed",
		zap.String("customer_id", customerID.String()),
		zap.String("kind", string(kind)),
		zap.String("amount", result.DiscountAmount.StringFixed(2)),
	)
	return result, nil
}

// percentFor 沙龍未建立設定時使用預設百分比
func (uc *ClaimDiscountUseCase) percentFor(tx shared.TransactionContext, salonID customer.SalonID, kind customer.DiscountKind) (decimal.Decimal, error) {
	salon, err := uc.salonRepo.FindByID(tx, salonID)
	if err != nil {
		if errors.Is(err, customer.ErrSalonNotFound) {
			return customer.DefaultDiscountPercent, nil
		}
		return decimal.Zero, fmt.Errorf("failed to load salon: %w", err)
	}
	return salon.DiscountPercent(kind), nil
}
