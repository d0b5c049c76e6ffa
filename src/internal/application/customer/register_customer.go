package customer

import (
	"context"
	"errors"

	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"github.com/jackyeh168/salon_crm/src/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// ===========================
// RegisterCustomer Use Case
// ===========================

// RegisterCustomerCommand 員工在櫃台建立顧客
//
// ReferredBy 可為空；有值時必須是同一沙龍的顧客。
type RegisterCustomerCommand struct {
	SalonID    string
	Name       string
	ReferredBy string
}

// RegisterCustomerResult 建立結果
type RegisterCustomerResult struct {
	CustomerID   string
	Name         string
	LoyaltyLevel string
	ReferredBy   string
}

// RegisterCustomerUseCase 建立顧客
//
// 推薦關係只能在建立時設定，之後的推薦獎勵在顧客第一次報到時發放。
type RegisterCustomerUseCase struct {
	customerRepo customer.CustomerRepository
	txManager    shared.TransactionManager
	clock        shared.Clock
	log          *zap.Logger
}

// NewRegisterCustomerUseCase 創建 Use Case 實例
func NewRegisterCustomerUseCase(
	customerRepo customer.CustomerRepository,
	txManager shared.TransactionManager,
	clock shared.Clock,
	log *zap.Logger,
) *RegisterCustomerUseCase {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RegisterCustomerUseCase{
		customerRepo: customerRepo,
		txManager:    txManager,
		clock:        clock,
		log:          log,
	}
}

// Execute 執行建立流程
//
// 錯誤：
// - ErrInvalidSalonID / ErrInvalidCustomerID: 輸入格式錯誤
// - ErrInvalidDisplayName: 名稱為空
// - ErrReferrerNotFound: 推薦人不存在或屬於其他沙龍
func (uc *RegisterCustomerUseCase) Execute(ctx context.Context, cmd RegisterCustomerCommand) (*RegisterCustomerResult, error) {
	log := logging.WithContext(ctx, uc.log)

	salonID, err := customer.SalonIDFromString(cmd.SalonID)
	if err != nil {
		return nil, err
	}

	var referredBy customer.CustomerID
	if cmd.ReferredBy != "" {
		referredBy, err = customer.CustomerIDFromString(cmd.ReferredBy)
		if err != nil {
			return nil, err
		}
	}

	var created *customer.Customer
	err = uc.txManager.InTransaction(ctx, func(tx shared.TransactionContext) error {
		if !referredBy.IsEmpty() {
			if _, err := uc.customerRepo.FindByIDInSalon(tx, salonID, referredBy); err != nil {
				if errors.Is(err, customer.ErrCustomerNotFound) {
					return customer.ErrReferrerNotFound.WithContext(
						"salon_id", salonID.String(),
						"referrer_id", referredBy.String(),
					)
				}
				return err
			}
		}

		c, err := customer.NewCustomer(salonID, cmd.Name, referredBy, uc.clock.Now())
		if err != nil {
			return err
		}
		if err := uc.customerRepo.Save(tx, c); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("customer registered",
		zap.String("salon_id", salonID.String()),
		zap.String("customer_id", created.CustomerID().String()),
		zap.Bool("referred", created.IsReferred()),
	)

	result := &RegisterCustomerResult{
		CustomerID:   created.CustomerID().String(),
		Name:         created.Name(),
		LoyaltyLevel: created.LoyaltyLevel().String(),
	}
	if created.IsReferred() {
		result.ReferredBy = created.ReferredBy().String()
	}
	return result, nil
}
