package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
)

// ===========================
// GetVisitTokenStatus Query
// ===========================

// GetVisitTokenStatusQuery 查詢報到碼狀態（員工端輪詢）
type GetVisitTokenStatusQuery struct {
	SalonID string
	Token   string
}

// VisitTokenStatus 報到碼目前狀態
type VisitTokenStatus struct {
	TokenID   string
	State     checkin.TokenState
	ExpiresAt time.Time
	UsedAt    *time.Time
	Remaining time.Duration
}

// GetVisitTokenStatusUseCase 查詢報到碼狀態
//
// 只讀，不修改任何資料。其他沙龍的報到碼視為不存在。
type GetVisitTokenStatusUseCase struct {
	tokenRepo checkin.VisitTokenRepository
	clock     shared.Clock
}

// NewGetVisitTokenStatusUseCase 創建查詢實例
func NewGetVisitTokenStatusUseCase(tokenRepo checkin.VisitTokenRepository, clock shared.Clock) *GetVisitTokenStatusUseCase {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &GetVisitTokenStatusUseCase{tokenRepo: tokenRepo, clock: clock}
}

// Execute 執行查詢
func (uc *GetVisitTokenStatusUseCase) Execute(ctx context.Context, q GetVisitTokenStatusQuery) (*VisitTokenStatus, error) {
	salonID, err := customer.SalonIDFromString(q.SalonID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse salon ID: %w", err)
	}

	value := checkin.TokenValueFrom(q.Token)
	if value.IsEmpty() {
		return nil, checkin.ErrMissingToken
	}

	token, err := uc.tokenRepo.FindByValue(shared.AutoCommit(ctx), value)
	if err != nil {
		if errors.Is(err, checkin.ErrTokenNotFound) {
			return nil, checkin.ErrInvalidToken
		}
		return nil, checkin.ErrUnexpected.WithContext("details", err.Error())
	}
	if !token.SalonID().Equals(salonID) {
		return nil, checkin.ErrInvalidToken
	}

	now := uc.clock.Now()
	return &VisitTokenStatus{
		TokenID:   token.TokenID().String(),
		State:     token.State(now),
		ExpiresAt: token.ExpiresAt(),
		UsedAt:    token.UsedAt(),
		Remaining: token.Remaining(now),
	}, nil
}

// ForSalon 綁定沙龍，供 ConfirmationWatcher 輪詢
func (uc *GetVisitTokenStatusUseCase) ForSalon(salonID string) StatusFetcher {
	return StatusFetcherFunc(func(ctx context.Context, token string) (*VisitTokenStatus, error) {
		return uc.Execute(ctx, GetVisitTokenStatusQuery{SalonID: salonID, Token: token})
	})
}
