package checkin

import (
	"context"
	"errors"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"github.com/jackyeh168/salon_crm/src/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// ===========================
// RedeemVisitToken Use Case
// ===========================

// RedeemConfig 兌換設定
type RedeemConfig struct {
	// AtomicClaim 以條件式更新佔用報到碼，並與新增來店紀錄放在同一事務
	//
	// 關閉時為「先新增來店紀錄，再盡力寫入 used_at」，
	// 同一報到碼的併發兌換可能各自成功。
	AtomicClaim bool
}

// RedeemVisitTokenCommand 兌換報到碼的命令
type RedeemVisitTokenCommand struct {
	Token    string
	Services checkin.ServiceList
}

// RedeemVisitTokenResult 兌換結果
type RedeemVisitTokenResult struct {
	CustomerID   string
	CustomerName string
	VisitID      string
	VisitedAt    time.Time
	Accrual      AccrualOutcome
}

// RedeemVisitTokenUseCase 兌換報到碼
//
// 檢查順序固定：
// 1. 缺少報到碼 → MissingToken
// 2. 查詢報到碼與所屬顧客 → InvalidToken
// 3. 已過期 → TokenExpired（先於已使用檢查）
// 4. 已使用 → TokenAlreadyUsed
// 5. 顧客不存在 → CustomerNotFound
// 6. 新增來店紀錄 → VisitCreationFailed
// 7~9. 標記已使用、更新最近來店、帳務連鎖：失敗只記錄
// 10. 返回顧客 ID 與名稱
type RedeemVisitTokenUseCase struct {
	tokenRepo    checkin.VisitTokenRepository
	visitRepo    checkin.VisitRepository
	customerRepo customer.CustomerRepository
	txManager    shared.TransactionManager
	cascade      *AccrualCascade
	publisher    shared.EventPublisher
	clock        shared.Clock
	metrics      Metrics
	log          *zap.Logger
	cfg          RedeemConfig
}

// NewRedeemVisitTokenUseCase 創建 Use Case 實例
func NewRedeemVisitTokenUseCase(
	tokenRepo checkin.VisitTokenRepository,
	visitRepo checkin.VisitRepository,
	customerRepo customer.CustomerRepository,
	txManager shared.TransactionManager,
	cascade *AccrualCascade,
	publisher shared.EventPublisher,
	clock shared.Clock,
	metrics Metrics,
	log *zap.Logger,
	cfg RedeemConfig,
) *RedeemVisitTokenUseCase {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedeemVisitTokenUseCase{
		tokenRepo:    tokenRepo,
		visitRepo:    visitRepo,
		customerRepo: customerRepo,
		txManager:    txManager,
		cascade:      cascade,
		publisher:    publisher,
		clock:        clock,
		metrics:      metrics,
		log:          log.Named("redeem_visit_token"),
		cfg:          cfg,
	}
}

// Execute 執行兌換，並記錄結果指標
func (uc *RedeemVisitTokenUseCase) Execute(ctx context.Context, cmd RedeemVisitTokenCommand) (*RedeemVisitTokenResult, error) {
	result, err := uc.redeem(ctx, cmd)
	uc.metrics.RedemptionOutcome(outcomeOf(err))
	return result, err
}

func (uc *RedeemVisitTokenUseCase) redeem(ctx context.Context, cmd RedeemVisitTokenCommand) (*RedeemVisitTokenResult, error) {
	log := logging.WithContext(ctx, uc.log)

	// 1. 缺少報到碼
	value := checkin.TokenValueFrom(cmd.Token)
	if value.IsEmpty() {
		return nil, checkin.ErrMissingToken
	}

	// 2. 查詢報到碼與所屬顧客
	token, err := uc.tokenRepo.FindByValue(shared.AutoCommit(ctx), value)
	if err != nil {
		if !errors.Is(err, checkin.ErrTokenNotFound) {
			log.Warn("visit token lookup failed", zap.Error(err))
		}
		return nil, checkin.ErrInvalidToken
	}
	log = log.With(
		zap.String("token_id", token.TokenID().String()),
		zap.String("customer_id", token.CustomerID().String()),
	)

	owner, err := uc.customerRepo.FindByIDInSalon(shared.AutoCommit(ctx), token.SalonID(), token.CustomerID())
	if err != nil {
		if !errors.Is(err, customer.ErrCustomerNotFound) {
			log.Warn("token owner lookup failed", zap.Error(err))
			return nil, checkin.ErrInvalidToken
		}
		// 顧客不存在留到第 5 步回報
		owner = nil
	}

	// 3~4. 過期先於已使用
	now := uc.clock.Now()
	if err := token.CheckRedeemable(now); err != nil {
		return nil, err
	}

	// 5. 顧客不存在
	if owner == nil {
		return nil, checkin.ErrCustomerNotFound.WithContext("customer_id", token.CustomerID().String())
	}

	// 6~7. 新增來店紀錄並標記已使用
	visit := checkin.NewVisitFromToken(token, cmd.Services, now)
	if uc.cfg.AtomicClaim {
		err = uc.claimAndRecord(ctx, token, visit, now)
	} else {
		err = uc.recordThenMark(ctx, log, token, visit, now)
	}
	if err != nil {
		if errors.Is(err, checkin.ErrVisitCreationFailed) {
			log.Error("visit insert failed", zap.Error(err))
		}
		return nil, err
	}
	token.MarkUsed(now)

	// 來店紀錄已提交，後續寫入不隨請求取消而中斷
	settled := context.WithoutCancel(ctx)

	// 8. 最近來店時間
	owner.RecordVisit(now)
	if err := uc.customerRepo.UpdateLastVisit(shared.AutoCommit(settled), owner.CustomerID(), now); err != nil {
		log.Warn("last visit update failed", zap.Error(err))
		uc.metrics.CascadeFailure(StepUpdateLastVisit)
	}

	// 9. 帳務連鎖
	var accrual AccrualOutcome
	if uc.cascade != nil {
		accrual = uc.cascade.Run(settled, owner, now)
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishBatch(visit.PullEvents()); err != nil {
			log.Warn("visit event publish failed", zap.Error(err))
			uc.metrics.CascadeFailure(StepPublishEvents)
		}
	}

	log.Info("visit token redeemed",
		zap.String("visit_id", visit.VisitID().String()),
		zap.Int("total_visits", accrual.TotalVisits),
	)

	// 10. 成功
	return &RedeemVisitTokenResult{
		CustomerID:   owner.CustomerID().String(),
		CustomerName: owner.Name(),
		VisitID:      visit.VisitID().String(),
		VisitedAt:    visit.VisitedAt(),
		Accrual:      accrual,
	}, nil
}

// claimAndRecord 條件式佔用報到碼並新增來店紀錄（同一事務）
//
// 影響筆數為 0 代表已被其他請求兌換；新增失敗時佔用一併回滾，報到碼仍可再次兌換。
func (uc *RedeemVisitTokenUseCase) claimAndRecord(ctx context.Context, token *checkin.VisitToken, visit *checkin.Visit, now time.Time) error {
	return uc.txManager.InTransaction(ctx, func(tx shared.TransactionContext) error {
		claimed, err := uc.tokenRepo.ClaimUnused(tx, token.TokenID(), now)
		if err != nil {
			return checkin.ErrVisitCreationFailed.WithContext("details", err.Error())
		}
		if !claimed {
			return checkin.ErrTokenAlreadyUsed.WithContext("token_id", token.TokenID().String())
		}
		if err := uc.visitRepo.Save(tx, visit); err != nil {
			return checkin.ErrVisitCreationFailed.WithContext("details", err.Error())
		}
		return nil
	})
}

// recordThenMark 先新增來店紀錄，再盡力寫入 used_at
func (uc *RedeemVisitTokenUseCase) recordThenMark(ctx context.Context, log *zap.Logger, token *checkin.VisitToken, visit *checkin.Visit, now time.Time) error {
	if err := uc.visitRepo.Save(shared.AutoCommit(ctx), visit); err != nil {
		return checkin.ErrVisitCreationFailed.WithContext("details", err.Error())
	}
	if err := uc.tokenRepo.MarkUsed(shared.AutoCommit(context.WithoutCancel(ctx)), token.TokenID(), now); err != nil {
		log.Warn("mark token used failed", zap.Error(err))
		uc.metrics.CascadeFailure(StepMarkTokenUsed)
	}
	return nil
}
