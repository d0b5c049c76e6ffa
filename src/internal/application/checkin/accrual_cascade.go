package checkin

import (
	"context"
	"errors"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"github.com/jackyeh168/salon_crm/src/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// ===========================
// Accrual Cascade
// ===========================

// AccrualOutcome 一次帳務連鎖的執行摘要
type AccrualOutcome struct {
	TotalVisits      int
	Level            loyalty.Level
	LevelChanged     bool
	ReferralRewarded bool
	FailedSteps      []string
}

// AccrualCascade 來店後的等級與推薦帳務
//
// 在來店紀錄提交之後執行。每個子步驟各自提交，
// 失敗只記錄日誌與指標，不回滾來店紀錄，也不影響兌換結果。
// 等級永遠由來店筆數重新計算，所以重跑不會累加錯誤。
type AccrualCascade struct {
	visitRepo    checkin.VisitRepository
	customerRepo customer.CustomerRepository
	salonRepo    customer.SalonRepository
	rewardRepo   checkin.ReferralRewardRepository
	publisher    shared.EventPublisher
	metrics      Metrics
	log          *zap.Logger
}

// NewAccrualCascade 創建帳務連鎖
func NewAccrualCascade(
	visitRepo checkin.VisitRepository,
	customerRepo customer.CustomerRepository,
	salonRepo customer.SalonRepository,
	rewardRepo checkin.ReferralRewardRepository,
	publisher shared.EventPublisher,
	metrics Metrics,
	log *zap.Logger,
) *AccrualCascade {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AccrualCascade{
		visitRepo:    visitRepo,
		customerRepo: customerRepo,
		salonRepo:    salonRepo,
		rewardRepo:   rewardRepo,
		publisher:    publisher,
		metrics:      metrics,
		log:          log.Named("accrual_cascade"),
	}
}

// Run 對剛來店的顧客執行等級重算與推薦獎勵
//
// visitor 是兌換流程已載入的顧客聚合（已套用 RecordVisit）。
func (c *AccrualCascade) Run(ctx context.Context, visitor *customer.Customer, at time.Time) AccrualOutcome {
	log := logging.WithContext(ctx, c.log).With(
		zap.String("customer_id", visitor.CustomerID().String()),
		zap.String("salon_id", visitor.SalonID().String()),
	)
	outcome := AccrualOutcome{Level: visitor.LoyaltyLevel()}
	tc := shared.AutoCommit(ctx)

	fail := func(step string, err error) {
		log.Warn("accrual step failed", zap.String("step", step), zap.Error(err))
		c.metrics.CascadeFailure(step)
		outcome.FailedSteps = append(outcome.FailedSteps, step)
	}

	// 1. 重新計算來店總次數
	total, err := c.visitRepo.CountByCustomer(tc, visitor.CustomerID())
	if err != nil {
		fail(StepCountVisits, err)
		return outcome
	}
	outcome.TotalVisits = total

	// 2. 等級門檻（沙龍未設定時使用預設值）
	thresholds := c.loadThresholds(tc, visitor.SalonID(), fail)

	// 3. 等級重算
	newLevel := thresholds.ResolveLevel(total)
	if visitor.ApplyLoyaltyLevel(newLevel, total, at) {
		events := visitor.PullEvents()
		if err := c.customerRepo.UpdateLoyaltyLevel(tc, visitor.CustomerID(), newLevel, at); err != nil {
			fail(StepUpdateLoyalty, err)
		} else {
			outcome.Level = newLevel
			outcome.LevelChanged = true
			c.metrics.LoyaltyLevelChanged(newLevel.String())
			c.publish(events, fail)
			log.Info("loyalty level changed",
				zap.String("level", newLevel.String()),
				zap.Int("total_visits", total),
			)
		}
	}

	// 4. 推薦獎勵：僅在第一次來店時
	if total == 1 && visitor.IsReferred() {
		outcome.ReferralRewarded = c.rewardReferral(tc, visitor, at, fail, log)
	}

	return outcome
}

func (c *AccrualCascade) loadThresholds(tc shared.TransactionContext, salonID customer.SalonID, fail func(string, error)) loyalty.Thresholds {
	salon, err := c.salonRepo.FindByID(tc, salonID)
	if err != nil {
		if !errors.Is(err, customer.ErrSalonNotFound) {
			fail(StepLoadSalon, err)
		}
		return loyalty.DefaultThresholds()
	}
	return salon.Thresholds()
}

// rewardReferral 推薦者 referral_count + 1 並授予雙方推薦折扣，再寫入一筆獎勵紀錄
func (c *AccrualCascade) rewardReferral(
	tc shared.TransactionContext,
	referred *customer.Customer,
	at time.Time,
	fail func(string, error),
	log *zap.Logger,
) bool {
	referrerID := referred.ReferredBy()
	log = log.With(zap.String("referrer_id", referrerID.String()))

	referrer, err := c.customerRepo.FindByIDInSalon(tc, referred.SalonID(), referrerID)
	if err != nil {
		fail(StepLoadReferrer, err)
		referrer = nil
	} else {
		count, err := c.customerRepo.IncrementReferralCount(tc, referrerID, at)
		if err != nil {
			fail(StepUpdateReferrer, err)
		} else {
			referrer.RecordSuccessfulReferral(referred.CustomerID(), count, at)
			c.publish(referrer.PullEvents(), fail)
		}
	}

	referred.GrantReferralDiscount(at)
	if err := c.customerRepo.GrantReferralDiscount(tc, referred.CustomerID(), at); err != nil {
		fail(StepUpdateReferred, err)
	}

	// 推薦者不存在時沒有可連結的獎勵對象
	if referrer == nil {
		return false
	}

	reward := checkin.NewReferralReward(referred.SalonID(), referrerID, referred.CustomerID(), at)
	if err := c.rewardRepo.Save(tc, reward); err != nil {
		fail(StepSaveReferralReward, err)
		return false
	}

	c.metrics.ReferralRewarded()
	log.Info("referral rewarded", zap.String("reward_id", reward.RewardID().String()))
	return true
}

func (c *AccrualCascade) publish(events []shared.DomainEvent, fail func(string, error)) {
	if c.publisher == nil || len(events) == 0 {
		return
	}
	if err := c.publisher.PublishBatch(events); err != nil {
		fail(StepPublishEvents, err)
	}
}
