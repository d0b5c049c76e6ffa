package checkin

import (
	"errors"

	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
)

// Metrics 報到流程指標（由 infrastructure/metrics 實作）
type Metrics interface {
	TokenIssued()
	RedemptionOutcome(outcome string)
	CascadeFailure(step string)
	LoyaltyLevelChanged(level string)
	ReferralRewarded()
}

// NopMetrics 不記錄任何指標
type NopMetrics struct{}

func (NopMetrics) TokenIssued()               {}
func (NopMetrics) RedemptionOutcome(string)   {}
func (NopMetrics) CascadeFailure(string)      {}
func (NopMetrics) LoyaltyLevelChanged(string) {}
func (NopMetrics) ReferralRewarded()          {}

// OutcomeSuccess 兌換成功的結果標籤
const OutcomeSuccess = "SUCCESS"

// 後續帳務步驟名稱（日誌與指標共用）
const (
	StepMarkTokenUsed      = "mark_token_used"
	StepUpdateLastVisit    = "update_last_visit"
	StepCountVisits        = "count_visits"
	StepLoadSalon          = "load_salon"
	StepUpdateLoyalty      = "update_loyalty_level"
	StepLoadReferrer       = "load_referrer"
	StepUpdateReferrer     = "update_referrer"
	StepUpdateReferred     = "update_referred"
	StepSaveReferralReward = "save_referral_reward"
	StepPublishEvents      = "publish_events"
)

// ErrorCodeOf 取出報到流程錯誤代碼
//
// 非報到領域錯誤一律視為 UNEXPECTED_ERROR。
func ErrorCodeOf(err error) checkin.ErrorCode {
	if err == nil {
		return ""
	}
	var domainErr *checkin.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return checkin.ErrCodeUnexpected
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	return string(ErrorCodeOf(err))
}
