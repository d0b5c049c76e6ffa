package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Config 指標常數標籤
type Config struct {
	ServiceName string
	Environment string
}

// CheckinMetrics 報到流程的 Prometheus 指標
type CheckinMetrics struct {
	tokensIssued        prometheus.Counter
	redemptions         *prometheus.CounterVec
	cascadeFailures     *prometheus.CounterVec
	loyaltyLevelChanges *prometheus.CounterVec
	referralRewards     prometheus.Counter
	discountClaims      *prometheus.CounterVec
}

// NewCheckinMetrics 建立並註冊指標
//
// registerer 為 nil 時使用 prometheus.DefaultRegisterer。
func NewCheckinMetrics(registerer prometheus.Registerer, cfg Config) *CheckinMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "salon-crm"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &CheckinMetrics{
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "salon_checkin_tokens_issued_total",
			Help:        "Visit tokens issued.",
			ConstLabels: constLabels,
		}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "salon_checkin_redemptions_total",
			Help:        "Redemption attempts by outcome code.",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		cascadeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "salon_checkin_cascade_failures_total",
			Help:        "Best-effort bookkeeping failures after a visit was recorded.",
			ConstLabels: constLabels,
		}, []string{"step"}),
		loyaltyLevelChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "salon_loyalty_level_changes_total",
			Help:        "Loyalty level changes by new level.",
			ConstLabels: constLabels,
		}, []string{"level"}),
		referralRewards: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "salon_referral_rewards_total",
			Help:        "Referral rewards granted on a referred customer's first visit.",
			ConstLabels: constLabels,
		}),
		discountClaims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "salon_discount_claims_total",
			Help:        "Discount claims by kind.",
			ConstLabels: constLabels,
		}, []string{"kind"}),
	}

	registerer.MustRegister(
		m.tokensIssued,
		m.redemptions,
		m.cascadeFailures,
		m.loyaltyLevelChanges,
		m.referralRewards,
		m.discountClaims,
	)
	return m
}

// TokenIssued 簽發一組報到碼
func (m *CheckinMetrics) TokenIssued() {
	m.tokensIssued.Inc()
}

// RedemptionOutcome 記錄兌換結果（"SUCCESS" 或錯誤代碼）
func (m *CheckinMetrics) RedemptionOutcome(outcome string) {
	m.redemptions.WithLabelValues(outcome).Inc()
}

// CascadeFailure 記錄後續帳務步驟失敗
func (m *CheckinMetrics) CascadeFailure(step string) {
	m.cascadeFailures.WithLabelValues(step).Inc()
}

// LoyaltyLevelChanged 記錄等級變動
func (m *CheckinMetrics) LoyaltyLevelChanged(level string) {
	m.loyaltyLevelChanges.WithLabelValues(level).Inc()
}

// ReferralRewarded 記錄推薦獎勵
func (m *CheckinMetrics) ReferralRewarded() {
	m.referralRewards.Inc()
}

// DiscountClaimed 記錄折扣兌換
func (m *CheckinMetrics) DiscountClaimed(kind string) {
	m.discountClaims.WithLabelValues(kind).Inc()
}
