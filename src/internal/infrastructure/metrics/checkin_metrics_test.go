package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckinMetrics_Counters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewCheckinMetrics(registry, Config{ServiceName: "salon-crm", Environment: "test"})

	m.TokenIssued()
	m.TokenIssued()
	m.RedemptionOutcome("SUCCESS")
	m.RedemptionOutcome("TOKEN_EXPIRED")
	m.RedemptionOutcome("TOKEN_EXPIRED")
	m.CascadeFailure("mark_token_used")
	m.LoyaltyLevelChanged("SILVER")
	m.ReferralRewarded()
	m.DiscountClaimed("loyalty")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.tokensIssued))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.redemptions.WithLabelValues("SUCCESS")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.redemptions.WithLabelValues("TOKEN_EXPIRED")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cascadeFailures.WithLabelValues("mark_token_used")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.loyaltyLevelChanges.WithLabelValues("SILVER")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.referralRewards))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.discountClaims.WithLabelValues("loyalty")))

	count, err := testutil.GatherAndCount(registry)
	require.NoError(t, err)
	assert.Equal(t, 7, count, "每個 label 組合各一條時間序列")
}
