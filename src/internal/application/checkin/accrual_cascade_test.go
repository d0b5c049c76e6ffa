package checkin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type cascadeFixture struct {
	visitRepo    *MockVisitRepository
	customerRepo *MockCustomerRepository
	salonRepo    *MockSalonRepository
	rewardRepo   *MockReferralRewardRepository
	publisher    *MockEventPublisher
	metrics      *recordingMetrics
	cascade      *AccrualCascade
	salonID      customer.SalonID
}

func newCascadeFixture() *cascadeFixture {
	f := &cascadeFixture{
		visitRepo:    new(MockVisitRepository),
		customerRepo: new(MockCustomerRepository),
		salonRepo:    new(MockSalonRepository),
		rewardRepo:   new(MockReferralRewardRepository),
		publisher:    &MockEventPublisher{},
		metrics:      &recordingMetrics{},
		salonID:      customer.NewSalonID(),
	}
	f.cascade = NewAccrualCascade(f.visitRepo, f.customerRepo, f.salonRepo, f.rewardRepo, f.publisher, f.metrics, nil)
	return f
}

func (f *cascadeFixture) newCustomer(t *testing.T, name string, referredBy customer.CustomerID) *customer.Customer {
	t.Helper()
	c, err := customer.NewCustomer(f.salonID, name, referredBy, issueTime)
	require.NoError(t, err)
	return c
}

func TestAccrualCascade_LevelUnchanged_NoMutation(t *testing.T) {
	// Arrange
	f := newCascadeFixture()
	visitor := f.newCustomer(t, "Elif", customer.CustomerID{})
	f.visitRepo.On("CountByCustomer", mock.Anything, visitor.CustomerID()).Return(5, nil)
	f.salonRepo.On("FindByID", mock.Anything, f.salonID).Return(nil, customer.ErrSalonNotFound)

	// Act
	outcome := f.cascade.Run(context.Background(), visitor, issueTime)

	// Assert
	assert.Equal(t, 5, outcome.TotalVisits)
	assert.False(t, outcome.LevelChanged)
	assert.False(t, visitor.HasLoyaltyDiscount())
	f.customerRepo.AssertNotCalled(t, "UpdateLoyaltyLevel", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, outcome.FailedSteps)
}

func TestAccrualCascade_SalonThresholdsOverrideDefaults(t *testing.T) {
	// Arrange：沙龍設定 3 次即 SILVER
	f := newCascadeFixture()
	visitor := f.newCustomer(t, "Elif", customer.CustomerID{})
	salon, err := customer.ReconstructSalon(f.salonID, "Studio", 3, 6, 9, 12, decimal.Zero, decimal.Zero)
	require.NoError(t, err)

	f.visitRepo.On("CountByCustomer", mock.Anything, mock.Anything).Return(3, nil)
	f.salonRepo.On("FindByID", mock.Anything, f.salonID).Return(salon, nil)
	f.customerRepo.On("UpdateLoyaltyLevel", mock.Anything, visitor.CustomerID(), loyalty.LevelSilver, issueTime).Return(nil).Once()

	// Act
	outcome := f.cascade.Run(context.Background(), visitor, issueTime)

	// Assert
	assert.True(t, outcome.LevelChanged)
	assert.Equal(t, loyalty.LevelSilver, outcome.Level)
	assert.True(t, visitor.HasLoyaltyDiscount())
	f.customerRepo.AssertExpectations(t)
}

func TestAccrualCascade_SalonLoadError_FallsBackToDefaults(t *testing.T) {
	f := newCascadeFixture()
	visitor := f.newCustomer(t, "Elif", customer.CustomerID{})
	f.visitRepo.On("CountByCustomer", mock.Anything, mock.Anything).Return(20, nil)
	f.salonRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	f.customerRepo.On("UpdateLoyaltyLevel", mock.Anything, visitor.CustomerID(), loyalty.LevelGold, issueTime).Return(nil)

	outcome := f.cascade.Run(context.Background(), visitor, issueTime)

	assert.Equal(t, loyalty.LevelGold, outcome.Level)
	assert.Equal(t, []string{StepLoadSalon}, outcome.FailedSteps)
}

func TestAccrualCascade_LevelUpdateFails_IsSwallowed(t *testing.T) {
	f := newCascadeFixture()
	visitor := f.newCustomer(t, "Elif", customer.CustomerID{})
	f.visitRepo.On("CountByCustomer", mock.Anything, mock.Anything).Return(40, nil)
	f.salonRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, customer.ErrSalonNotFound)
	f.customerRepo.On("UpdateLoyaltyLevel", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("lock timeout"))

	outcome := f.cascade.Run(context.Background(), visitor, issueTime)

	assert.False(t, outcome.LevelChanged)
	assert.Equal(t, []string{StepUpdateLoyalty}, f.metrics.failures)
	assert.Empty(t, f.publisher.Types(), "寫入失敗時不發布事件")
}

func TestAccrualCascade_FirstVisitOfReferredCustomer_RewardsBoth(t *testing.T) {
	// Arrange
	f := newCascadeFixture()
	referrer := f.newCustomer(t, "Zeynep", customer.CustomerID{})
	referred := f.newCustomer(t, "Elif", referrer.CustomerID())

	f.visitRepo.On("CountByCustomer", mock.Anything, referred.CustomerID()).Return(1, nil)
	f.salonRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, customer.ErrSalonNotFound)
	f.customerRepo.On("FindByIDInSalon", mock.Anything, f.salonID, referrer.CustomerID()).Return(referrer, nil)
	f.customerRepo.On("IncrementReferralCount", mock.Anything, referrer.CustomerID(), issueTime).Return(1, nil).Once()
	f.customerRepo.On("GrantReferralDiscount", mock.Anything, referred.CustomerID(), issueTime).Return(nil).Once()

	var reward *checkin.ReferralReward
	f.rewardRepo.On("Save", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { reward = args.Get(1).(*checkin.ReferralReward) }).
		Return(nil).Once()

	// Act
	outcome := f.cascade.Run(context.Background(), referred, issueTime)

	// Assert
	assert.True(t, outcome.ReferralRewarded)
	assert.Equal(t, 1, referrer.ReferralCount())
	assert.True(t, referrer.HasReferralDiscount())
	assert.True(t, referred.HasReferralDiscount())
	require.NotNil(t, reward)
	assert.True(t, reward.ReferrerID().Equals(referrer.CustomerID()))
	assert.True(t, reward.ReferredID().Equals(referred.CustomerID()))
	assert.Equal(t, 1, f.metrics.referralCount)
	assert.Contains(t, f.publisher.Types(), "customer.referral_rewarded")
	f.customerRepo.AssertExpectations(t)
	f.rewardRepo.AssertExpectations(t)
}

func TestAccrualCascade_SecondVisit_NoReferralEffects(t *testing.T) {
	f := newCascadeFixture()
	referred := f.newCustomer(t, "Elif", customer.NewCustomerID())
	f.visitRepo.On("CountByCustomer", mock.Anything, mock.Anything).Return(2, nil)
	f.salonRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, customer.ErrSalonNotFound)

	outcome := f.cascade.Run(context.Background(), referred, issueTime.Add(24*time.Hour))

	assert.False(t, outcome.ReferralRewarded)
	assert.False(t, referred.HasReferralDiscount())
	f.customerRepo.AssertNotCalled(t, "FindByIDInSalon", mock.Anything, mock.Anything, mock.Anything)
	f.rewardRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAccrualCascade_ReferrerMissing_StillGrantsReferredDiscount(t *testing.T) {
	// Arrange
	f := newCascadeFixture()
	referred := f.newCustomer(t, "Elif", customer.NewCustomerID())
	f.visitRepo.On("CountByCustomer", mock.Anything, mock.Anything).Return(1, nil)
	f.salonRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, customer.ErrSalonNotFound)
	f.customerRepo.On("FindByIDInSalon", mock.Anything, mock.Anything, mock.Anything).Return(nil, customer.ErrCustomerNotFound)
	f.customerRepo.On("GrantReferralDiscount", mock.Anything, referred.CustomerID(), issueTime).Return(nil).Once()

	// Act
	outcome := f.cascade.Run(context.Background(), referred, issueTime)

	// Assert
	assert.False(t, outcome.ReferralRewarded)
	assert.True(t, referred.HasReferralDiscount())
	assert.Equal(t, []string{StepLoadReferrer}, outcome.FailedSteps)
	f.rewardRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAccrualCascade_RewardInsertFails_KeepsFlags(t *testing.T) {
	f := newCascadeFixture()
	referrer := f.newCustomer(t, "Zeynep", customer.CustomerID{})
	referred := f.newCustomer(t, "Elif", referrer.CustomerID())
	f.visitRepo.On("CountByCustomer", mock.Anything, mock.Anything).Return(1, nil)
	f.salonRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, customer.ErrSalonNotFound)
	f.customerRepo.On("FindByIDInSalon", mock.Anything, mock.Anything, mock.Anything).Return(referrer, nil)
	f.customerRepo.On("IncrementReferralCount", mock.Anything, mock.Anything, mock.Anything).Return(1, nil)
	f.customerRepo.On("GrantReferralDiscount", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.rewardRepo.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	outcome := f.cascade.Run(context.Background(), referred, issueTime)

	assert.False(t, outcome.ReferralRewarded)
	assert.Equal(t, 1, referrer.ReferralCount())
	assert.True(t, referred.HasReferralDiscount())
	assert.Equal(t, []string{StepSaveReferralReward}, f.metrics.failures)
}

func TestAccrualCascade_ReferrerCountComesFromStore(t *testing.T) {
	// Arrange：推薦者在記憶體中的次數已過期，資料庫遞增後為 4
	f := newCascadeFixture()
	referrer := f.newCustomer(t, "Zeynep", customer.CustomerID{})
	referred := f.newCustomer(t, "Elif", referrer.CustomerID())
	f.visitRepo.On("CountByCustomer", mock.Anything, mock.Anything).Return(1, nil)
	f.salonRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, customer.ErrSalonNotFound)
	f.customerRepo.On("FindByIDInSalon", mock.Anything, mock.Anything, mock.Anything).Return(referrer, nil)
	f.customerRepo.On("IncrementReferralCount", mock.Anything, referrer.CustomerID(), issueTime).Return(4, nil)
	f.customerRepo.On("GrantReferralDiscount", mock.Anything, referred.CustomerID(), issueTime).Return(nil)
	f.rewardRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	// Act
	outcome := f.cascade.Run(context.Background(), referred, issueTime)

	// Assert
	assert.True(t, outcome.ReferralRewarded)
	assert.Equal(t, 4, referrer.ReferralCount())
	f.customerRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAccrualCascade_ReferrerUpdateFails_NoEventButRewardSaved(t *testing.T) {
	f := newCascadeFixture()
	referrer := f.newCustomer(t, "Zeynep", customer.CustomerID{})
	referred := f.newCustomer(t, "Elif", referrer.CustomerID())
	f.visitRepo.On("CountByCustomer", mock.Anything, mock.Anything).Return(1, nil)
	f.salonRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, customer.ErrSalonNotFound)
	f.customerRepo.On("FindByIDInSalon", mock.Anything, mock.Anything, mock.Anything).Return(referrer, nil)
	f.customerRepo.On("IncrementReferralCount", mock.Anything, mock.Anything, mock.Anything).Return(0, errors.New("deadlock"))
	f.customerRepo.On("GrantReferralDiscount", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.rewardRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	outcome := f.cascade.Run(context.Background(), referred, issueTime)

	assert.Equal(t, []string{StepUpdateReferrer}, outcome.FailedSteps)
	assert.Equal(t, 0, referrer.ReferralCount())
	assert.NotContains(t, f.publisher.Types(), "customer.referral_rewarded")
	assert.True(t, outcome.ReferralRewarded)
}
