package checkin

import (
	"context"
	"sync"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/jackyeh168/salon_crm/src/internal/domain/loyalty"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// ===========================
// Mocks
// ===========================

// MockVisitTokenRepository mock implementation of VisitTokenRepository
type MockVisitTokenRepository struct {
	mock.Mock
}

func (m *MockVisitTokenRepository) Save(ctx shared.TransactionContext, token *checkin.VisitToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockVisitTokenRepository) FindByValue(ctx shared.TransactionContext, value checkin.TokenValue) (*checkin.VisitToken, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkin.VisitToken), args.Error(1)
}

func (m *MockVisitTokenRepository) MarkUsed(ctx shared.TransactionContext, tokenID checkin.VisitTokenID, usedAt time.Time) error {
	args := m.Called(ctx, tokenID, usedAt)
	return args.Error(0)
}

func (m *MockVisitTokenRepository) ClaimUnused(ctx shared.TransactionContext, tokenID checkin.VisitTokenID, usedAt time.Time) (bool, error) {
	args := m.Called(ctx, tokenID, usedAt)
	return args.Bool(0), args.Error(1)
}

// MockVisitRepository mock implementation of VisitRepository
type MockVisitRepository struct {
	mock.Mock
}

func (m *MockVisitRepository) Save(ctx shared.TransactionContext, visit *checkin.Visit) error {
	args := m.Called(ctx, visit)
	return args.Error(0)
}

func (m *MockVisitRepository) CountByCustomer(ctx shared.TransactionContext, customerID customer.CustomerID) (int, error) {
	args := m.Called(ctx, customerID)
	return args.Int(0), args.Error(1)
}

func (m *MockVisitRepository) FindByCustomer(ctx shared.TransactionContext, customerID customer.CustomerID) ([]*checkin.Visit, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*checkin.Visit), args.Error(1)
}

// MockReferralRewardRepository mock implementation of ReferralRewardRepository
type MockReferralRewardRepository struct {
	mock.Mock
}

func (m *MockReferralRewardRepository) Save(ctx shared.TransactionContext, reward *checkin.ReferralReward) error {
	args := m.Called(ctx, reward)
	return args.Error(0)
}

func (m *MockReferralRewardRepository) FindByReferrer(ctx shared.TransactionContext, referrerID customer.CustomerID) ([]*checkin.ReferralReward, error) {
	args := m.Called(ctx, referrerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*checkin.ReferralReward), args.Error(1)
}

// MockCustomerRepository mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Save(ctx shared.TransactionContext, c *customer.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) FindByID(ctx shared.TransactionContext, customerID customer.CustomerID) (*customer.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByIDInSalon(ctx shared.TransactionContext, salonID customer.SalonID, customerID customer.CustomerID) (*customer.Customer, error) {
	args := m.Called(ctx, salonID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Update(ctx shared.TransactionContext, c *customer.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomerRepository) UpdateLastVisit(ctx shared.TransactionContext, customerID customer.CustomerID, at time.Time) error {
	return m.Called(ctx, customerID, at).Error(0)
}

func (m *MockCustomerRepository) UpdateLoyaltyLevel(ctx shared.TransactionContext, customerID customer.CustomerID, level loyalty.Level, at time.Time) error {
	return m.Called(ctx, customerID, level, at).Error(0)
}

func (m *MockCustomerRepository) IncrementReferralCount(ctx shared.TransactionContext, customerID customer.CustomerID, at time.Time) (int, error) {
	args := m.Called(ctx, customerID, at)
	return args.Int(0), args.Error(1)
}

func (m *MockCustomerRepository) GrantReferralDiscount(ctx shared.TransactionContext, customerID customer.CustomerID, at time.Time) error {
	return m.Called(ctx, customerID, at).Error(0)
}

// MockSalonRepository mock implementation of SalonRepository
type MockSalonRepository struct {
	mock.Mock
}

func (m *MockSalonRepository) FindByID(ctx shared.TransactionContext, salonID customer.SalonID) (*customer.Salon, error) {
	args := m.Called(ctx, salonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Salon), args.Error(1)
}

// MockTransactionManager mock implementation of TransactionManager
type MockTransactionManager struct {
	mock.Mock
	calls int
}

func (m *MockTransactionManager) InTransaction(_ context.Context, fn func(tx shared.TransactionContext) error) error {
	// Directly execute the function with nil context (for unit tests)
	m.calls++
	return fn(nil)
}

// MockEventPublisher 收集發布的事件
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

func (p *MockEventPublisher) Publish(event shared.DomainEvent) error {
	return p.PublishBatch([]shared.DomainEvent{event})
}

func (p *MockEventPublisher) PublishBatch(events []shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *MockEventPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

// recordingMetrics 記錄呼叫內容
type recordingMetrics struct {
	mu            sync.Mutex
	issued        int
	outcomes      []string
	failures      []string
	levelChanges  []string
	referralCount int
}

func (r *recordingMetrics) TokenIssued() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued++
}

func (r *recordingMetrics) RedemptionOutcome(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingMetrics) CascadeFailure(step string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, step)
}

func (r *recordingMetrics) LoyaltyLevelChanged(level string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levelChanges = append(r.levelChanges, level)
}

func (r *recordingMetrics) ReferralRewarded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.referralCount++
}

// fakeClock 可推進的測試時鐘
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
