package checkin

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var issueTime = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func newIssueUseCase(tokenRepo *MockVisitTokenRepository, customerRepo *MockCustomerRepository, metrics Metrics) *IssueVisitTokenUseCase {
	return NewIssueVisitTokenUseCase(
		tokenRepo,
		customerRepo,
		newFakeClock(issueTime),
		metrics,
		nil,
		IssueConfig{BaseURL: "https://salon.example.com"},
	)
}

func TestIssueVisitTokenUseCase_Execute_Success(t *testing.T) {
	// Arrange
	tokenRepo := new(MockVisitTokenRepository)
	customerRepo := new(MockCustomerRepository)
	metrics := &recordingMetrics{}
	useCase := newIssueUseCase(tokenRepo, customerRepo, metrics)

	salonID := customer.NewSalonID()
	c, err := customer.NewCustomer(salonID, "Ayşe", customer.CustomerID{}, issueTime)
	require.NoError(t, err)

	customerRepo.On("FindByIDInSalon", mock.Anything, salonID, c.CustomerID()).Return(c, nil)

	var saved *checkin.VisitToken
	tokenRepo.On("Save", mock.Anything, mock.AnythingOfType("*checkin.VisitToken")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*checkin.VisitToken) }).
		Return(nil)

	// Act
	result, err := useCase.Execute(context.Background(), IssueVisitTokenCommand{
		SalonID:    salonID.String(),
		CustomerID: c.CustomerID().String(),
		IssuerID:   customer.NewStaffID().String(),
		Services:   []string{"Kesim", "Boya"},
	})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, saved.Token().String(), result.Token)
	assert.Len(t, result.Token, 32)
	assert.Equal(t, issueTime.Add(60*time.Second), result.ExpiresAt)
	assert.Nil(t, saved.UsedAt())

	u, err := url.Parse(result.RedemptionURL)
	require.NoError(t, err)
	assert.Equal(t, "/checkin", u.Path)
	assert.Equal(t, result.Token, u.Query().Get("token"))
	assert.Equal(t, `["Kesim","Boya"]`, u.Query().Get("services"))

	assert.Equal(t, 1, metrics.issued)
	tokenRepo.AssertExpectations(t)
	customerRepo.AssertExpectations(t)
}

func TestIssueVisitTokenUseCase_Execute_NoServices_OmitsParam(t *testing.T) {
	tokenRepo := new(MockVisitTokenRepository)
	customerRepo := new(MockCustomerRepository)
	useCase := newIssueUseCase(tokenRepo, customerRepo, nil)

	salonID := customer.NewSalonID()
	c, _ := customer.NewCustomer(salonID, "Ayşe", customer.CustomerID{}, issueTime)
	customerRepo.On("FindByIDInSalon", mock.Anything, mock.Anything, mock.Anything).Return(c, nil)
	tokenRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	result, err := useCase.Execute(context.Background(), IssueVisitTokenCommand{
		SalonID:    salonID.String(),
		CustomerID: c.CustomerID().String(),
		IssuerID:   customer.NewStaffID().String(),
	})

	require.NoError(t, err)
	assert.NotContains(t, result.RedemptionURL, "services=")
}

func TestIssueVisitTokenUseCase_Execute_StoreFailure_ReturnsUnexpected(t *testing.T) {
	// Arrange
	tokenRepo := new(MockVisitTokenRepository)
	customerRepo := new(MockCustomerRepository)
	metrics := &recordingMetrics{}
	useCase := newIssueUseCase(tokenRepo, customerRepo, metrics)

	salonID := customer.NewSalonID()
	c, _ := customer.NewCustomer(salonID, "Ayşe", customer.CustomerID{}, issueTime)
	customerRepo.On("FindByIDInSalon", mock.Anything, mock.Anything, mock.Anything).Return(c, nil)
	tokenRepo.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	// Act
	result, err := useCase.Execute(context.Background(), IssueVisitTokenCommand{
		SalonID:    salonID.String(),
		CustomerID: c.CustomerID().String(),
		IssuerID:   customer.NewStaffID().String(),
	})

	// Assert
	assert.Nil(t, result)
	assert.ErrorIs(t, err, checkin.ErrUnexpected)
	var domainErr *checkin.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "connection refused", domainErr.Context["details"])
	assert.Zero(t, metrics.issued)
}

func TestIssueVisitTokenUseCase_Execute_CustomerOutsideSalon(t *testing.T) {
	tokenRepo := new(MockVisitTokenRepository)
	customerRepo := new(MockCustomerRepository)
	useCase := newIssueUseCase(tokenRepo, customerRepo, nil)

	customerRepo.On("FindByIDInSalon", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, customer.ErrCustomerNotFound)

	_, err := useCase.Execute(context.Background(), IssueVisitTokenCommand{
		SalonID:    customer.NewSalonID().String(),
		CustomerID: customer.NewCustomerID().String(),
		IssuerID:   customer.NewStaffID().String(),
	})

	assert.ErrorIs(t, err, checkin.ErrCustomerNotFound)
	tokenRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestIssueVisitTokenUseCase_Execute_InvalidIDs_DoNotTouchStore(t *testing.T) {
	tests := []struct {
		name string
		cmd  IssueVisitTokenCommand
		want error
	}{
		{
			name: "invalid salon",
			cmd:  IssueVisitTokenCommand{SalonID: "x", CustomerID: customer.NewCustomerID().String(), IssuerID: customer.NewStaffID().String()},
			want: customer.ErrInvalidSalonID,
		},
		{
			name: "invalid customer",
			cmd:  IssueVisitTokenCommand{SalonID: customer.NewSalonID().String(), CustomerID: "", IssuerID: customer.NewStaffID().String()},
			want: customer.ErrInvalidCustomerID,
		},
		{
			name: "invalid issuer",
			cmd:  IssueVisitTokenCommand{SalonID: customer.NewSalonID().String(), CustomerID: customer.NewCustomerID().String(), IssuerID: "staff"},
			want: customer.ErrInvalidStaffID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenRepo := new(MockVisitTokenRepository)
			customerRepo := new(MockCustomerRepository)
			useCase := newIssueUseCase(tokenRepo, customerRepo, nil)

			_, err := useCase.Execute(context.Background(), tt.cmd)

			assert.ErrorIs(t, err, tt.want)
			customerRepo.AssertNotCalled(t, "FindByIDInSalon", mock.Anything, mock.Anything, mock.Anything)
			tokenRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}
