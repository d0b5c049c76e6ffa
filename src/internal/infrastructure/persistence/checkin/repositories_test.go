package checkin

import (
	"testing"
	"time"

	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/jackyeh168/salon_crm/src/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := persistence.OpenInMemory(Models()...)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = persistence.Close(db) })
	return db
}

var issuedAt = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func newSavedToken(t *testing.T, repo *VisitTokenRepositoryImpl) *checkin.VisitToken {
	t.Helper()
	token, err := checkin.NewVisitToken(customer.NewSalonID(), customer.NewCustomerID(), customer.NewStaffID(), issuedAt, 0)
	require.NoError(t, err)
	require.NoError(t, repo.Save(nil, token))
	return token
}

// ===========================
// VisitTokenRepository Tests
// ===========================

func TestVisitTokenRepository_SaveAndFindByValue(t *testing.T) {
	// Arrange
	db := setupTestDB(t)
	repo := NewVisitTokenRepository(db)
	token := newSavedToken(t, repo)

	// Act
	found, err := repo.FindByValue(nil, token.Token())

	// Assert
	require.NoError(t, err)
	assert.True(t, found.TokenID().Equals(token.TokenID()))
	assert.True(t, found.CustomerID().Equals(token.CustomerID()))
	assert.True(t, found.IssuerID().Equals(token.IssuerID()))
	assert.Equal(t, token.ExpiresAt().UnixMilli(), found.ExpiresAt().UnixMilli())
	assert.Nil(t, found.UsedAt())
}

func TestVisitTokenRepository_FindByValue_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVisitTokenRepository(db)
	newSavedToken(t, repo)

	_, err := repo.FindByValue(nil, checkin.TokenValueFrom("does-not-exist"))

	assert.ErrorIs(t, err, checkin.ErrTokenNotFound)
}

func TestVisitTokenRepository_Save_DuplicateValue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVisitTokenRepository(db)
	token := newSavedToken(t, repo)

	dup, err := checkin.ReconstructVisitToken(
		checkin.NewVisitTokenID(), token.SalonID(), token.CustomerID(), token.IssuerID(),
		token.Token(), token.ExpiresAt(), nil, issuedAt,
	)
	require.NoError(t, err)

	err = repo.Save(nil, dup)

	assert.ErrorIs(t, err, checkin.ErrTokenValueDuplicate)
}

func TestVisitTokenRepository_ClaimUnused_OnlyFirstClaimWins(t *testing.T) {
	// Arrange
	db := setupTestDB(t)
	repo := NewVisitTokenRepository(db)
	token := newSavedToken(t, repo)
	firstAt := issuedAt.Add(10 * time.Second)

	// Act
	first, err := repo.ClaimUnused(nil, token.TokenID(), firstAt)
	require.NoError(t, err)
	second, err := repo.ClaimUnused(nil, token.TokenID(), issuedAt.Add(20*time.Second))
	require.NoError(t, err)

	// Assert
	assert.True(t, first)
	assert.False(t, second)

	found, err := repo.FindByValue(nil, token.Token())
	require.NoError(t, err)
	require.NotNil(t, found.UsedAt())
	assert.True(t, firstAt.Equal(*found.UsedAt()), "第二次搶占不應覆寫 used_at")
}

func TestVisitTokenRepository_MarkUsed_Unconditional(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVisitTokenRepository(db)
	token := newSavedToken(t, repo)

	require.NoError(t, repo.MarkUsed(nil, token.TokenID(), issuedAt.Add(5*time.Second)))
	require.NoError(t, repo.MarkUsed(nil, token.TokenID(), issuedAt.Add(6*time.Second)))

	found, err := repo.FindByValue(nil, token.Token())
	require.NoError(t, err)
	assert.True(t, issuedAt.Add(6*time.Second).Equal(*found.UsedAt()))

	err = repo.MarkUsed(nil, checkin.NewVisitTokenID(), issuedAt)
	assert.ErrorIs(t, err, checkin.ErrTokenNotFound)
}

// ===========================
// VisitRepository Tests
// ===========================

func TestVisitRepository_SaveCountAndFind(t *testing.T) {
	// Arrange
	db := setupTestDB(t)
	tokens := NewVisitTokenRepository(db)
	visits := NewVisitRepository(db)
	token := newSavedToken(t, tokens)

	// Act: 同一天兩次來店各自計算
	first := checkin.NewVisitFromToken(token, checkin.ServiceList{"Kesim", "Boya"}, issuedAt.Add(30*time.Second))
	second := checkin.NewVisitFromToken(token, nil, issuedAt.Add(2*time.Hour))
	require.NoError(t, visits.Save(nil, first))
	require.NoError(t, visits.Save(nil, second))

	// Assert
	count, err := visits.CountByCustomer(nil, token.CustomerID())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	found, err := visits.FindByCustomer(nil, token.CustomerID())
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.True(t, found[0].VisitID().Equals(second.VisitID()), "由新到舊排序")
	assert.Nil(t, found[0].Services(), "空服務清單存為 NULL")
	assert.Equal(t, checkin.ServiceList{"Kesim", "Boya"}, found[1].Services())

	var nullCount int64
	require.NoError(t, db.Model(&VisitGORM{}).Where("services IS NULL").Count(&nullCount).Error)
	assert.Equal(t, int64(1), nullCount)
}

func TestVisitRepository_CountByCustomer_NoVisits(t *testing.T) {
	db := setupTestDB(t)
	visits := NewVisitRepository(db)

	count, err := visits.CountByCustomer(nil, customer.NewCustomerID())

	require.NoError(t, err)
	assert.Zero(t, count)
}

// ===========================
// ReferralRewardRepository Tests
// ===========================

func TestReferralRewardRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReferralRewardRepository(db)
	salonID := customer.NewSalonID()
	referrerID := customer.NewCustomerID()
	referredID := customer.NewCustomerID()

	require.NoError(t, repo.Save(nil, checkin.NewReferralReward(salonID, referrerID, referredID, issuedAt)))

	rewards, err := repo.FindByReferrer(nil, referrerID)
	require.NoError(t, err)
	require.Len(t, rewards, 1)
	assert.True(t, rewards[0].ReferredID().Equals(referredID))
	assert.True(t, rewards[0].SalonID().Equals(salonID))
}
