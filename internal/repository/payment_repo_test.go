package repository

import (
	"errors"
	"testing"
	"time"

	"vendora/internal/domain"
	"vendora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPayment(t *testing.T, repo *PaymentRepository, buyerID, fileID, creatorID uint, status, ref, key string) *models.Payment {
	t.Helper()
	p := &models.Payment{
		BuyerID:              buyerID,
		FileID:               fileID,
		CreatorID:            creatorID,
		AmountCents:          5000,
		Status:               status,
		TransactionReference: ref,
		GatewayReference:     "psk_" + ref,
		IdempotencyKey:       key,
		AuthorizationURL:     "https://checkout.test/" + ref,
	}
	require.NoError(t, repo.Create(p))
	return p
}

func TestTransitionFromPending(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	buyer := seedUser(t, db, "buyer", "buyer@test.dev", domain.RoleUser)
	creator := seedUser(t, db, "creator", "creator@test.dev", domain.RoleCreator)
	f := seedFile(t, db, "asset", creator.ID, 5000)

	p := seedPayment(t, repo, buyer.ID, f.ID, creator.ID, domain.PaymentPending, "vnd_t1", "k1")

	now := time.Now()
	won, err := repo.TransitionFromPending(p.ID, domain.PaymentSuccess, &now)
	require.NoError(t, err)
	assert.True(t, won)

	got, err := repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSuccess, got.Status)
	require.NotNil(t, got.PaidAt)

	// Terminal records never transition again, in either direction.
	won, err = repo.TransitionFromPending(p.ID, domain.PaymentFailed, nil)
	require.NoError(t, err)
	assert.False(t, won)

	got, err = repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSuccess, got.Status)
}

func TestTransitionFromPending_Failed(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	buyer := seedUser(t, db, "buyer", "buyer@test.dev", domain.RoleUser)
	creator := seedUser(t, db, "creator", "creator@test.dev", domain.RoleCreator)
	f := seedFile(t, db, "asset", creator.ID, 5000)

	p := seedPayment(t, repo, buyer.ID, f.ID, creator.ID, domain.PaymentPending, "vnd_t2", "k2")

	won, err := repo.TransitionFromPending(p.ID, domain.PaymentFailed, nil)
	require.NoError(t, err)
	assert.True(t, won)

	got, err := repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, got.Status)
	assert.Nil(t, got.PaidAt)
}

func TestGetByReference_MatchesEitherColumn(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	buyer := seedUser(t, db, "buyer", "buyer@test.dev", domain.RoleUser)
	creator := seedUser(t, db, "creator", "creator@test.dev", domain.RoleCreator)
	f := seedFile(t, db, "asset", creator.ID, 5000)

	p := seedPayment(t, repo, buyer.ID, f.ID, creator.ID, domain.PaymentPending, "vnd_t3", "k3")

	byOurs, err := repo.GetByReference("vnd_t3")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byOurs.ID)

	byGateway, err := repo.GetByReference("psk_vnd_t3")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byGateway.ID)

	_, err = repo.GetByReference("nope")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestFindActiveByIdempotencyKey_IgnoresFailed(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	buyer := seedUser(t, db, "buyer", "buyer@test.dev", domain.RoleUser)
	creator := seedUser(t, db, "creator", "creator@test.dev", domain.RoleCreator)
	f := seedFile(t, db, "asset", creator.ID, 5000)

	seedPayment(t, repo, buyer.ID, f.ID, creator.ID, domain.PaymentFailed, "vnd_t4", "k4")

	_, err := repo.FindActiveByIdempotencyKey("k4")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	require.NoError(t, repo.DeleteFailedByIdempotencyKey("k4"))

	p := seedPayment(t, repo, buyer.ID, f.ID, creator.ID, domain.PaymentPending, "vnd_t5", "k4")
	got, err := repo.FindActiveByIdempotencyKey("k4")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestHasSuccessfulPayment(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	buyer := seedUser(t, db, "buyer", "buyer@test.dev", domain.RoleUser)
	creator := seedUser(t, db, "creator", "creator@test.dev", domain.RoleCreator)
	f := seedFile(t, db, "asset", creator.ID, 5000)

	p := seedPayment(t, repo, buyer.ID, f.ID, creator.ID, domain.PaymentPending, "vnd_t6", "k6")

	ok, err := repo.HasSuccessfulPayment(buyer.ID, f.ID)
	require.NoError(t, err)
	assert.False(t, ok, "pending payment must not grant access")

	now := time.Now()
	_, err = repo.TransitionFromPending(p.ID, domain.PaymentSuccess, &now)
	require.NoError(t, err)

	ok, err = repo.HasSuccessfulPayment(buyer.ID, f.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasSuccessfulPayment(creator.ID, f.ID)
	require.NoError(t, err)
	assert.False(t, ok, "access is per buyer")
}

func TestListStalePending(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	buyer := seedUser(t, db, "buyer", "buyer@test.dev", domain.RoleUser)
	creator := seedUser(t, db, "creator", "creator@test.dev", domain.RoleCreator)
	f := seedFile(t, db, "asset", creator.ID, 5000)
	f2 := seedFile(t, db, "asset-two", creator.ID, 7000)

	stale := seedPayment(t, repo, buyer.ID, f.ID, creator.ID, domain.PaymentPending, "vnd_t7", "k7")
	require.NoError(t, db.Model(stale).Update("created_at", time.Now().Add(-30*time.Minute)).Error)
	seedPayment(t, repo, buyer.ID, f2.ID, creator.ID, domain.PaymentPending, "vnd_t8", "k8")

	got, err := repo.ListStalePending(time.Now().Add(-10 * time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stale.ID, got[0].ID)
}

func TestCreatorSalesStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	buyer := seedUser(t, db, "buyer", "buyer@test.dev", domain.RoleUser)
	buyer2 := seedUser(t, db, "buyer2", "buyer2@test.dev", domain.RoleUser)
	creator := seedUser(t, db, "creator", "creator@test.dev", domain.RoleCreator)
	f := seedFile(t, db, "asset", creator.ID, 5000)

	seedPayment(t, repo, buyer.ID, f.ID, creator.ID, domain.PaymentSuccess, "vnd_t9", "k9")
	seedPayment(t, repo, buyer2.ID, f.ID, creator.ID, domain.PaymentSuccess, "vnd_t10", "k10")
	seedPayment(t, repo, buyer.ID, f.ID, creator.ID, domain.PaymentFailed, "vnd_t11", "k11")

	count, revenue, err := repo.CreatorSalesStats(creator.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, int64(10000), revenue)
}
