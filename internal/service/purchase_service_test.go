package service

import (
	"context"
	"errors"
	"testing"

	"vendora/config"
	"vendora/internal/domain"
	"vendora/internal/models"
	"vendora/internal/repository"
	"vendora/pkg/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type purchaseFixture struct {
	db       *gorm.DB
	payments *repository.PaymentRepository
	stub     *gateway.StubProvider
	svc      *PurchaseService

	buyer   *models.User
	creator *models.User
	file    *models.File
}

func newPurchaseFixture(t *testing.T) *purchaseFixture {
	t.Helper()
	db := newTestDB(t)
	fx := &purchaseFixture{
		db:       db,
		payments: repository.NewPaymentRepository(db),
		stub:     gateway.NewStubProvider(),
	}
	cfg := &config.Config{}
	cfg.Server.BaseURL = "https://api.test"
	fx.svc = NewPurchaseService(cfg, fx.payments, repository.NewFileRepository(db), fx.stub)
	fx.buyer = seedUser(t, db, "buyer@test.dev", domain.RoleUser)
	fx.creator = seedUser(t, db, "creator@test.dev", domain.RoleCreator)
	fx.file = seedPublishedFile(t, db, "asset", fx.creator.ID, 5000)
	return fx
}

func (fx *purchaseFixture) paymentCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, fx.db.Model(&models.Payment{}).Count(&n).Error)
	return n
}

func TestInitiate_CreatesPendingPayment(t *testing.T) {
	fx := newPurchaseFixture(t)

	intent, err := fx.svc.Initiate(context.Background(), fx.buyer, fx.file.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, intent.AuthorizationURL)
	assert.NotEmpty(t, intent.Reference)
	assert.Equal(t, int64(5000), intent.AmountCents)
	assert.Equal(t, 1, fx.stub.InitializeCalls)

	p, err := fx.payments.GetByReference(intent.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, p.Status)
	assert.Equal(t, fx.buyer.ID, p.BuyerID)
	assert.Equal(t, fx.creator.ID, p.CreatorID)
	assert.Equal(t, PurchaseIdempotencyKey(fx.buyer.ID, fx.file.ID, 5000), p.IdempotencyKey)
}

func TestInitiate_PendingRetryReusesIntent(t *testing.T) {
	fx := newPurchaseFixture(t)
	ctx := context.Background()

	first, err := fx.svc.Initiate(ctx, fx.buyer, fx.file.ID)
	require.NoError(t, err)

	// The buyer re-clicks "pay": same checkout link back, no gateway call,
	// no second record.
	second, err := fx.svc.Initiate(ctx, fx.buyer, fx.file.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Reference, second.Reference)
	assert.Equal(t, first.AuthorizationURL, second.AuthorizationURL)
	assert.Equal(t, 1, fx.stub.InitializeCalls, "retry must not re-initialize")
	assert.Equal(t, int64(1), fx.paymentCount(t))
}

func TestInitiate_AlreadyPurchased(t *testing.T) {
	fx := newPurchaseFixture(t)
	ctx := context.Background()

	intent, err := fx.svc.Initiate(ctx, fx.buyer, fx.file.ID)
	require.NoError(t, err)

	p, err := fx.payments.GetByReference(intent.Reference)
	require.NoError(t, err)
	_, err = fx.svc.Initiate(ctx, fx.buyer, fx.file.ID) // still pending: fine
	require.NoError(t, err)

	won, err := fx.payments.TransitionFromPending(p.ID, domain.PaymentSuccess, nil)
	require.NoError(t, err)
	require.True(t, won)

	_, err = fx.svc.Initiate(ctx, fx.buyer, fx.file.ID)
	assert.True(t, errors.Is(err, domain.ErrAlreadyPurchased))
}

func TestInitiate_GatewayFailureLeavesNoOrphan(t *testing.T) {
	fx := newPurchaseFixture(t)
	fx.stub.InitializeErr = errors.New("503 from gateway")

	_, err := fx.svc.Initiate(context.Background(), fx.buyer, fx.file.ID)
	assert.True(t, errors.Is(err, domain.ErrGatewayUnavailable))
	assert.Equal(t, int64(0), fx.paymentCount(t), "no record may exist before the gateway accepts")

	// Once the gateway recovers the same purchase goes through cleanly.
	fx.stub.InitializeErr = nil
	_, err = fx.svc.Initiate(context.Background(), fx.buyer, fx.file.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fx.paymentCount(t))
}

func TestInitiate_FailedAttemptIsPurgedOnRetry(t *testing.T) {
	fx := newPurchaseFixture(t)
	ctx := context.Background()

	intent, err := fx.svc.Initiate(ctx, fx.buyer, fx.file.ID)
	require.NoError(t, err)
	p, err := fx.payments.GetByReference(intent.Reference)
	require.NoError(t, err)
	won, err := fx.payments.TransitionFromPending(p.ID, domain.PaymentFailed, nil)
	require.NoError(t, err)
	require.True(t, won)

	// Retry after failure: the dead record is purged and a fresh transaction
	// is initialized under the same idempotency key.
	fresh, err := fx.svc.Initiate(ctx, fx.buyer, fx.file.ID)
	require.NoError(t, err)
	assert.NotEqual(t, intent.Reference, fresh.Reference)
	assert.Equal(t, 2, fx.stub.InitializeCalls)
	assert.Equal(t, int64(1), fx.paymentCount(t))
}

func TestInitiate_PriceChangeStartsFreshAttempt(t *testing.T) {
	fx := newPurchaseFixture(t)
	ctx := context.Background()

	first, err := fx.svc.Initiate(ctx, fx.buyer, fx.file.ID)
	require.NoError(t, err)

	require.NoError(t, fx.db.Model(&models.File{}).Where("id = ?", fx.file.ID).
		Update("price_cents", 9000).Error)

	second, err := fx.svc.Initiate(ctx, fx.buyer, fx.file.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Reference, second.Reference)
	assert.Equal(t, int64(9000), second.AmountCents)

	// The old pending attempt at the old price still stands on its own key.
	assert.Equal(t, int64(2), fx.paymentCount(t))
}

func TestInitiate_Rejections(t *testing.T) {
	fx := newPurchaseFixture(t)
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		_, err := fx.svc.Initiate(ctx, fx.buyer, 9999)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("unavailable file", func(t *testing.T) {
		require.NoError(t, fx.db.Model(&models.File{}).Where("id = ?", fx.file.ID).
			Update("is_available", false).Error)
		_, err := fx.svc.Initiate(ctx, fx.buyer, fx.file.ID)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		require.NoError(t, fx.db.Model(&models.File{}).Where("id = ?", fx.file.ID).
			Update("is_available", true).Error)
	})

	t.Run("own file", func(t *testing.T) {
		_, err := fx.svc.Initiate(ctx, fx.creator, fx.file.ID)
		assert.True(t, errors.Is(err, domain.ErrForbidden))
	})

	assert.Equal(t, 0, fx.stub.InitializeCalls, "rejections must not reach the gateway")
}
