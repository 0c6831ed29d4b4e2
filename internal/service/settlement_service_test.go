package service

import (
	"context"
	"errors"
	"testing"

	"vendora/internal/domain"
	"vendora/internal/models"
	"vendora/internal/repository"
	"vendora/pkg/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type settleFixture struct {
	db       *gorm.DB
	payments *repository.PaymentRepository
	files    *repository.FileRepository
	chats    *repository.ChatRepository
	svc      *SettlementService

	buyer   *models.User
	creator *models.User
	file    *models.File
	payment *models.Payment
}

func newSettleFixture(t *testing.T) *settleFixture {
	t.Helper()
	db := newTestDB(t)
	fx := &settleFixture{
		db:       db,
		payments: repository.NewPaymentRepository(db),
		files:    repository.NewFileRepository(db),
		chats:    repository.NewChatRepository(db),
	}
	fx.svc = NewSettlementService(fx.payments, fx.files, fx.chats)
	fx.buyer = seedUser(t, db, "buyer@test.dev", domain.RoleUser)
	fx.creator = seedUser(t, db, "creator@test.dev", domain.RoleCreator)
	fx.file = seedPublishedFile(t, db, "asset", fx.creator.ID, 5000)
	fx.payment = &models.Payment{
		BuyerID:              fx.buyer.ID,
		FileID:               fx.file.ID,
		CreatorID:            fx.creator.ID,
		AmountCents:          5000,
		Status:               domain.PaymentPending,
		TransactionReference: "vnd_settle",
		GatewayReference:     "psk_settle",
		IdempotencyKey:       PurchaseIdempotencyKey(fx.buyer.ID, fx.file.ID, 5000),
		AuthorizationURL:     "https://checkout.test/vnd_settle",
	}
	require.NoError(t, fx.payments.Create(fx.payment))
	return fx
}

func (fx *settleFixture) reload(t *testing.T) *models.Payment {
	t.Helper()
	p, err := fx.payments.GetByID(fx.payment.ID)
	require.NoError(t, err)
	return p
}

func TestApply_SuccessTransitionAndSideEffects(t *testing.T) {
	fx := newSettleFixture(t)

	p, transitioned, err := fx.svc.Apply(context.Background(), fx.payment, gateway.StatusSuccess)
	require.NoError(t, err)
	assert.True(t, transitioned)
	assert.Equal(t, domain.PaymentSuccess, p.Status)
	assert.NotNil(t, p.PaidAt)

	stored := fx.reload(t)
	assert.Equal(t, domain.PaymentSuccess, stored.Status)
	assert.NotNil(t, stored.PaidAt)

	f, err := fx.files.GetByID(fx.file.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.Sales)

	chat, err := fx.chats.EnsureForPurchase(fx.buyer.ID, fx.creator.ID, fx.file.ID)
	require.NoError(t, err)
	assert.True(t, chat.HasParticipant(fx.buyer.ID))
}

func TestApply_DuplicateDeliveryIsNoOp(t *testing.T) {
	fx := newSettleFixture(t)
	ctx := context.Background()

	_, first, err := fx.svc.Apply(ctx, fx.payment, gateway.StatusSuccess)
	require.NoError(t, err)
	require.True(t, first)

	// The webhook arrives again, and the redirect fires too. Neither may
	// repeat the side effects.
	for i := 0; i < 3; i++ {
		stale := fx.reload(t)
		stale.Status = domain.PaymentPending // simulate a trigger holding a stale read
		p, transitioned, err := fx.svc.Apply(ctx, stale, gateway.StatusSuccess)
		require.NoError(t, err)
		assert.False(t, transitioned)
		assert.Equal(t, domain.PaymentSuccess, p.Status)
	}

	f, err := fx.files.GetByID(fx.file.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.Sales, "sales must increment exactly once")

	var chatCount int64
	require.NoError(t, fx.db.Model(&models.Chat{}).Count(&chatCount).Error)
	assert.Equal(t, int64(1), chatCount, "chat must be provisioned exactly once")
}

func TestApply_FailureIsTerminal(t *testing.T) {
	fx := newSettleFixture(t)
	ctx := context.Background()

	p, transitioned, err := fx.svc.Apply(ctx, fx.payment, gateway.StatusFailed)
	require.NoError(t, err)
	assert.True(t, transitioned)
	assert.Equal(t, domain.PaymentFailed, p.Status)
	assert.Nil(t, p.PaidAt)

	// A late success report cannot resurrect a settled failure.
	stale := fx.reload(t)
	stale.Status = domain.PaymentPending
	p, transitioned, err = fx.svc.Apply(ctx, stale, gateway.StatusSuccess)
	require.NoError(t, err)
	assert.False(t, transitioned)
	assert.Equal(t, domain.PaymentFailed, p.Status)

	f, err := fx.files.GetByID(fx.file.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.Sales)

	var chatCount int64
	require.NoError(t, fx.db.Model(&models.Chat{}).Count(&chatCount).Error)
	assert.Equal(t, int64(0), chatCount, "failed settlement provisions nothing")
}

func TestApply_PendingAndUnknownLeaveRecordOpen(t *testing.T) {
	fx := newSettleFixture(t)
	ctx := context.Background()

	for _, st := range []gateway.Status{gateway.StatusPending, gateway.StatusUnknown} {
		p, transitioned, err := fx.svc.Apply(ctx, fx.payment, st)
		require.NoError(t, err)
		assert.False(t, transitioned)
		assert.Equal(t, domain.PaymentPending, p.Status)
	}

	stored := fx.reload(t)
	assert.Equal(t, domain.PaymentPending, stored.Status, "record stays eligible for the next poll")
}

func TestVerifyAndApply(t *testing.T) {
	t.Run("gateway error leaves pending", func(t *testing.T) {
		fx := newSettleFixture(t)
		stub := gateway.NewStubProvider()
		stub.VerifyErr = errors.New("connection refused")

		_, transitioned, err := fx.svc.VerifyAndApply(context.Background(), stub, fx.payment, "")
		assert.Error(t, err)
		assert.False(t, transitioned)
		assert.Equal(t, domain.PaymentPending, fx.reload(t).Status)
	})

	t.Run("prefers stored gateway reference", func(t *testing.T) {
		fx := newSettleFixture(t)
		stub := gateway.NewStubProvider()
		stub.SetStatus("psk_settle", gateway.StatusSuccess)

		p, transitioned, err := fx.svc.VerifyAndApply(context.Background(), stub, fx.payment, "")
		require.NoError(t, err)
		assert.True(t, transitioned)
		assert.Equal(t, domain.PaymentSuccess, p.Status)
	})

	t.Run("explicit reference wins", func(t *testing.T) {
		fx := newSettleFixture(t)
		stub := gateway.NewStubProvider()
		stub.SetStatus("explicit_ref", gateway.StatusFailed)

		p, transitioned, err := fx.svc.VerifyAndApply(context.Background(), stub, fx.payment, "explicit_ref")
		require.NoError(t, err)
		assert.True(t, transitioned)
		assert.Equal(t, domain.PaymentFailed, p.Status)
	})
}
