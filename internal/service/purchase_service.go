package service

import (
	"context"
	"errors"
	"fmt"

	"vendora/config"
	"vendora/internal/domain"
	"vendora/internal/models"
	"vendora/internal/repository"
	"vendora/pkg/gateway"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CheckoutIntent is what the buyer needs to complete payment.
type CheckoutIntent struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
	AmountCents      int64  `json:"amount"`
}

// PurchaseService handles idempotent purchase initiation against the gateway.
type PurchaseService struct {
	cfg      *config.Config
	payments *repository.PaymentRepository
	files    *repository.FileRepository
	provider gateway.Provider
}

func NewPurchaseService(cfg *config.Config, payments *repository.PaymentRepository, files *repository.FileRepository, provider gateway.Provider) *PurchaseService {
	return &PurchaseService{cfg: cfg, payments: payments, files: files, provider: provider}
}

// PurchaseIdempotencyKey derives the stable key for one (buyer, file, price)
// attempt. A price change produces a new key, so a failed attempt at the old
// price never blocks a retry at the new one.
func PurchaseIdempotencyKey(buyerID, fileID uint, amountCents int64) string {
	return fmt.Sprintf("%d-%d-%d", buyerID, fileID, amountCents)
}

// Initiate starts (or resumes) a purchase:
//   - an existing successful payment under the key → ErrAlreadyPurchased;
//   - an existing pending payment → its cached checkout intent, with zero
//     gateway calls (the buyer re-clicked "pay");
//   - otherwise failed leftovers are purged, the gateway transaction is
//     initialized, and only then is the pending record persisted — a gateway
//     failure leaves no orphan row.
func (s *PurchaseService) Initiate(ctx context.Context, buyer *models.User, fileID uint) (*CheckoutIntent, error) {
	file, err := s.files.GetByID(fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("file %d: %w", fileID, domain.ErrNotFound)
		}
		return nil, err
	}
	if !file.Purchasable() {
		return nil, fmt.Errorf("file %d: %w", fileID, domain.ErrNotFound)
	}
	if file.CreatorID == buyer.ID {
		return nil, fmt.Errorf("%w: cannot buy your own file", domain.ErrForbidden)
	}

	key := PurchaseIdempotencyKey(buyer.ID, file.ID, file.PriceCents)

	existing, err := s.payments.FindActiveByIdempotencyKey(key)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Status == domain.PaymentSuccess {
			return nil, domain.ErrAlreadyPurchased
		}
		// Pending retry: reuse the cached checkout link.
		return &CheckoutIntent{
			AuthorizationURL: existing.AuthorizationURL,
			Reference:        existing.TransactionReference,
			AmountCents:      existing.AmountCents,
		}, nil
	}

	if err := s.payments.DeleteFailedByIdempotencyKey(key); err != nil {
		return nil, err
	}

	reference := "vnd_" + uuid.New().String()
	callbackURL := s.cfg.Server.BaseURL + "/api/v1/payment/verify/" + reference

	init, err := s.provider.Initialize(ctx, gateway.InitializeRequest{
		Email:          buyer.Email,
		AmountCents:    file.PriceCents,
		Reference:      reference,
		CallbackURL:    callbackURL,
		IdempotencyKey: key,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	payment := &models.Payment{
		BuyerID:              buyer.ID,
		FileID:               file.ID,
		CreatorID:            file.CreatorID,
		AmountCents:          file.PriceCents,
		Status:               domain.PaymentPending,
		TransactionReference: reference,
		GatewayReference:     init.Reference,
		IdempotencyKey:       key,
		AuthorizationURL:     init.AuthorizationURL,
	}
	if err := s.payments.Create(payment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Two simultaneous clicks raced past the lookup; the other one's
			// record wins and its checkout link is just as valid.
			if winner, ferr := s.payments.FindActiveByIdempotencyKey(key); ferr == nil {
				return &CheckoutIntent{
					AuthorizationURL: winner.AuthorizationURL,
					Reference:        winner.TransactionReference,
					AmountCents:      winner.AmountCents,
				}, nil
			}
		}
		return nil, err
	}

	return &CheckoutIntent{
		AuthorizationURL: payment.AuthorizationURL,
		Reference:        payment.TransactionReference,
		AmountCents:      payment.AmountCents,
	}, nil
}
