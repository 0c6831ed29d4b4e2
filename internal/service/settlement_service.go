package service

import (
	"context"
	"log"
	"time"

	"vendora/internal/domain"
	"vendora/internal/models"
	"vendora/internal/repository"
	"vendora/pkg/gateway"
)

// SettlementService owns the payment state machine. Three triggers feed it —
// the buyer's verify redirect, the gateway webhook, and the background poll —
// and any of them may observe the same transaction more than once. The
// conditional update in PaymentRepository.TransitionFromPending decides who
// owns the single pending→terminal transition; the loser reloads and no-ops.
type SettlementService struct {
	payments *repository.PaymentRepository
	files    *repository.FileRepository
	chats    *repository.ChatRepository
}

func NewSettlementService(payments *repository.PaymentRepository, files *repository.FileRepository, chats *repository.ChatRepository) *SettlementService {
	return &SettlementService{payments: payments, files: files, chats: chats}
}

// Apply reconciles a normalized gateway status onto the payment. It returns
// the current record and whether this call performed the transition.
// Pending and unknown statuses never transition: the record stays eligible
// for the next poll cycle.
func (s *SettlementService) Apply(ctx context.Context, p *models.Payment, status gateway.Status) (*models.Payment, bool, error) {
	var target string
	switch status {
	case gateway.StatusSuccess:
		target = domain.PaymentSuccess
	case gateway.StatusFailed:
		target = domain.PaymentFailed
	default:
		return p, false, nil
	}

	var paidAt *time.Time
	if target == domain.PaymentSuccess {
		now := time.Now()
		paidAt = &now
	}

	won, err := s.payments.TransitionFromPending(p.ID, target, paidAt)
	if err != nil {
		return p, false, err
	}
	if !won {
		// Already terminal: duplicate webhook, repeated redirect visit, or a
		// racing trigger got there first.
		current, err := s.payments.GetByID(p.ID)
		if err != nil {
			return p, false, err
		}
		log.Printf("[settle] ref=%s already %s, skipping", p.TransactionReference, current.Status)
		return current, false, nil
	}

	p.Status = target
	p.PaidAt = paidAt
	if target == domain.PaymentFailed {
		return p, true, nil
	}

	// Side effects of the won success transition. Each is idempotent on its
	// own (increment gated by the transition, chat by its unique pair), so a
	// crash between them loses at most one effect without double-applying.
	if err := s.files.IncrementSales(p.FileID); err != nil {
		log.Printf("[settle] ref=%s sales increment failed: %v", p.TransactionReference, err)
	}
	if _, err := s.chats.EnsureForPurchase(p.BuyerID, p.CreatorID, p.FileID); err != nil {
		log.Printf("[settle] ref=%s chat provisioning failed: %v", p.TransactionReference, err)
	}
	log.Printf("[settle] ref=%s settled success, buyer=%d file=%d", p.TransactionReference, p.BuyerID, p.FileID)
	return p, true, nil
}

// VerifyAndApply re-checks the transaction with the gateway and reconciles
// the answer. verifyRef is the reference to present to the gateway; when
// empty, the stored gateway reference is used.
func (s *SettlementService) VerifyAndApply(ctx context.Context, provider gateway.Provider, p *models.Payment, verifyRef string) (*models.Payment, bool, error) {
	if verifyRef == "" {
		verifyRef = p.GatewayReference
	}
	if verifyRef == "" {
		verifyRef = p.TransactionReference
	}
	result, err := provider.Verify(ctx, verifyRef)
	if err != nil {
		// Leave pending; the poll retries. Never retried on this request.
		return p, false, err
	}
	return s.Apply(ctx, p, result.Status)
}
