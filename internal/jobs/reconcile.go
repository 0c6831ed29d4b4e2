package jobs

import (
	"context"
	"log"
	"time"

	"vendora/internal/repository"
	"vendora/internal/service"
	"vendora/pkg/gateway"
)

// Reconciler is the correctness backstop for lost webhooks and abandoned
// redirects: on every tick it re-verifies pending payments older than
// StaleAfter directly against the gateway and feeds the answers through the
// settlement state machine.
type Reconciler struct {
	payments   *repository.PaymentRepository
	settle     *service.SettlementService
	provider   gateway.Provider
	Interval   time.Duration
	StaleAfter time.Duration
}

func NewReconciler(payments *repository.PaymentRepository, settle *service.SettlementService, provider gateway.Provider, interval, staleAfter time.Duration) *Reconciler {
	if interval <= 0 {
		interval = 20 * time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &Reconciler{
		payments:   payments,
		settle:     settle,
		provider:   provider,
		Interval:   interval,
		StaleAfter: staleAfter,
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	log.Printf("[reconcile] started, interval=%s stale_after=%s", r.Interval, r.StaleAfter)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[reconcile] stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep runs one reconciliation pass. Per-item failures are logged and
// skipped so one bad transaction cannot stall the rest.
func (r *Reconciler) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-r.StaleAfter)
	pending, err := r.payments.ListStalePending(cutoff)
	if err != nil {
		log.Printf("[reconcile] list pending: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}
	log.Printf("[reconcile] verifying %d stale pending payments", len(pending))
	for i := range pending {
		p := &pending[i]
		if _, _, err := r.settle.VerifyAndApply(ctx, r.provider, p, ""); err != nil {
			log.Printf("[reconcile] ref=%s verify failed: %v", p.TransactionReference, err)
		}
	}
}
