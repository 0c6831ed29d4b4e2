package models

import (
	"time"

	"vendora/internal/domain"
)

// Payment is one purchase attempt. It is created by purchase initiation,
// mutated only by the settlement reconciler, and deleted only as failed-record
// cleanup before a retry. AmountCents is fixed at creation; later price
// changes on the file do not touch existing records.
type Payment struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	BuyerID   uint `gorm:"not null;index" json:"buyer_id"`
	FileID    uint `gorm:"not null;index" json:"file_id"`
	CreatorID uint `gorm:"not null;index" json:"creator_id"` // denormalized from File for reporting

	AmountCents int64  `gorm:"not null" json:"amount_cents"`
	Status      string `gorm:"size:20;not null;index;default:'pending'" json:"status"` // pending | success | failed

	// TransactionReference is our reference: generated at initiation, unique,
	// used as the callback correlation key. GatewayReference is Paystack's own
	// reference from the initialize response.
	TransactionReference string `gorm:"column:transaction_reference;size:128;uniqueIndex;not null" json:"reference"`
	GatewayReference     string `gorm:"column:payment_gateway_reference;size:128;index" json:"gateway_reference"`

	// IdempotencyKey is derived from (buyer, file, amount); the unique index
	// enforces at most one non-failed payment per combination.
	IdempotencyKey string `gorm:"size:128;uniqueIndex;not null" json:"-"`

	// AuthorizationURL is the gateway-hosted checkout page, cached so a
	// pending retry reuses it instead of re-initializing.
	AuthorizationURL string `gorm:"size:512" json:"authorization_url"`

	PaidAt    *time.Time `json:"paid_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Buyer   User `gorm:"foreignKey:BuyerID" json:"-"`
	File    File `gorm:"foreignKey:FileID" json:"file,omitempty"`
	Creator User `gorm:"foreignKey:CreatorID" json:"-"`
}

func (p *Payment) Settled() bool {
	return p.Status == domain.PaymentSuccess || p.Status == domain.PaymentFailed
}
