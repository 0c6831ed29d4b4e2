package domain

const (
	RoleUser    = "user"
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// Payment status values. These are persisted and matched by the settlement
// guard, so the strings must stay exactly as-is.
const (
	PaymentPending = "pending"
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
)

// File moderation status.
const (
	FileStatusPending   = "pending"
	FileStatusPublished = "published"
	FileStatusRejected  = "rejected"
)

// Paystack webhook events we act on; everything else is acknowledged and ignored.
const (
	EventChargeSuccess = "charge.success"
	EventChargeFailed  = "charge.failed"
)

// Sort keys accepted by the public file listing.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "priceAsc"
	SortPriceDesc = "priceDesc"
	SortPopular   = "popular"
)
