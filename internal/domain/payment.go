package domain

import "time"

// Payment is the audit row written after a charge has been verified, one per
// reference. It exists for revenue reporting; the booking itself is the
// authoritative success signal, so failing to write a Payment never fails the
// reconciliation.
type Payment struct {
	ID               int64
	BookingID        int64
	UserID           int64
	Amount           float64
	Currency         string
	PaymentMethod    string
	TransactionID    string // gateway charge reference, unique
	GatewayReference string // gateway's own transaction id
	Status           string
	PaidAt           time.Time
}

// ChargeSession links a gateway reference awaiting a step-up factor (PIN/OTP)
// back to the booking it was started for. It is advisory only: the metadata
// embedded in the charge itself is the authoritative linkage, and a missing
// session is an expected, non-error condition.
type ChargeSession struct {
	Reference string    `json:"reference"`
	BookingID int64     `json:"booking_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// GatewayCredential is one API key for a payment provider, keyed by
// (provider, environment, role). At most one active secret exists per triple.
type GatewayCredential struct {
	ID          int64
	Provider    string
	Environment string
	Role        string
	Secret      string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
