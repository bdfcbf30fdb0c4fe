package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending          BookingStatus = "pending"
	BookingStatusAwaitingApproval BookingStatus = "awaiting_approval"
	BookingStatusApproved         BookingStatus = "approved"
	BookingStatusCancelled        BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
)

// Booking is the record of a seat sold on a flight. Post-payment fields
// (Paid, Status=approved, PaymentStatus=completed, PaymentTransactionID) are
// written only by the payment reconciler once a charge has been verified.
// Invariant: Paid implies Status==approved implies PaymentStatus==completed.
// The reverse does not hold: manual bank-transfer approval sets approved
// without going through the card pipeline.
type Booking struct {
	ID                   int64
	UserID               int64
	FlightID             int64
	PassengerName        string
	Email                string
	FlightAmount         float64
	Currency             string
	TransactionRef       string
	PaymentMethod        string
	PaymentStatus        PaymentStatus
	PaymentTransactionID string
	Paid                 bool
	Status               BookingStatus
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
