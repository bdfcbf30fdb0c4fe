package payment

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mazoair/flightpay/internal/domain"
	"github.com/mazoair/flightpay/internal/kafka"
	"github.com/mazoair/flightpay/internal/repository"
)

// Reconciler is the single writer of post-payment booking state. It accepts
// only already-verified facts: no card data, no gateway protocol, no currency
// conversion. The synchronous auto-approve path, the client-driven verify
// path and the webhook path all funnel into MarkPaid, and its idempotent
// terminal-state assignment is what keeps their races benign.
type Reconciler struct {
	bookings           repository.BookingRepository
	payments           repository.PaymentRepository
	sessions           Sessions
	producer           Producer
	paymentTopic       string
	notificationsTopic string
}

func NewReconciler(bookings repository.BookingRepository, payments repository.PaymentRepository, sessions Sessions, producer Producer, paymentTopic, notificationsTopic string) *Reconciler {
	return &Reconciler{
		bookings:           bookings,
		payments:           payments,
		sessions:           sessions,
		producer:           producer,
		paymentTopic:       paymentTopic,
		notificationsTopic: notificationsTopic,
	}
}

// MarkPaid transitions the booking to its paid terminal state. Re-applying it
// for an already approved booking is a no-op with respect to double-charging:
// the field assignment is idempotent and the audit Payment row is upserted by
// its unique reference. Only the booking mutation itself can fail the call;
// the audit row, session cleanup and event publication are best-effort.
func (r *Reconciler) MarkPaid(ctx context.Context, booking *domain.Booking, gatewayTransactionID, method string, amount float64, currencyCode string) error {
	if err := r.bookings.MarkPaid(ctx, booking.ID, gatewayTransactionID, method); err != nil {
		return err
	}

	audit := &domain.Payment{
		BookingID:        booking.ID,
		UserID:           booking.UserID,
		Amount:           amount,
		Currency:         currencyCode,
		PaymentMethod:    method,
		TransactionID:    booking.TransactionRef,
		GatewayReference: gatewayTransactionID,
		Status:           "completed",
		PaidAt:           time.Now(),
	}
	if err := r.payments.UpsertByReference(ctx, audit); err != nil {
		log.Printf("WARNING: failed to record payment audit row for booking %d (ref %s): %v", booking.ID, booking.TransactionRef, err)
	}

	if r.sessions != nil && booking.TransactionRef != "" {
		if err := r.sessions.DeleteChargeSession(ctx, booking.TransactionRef); err != nil {
			log.Printf("WARNING: failed to discard charge session %s: %v", booking.TransactionRef, err)
		}
	}

	r.publish(ctx, booking, gatewayTransactionID, method, amount, currencyCode)
	return nil
}

const publishRetries = 3

func (r *Reconciler) publish(ctx context.Context, booking *domain.Booking, gatewayTransactionID, method string, amount float64, currencyCode string) {
	if r.producer == nil || r.paymentTopic == "" {
		return
	}
	event := kafka.PaymentEvent{
		EventID:    uuid.NewString(),
		Type:       "payment_completed",
		Reference:  booking.TransactionRef,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		Amount:     amount,
		Currency:   currencyCode,
		Method:     method,
		Email:      booking.Email,
		OccurredAt: time.Now(),
	}
	if err := r.producer.PublishWithRetry(ctx, r.paymentTopic, booking.TransactionRef, event, publishRetries); err != nil {
		log.Printf("WARNING: failed to publish payment_completed event for booking %d: %v", booking.ID, err)
	}
	if r.notificationsTopic != "" {
		if err := r.producer.PublishWithRetry(ctx, r.notificationsTopic, booking.TransactionRef, event, publishRetries); err != nil {
			log.Printf("WARNING: failed to publish payment notification for booking %d: %v", booking.ID, err)
		}
	}
}
