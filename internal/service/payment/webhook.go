package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/mazoair/flightpay/internal/currency"
	"github.com/mazoair/flightpay/internal/gateway/paystack"
	"github.com/mazoair/flightpay/internal/repository"
)

// HandleWebhook is the asynchronous entry point into the Reconciler. The
// signature is checked over the raw body before any business content is
// parsed. Delivery is at-least-once, so everything downstream relies on the
// Reconciler's idempotency; an unrecognized reference is acknowledged rather
// than errored, because the gateway gains nothing from retrying it.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	secret, err := s.secret(ctx)
	if err != nil {
		return err
	}

	if !paystack.VerifySignature(secret, body, signature) {
		return ErrInvalidSignature
	}

	var event paystack.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("parse webhook event: %w", err)
	}

	if event.Event != paystack.EventChargeSuccess {
		log.Printf("ignoring webhook event %q", event.Event)
		return nil
	}
	if event.Data.Reference == "" {
		log.Printf("WARNING: charge.success webhook without a reference, ignoring")
		return nil
	}

	booking, err := s.bookings.GetByReference(ctx, event.Data.Reference)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			log.Printf("WARNING: webhook for unknown reference %s, acknowledging", event.Data.Reference)
			return nil
		}
		return err
	}

	amount := currency.FromMinorUnits(event.Data.Amount)
	return s.reconciler.MarkPaid(ctx, booking, strconv.FormatInt(event.Data.ID, 10), methodPaystack, amount, event.Data.Currency)
}
