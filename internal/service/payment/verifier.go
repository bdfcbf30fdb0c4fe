package payment

import (
	"context"
	"math"
	"strconv"

	"github.com/mazoair/flightpay/internal/currency"
	"github.com/mazoair/flightpay/internal/gateway/paystack"
)

// VerifyPayment is the authoritative read-side of the pipeline: it asks the
// gateway for the definitive state of a reference and, only if everything
// checks out, hands the verified facts to the Reconciler. It is safe to call
// any number of times for the same reference; the mutation it triggers is
// idempotent. A client-side timeout elsewhere never loses a payment, because
// this path can always reconcile after the fact.
func (s *PaymentService) VerifyPayment(ctx context.Context, reference string) (*VerificationResult, error) {
	if reference == "" {
		return nil, ErrEmptyReference
	}

	secret, err := s.secret(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.gateway.Verify(ctx, secret, reference)
	if err != nil {
		return nil, err
	}

	if data.Status != string(paystack.StatusSuccess) {
		return nil, &NotSuccessfulError{
			Reference:       reference,
			Status:          data.Status,
			GatewayResponse: data.GatewayResponse,
		}
	}

	booking, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	// Fraud/config safety net, not a rounding nicety: the gateway-reported
	// amount must match what the booking was charged for, within one major
	// unit to absorb the single rounding step at conversion time.
	actual := currency.FromMinorUnits(data.Amount)
	expected := booking.FlightAmount
	if expected == 0 {
		flight, err := s.flights.GetByID(ctx, booking.FlightID)
		if err != nil {
			return nil, err
		}
		expected = flight.Price
	}
	if math.Abs(actual-expected) > s.amountTolerance {
		return nil, &AmountMismatchError{
			Reference: reference,
			Expected:  expected,
			Actual:    actual,
			Currency:  data.Currency,
		}
	}

	if err := s.reconciler.MarkPaid(ctx, booking, strconv.FormatInt(data.ID, 10), methodPaystack, actual, data.Currency); err != nil {
		return nil, err
	}

	return &VerificationResult{
		BookingID:     booking.ID,
		Reference:     reference,
		Amount:        actual,
		Currency:      data.Currency,
		PaymentMethod: methodPaystack,
		Status:        "confirmed",
	}, nil
}
