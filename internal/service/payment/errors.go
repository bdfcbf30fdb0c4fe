package payment

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyReference = errors.New("payment reference is required")
	ErrMissingFields  = errors.New("missing required fields")

	// ErrGatewayNotConfigured means no active secret key exists for the
	// gateway. It is a configuration error, not a payment failure.
	ErrGatewayNotConfigured = errors.New("paystack gateway not configured: add an active secret key in gateway credentials")

	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// UnsupportedCurrencyError rejects a charge before any network call when the
// requested currency is not the merchant's settlement currency.
type UnsupportedCurrencyError struct {
	Currency  string
	Supported string
}

func (e *UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("currency %s not supported by merchant account, charges must be in %s", e.Currency, e.Supported)
}

// NotSuccessfulError is a terminal non-success verification outcome. It
// echoes the gateway's own status string and human-readable response.
type NotSuccessfulError struct {
	Reference       string
	Status          string
	GatewayResponse string
}

func (e *NotSuccessfulError) Error() string {
	if e.GatewayResponse != "" {
		return fmt.Sprintf("payment %s not successful: status %q (%s)", e.Reference, e.Status, e.GatewayResponse)
	}
	return fmt.Sprintf("payment %s not successful: status %q", e.Reference, e.Status)
}

// AmountMismatchError carries both amounts so a support ticket can be triaged
// without re-querying the gateway. Mismatches are never auto-corrected.
type AmountMismatchError struct {
	Reference string
	Expected  float64
	Actual    float64
	Currency  string
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amount mismatch for %s: expected %.2f %s, gateway reports %.2f %s", e.Reference, e.Expected, e.Currency, e.Actual, e.Currency)
}

// UnexpectedStatusError fails closed on a charge status outside the known
// set. An unrecognized status is never treated as success.
type UnexpectedStatusError struct {
	Reference string
	Status    string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected gateway status %q for reference %s", e.Status, e.Reference)
}
