package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/mazoair/flightpay/internal/currency"
	"github.com/mazoair/flightpay/internal/domain"
	"github.com/mazoair/flightpay/internal/gateway/paystack"
	"github.com/mazoair/flightpay/internal/repository"
)

type PaymentUseCase interface {
	QuoteBooking(ctx context.Context, bookingID, userID int64) (*QuoteResult, error)
	InitiatePayment(ctx context.Context, input InitiatePaymentInput) (*InitiateResult, error)
	ChargeCard(ctx context.Context, input ChargeCardInput) (*ChargeResult, error)
	SubmitPIN(ctx context.Context, pin, reference string) (*ChargeResult, error)
	SubmitOTP(ctx context.Context, otp, reference string) (*ChargeResult, error)
	VerifyPayment(ctx context.Context, reference string) (*VerificationResult, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

// Gateway is the outbound Paystack surface the service depends on.
type Gateway interface {
	Initialize(ctx context.Context, secret string, req paystack.InitializeRequest) (*paystack.InitializeData, error)
	Charge(ctx context.Context, secret string, req paystack.ChargeRequest) (*paystack.ChargeData, error)
	SubmitPIN(ctx context.Context, secret, pin, reference string) (*paystack.ChargeData, error)
	SubmitOTP(ctx context.Context, secret, otp, reference string) (*paystack.ChargeData, error)
	Verify(ctx context.Context, secret, reference string) (*paystack.VerifyData, error)
}

// Credentials resolves the active secret key for a gateway. Injected rather
// than read from a process-wide singleton so tests and multi-tenant setups
// can swap it.
type Credentials interface {
	ActiveSecret(ctx context.Context, provider, environment, role string) (string, error)
}

// Sessions is the advisory charge-session store. Every method is best-effort
// from the caller's point of view: a missing session never fails a flow.
type Sessions interface {
	SaveChargeSession(ctx context.Context, session domain.ChargeSession, ttl time.Duration) error
	GetChargeSession(ctx context.Context, reference string) (*domain.ChargeSession, error)
	DeleteChargeSession(ctx context.Context, reference string) error
}

// Producer publishes reconciliation events. Retries are bounded: the events
// are best-effort and a stuck broker must not hold the payment path hostage.
type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

// QuoteResult is the payable amount for a booking in the merchant's
// settlement currency, derived from the booking's currency of record.
type QuoteResult struct {
	BookingID        int64   `json:"booking_id"`
	OriginalAmount   float64 `json:"original_amount"`
	OriginalCurrency string  `json:"original_currency"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	MinorUnits       int64   `json:"minor_units"`
	Rate             float64 `json:"rate"`
	Approximate      bool    `json:"approximate"`
}

type InitiatePaymentInput struct {
	BookingID int64   `json:"booking_id"`
	UserID    int64   `json:"user_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

type InitiateResult struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
}

type ChargeCardInput struct {
	Email     string        `json:"email"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
	BookingID int64         `json:"booking_id"`
	UserID    int64         `json:"user_id"`
	Card      paystack.Card `json:"card"`
}

// ChargeResult is the shared outcome of charge initiation and step-up
// submissions.
type ChargeResult struct {
	Status           paystack.ChargeStatus `json:"status"`
	Reference        string                `json:"reference"`
	Message          string                `json:"message"`
	AuthorizationURL string                `json:"authorization_url,omitempty"`
}

type VerificationResult struct {
	BookingID     int64   `json:"booking_id"`
	Reference     string  `json:"reference"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	PaymentMethod string  `json:"payment_method"`
	Status        string  `json:"status"`
}

const methodPaystack = "paystack"

var defaultChannels = []string{"card", "bank", "ussd", "qr", "mobile_money", "bank_transfer"}

type PaymentService struct {
	bookings    repository.BookingRepository
	flights     repository.FlightRepository
	credentials Credentials
	sessions    Sessions
	gateway     Gateway
	reconciler  *Reconciler

	environment     string
	callbackURL     string
	settlement      string
	rates           *currency.Table
	sessionTTL      time.Duration
	amountTolerance float64
}

type PaymentServiceOption func(*PaymentService)

func WithSessionTTL(ttl time.Duration) PaymentServiceOption {
	return func(s *PaymentService) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

func WithAmountTolerance(tolerance float64) PaymentServiceOption {
	return func(s *PaymentService) {
		if tolerance > 0 {
			s.amountTolerance = tolerance
		}
	}
}

func WithCallbackURL(url string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.callbackURL = url
	}
}

func WithRateTable(table *currency.Table) PaymentServiceOption {
	return func(s *PaymentService) {
		if table != nil {
			s.rates = table
		}
	}
}

func NewPaymentService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	credentials Credentials,
	sessions Sessions,
	gateway Gateway,
	reconciler *Reconciler,
	environment string,
	settlement string,
	opts ...PaymentServiceOption,
) *PaymentService {
	if settlement == "" {
		settlement = currency.SettlementCurrency
	}
	service := &PaymentService{
		bookings:        bookings,
		flights:         flights,
		credentials:     credentials,
		sessions:        sessions,
		gateway:         gateway,
		reconciler:      reconciler,
		environment:     environment,
		settlement:      settlement,
		rates:           currency.NewTable(nil, settlement, ""),
		sessionTTL:      30 * time.Minute,
		amountTolerance: 1.0,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// QuoteBooking prices a booking in the settlement currency. Flight prices may
// be listed in a foreign currency; the charge itself must be in the single
// currency the merchant account settles in, so callers quote first and charge
// the quoted amount.
func (s *PaymentService) QuoteBooking(ctx context.Context, bookingID, userID int64) (*QuoteResult, error) {
	if bookingID == 0 || userID == 0 {
		return nil, ErrMissingFields
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, repository.ErrBookingNotFound
	}

	conv, err := s.rates.Convert(booking.FlightAmount, booking.Currency)
	if err != nil {
		return nil, err
	}
	if conv.Approximate {
		log.Printf("WARNING: no exchange rate for %s, booking %d quoted with fallback rate %.2f", booking.Currency, bookingID, conv.Rate)
	}

	return &QuoteResult{
		BookingID:        bookingID,
		OriginalAmount:   conv.OriginalAmount,
		OriginalCurrency: conv.OriginalCurrency,
		Amount:           conv.ConvertedAmount,
		Currency:         conv.ConvertedCurrency,
		MinorUnits:       conv.MinorUnits,
		Rate:             conv.Rate,
		Approximate:      conv.Approximate,
	}, nil
}

// InitiatePayment starts a redirect-flow charge: the caller sends the payer's
// browser to the returned authorization URL. The reference is assigned here
// and written onto the booking so verification can find it later.
func (s *PaymentService) InitiatePayment(ctx context.Context, input InitiatePaymentInput) (*InitiateResult, error) {
	if input.BookingID == 0 || input.UserID == 0 || input.Amount <= 0 {
		return nil, ErrMissingFields
	}
	if err := s.checkCurrency(input.Currency); err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != input.UserID {
		return nil, repository.ErrBookingNotFound
	}

	secret, err := s.secret(ctx)
	if err != nil {
		return nil, err
	}

	reference := newReference(input.BookingID, input.UserID)

	data, err := s.gateway.Initialize(ctx, secret, paystack.InitializeRequest{
		Email:       booking.Email,
		Amount:      currency.ToMinorUnits(input.Amount),
		Currency:    strings.ToUpper(input.Currency),
		Reference:   reference,
		CallbackURL: s.callbackURL,
		Metadata:    metadataFor(input.BookingID, input.UserID),
		Channels:    defaultChannels,
	})
	if err != nil {
		return nil, err
	}

	if err := s.bookings.SetChargeDetails(ctx, input.BookingID, reference, methodPaystack, input.Amount, strings.ToUpper(input.Currency)); err != nil {
		return nil, fmt.Errorf("record charge details on booking %d: %w", input.BookingID, err)
	}

	return &InitiateResult{
		Reference:        reference,
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
	}, nil
}

// ChargeCard submits an inline card charge and routes on the gateway's
// declared next action: success reconciles immediately, send_pin/send_otp
// open a step-up session, open_url hands back a 3-D Secure redirect.
func (s *PaymentService) ChargeCard(ctx context.Context, input ChargeCardInput) (*ChargeResult, error) {
	if input.Email == "" || input.Amount <= 0 || input.BookingID == 0 || input.UserID == 0 || input.Card.Number == "" || input.Card.CVV == "" {
		return nil, ErrMissingFields
	}
	if err := s.checkCurrency(input.Currency); err != nil {
		return nil, err
	}

	secret, err := s.secret(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.gateway.Charge(ctx, secret, paystack.ChargeRequest{
		Email:       input.Email,
		Amount:      currency.ToMinorUnits(input.Amount),
		Currency:    strings.ToUpper(input.Currency),
		Card:        input.Card,
		CallbackURL: s.callbackURL,
		Metadata:    metadataFor(input.BookingID, input.UserID),
	})
	if err != nil {
		return nil, err
	}

	return s.chargeOutcome(ctx, data, input.BookingID, input.UserID)
}

// SubmitPIN resumes a charge awaiting a card PIN. The gateway decides whether
// the factor is correct and whether another factor follows (send_otp).
func (s *PaymentService) SubmitPIN(ctx context.Context, pin, reference string) (*ChargeResult, error) {
	if pin == "" || reference == "" {
		return nil, ErrMissingFields
	}

	secret, err := s.secret(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.gateway.SubmitPIN(ctx, secret, pin, reference)
	if err != nil {
		return nil, err
	}

	bookingID, userID := s.chargeLinkage(ctx, data, reference)
	return s.chargeOutcome(ctx, data, bookingID, userID)
}

// SubmitOTP resumes a charge awaiting an OTP, the second step of the chained
// PIN-required -> OTP-required -> terminal state machine.
func (s *PaymentService) SubmitOTP(ctx context.Context, otp, reference string) (*ChargeResult, error) {
	if otp == "" || reference == "" {
		return nil, ErrMissingFields
	}

	secret, err := s.secret(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.gateway.SubmitOTP(ctx, secret, otp, reference)
	if err != nil {
		return nil, err
	}

	bookingID, userID := s.chargeLinkage(ctx, data, reference)
	return s.chargeOutcome(ctx, data, bookingID, userID)
}

func (s *PaymentService) chargeOutcome(ctx context.Context, data *paystack.ChargeData, bookingID, userID int64) (*ChargeResult, error) {
	status, ok := paystack.ParseChargeStatus(data.Status)
	if !ok {
		return nil, &UnexpectedStatusError{Reference: data.Reference, Status: data.Status}
	}

	result := &ChargeResult{Status: status, Reference: data.Reference}

	switch status {
	case paystack.StatusSuccess:
		// The gateway already confirmed funds capture, so reconcile now
		// rather than waiting for a verify call. Failure here is logged
		// loudly but never fails the charge outcome: the verify path can
		// still reconcile later using the reference.
		s.autoApprove(ctx, bookingID, data)
		result.Message = "Payment successful"

	case paystack.StatusSendPIN:
		s.saveSession(ctx, data.Reference, bookingID, userID)
		result.Message = "Please provide your card PIN"

	case paystack.StatusSendOTP:
		s.saveSession(ctx, data.Reference, bookingID, userID)
		result.Message = "Please provide the OTP sent to your phone"

	case paystack.StatusPending:
		result.Message = "Transaction is being processed"

	case paystack.StatusOpenURL:
		result.AuthorizationURL = data.URL
		result.Message = "3D Secure authentication required"
	}

	return result, nil
}

// chargeLinkage resolves which booking a step-up response belongs to. The
// gateway-returned metadata is authoritative; the local session is only an
// advisory fallback and its absence is expected.
func (s *PaymentService) chargeLinkage(ctx context.Context, data *paystack.ChargeData, reference string) (int64, int64) {
	bookingID := parseID(data.Metadata.BookingID)
	userID := parseID(data.Metadata.UserID)
	if bookingID != 0 {
		return bookingID, userID
	}

	if s.sessions != nil {
		session, err := s.sessions.GetChargeSession(ctx, reference)
		if err != nil {
			log.Printf("WARNING: charge session lookup failed for %s: %v", reference, err)
		} else if session != nil {
			return session.BookingID, session.UserID
		}
	}
	return 0, 0
}

func (s *PaymentService) autoApprove(ctx context.Context, bookingID int64, data *paystack.ChargeData) {
	if bookingID == 0 {
		log.Printf("WARNING: no booking linkage for successful charge %s, skipping auto-approve; verify can reconcile it later", data.Reference)
		return
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		log.Printf("WARNING: auto-approve lookup failed for booking %d (ref %s): %v", bookingID, data.Reference, err)
		return
	}
	if booking.TransactionRef == "" {
		booking.TransactionRef = data.Reference
		if err := s.bookings.SetChargeDetails(ctx, booking.ID, data.Reference, methodPaystack, booking.FlightAmount, booking.Currency); err != nil {
			log.Printf("WARNING: failed to attach reference %s to booking %d: %v", data.Reference, booking.ID, err)
		}
	}

	if err := s.reconciler.MarkPaid(ctx, booking, strconv.FormatInt(data.ID, 10), methodPaystack, booking.FlightAmount, booking.Currency); err != nil {
		log.Printf("WARNING: auto-approve reconcile failed for booking %d (ref %s): %v", bookingID, data.Reference, err)
	}
}

func (s *PaymentService) saveSession(ctx context.Context, reference string, bookingID, userID int64) {
	if s.sessions == nil || reference == "" || bookingID == 0 {
		return
	}
	session := domain.ChargeSession{
		Reference: reference,
		BookingID: bookingID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.SaveChargeSession(ctx, session, s.sessionTTL); err != nil {
		log.Printf("WARNING: failed to store charge session %s: %v", reference, err)
	}
}

func (s *PaymentService) checkCurrency(code string) error {
	if strings.ToUpper(code) != s.settlement {
		return &UnsupportedCurrencyError{Currency: code, Supported: s.settlement}
	}
	return nil
}

func (s *PaymentService) secret(ctx context.Context) (string, error) {
	secret, err := s.credentials.ActiveSecret(ctx, paystack.Provider, s.environment, paystack.RoleSecret)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return "", ErrGatewayNotConfigured
		}
		return "", fmt.Errorf("load gateway credential: %w", err)
	}
	return secret, nil
}

func metadataFor(bookingID, userID int64) paystack.Metadata {
	return paystack.Metadata{
		BookingID: strconv.FormatInt(bookingID, 10),
		UserID:    strconv.FormatInt(userID, 10),
	}
}

func newReference(bookingID, userID int64) string {
	return fmt.Sprintf("FLIGHT_%d_%d_%d", bookingID, userID, time.Now().UnixMilli())
}

func parseID(raw string) int64 {
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

var _ PaymentUseCase = (*PaymentService)(nil)
