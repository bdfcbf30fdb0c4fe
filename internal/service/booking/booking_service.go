package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mazoair/flightpay/internal/domain"
	"github.com/mazoair/flightpay/internal/kafka"
	"github.com/mazoair/flightpay/internal/repository"
)

// ErrBookingPaid rejects cancellation of a booking that already completed
// payment.
var ErrBookingPaid = errors.New("paid booking cannot be cancelled")

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	ApproveBooking(ctx context.Context, id int64) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id int64) (*domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	producer           Producer
	bookingTopic       string
	notificationsTopic string
}

type CreateBookingInput struct {
	UserID        int64  `json:"user_id"`
	FlightID      int64  `json:"flight_id"`
	PassengerName string `json:"passenger_name"`
	Email         string `json:"email"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		flights:      flights,
		producer:     producer,
		bookingTopic: bookingTopic,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking reserves a seat and snapshots the flight's list price as the
// booking's amount of record. Payment fields stay pending until the payment
// pipeline (or a manual approval) moves them.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.FlightID == 0 || input.UserID == 0 {
		return nil, errors.New("flight and user are required")
	}
	if input.PassengerName == "" {
		return nil, errors.New("passenger name is required")
	}
	if input.Email == "" {
		return nil, errors.New("email is required")
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		UserID:        input.UserID,
		FlightID:      input.FlightID,
		PassengerName: input.PassengerName,
		Email:         input.Email,
		FlightAmount:  flight.Price,
		Currency:      flight.Currency,
	}

	if err := s.bookings.CreatePending(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_created", booking)
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// ApproveBooking is the manual path for bank-transfer payments: it sets
// approved without touching paid or payment_status, preserving the one-way
// paid => approved invariant.
func (s *BookingService) ApproveBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	updated, err := s.bookings.Approve(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_approved", updated)
	return updated, nil
}

// CancelBooking releases the seat for an unpaid booking. Paid bookings are
// refused: refunds are a support operation, not a cancellation.
func (s *BookingService) CancelBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Paid {
		return nil, ErrBookingPaid
	}
	if current.Status == domain.BookingStatusCancelled {
		return current, nil
	}

	updated, err := s.bookings.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.flights.ReleaseSeat(ctx, updated.FlightID); err != nil {
		log.Printf("WARNING: failed to release seat on flight %d for cancelled booking %d: %v", updated.FlightID, id, err)
	}

	s.publish(ctx, "booking_cancelled", updated)
	return updated, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		BookingID:     booking.ID,
		FlightID:      booking.FlightID,
		PassengerName: booking.PassengerName,
		Email:         booking.Email,
		Status:        string(booking.Status),
		OccurredAt:    time.Now(),
	}
	key := booking.Email
	if err := s.producer.Publish(ctx, s.bookingTopic, key, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %d: %v", eventType, booking.ID, err)
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			log.Printf("WARNING: failed to publish %s notification for booking %d: %v", eventType, booking.ID, err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
