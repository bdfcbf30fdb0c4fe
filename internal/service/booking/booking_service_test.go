package booking

import (
	"context"
	"testing"

	"github.com/mazoair/flightpay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreatePending(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) SetChargeDetails(ctx context.Context, id int64, reference, method string, amount float64, currency string) error {
	args := m.Called(ctx, id, reference, method, amount, currency)
	return args.Error(0)
}

func (m *MockBookingRepository) MarkPaid(ctx context.Context, id int64, gatewayTransactionID, method string) error {
	args := m.Called(ctx, id, gatewayTransactionID, method)
	return args.Error(0)
}

func (m *MockBookingRepository) Approve(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Cancel(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListPendingVerification(ctx context.Context, limit int) ([]domain.Booking, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) ReleaseSeat(ctx context.Context, flightID int64) error {
	args := m.Called(ctx, flightID)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func TestCreateBooking_SnapshotsFlightPrice(t *testing.T) {
	bookings := &MockBookingRepository{}
	flights := &MockFlightRepository{}
	producer := &MockProducer{}
	ctx := context.Background()

	flights.On("GetByID", ctx, int64(3)).Return(&domain.Flight{ID: 3, Price: 152900, Currency: "NGN"}, nil).Once()
	bookings.On("CreatePending", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	producer.On("Publish", ctx, "booking_events", "ada@example.com", mock.Anything).Return(nil).Once()

	svc := NewBookingService(bookings, flights, producer, "booking_events")
	created, err := svc.CreateBooking(ctx, CreateBookingInput{
		UserID: 42, FlightID: 3, PassengerName: "Ada Obi", Email: "ada@example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, 152900.0, created.FlightAmount)
	assert.Equal(t, "NGN", created.Currency)
	bookings.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestCreateBooking_ValidatesInput(t *testing.T) {
	svc := NewBookingService(&MockBookingRepository{}, &MockFlightRepository{}, nil, "")

	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{UserID: 42, FlightID: 3, Email: "a@b.c"})
	assert.Error(t, err)

	_, err = svc.CreateBooking(context.Background(), CreateBookingInput{UserID: 42, PassengerName: "Ada", Email: "a@b.c"})
	assert.Error(t, err)
}

func TestCreateBooking_PublishFailureDoesNotFail(t *testing.T) {
	bookings := &MockBookingRepository{}
	flights := &MockFlightRepository{}
	producer := &MockProducer{}
	ctx := context.Background()

	flights.On("GetByID", ctx, int64(3)).Return(&domain.Flight{ID: 3, Price: 100, Currency: "NGN"}, nil).Once()
	bookings.On("CreatePending", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	producer.On("Publish", ctx, "booking_events", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	svc := NewBookingService(bookings, flights, producer, "booking_events")
	_, err := svc.CreateBooking(ctx, CreateBookingInput{
		UserID: 42, FlightID: 3, PassengerName: "Ada Obi", Email: "ada@example.com",
	})

	assert.NoError(t, err)
}

func TestCancelBooking_ReleasesSeat(t *testing.T) {
	bookings := &MockBookingRepository{}
	flights := &MockFlightRepository{}
	ctx := context.Background()

	bookings.On("GetByID", ctx, int64(7)).Return(&domain.Booking{
		ID: 7, FlightID: 3, Status: domain.BookingStatusPending,
	}, nil).Once()
	bookings.On("Cancel", ctx, int64(7)).Return(&domain.Booking{
		ID: 7, FlightID: 3, Status: domain.BookingStatusCancelled,
	}, nil).Once()
	flights.On("ReleaseSeat", ctx, int64(3)).Return(nil).Once()

	svc := NewBookingService(bookings, flights, nil, "")
	cancelled, err := svc.CancelBooking(ctx, 7)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
	flights.AssertExpectations(t)
}

func TestCancelBooking_PaidRefused(t *testing.T) {
	bookings := &MockBookingRepository{}
	flights := &MockFlightRepository{}
	ctx := context.Background()

	bookings.On("GetByID", ctx, int64(7)).Return(&domain.Booking{
		ID: 7, FlightID: 3, Paid: true, Status: domain.BookingStatusApproved,
	}, nil).Once()

	svc := NewBookingService(bookings, flights, nil, "")
	_, err := svc.CancelBooking(ctx, 7)

	assert.ErrorIs(t, err, ErrBookingPaid)
	bookings.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
	flights.AssertNotCalled(t, "ReleaseSeat", mock.Anything, mock.Anything)
}

func TestCancelBooking_AlreadyCancelledIsNoOp(t *testing.T) {
	bookings := &MockBookingRepository{}
	ctx := context.Background()

	bookings.On("GetByID", ctx, int64(7)).Return(&domain.Booking{
		ID: 7, FlightID: 3, Status: domain.BookingStatusCancelled,
	}, nil).Once()

	svc := NewBookingService(bookings, &MockFlightRepository{}, nil, "")
	cancelled, err := svc.CancelBooking(ctx, 7)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
	bookings.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
}

func TestApproveBooking_DoesNotMarkPaid(t *testing.T) {
	bookings := &MockBookingRepository{}
	ctx := context.Background()

	bookings.On("Approve", ctx, int64(7)).Return(&domain.Booking{
		ID: 7, Status: domain.BookingStatusApproved, PaymentStatus: domain.PaymentStatusPending,
	}, nil).Once()

	svc := NewBookingService(bookings, &MockFlightRepository{}, nil, "")
	updated, err := svc.ApproveBooking(ctx, 7)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusApproved, updated.Status)
	assert.False(t, updated.Paid)
	bookings.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
