package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mazoair/flightpay/internal/domain"
)

var ErrBookingNotFound = errors.New("booking not found")

type BookingRepository interface {
	CreatePending(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	SetChargeDetails(ctx context.Context, id int64, reference, method string, amount float64, currency string) error
	MarkPaid(ctx context.Context, id int64, gatewayTransactionID, method string) error
	Approve(ctx context.Context, id int64) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64) (*domain.Booking, error)
	ListPendingVerification(ctx context.Context, limit int) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, user_id, flight_id, passenger_name, email, flight_amount, currency, transaction_ref, payment_method, payment_status, payment_transaction_id, paid, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.FlightID, &b.PassengerName, &b.Email, &b.FlightAmount, &b.Currency, &b.TransactionRef, &b.PaymentMethod, &b.PaymentStatus, &b.PaymentTransactionID, &b.Paid, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) CreatePending(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var available int
	if err := tx.QueryRow(ctx, `UPDATE flights SET available_seats = available_seats - 1, updated_at = now() WHERE id=$1 AND available_seats > 0 RETURNING available_seats`, booking.FlightID).Scan(&available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.New("no available seats")
		}
		return err
	}

	booking.Status = domain.BookingStatusPending
	booking.PaymentStatus = domain.PaymentStatusPending
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (user_id, flight_id, passenger_name, email, flight_amount, currency, payment_status, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`, booking.UserID, booking.FlightID, booking.PassengerName, booking.Email, booking.FlightAmount, booking.Currency, booking.PaymentStatus, booking.Status).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	return scanBooking(row)
}

func (r *PGBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE transaction_ref=$1`, reference)
	return scanBooking(row)
}

// SetChargeDetails records pre-payment bookkeeping at charge-initiation time:
// the reference the gateway will know this booking by, plus the amount and
// currency the charge was built from.
func (r *PGBookingRepository) SetChargeDetails(ctx context.Context, id int64, reference, method string, amount float64, currency string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE bookings SET transaction_ref=$1, payment_method=$2, flight_amount=$3, currency=$4, updated_at=now() WHERE id=$5`, reference, method, amount, currency, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// MarkPaid assigns the post-payment terminal state. The assignment is
// idempotent: re-applying it to an already approved booking changes nothing
// but updated_at, which is what makes racing reconcile paths safe.
func (r *PGBookingRepository) MarkPaid(ctx context.Context, id int64, gatewayTransactionID, method string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE bookings SET paid=true, status=$1, payment_status=$2, payment_transaction_id=$3, payment_method=$4, updated_at=now() WHERE id=$5`,
		domain.BookingStatusApproved, domain.PaymentStatusCompleted, gatewayTransactionID, method, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// Approve is the manual/bank-transfer path: approved without paid.
func (r *PGBookingRepository) Approve(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+bookingColumns, domain.BookingStatusApproved, id)
	return scanBooking(row)
}

// Cancel refuses to touch paid bookings; the paid=false guard makes a race
// with the reconciler resolve in the reconciler's favor.
func (r *PGBookingRepository) Cancel(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 AND paid=false RETURNING `+bookingColumns, domain.BookingStatusCancelled, id)
	return scanBooking(row)
}

// ListPendingVerification returns bookings that initiated a charge but never
// reached a terminal payment state, for the worker's reconciliation sweep.
func (r *PGBookingRepository) ListPendingVerification(ctx context.Context, limit int) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE payment_status=$1 AND transaction_ref <> '' ORDER BY updated_at LIMIT $2`, domain.PaymentStatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.FlightID, &b.PassengerName, &b.Email, &b.FlightAmount, &b.Currency, &b.TransactionRef, &b.PaymentMethod, &b.PaymentStatus, &b.PaymentTransactionID, &b.Paid, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		pending = append(pending, b)
	}
	return pending, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
