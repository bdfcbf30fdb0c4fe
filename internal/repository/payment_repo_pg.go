package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mazoair/flightpay/internal/domain"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository interface {
	UpsertByReference(ctx context.Context, payment *domain.Payment) error
	GetByReference(ctx context.Context, reference string) (*domain.Payment, error)
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

// UpsertByReference writes the audit row for a verified charge. The unique
// transaction_id key is what keeps webhook duplicates and repeated verify
// calls from producing duplicate revenue rows.
func (r *PGPaymentRepository) UpsertByReference(ctx context.Context, payment *domain.Payment) error {
	return r.db.QueryRow(ctx, `INSERT INTO payments (booking_id, user_id, amount, currency, payment_method, transaction_id, gateway_reference, status, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (transaction_id) DO UPDATE SET gateway_reference=EXCLUDED.gateway_reference, status=EXCLUDED.status
		RETURNING id`,
		payment.BookingID, payment.UserID, payment.Amount, payment.Currency, payment.PaymentMethod, payment.TransactionID, payment.GatewayReference, payment.Status, payment.PaidAt).
		Scan(&payment.ID)
}

func (r *PGPaymentRepository) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT id, booking_id, user_id, amount, currency, payment_method, transaction_id, gateway_reference, status, paid_at FROM payments WHERE transaction_id=$1`, reference)
	var p domain.Payment
	if err := row.Scan(&p.ID, &p.BookingID, &p.UserID, &p.Amount, &p.Currency, &p.PaymentMethod, &p.TransactionID, &p.GatewayReference, &p.Status, &p.PaidAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
