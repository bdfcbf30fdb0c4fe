package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mazoair/flightpay/internal/domain"
)

// ErrCredentialNotFound means the gateway has no active key configured. It is
// a configuration problem, distinct from any payment failure, and callers are
// expected to surface it as such.
var ErrCredentialNotFound = errors.New("gateway credential not found")

type CredentialRepository interface {
	GetActive(ctx context.Context, provider, environment, role string) (*domain.GatewayCredential, error)
	ActiveSecret(ctx context.Context, provider, environment, role string) (string, error)
}

type PGCredentialRepository struct {
	db *pgxpool.Pool
}

func NewCredentialRepository(db *pgxpool.Pool) CredentialRepository {
	return &PGCredentialRepository{db: db}
}

func (r *PGCredentialRepository) GetActive(ctx context.Context, provider, environment, role string) (*domain.GatewayCredential, error) {
	row := r.db.QueryRow(ctx, `SELECT id, provider, environment, role, secret, active, created_at, updated_at FROM gateway_credentials WHERE provider=$1 AND environment=$2 AND role=$3 AND active=true`, provider, environment, role)
	var c domain.GatewayCredential
	if err := row.Scan(&c.ID, &c.Provider, &c.Environment, &c.Role, &c.Secret, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGCredentialRepository) ActiveSecret(ctx context.Context, provider, environment, role string) (string, error) {
	cred, err := r.GetActive(ctx, provider, environment, role)
	if err != nil {
		return "", err
	}
	return cred.Secret, nil
}

var _ CredentialRepository = (*PGCredentialRepository)(nil)
