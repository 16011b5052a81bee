package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sms-bridge/internal/domain"
)

// ErrNotFound indica que no hay fila para la clave pedida.
var ErrNotFound = errors.New("not found")

type StatusRepository interface {
	Upsert(ctx context.Context, status domain.DeliveryStatus) error
	GetBySID(ctx context.Context, messageSID string) (domain.DeliveryStatus, error)
}

type PgStatusRepository struct {
	pool *pgxpool.Pool
}

func NewPgStatusRepository(pool *pgxpool.Pool) *PgStatusRepository {
	return &PgStatusRepository{pool: pool}
}

func (r *PgStatusRepository) Upsert(ctx context.Context, status domain.DeliveryStatus) error {
	const query = `
		INSERT INTO message_status (message_sid, status, error_code, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (message_sid) DO UPDATE
		SET status = EXCLUDED.status,
		    error_code = EXCLUDED.error_code,
		    updated_at = EXCLUDED.updated_at
	`

	var errorCode interface{}
	if status.ErrorCode != "" {
		errorCode = status.ErrorCode
	}

	_, err := r.pool.Exec(ctx, query,
		status.MessageSID,
		status.Status,
		errorCode,
		status.UpdatedAt,
	)
	return err
}

func (r *PgStatusRepository) GetBySID(ctx context.Context, messageSID string) (domain.DeliveryStatus, error) {
	const query = `
		SELECT message_sid, status, error_code, updated_at
		FROM message_status
		WHERE message_sid = $1
	`

	var (
		st        domain.DeliveryStatus
		errorCode *string
	)
	err := r.pool.QueryRow(ctx, query, messageSID).Scan(
		&st.MessageSID,
		&st.Status,
		&errorCode,
		&st.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DeliveryStatus{}, ErrNotFound
	}
	if err != nil {
		return domain.DeliveryStatus{}, err
	}
	if errorCode != nil {
		st.ErrorCode = *errorCode
	}
	return st, nil
}
