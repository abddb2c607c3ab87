// Package device implements the device repository using PostgreSQL.
package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/nvanschaik/fishtracker-backend/internal/adapter/postgres"
	"github.com/nvanschaik/fishtracker-backend/internal/domain"
)

// Repo provides device persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new device repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const getByIdentifierSQL = `
SELECT id, device_identifier, created_at
FROM devices
WHERE device_identifier = $1`

// GetByIdentifier returns the device with the given external identifier.
// Returns domain.ErrNotFound if no such device is registered.
func (r *Repo) GetByIdentifier(ctx context.Context, identifier string) (*domain.Device, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var d domain.Device
	err := querier.QueryRow(ctx, getByIdentifierSQL, identifier).
		Scan(&d.ID, &d.DeviceIdentifier, &d.CreatedAt)
	if err != nil {
		return nil, mapError(err, "device", uuid.Nil)
	}

	return &d, nil
}

// Create registers a new device. The unique constraint on device_identifier
// surfaces concurrent duplicates as domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, identifier string) (*domain.Device, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	d := domain.Device{ID: uuid.New(), DeviceIdentifier: identifier}
	err := querier.QueryRow(ctx,
		`INSERT INTO devices (id, device_identifier) VALUES ($1, $2) RETURNING created_at`,
		d.ID, identifier).Scan(&d.CreatedAt)
	if err != nil {
		return nil, mapError(err, "device", d.ID)
	}

	return &d, nil
}

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
