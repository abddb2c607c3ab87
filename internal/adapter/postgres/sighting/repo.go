// Package sighting implements the device sighting ledger using PostgreSQL.
// Sightings are append-only rows keyed by device and ordered by sighting
// time; resolution joins the fish catalog with a LEFT JOIN so a dangling
// species reference degrades to a nil Fish instead of failing the read.
package sighting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/nvanschaik/fishtracker-backend/internal/adapter/postgres"
	"github.com/nvanschaik/fishtracker-backend/internal/domain"
)

// Repo provides sighting ledger persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new sighting repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Raw SQL
// ---------------------------------------------------------------------------

// appendIfAbsentSQL inserts the sighting only when no sighting of the same
// fish on the same device exists after the cutoff. Doing the check and the
// insert in one statement keeps concurrent appends from double-recording
// within the window.
const appendIfAbsentSQL = `
INSERT INTO sightings (id, device_id, fish_id, image_url, sighted_at)
SELECT $1, $2, $3, $4, $5
WHERE NOT EXISTS (
    SELECT 1 FROM sightings
    WHERE device_id = $2 AND fish_id = $3 AND sighted_at > $6
)
RETURNING created_at`

const latestForFishSQL = `
SELECT id, device_id, fish_id, image_url, sighted_at, created_at
FROM sightings
WHERE device_id = $1 AND fish_id = $2
ORDER BY sighted_at DESC, created_at DESC
LIMIT 1`

const listResolvedSQL = `
SELECT
    s.id, s.device_id, s.fish_id, s.image_url, s.sighted_at, s.created_at,
    f.id, f.name, f.family, f.min_size_cm, f.max_size_cm,
    f.depth_range_min_m, f.depth_range_max_m, f.water_type, f.description,
    f.color_description, f.environment, f.region, f.conservation_status,
    f.cons_status_description, f.created_at
FROM sightings s
LEFT JOIN fish f ON f.id = s.fish_id
WHERE s.device_id = $1
ORDER BY s.sighted_at, s.created_at`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// AppendIfAbsent appends a sighting unless the same device+fish pair was
// already sighted within the trailing window ending at sightedAt. Returns
// the appended sighting and true, or nil and false when suppressed.
func (r *Repo) AppendIfAbsent(ctx context.Context, deviceID, fishID uuid.UUID, imageURL string, sightedAt time.Time, window time.Duration) (*domain.Sighting, bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	s := domain.Sighting{
		ID:        uuid.New(),
		DeviceID:  deviceID,
		FishID:    fishID,
		ImageURL:  imageURL,
		SightedAt: sightedAt,
	}
	cutoff := sightedAt.Add(-window)

	err := querier.QueryRow(ctx, appendIfAbsentSQL,
		s.ID, deviceID, fishID, imageURL, sightedAt, cutoff,
	).Scan(&s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, mapError(err, "sighting", s.ID)
	}

	return &s, true, nil
}

// LatestForFish returns the most recent sighting of a fish on a device.
// Returns domain.ErrNotFound when the pair has never been sighted.
func (r *Repo) LatestForFish(ctx context.Context, deviceID, fishID uuid.UUID) (*domain.Sighting, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var s domain.Sighting
	err := querier.QueryRow(ctx, latestForFishSQL, deviceID, fishID).
		Scan(&s.ID, &s.DeviceID, &s.FishID, &s.ImageURL, &s.SightedAt, &s.CreatedAt)
	if err != nil {
		return nil, mapError(err, "sighting", uuid.Nil)
	}

	return &s, nil
}

// ListResolvedByDevice returns the device's sightings in chronological order
// with the species reference expanded. A sighting whose species row is gone
// comes back with Fish == nil. A device with no sightings yields an empty
// slice, not an error; device existence is the caller's concern.
func (r *Repo) ListResolvedByDevice(ctx context.Context, deviceID uuid.UUID) ([]domain.ResolvedSighting, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listResolvedSQL, deviceID)
	if err != nil {
		return nil, fmt.Errorf("list sightings for device %s: %w", deviceID, err)
	}
	defer rows.Close()

	resolved := []domain.ResolvedSighting{}
	for rows.Next() {
		rs, err := scanResolved(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sighting: %w", err)
		}
		resolved = append(resolved, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sightings for device %s: %w", deviceID, err)
	}

	return resolved, nil
}

// ---------------------------------------------------------------------------
// Row scanning
// ---------------------------------------------------------------------------

func scanResolved(rows pgx.Rows) (domain.ResolvedSighting, error) {
	var (
		rs        domain.ResolvedSighting
		fishID    *uuid.UUID
		name      *string
		createdAt *time.Time
		f         domain.FishSpecies
	)

	err := rows.Scan(
		&rs.ID, &rs.DeviceID, &rs.FishID, &rs.ImageURL, &rs.SightedAt, &rs.CreatedAt,
		&fishID, &name, &f.Family, &f.MinSizeCm, &f.MaxSizeCm,
		&f.DepthRangeMinM, &f.DepthRangeMaxM, &f.WaterType, &f.Description,
		&f.ColorDescription, &f.Environment, &f.Region, &f.ConservationStatus,
		&f.ConsStatusDescription, &createdAt,
	)
	if err != nil {
		return domain.ResolvedSighting{}, err
	}

	if fishID != nil {
		f.ID = *fishID
		if name != nil {
			f.Name = *name
		}
		if createdAt != nil {
			f.CreatedAt = *createdAt
		}
		rs.Fish = &f
	}

	return rs, nil
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

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
