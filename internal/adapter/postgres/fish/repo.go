// Package fish implements the fish catalog repository using PostgreSQL.
// It manages the fish table plus four child tables (colors, predators,
// fun facts, images). Species rows are insert-only from this subsystem;
// child batches are inserted independently of each other.
package fish

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/nvanschaik/fishtracker-backend/internal/adapter/postgres"
	"github.com/nvanschaik/fishtracker-backend/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides fish catalog persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new fish catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Raw SQL for reads
// ---------------------------------------------------------------------------

const speciesColumns = `id, name, family, min_size_cm, max_size_cm,
    depth_range_min_m, depth_range_max_m, water_type, description,
    color_description, environment, region, conservation_status,
    cons_status_description, created_at`

const getByNameSQL = `SELECT ` + speciesColumns + ` FROM fish WHERE name = $1`

const getByIDSQL = `SELECT ` + speciesColumns + ` FROM fish WHERE id = $1`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByName returns the species with the exact (case-sensitive) name, with
// all child collections loaded. Returns domain.ErrNotFound if absent.
func (r *Repo) GetByName(ctx context.Context, name string) (*domain.FishSpecies, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	species, err := scanSpecies(querier.QueryRow(ctx, getByNameSQL, name))
	if err != nil {
		return nil, mapError(err, "fish", uuid.Nil)
	}

	if err := r.loadChildren(ctx, &species); err != nil {
		return nil, err
	}

	return &species, nil
}

// GetByID returns the species by ID with all child collections loaded.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.FishSpecies, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	species, err := scanSpecies(querier.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return nil, mapError(err, "fish", id)
	}

	if err := r.loadChildren(ctx, &species); err != nil {
		return nil, err
	}

	return &species, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new species row. The unique constraint on name makes this
// an insert-if-absent primitive: a concurrent duplicate surfaces as
// domain.ErrAlreadyExists, which callers resolve by re-reading.
func (r *Repo) Create(ctx context.Context, species *domain.FishSpecies) (*domain.FishSpecies, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := psql.Insert("fish").
		Columns("id", "name", "family", "min_size_cm", "max_size_cm",
			"depth_range_min_m", "depth_range_max_m", "water_type", "description",
			"color_description", "environment", "region", "conservation_status",
			"cons_status_description").
		Values(species.ID, species.Name, species.Family, species.MinSizeCm,
			species.MaxSizeCm, species.DepthRangeMinM, species.DepthRangeMaxM,
			species.WaterType, species.Description, species.ColorDescription,
			species.Environment, species.Region, species.ConservationStatus,
			species.ConsStatusDescription).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build fish insert: %w", err)
	}

	created := *species
	if err := querier.QueryRow(ctx, query, args...).Scan(&created.CreatedAt); err != nil {
		return nil, mapError(err, "fish", species.ID)
	}

	return &created, nil
}

// InsertColors inserts a batch of colors for a species in one statement.
// An empty batch is a no-op.
func (r *Repo) InsertColors(ctx context.Context, fishID uuid.UUID, names []string) ([]domain.FishColor, error) {
	if len(names) == 0 {
		return []domain.FishColor{}, nil
	}

	builder := psql.Insert("fish_colors").Columns("id", "fish_id", "color_name")
	colors := make([]domain.FishColor, len(names))
	for i, name := range names {
		colors[i] = domain.FishColor{ID: uuid.New(), FishID: fishID, ColorName: name}
		builder = builder.Values(colors[i].ID, fishID, name)
	}

	if err := r.execInsert(ctx, builder, "fish_color", fishID); err != nil {
		return nil, err
	}

	return colors, nil
}

// InsertPredators inserts a batch of predators for a species in one statement.
func (r *Repo) InsertPredators(ctx context.Context, fishID uuid.UUID, names []string) ([]domain.Predator, error) {
	if len(names) == 0 {
		return []domain.Predator{}, nil
	}

	builder := psql.Insert("predators").Columns("id", "fish_id", "predator_name")
	predators := make([]domain.Predator, len(names))
	for i, name := range names {
		predators[i] = domain.Predator{ID: uuid.New(), FishID: fishID, PredatorName: name}
		builder = builder.Values(predators[i].ID, fishID, name)
	}

	if err := r.execInsert(ctx, builder, "predator", fishID); err != nil {
		return nil, err
	}

	return predators, nil
}

// InsertFunFacts inserts a batch of fun facts for a species in one statement.
func (r *Repo) InsertFunFacts(ctx context.Context, fishID uuid.UUID, descriptions []string) ([]domain.FunFact, error) {
	if len(descriptions) == 0 {
		return []domain.FunFact{}, nil
	}

	builder := psql.Insert("fun_facts").Columns("id", "fish_id", "description")
	facts := make([]domain.FunFact, len(descriptions))
	for i, desc := range descriptions {
		facts[i] = domain.FunFact{ID: uuid.New(), FishID: fishID, Description: desc}
		builder = builder.Values(facts[i].ID, fishID, desc)
	}

	if err := r.execInsert(ctx, builder, "fun_fact", fishID); err != nil {
		return nil, err
	}

	return facts, nil
}

// InsertImages inserts a batch of binary image payloads for a species.
func (r *Repo) InsertImages(ctx context.Context, fishID uuid.UUID, blobs [][]byte) ([]domain.FishImage, error) {
	if len(blobs) == 0 {
		return []domain.FishImage{}, nil
	}

	builder := psql.Insert("fish_images").Columns("id", "fish_id", "image_blob")
	images := make([]domain.FishImage, len(blobs))
	for i, blob := range blobs {
		images[i] = domain.FishImage{ID: uuid.New(), FishID: fishID, Blob: blob}
		builder = builder.Values(images[i].ID, fishID, blob)
	}

	if err := r.execInsert(ctx, builder, "fish_image", fishID); err != nil {
		return nil, err
	}

	return images, nil
}

func (r *Repo) execInsert(ctx context.Context, builder sq.InsertBuilder, entity string, fishID uuid.UUID) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build %s insert: %w", entity, err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	if _, err := querier.Exec(ctx, query, args...); err != nil {
		return mapError(err, entity, fishID)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Child loading
// ---------------------------------------------------------------------------

func (r *Repo) loadChildren(ctx context.Context, species *domain.FishSpecies) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	species.Colors = []domain.FishColor{}
	rows, err := querier.Query(ctx,
		`SELECT id, fish_id, color_name FROM fish_colors WHERE fish_id = $1 ORDER BY color_name`,
		species.ID)
	if err != nil {
		return fmt.Errorf("load fish colors: %w", err)
	}
	for rows.Next() {
		var c domain.FishColor
		if err := rows.Scan(&c.ID, &c.FishID, &c.ColorName); err != nil {
			rows.Close()
			return fmt.Errorf("scan fish color: %w", err)
		}
		species.Colors = append(species.Colors, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load fish colors: %w", err)
	}

	species.Predators = []domain.Predator{}
	rows, err = querier.Query(ctx,
		`SELECT id, fish_id, predator_name FROM predators WHERE fish_id = $1 ORDER BY predator_name`,
		species.ID)
	if err != nil {
		return fmt.Errorf("load predators: %w", err)
	}
	for rows.Next() {
		var p domain.Predator
		if err := rows.Scan(&p.ID, &p.FishID, &p.PredatorName); err != nil {
			rows.Close()
			return fmt.Errorf("scan predator: %w", err)
		}
		species.Predators = append(species.Predators, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load predators: %w", err)
	}

	species.FunFacts = []domain.FunFact{}
	rows, err = querier.Query(ctx,
		`SELECT id, fish_id, description FROM fun_facts WHERE fish_id = $1 ORDER BY description`,
		species.ID)
	if err != nil {
		return fmt.Errorf("load fun facts: %w", err)
	}
	for rows.Next() {
		var f domain.FunFact
		if err := rows.Scan(&f.ID, &f.FishID, &f.Description); err != nil {
			rows.Close()
			return fmt.Errorf("scan fun fact: %w", err)
		}
		species.FunFacts = append(species.FunFacts, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load fun facts: %w", err)
	}

	species.Images = []domain.FishImage{}
	rows, err = querier.Query(ctx,
		`SELECT id, fish_id, image_blob FROM fish_images WHERE fish_id = $1 ORDER BY id`,
		species.ID)
	if err != nil {
		return fmt.Errorf("load fish images: %w", err)
	}
	for rows.Next() {
		var img domain.FishImage
		if err := rows.Scan(&img.ID, &img.FishID, &img.Blob); err != nil {
			rows.Close()
			return fmt.Errorf("scan fish image: %w", err)
		}
		species.Images = append(species.Images, img)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load fish images: %w", err)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row scanning
// ---------------------------------------------------------------------------

func scanSpecies(row pgx.Row) (domain.FishSpecies, error) {
	var s domain.FishSpecies
	err := row.Scan(
		&s.ID, &s.Name, &s.Family, &s.MinSizeCm, &s.MaxSizeCm,
		&s.DepthRangeMinM, &s.DepthRangeMaxM, &s.WaterType, &s.Description,
		&s.ColorDescription, &s.Environment, &s.Region, &s.ConservationStatus,
		&s.ConsStatusDescription, &s.CreatedAt,
	)
	if err != nil {
		return domain.FishSpecies{}, err
	}
	return s, nil
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
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
