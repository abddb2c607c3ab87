// Package registry implements idempotent find-or-create registration of
// fish species reported by field devices.
package registry

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/nvanschaik/fishtracker-backend/internal/domain"
)

type fishRepo interface {
	GetByName(ctx context.Context, name string) (*domain.FishSpecies, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FishSpecies, error)
	Create(ctx context.Context, species *domain.FishSpecies) (*domain.FishSpecies, error)
	InsertColors(ctx context.Context, fishID uuid.UUID, names []string) ([]domain.FishColor, error)
	InsertPredators(ctx context.Context, fishID uuid.UUID, names []string) ([]domain.Predator, error)
	InsertFunFacts(ctx context.Context, fishID uuid.UUID, descriptions []string) ([]domain.FunFact, error)
	InsertImages(ctx context.Context, fishID uuid.UUID, blobs [][]byte) ([]domain.FishImage, error)
}

// Service implements fish registration: exact-name lookup, create-on-miss
// with concurrent child batches, and per-name request coalescing.
type Service struct {
	log    *slog.Logger
	fish   fishRepo
	flight singleflight.Group
}

// NewService creates a new registry service.
func NewService(logger *slog.Logger, fish fishRepo) *Service {
	return &Service{
		log:  logger.With("service", "registry"),
		fish: fish,
	}
}

// GetFish returns a species by ID with all child collections loaded.
func (s *Service) GetFish(ctx context.Context, fishID uuid.UUID) (*domain.FishSpecies, error) {
	if fishID == uuid.Nil {
		return nil, domain.NewValidationError("fish_id", "required")
	}
	return s.fish.GetByID(ctx, fishID)
}

// CheckFishByName reports whether a species with the exact name is known,
// returning the record when it is. An unknown name is not an error.
func (s *Service) CheckFishByName(ctx context.Context, name string) (*domain.FishSpecies, bool, error) {
	if name == "" {
		return nil, false, domain.NewValidationError("name", "required")
	}

	species, err := s.fish.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return species, true, nil
}
