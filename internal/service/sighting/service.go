// Package sighting implements the device sighting ledger: device
// registration, append-only sighting recording with duplicate
// suppression, and resolved sighting reads.
package sighting

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/nvanschaik/fishtracker-backend/internal/domain"
)

type deviceRepo interface {
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Device, error)
	Create(ctx context.Context, identifier string) (*domain.Device, error)
}

type fishRepo interface {
	GetByName(ctx context.Context, name string) (*domain.FishSpecies, error)
}

type sightingRepo interface {
	AppendIfAbsent(ctx context.Context, deviceID, fishID uuid.UUID, imageURL string, sightedAt time.Time, window time.Duration) (*domain.Sighting, bool, error)
	LatestForFish(ctx context.Context, deviceID, fishID uuid.UUID) (*domain.Sighting, error)
	ListResolvedByDevice(ctx context.Context, deviceID uuid.UUID) ([]domain.ResolvedSighting, error)
}

// Service implements the sighting ledger on top of the device, fish and
// sighting repositories. The database insert is the authority on duplicate
// suppression; an in-process TTL cache short-circuits obvious repeats
// before they reach the database.
type Service struct {
	log       *slog.Logger
	devices   deviceRepo
	fish      fishRepo
	sightings sightingRepo

	window        time.Duration
	publicBaseURL string
	recent        *gocache.Cache
	now           func() time.Time
}

// NewService creates a new sighting service. window is the duplicate
// suppression interval; publicBaseURL is prepended to stored image paths
// when resolving sightings.
func NewService(
	logger *slog.Logger,
	devices deviceRepo,
	fish fishRepo,
	sightings sightingRepo,
	window time.Duration,
	publicBaseURL string,
) *Service {
	return &Service{
		log:           logger.With("service", "sighting"),
		devices:       devices,
		fish:          fish,
		sightings:     sightings,
		window:        window,
		publicBaseURL: publicBaseURL,
		recent:        gocache.New(window, 2*window),
		now:           time.Now,
	}
}
