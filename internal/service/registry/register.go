package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/nvanschaik/fishtracker-backend/internal/domain"
)

// RegisterFishResult is the outcome of a registration attempt. Created is
// false when the name was already in the catalog. Warnings lists child
// batches that failed to persist; the species itself is always intact.
type RegisterFishResult struct {
	Species  *domain.FishSpecies
	Created  bool
	Warnings []string
}

// RegisterFish registers a species by name. An exact-name match returns the
// existing record unchanged; a miss creates the species and inserts the four
// child batches concurrently. A failed child batch is reported as a warning
// and never undoes the species row or the sibling batches.
//
// Concurrent registrations of the same name within this process are coalesced
// into one create; across processes the unique constraint on name closes the
// race and the loser re-reads the winner's row.
func (s *Service) RegisterFish(ctx context.Context, input RegisterFishInput) (*RegisterFishResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.fish.GetByName(ctx, input.Name)
	if err == nil {
		return &RegisterFishResult{Species: existing, Created: false}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get fish by name: %w", err)
	}

	res, err, _ := s.flight.Do(input.Name, func() (any, error) {
		return s.createSpecies(ctx, input)
	})
	if err != nil {
		return nil, err
	}

	return res.(*RegisterFishResult), nil
}

func (s *Service) createSpecies(ctx context.Context, input RegisterFishInput) (*RegisterFishResult, error) {
	species := input.species()
	species.ID = uuid.New()

	created, err := s.fish.Create(ctx, species)
	if err != nil {
		// Concurrent create from another process: the name now exists.
		if errors.Is(err, domain.ErrAlreadyExists) {
			existing, getErr := s.fish.GetByName(ctx, input.Name)
			if getErr != nil {
				return nil, fmt.Errorf("get fish after conflict: %w", getErr)
			}
			return &RegisterFishResult{Species: existing, Created: false}, nil
		}
		return nil, fmt.Errorf("create fish: %w", err)
	}

	warnings := s.insertChildren(ctx, created, input)

	s.log.InfoContext(ctx, "fish registered",
		slog.String("fish_id", created.ID.String()),
		slog.String("name", created.Name),
		slog.Int("warnings", len(warnings)),
	)

	return &RegisterFishResult{Species: created, Created: true, Warnings: warnings}, nil
}

// insertChildren runs the four child batches concurrently. Each batch filters
// malformed entries first, then inserts in one statement. Failures are
// collected as warnings rather than aborting the registration.
func (s *Service) insertChildren(ctx context.Context, species *domain.FishSpecies, input RegisterFishInput) []string {
	species.Colors = []domain.FishColor{}
	species.Predators = []domain.Predator{}
	species.FunFacts = []domain.FunFact{}
	species.Images = []domain.FishImage{}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		warnings []string
	)

	warn := func(batch string, err error) {
		s.log.WarnContext(ctx, "child batch insert failed",
			slog.String("fish_id", species.ID.String()),
			slog.String("batch", batch),
			slog.String("error", err.Error()),
		)
		mu.Lock()
		warnings = append(warnings, fmt.Sprintf("%s: %v", batch, err))
		mu.Unlock()
	}

	wg.Add(4)

	go func() {
		defer wg.Done()
		colors, err := s.fish.InsertColors(ctx, species.ID, filterNonEmpty(input.Colors))
		if err != nil {
			warn("colors", err)
			return
		}
		mu.Lock()
		species.Colors = colors
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		predators, err := s.fish.InsertPredators(ctx, species.ID, filterNonEmpty(input.Predators))
		if err != nil {
			warn("predators", err)
			return
		}
		mu.Lock()
		species.Predators = predators
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		facts, err := s.fish.InsertFunFacts(ctx, species.ID, filterNonEmpty(input.FunFacts))
		if err != nil {
			warn("fun_facts", err)
			return
		}
		mu.Lock()
		species.FunFacts = facts
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		images, err := s.fish.InsertImages(ctx, species.ID, filterNonEmptyBlobs(input.Images))
		if err != nil {
			warn("images", err)
			return
		}
		mu.Lock()
		species.Images = images
		mu.Unlock()
	}()

	wg.Wait()

	return warnings
}
