package sighting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nvanschaik/fishtracker-backend/internal/domain"
)

// ErrFishUnknown is returned when a sighting names a species that is not in
// the catalog. Recording never creates species.
var ErrFishUnknown = errors.New("fish is not in the catalog")

// RecordResult is the outcome of a recording attempt. Skipped is true when
// the sighting was suppressed as a duplicate; Timestamp then carries the
// previously recorded entry's time.
type RecordResult struct {
	DeviceID  string    `json:"deviceId"`
	FishID    uuid.UUID `json:"fishId"`
	FishName  string    `json:"fishName"`
	ImageURL  string    `json:"imageUrl"`
	Timestamp time.Time `json:"timestamp"`
	Skipped   bool      `json:"skipped"`
}

// RecordSighting appends one sighting to the device's ledger, or reports it
// as skipped when the same device already recorded the same fish within the
// suppression window. The sighting timestamp is assigned here, never taken
// from the caller. The device must exist and the fish must be known.
func (s *Service) RecordSighting(ctx context.Context, input RecordSightingInput) (*RecordResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	device, err := s.devices.GetByIdentifier(ctx, input.DeviceIdentifier)
	if err != nil {
		return nil, fmt.Errorf("get device: %w", err)
	}

	fish, err := s.fish.GetByName(ctx, input.FishName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%q: %w", input.FishName, ErrFishUnknown)
		}
		return nil, fmt.Errorf("get fish by name: %w", err)
	}

	result := &RecordResult{
		DeviceID: input.DeviceIdentifier,
		FishID:   fish.ID,
		FishName: fish.Name,
		ImageURL: input.ImageURL,
	}

	key := suppressionKey(device.ID, fish.ID)

	// Fast path: a recent recording is still in the in-process cache, so
	// the database insert would be suppressed anyway.
	if s.window > 0 {
		if _, found := s.recent.Get(key); found {
			return s.skipped(ctx, device.ID, fish.ID, result)
		}
	}

	recorded, inserted, err := s.sightings.AppendIfAbsent(
		ctx, device.ID, fish.ID, input.ImageURL, s.now().UTC(), s.window)
	if err != nil {
		return nil, fmt.Errorf("append sighting: %w", err)
	}

	if !inserted {
		// The suppression window is anchored at the earlier entry, not at
		// this attempt. Caching here would extend it past its real expiry.
		return s.skipped(ctx, device.ID, fish.ID, result)
	}

	if s.window > 0 {
		s.recent.Set(key, struct{}{}, s.window)
	}

	s.log.InfoContext(ctx, "sighting recorded",
		slog.String("device_id", input.DeviceIdentifier),
		slog.String("fish_id", fish.ID.String()),
		slog.String("fish_name", fish.Name),
	)

	result.Timestamp = recorded.SightedAt
	return result, nil
}

// skipped fills the result for a suppressed sighting, reporting the
// previously recorded entry's timestamp.
func (s *Service) skipped(ctx context.Context, deviceID, fishID uuid.UUID, result *RecordResult) (*RecordResult, error) {
	result.Skipped = true

	previous, err := s.sightings.LatestForFish(ctx, deviceID, fishID)
	if err != nil {
		// The previous entry can vanish between the suppressed insert and
		// this read; fall back to the current time.
		if errors.Is(err, domain.ErrNotFound) {
			result.Timestamp = s.now().UTC()
			return result, nil
		}
		return nil, fmt.Errorf("get previous sighting: %w", err)
	}

	result.Timestamp = previous.SightedAt

	s.log.InfoContext(ctx, "duplicate sighting skipped",
		slog.String("device_id", deviceID.String()),
		slog.String("fish_id", fishID.String()),
		slog.Time("previous", previous.SightedAt),
	)

	return result, nil
}

func suppressionKey(deviceID, fishID uuid.UUID) string {
	return deviceID.String() + "/" + fishID.String()
}

// ResolveSightings returns the device's full sighting history, oldest first,
// with each fish reference expanded. A device with no sightings yields an
// empty list; an unknown device is an error. Stored image paths are turned
// into absolute URLs against the configured public base URL.
func (s *Service) ResolveSightings(ctx context.Context, deviceIdentifier string) ([]domain.ResolvedSighting, error) {
	if err := validateDeviceIdentifier(deviceIdentifier); err != nil {
		return nil, err
	}

	device, err := s.devices.GetByIdentifier(ctx, deviceIdentifier)
	if err != nil {
		return nil, fmt.Errorf("get device: %w", err)
	}

	resolved, err := s.sightings.ListResolvedByDevice(ctx, device.ID)
	if err != nil {
		return nil, fmt.Errorf("list sightings: %w", err)
	}

	for i := range resolved {
		resolved[i].ImageURL = s.publicImageURL(resolved[i].ImageURL)
	}

	return resolved, nil
}

// publicImageURL converts a stored image path into an absolute URL. Stored
// values that already carry a scheme pass through unchanged.
func (s *Service) publicImageURL(stored string) string {
	if stored == "" {
		return ""
	}

	if u, err := url.Parse(stored); err == nil && u.Scheme != "" {
		return stored
	}

	base := strings.TrimRight(s.publicBaseURL, "/")
	if base == "" {
		return stored
	}

	return base + "/" + strings.TrimLeft(stored, "/")
}
