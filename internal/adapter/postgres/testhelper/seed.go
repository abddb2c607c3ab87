package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nvanschaik/fishtracker-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedFish creates a fish species row with the given name. When name is
// empty a unique one is generated.
func SeedFish(t *testing.T, pool *pgxpool.Pool, name string) domain.FishSpecies {
	t.Helper()
	ctx := context.Background()

	if name == "" {
		name = "testfish-" + uniqueSuffix()
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	family := "Testidae"
	species := domain.FishSpecies{
		ID:        uuid.New(),
		Name:      name,
		Family:    &family,
		CreatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO fish (id, name, family, created_at) VALUES ($1, $2, $3, $4)`,
		species.ID, species.Name, species.Family, species.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedFish insert: %v", err)
	}

	return species
}

// SeedDevice creates a device row with a unique identifier.
func SeedDevice(t *testing.T, pool *pgxpool.Pool) domain.Device {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	device := domain.Device{
		ID:               uuid.New(),
		DeviceIdentifier: "testdevice-" + uniqueSuffix(),
		CreatedAt:        now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO devices (id, device_identifier, created_at) VALUES ($1, $2, $3)`,
		device.ID, device.DeviceIdentifier, device.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDevice insert: %v", err)
	}

	return device
}

// SeedSighting creates a sighting row for a device+fish pair at the given time.
func SeedSighting(t *testing.T, pool *pgxpool.Pool, deviceID, fishID uuid.UUID, sightedAt time.Time) domain.Sighting {
	t.Helper()
	ctx := context.Background()

	s := domain.Sighting{
		ID:        uuid.New(),
		DeviceID:  deviceID,
		FishID:    fishID,
		ImageURL:  "/images/" + uniqueSuffix() + ".jpg",
		SightedAt: sightedAt.UTC().Truncate(time.Microsecond),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO sightings (id, device_id, fish_id, image_url, sighted_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.DeviceID, s.FishID, s.ImageURL, s.SightedAt, s.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedSighting insert: %v", err)
	}

	return s
}
