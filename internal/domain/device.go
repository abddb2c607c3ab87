package domain

import (
	"time"

	"github.com/google/uuid"
)

// Device is an IoT unit that reports fish sightings. DeviceIdentifier is the
// external identity (the hardware-assigned string); ID is the storage key.
type Device struct {
	ID               uuid.UUID
	DeviceIdentifier string
	CreatedAt        time.Time
}

// Sighting is one observation of a species by one device at one time.
// SightedAt is assigned server-side at recording; rows are never updated
// or deleted by this subsystem.
type Sighting struct {
	ID        uuid.UUID
	DeviceID  uuid.UUID
	FishID    uuid.UUID
	ImageURL  string
	SightedAt time.Time
	CreatedAt time.Time
}

// ResolvedSighting is a Sighting with its species reference expanded.
// Fish is nil when the reference is dangling (species row missing);
// consumers must treat that as a degraded entry, not an error.
type ResolvedSighting struct {
	Sighting
	Fish *FishSpecies
}
