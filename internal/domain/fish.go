package domain

import (
	"time"

	"github.com/google/uuid"
)

// FishSpecies is a canonical catalog record for one named fish kind,
// independent of any sighting. Name is the sole identity key and is
// matched case-sensitively.
type FishSpecies struct {
	ID                    uuid.UUID
	Name                  string
	Family                *string
	MinSizeCm             *float64
	MaxSizeCm             *float64
	DepthRangeMinM        *float64
	DepthRangeMaxM        *float64
	WaterType             *string
	Description           *string
	ColorDescription      *string
	Environment           *string
	Region                *string
	ConservationStatus    *string
	ConsStatusDescription *string
	CreatedAt             time.Time

	Colors    []FishColor
	Predators []Predator
	FunFacts  []FunFact
	Images    []FishImage
}

// FishColor is one color attribute of a species.
type FishColor struct {
	ID        uuid.UUID
	FishID    uuid.UUID
	ColorName string
}

// Predator is one known predator of a species.
type Predator struct {
	ID           uuid.UUID
	FishID       uuid.UUID
	PredatorName string
}

// FunFact is one free-text fact about a species.
type FunFact struct {
	ID          uuid.UUID
	FishID      uuid.UUID
	Description string
}

// FishImage is a binary image payload owned by a species. Per-sighting
// images are a separate concept (Sighting.ImageURL).
type FishImage struct {
	ID     uuid.UUID
	FishID uuid.UUID
	Blob   []byte
}
