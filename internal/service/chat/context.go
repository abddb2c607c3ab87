package chat

import (
	"encoding/json"
	"time"

	"github.com/nvanschaik/fishtracker-backend/internal/domain"
)

// ValueRange is a numeric min/max pair. Unknown bounds stay null so the
// assistant does not mistake an absent measurement for zero.
type ValueRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// Habitat groups the environment and region attributes of a species.
type Habitat struct {
	Environment string `json:"environment"`
	Region      string `json:"region"`
}

// SightingContext is one sighting projected into the flat shape handed to
// the assistant. Every text field is filled with a placeholder when the
// catalog has no value, so consumers never see null or missing keys.
type SightingContext struct {
	Name                string     `json:"name"`
	Family              string     `json:"family"`
	SizeRangeCm         ValueRange `json:"size_range_cm"`
	DepthRangeM         ValueRange `json:"depth_range_m"`
	WaterType           string     `json:"water_type"`
	Description         string     `json:"description"`
	Appearance          string     `json:"appearance"`
	Habitat             Habitat    `json:"habitat"`
	ConservationStatus  string     `json:"conservation_status"`
	ConservationDetails string     `json:"conservation_details"`
	IdentifiedOn        time.Time  `json:"identified_on"`
	Error               string     `json:"error,omitempty"`
}

// MarshalJSON collapses a sentinel entry (dangling fish reference) to just
// its name and error, so the assistant is not fed placeholder attributes
// for a fish nobody can describe.
func (c SightingContext) MarshalJSON() ([]byte, error) {
	if c.Error != "" {
		return json.Marshal(struct {
			Name  string `json:"name"`
			Error string `json:"error"`
		}{Name: c.Name, Error: c.Error})
	}

	type plain SightingContext
	return json.Marshal(plain(c))
}

// BuildContext projects resolved sightings into assistant-ready entries,
// preserving ledger order. A sighting whose fish reference is dangling
// yields a sentinel entry and leaves the others untouched.
func BuildContext(sightings []domain.ResolvedSighting) []SightingContext {
	out := make([]SightingContext, 0, len(sightings))
	for _, s := range sightings {
		if s.Fish == nil {
			out = append(out, SightingContext{
				Name:  "Unknown Fish",
				Error: "Fish data was not properly populated.",
			})
			continue
		}

		fish := s.Fish
		out = append(out, SightingContext{
			Name:                textOrUnknown(&fish.Name),
			Family:              textOrUnknown(fish.Family),
			SizeRangeCm:         ValueRange{Min: fish.MinSizeCm, Max: fish.MaxSizeCm},
			DepthRangeM:         ValueRange{Min: fish.DepthRangeMinM, Max: fish.DepthRangeMaxM},
			WaterType:           textOrUnknown(fish.WaterType),
			Description:         descriptionOrDefault(fish.Description),
			Appearance:          appearanceOrDefault(fish.ColorDescription),
			Habitat:             Habitat{Environment: textOrUnknown(fish.Environment), Region: textOrUnknown(fish.Region)},
			ConservationStatus:  textOrUnknown(fish.ConservationStatus),
			ConservationDetails: textOrUnknown(fish.ConsStatusDescription),
			IdentifiedOn:        s.SightedAt,
		})
	}
	return out
}

// textOrUnknown fills absent short attributes.
func textOrUnknown(v *string) string {
	if v == nil || *v == "" {
		return "Unknown"
	}
	return *v
}

// descriptionOrDefault fills an absent species description.
func descriptionOrDefault(v *string) string {
	if v == nil || *v == "" {
		return "No description available."
	}
	return *v
}

// appearanceOrDefault fills an absent color description.
func appearanceOrDefault(v *string) string {
	if v == nil || *v == "" {
		return "No color description."
	}
	return *v
}
