package registry

import (
	"strings"

	"github.com/nvanschaik/fishtracker-backend/internal/domain"
)

// RegisterFishInput holds the parameters for registering a fish species.
// Name is the identity key; every other field is optional and stored as
// given, without defaulting.
type RegisterFishInput struct {
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

	Colors    []string
	Predators []string
	FunFacts  []string
	Images    [][]byte
}

// Validate checks all fields and collects all errors.
func (i RegisterFishInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}

	if len(i.Name) > 500 {
		errs = append(errs, domain.FieldError{Field: "name", Message: "too long (max 500)"})
	}

	if i.MinSizeCm != nil && *i.MinSizeCm < 0 {
		errs = append(errs, domain.FieldError{Field: "min_size_cm", Message: "must be >= 0"})
	}

	if i.MaxSizeCm != nil && *i.MaxSizeCm < 0 {
		errs = append(errs, domain.FieldError{Field: "max_size_cm", Message: "must be >= 0"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// species maps the input to a domain record. Child collections are not
// carried here; they are inserted as separate batches after the species row.
func (i RegisterFishInput) species() *domain.FishSpecies {
	return &domain.FishSpecies{
		Name:                  i.Name,
		Family:                i.Family,
		MinSizeCm:             i.MinSizeCm,
		MaxSizeCm:             i.MaxSizeCm,
		DepthRangeMinM:        i.DepthRangeMinM,
		DepthRangeMaxM:        i.DepthRangeMaxM,
		WaterType:             i.WaterType,
		Description:           i.Description,
		ColorDescription:      i.ColorDescription,
		Environment:           i.Environment,
		Region:                i.Region,
		ConservationStatus:    i.ConservationStatus,
		ConsStatusDescription: i.ConsStatusDescription,
	}
}

// filterNonEmpty drops entries that are empty after trimming. The original
// payloads come from field devices and routinely contain blank strings.
func filterNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// filterNonEmptyBlobs drops zero-length image payloads.
func filterNonEmptyBlobs(blobs [][]byte) [][]byte {
	out := make([][]byte, 0, len(blobs))
	for _, b := range blobs {
		if len(b) == 0 {
			continue
		}
		out = append(out, b)
	}
	return out
}
