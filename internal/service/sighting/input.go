package sighting

import (
	"strings"

	"github.com/nvanschaik/fishtracker-backend/internal/domain"
)

const (
	deviceIdentifierMinLen = 3
	deviceIdentifierMaxLen = 256
)

// RecordSightingInput holds the parameters for recording one sighting.
type RecordSightingInput struct {
	DeviceIdentifier string
	FishName         string
	ImageURL         string
}

// Validate checks all fields and collects all errors.
func (i RecordSightingInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.DeviceIdentifier) == "" {
		errs = append(errs, domain.FieldError{Field: "device_id", Message: "required"})
	}

	if strings.TrimSpace(i.FishName) == "" {
		errs = append(errs, domain.FieldError{Field: "fish_name", Message: "required"})
	}

	if len(i.ImageURL) > 2000 {
		errs = append(errs, domain.FieldError{Field: "image_url", Message: "too long (max 2000)"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// validateDeviceIdentifier applies the registration rules for a device
// identifier: trimmed, 3 to 256 characters.
func validateDeviceIdentifier(identifier string) error {
	var errs []domain.FieldError

	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		errs = append(errs, domain.FieldError{Field: "device_id", Message: "required"})
	} else {
		if len(trimmed) < deviceIdentifierMinLen {
			errs = append(errs, domain.FieldError{Field: "device_id", Message: "too short (min 3)"})
		}
		if len(trimmed) > deviceIdentifierMaxLen {
			errs = append(errs, domain.FieldError{Field: "device_id", Message: "too long (max 256)"})
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
