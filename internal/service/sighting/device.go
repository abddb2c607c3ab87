package sighting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nvanschaik/fishtracker-backend/internal/domain"
)

// RegisterDevice registers a device by its hardware identifier. Registering
// an already known identifier returns the existing device with created=false.
func (s *Service) RegisterDevice(ctx context.Context, identifier string) (*domain.Device, bool, error) {
	if err := validateDeviceIdentifier(identifier); err != nil {
		return nil, false, err
	}
	identifier = strings.TrimSpace(identifier)

	device, err := s.devices.Create(ctx, identifier)
	if err == nil {
		s.log.InfoContext(ctx, "device registered",
			slog.String("device_id", identifier),
		)
		return device, true, nil
	}

	if errors.Is(err, domain.ErrAlreadyExists) {
		existing, getErr := s.devices.GetByIdentifier(ctx, identifier)
		if getErr != nil {
			return nil, false, fmt.Errorf("get device after conflict: %w", getErr)
		}
		return existing, false, nil
	}

	return nil, false, fmt.Errorf("create device: %w", err)
}

// GetDevice returns a device by its hardware identifier.
func (s *Service) GetDevice(ctx context.Context, identifier string) (*domain.Device, error) {
	if err := validateDeviceIdentifier(identifier); err != nil {
		return nil, err
	}
	return s.devices.GetByIdentifier(ctx, strings.TrimSpace(identifier))
}
