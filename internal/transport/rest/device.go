package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nvanschaik/fishtracker-backend/internal/domain"
	"github.com/nvanschaik/fishtracker-backend/internal/service/sighting"
	"github.com/nvanschaik/fishtracker-backend/pkg/envelope"
)

type sightingService interface {
	RegisterDevice(ctx context.Context, identifier string) (*domain.Device, bool, error)
	GetDevice(ctx context.Context, identifier string) (*domain.Device, error)
	RecordSighting(ctx context.Context, input sighting.RecordSightingInput) (*sighting.RecordResult, error)
	ResolveSightings(ctx context.Context, deviceIdentifier string) ([]domain.ResolvedSighting, error)
}

// DeviceHandler serves the device and sighting ledger endpoints.
type DeviceHandler struct {
	log       *slog.Logger
	sightings sightingService
}

// NewDeviceHandler creates a DeviceHandler.
func NewDeviceHandler(logger *slog.Logger, sightings sightingService) *DeviceHandler {
	return &DeviceHandler{log: logger, sightings: sightings}
}

type registerDeviceRequest struct {
	DeviceID string `json:"deviceId"`
}

type deviceResponse struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"deviceId"`
	CreatedAt time.Time `json:"createdAt"`
}

type recordSightingRequest struct {
	FishName string `json:"fishName"`
	ImageURL string `json:"imageUrl"`
}

type sightingResponse struct {
	ID        string        `json:"id"`
	FishID    string        `json:"fishId"`
	FishName  string        `json:"fishName"`
	ImageURL  string        `json:"imageUrl"`
	SightedAt time.Time     `json:"sightedAt"`
	Fish      *fishResponse `json:"fish,omitempty"`
}

// RegisterDevice handles POST /api/devices.
func (h *DeviceHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req registerDeviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	device, created, err := h.sightings.RegisterDevice(r.Context(), req.DeviceID)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	status := http.StatusOK
	message := "Device already registered"
	if created {
		status = http.StatusCreated
		message = "Device registered successfully"
	}

	envelope.WriteSuccess(w, status, toDeviceResponse(device), message)
}

// GetDevice handles GET /api/devices/{deviceId}.
func (h *DeviceHandler) GetDevice(w http.ResponseWriter, r *http.Request) {
	device, err := h.sightings.GetDevice(r.Context(), r.PathValue("deviceId"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	envelope.WriteSuccess(w, http.StatusOK, toDeviceResponse(device), "Device found")
}

// RecordSighting handles POST /api/devices/{deviceId}/sightings.
func (h *DeviceHandler) RecordSighting(w http.ResponseWriter, r *http.Request) {
	var req recordSightingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.sightings.RecordSighting(r.Context(), sighting.RecordSightingInput{
		DeviceIdentifier: r.PathValue("deviceId"),
		FishName:         req.FishName,
		ImageURL:         req.ImageURL,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	message := "Sighting recorded"
	if result.Skipped {
		message = "Duplicate sighting skipped"
	}

	envelope.WriteSuccess(w, http.StatusOK, result, message)
}

// ListSightings handles GET /api/devices/{deviceId}/sightings.
func (h *DeviceHandler) ListSightings(w http.ResponseWriter, r *http.Request) {
	resolved, err := h.sightings.ResolveSightings(r.Context(), r.PathValue("deviceId"))
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	out := make([]sightingResponse, len(resolved))
	for i, s := range resolved {
		out[i] = toSightingResponse(s)
	}

	envelope.WriteSuccess(w, http.StatusOK, out, "Sightings retrieved")
}

func toDeviceResponse(device *domain.Device) deviceResponse {
	return deviceResponse{
		ID:        device.ID.String(),
		DeviceID:  device.DeviceIdentifier,
		CreatedAt: device.CreatedAt,
	}
}

func toSightingResponse(s domain.ResolvedSighting) sightingResponse {
	resp := sightingResponse{
		ID:        s.ID.String(),
		FishID:    s.FishID.String(),
		FishName:  "Unknown Fish",
		ImageURL:  s.ImageURL,
		SightedAt: s.SightedAt,
	}
	if s.FishID == uuid.Nil {
		resp.FishID = ""
	}
	if s.Fish != nil {
		resp.FishName = s.Fish.Name
		fishResp := toFishResponse(s.Fish)
		resp.Fish = &fishResp
	}
	return resp
}
