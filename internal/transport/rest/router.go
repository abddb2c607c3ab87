package rest

import (
	"net/http"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health *HealthHandler
	Fish   *FishHandler
	Device *DeviceHandler
	Chat   *ChatHandler
}

// NewRouter builds the HTTP route table.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /health/live", h.Health.Live)
	mux.HandleFunc("GET /health/ready", h.Health.Ready)

	mux.HandleFunc("POST /api/fish", h.Fish.Register)
	mux.HandleFunc("GET /api/fish/check", h.Fish.Check)

	mux.HandleFunc("POST /api/devices", h.Device.RegisterDevice)
	mux.HandleFunc("GET /api/devices/{deviceId}", h.Device.GetDevice)
	mux.HandleFunc("POST /api/devices/{deviceId}/sightings", h.Device.RecordSighting)
	mux.HandleFunc("GET /api/devices/{deviceId}/sightings", h.Device.ListSightings)
	mux.HandleFunc("POST /api/devices/{deviceId}/chat", h.Chat.Chat)

	return mux
}
