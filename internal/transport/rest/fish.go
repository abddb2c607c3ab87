package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/nvanschaik/fishtracker-backend/internal/domain"
	"github.com/nvanschaik/fishtracker-backend/internal/service/registry"
	"github.com/nvanschaik/fishtracker-backend/pkg/envelope"
)

type registryService interface {
	RegisterFish(ctx context.Context, input registry.RegisterFishInput) (*registry.RegisterFishResult, error)
	CheckFishByName(ctx context.Context, name string) (*domain.FishSpecies, bool, error)
}

// FishHandler serves the fish catalog endpoints.
type FishHandler struct {
	log      *slog.Logger
	registry registryService
}

// NewFishHandler creates a FishHandler.
func NewFishHandler(logger *slog.Logger, registry registryService) *FishHandler {
	return &FishHandler{log: logger, registry: registry}
}

// registerFishRequest mirrors the device payload. Images arrive as base64
// strings and decode straight into byte slices.
type registerFishRequest struct {
	Name                  string   `json:"name"`
	Family                *string  `json:"family"`
	MinSizeCm             *float64 `json:"minSizeCm"`
	MaxSizeCm             *float64 `json:"maxSizeCm"`
	DepthRangeMinM        *float64 `json:"depthRangeMinM"`
	DepthRangeMaxM        *float64 `json:"depthRangeMaxM"`
	WaterType             *string  `json:"waterType"`
	Description           *string  `json:"description"`
	ColorDescription      *string  `json:"colorDescription"`
	Environment           *string  `json:"environment"`
	Region                *string  `json:"region"`
	ConservationStatus    *string  `json:"conservationStatus"`
	ConsStatusDescription *string  `json:"consStatusDescription"`
	Colors                []string `json:"colors"`
	Predators             []string `json:"predators"`
	FunFacts              []string `json:"funFacts"`
	Images                [][]byte `json:"images"`
}

type fishResponse struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Family                *string   `json:"family"`
	MinSizeCm             *float64  `json:"minSizeCm"`
	MaxSizeCm             *float64  `json:"maxSizeCm"`
	DepthRangeMinM        *float64  `json:"depthRangeMinM"`
	DepthRangeMaxM        *float64  `json:"depthRangeMaxM"`
	WaterType             *string   `json:"waterType"`
	Description           *string   `json:"description"`
	ColorDescription      *string   `json:"colorDescription"`
	Environment           *string   `json:"environment"`
	Region                *string   `json:"region"`
	ConservationStatus    *string   `json:"conservationStatus"`
	ConsStatusDescription *string   `json:"consStatusDescription"`
	Colors                []string  `json:"colors"`
	Predators             []string  `json:"predators"`
	FunFacts              []string  `json:"funFacts"`
	ImageCount            int       `json:"imageCount"`
	CreatedAt             time.Time `json:"createdAt"`
}

type registerFishResponse struct {
	Fish     fishResponse `json:"fish"`
	Created  bool         `json:"created"`
	Warnings []string     `json:"warnings,omitempty"`
}

type checkFishResponse struct {
	Name  string        `json:"name"`
	Known bool          `json:"known"`
	Fish  *fishResponse `json:"fish,omitempty"`
}

// Register handles POST /api/fish.
func (h *FishHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerFishRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.registry.RegisterFish(r.Context(), registry.RegisterFishInput{
		Name:                  req.Name,
		Family:                req.Family,
		MinSizeCm:             req.MinSizeCm,
		MaxSizeCm:             req.MaxSizeCm,
		DepthRangeMinM:        req.DepthRangeMinM,
		DepthRangeMaxM:        req.DepthRangeMaxM,
		WaterType:             req.WaterType,
		Description:           req.Description,
		ColorDescription:      req.ColorDescription,
		Environment:           req.Environment,
		Region:                req.Region,
		ConservationStatus:    req.ConservationStatus,
		ConsStatusDescription: req.ConsStatusDescription,
		Colors:                req.Colors,
		Predators:             req.Predators,
		FunFacts:              req.FunFacts,
		Images:                req.Images,
	})
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	status := http.StatusOK
	message := "Fish already registered"
	if result.Created {
		status = http.StatusCreated
		message = "Fish registered successfully"
	}

	envelope.WriteSuccess(w, status, registerFishResponse{
		Fish:     toFishResponse(result.Species),
		Created:  result.Created,
		Warnings: result.Warnings,
	}, message)
}

// Check handles GET /api/fish/check?name=...
func (h *FishHandler) Check(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	species, known, err := h.registry.CheckFishByName(r.Context(), name)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}

	resp := checkFishResponse{Name: name, Known: known}
	if known {
		fishResp := toFishResponse(species)
		resp.Fish = &fishResp
	}

	envelope.WriteSuccess(w, http.StatusOK, resp, "Fish check completed")
}

func toFishResponse(species *domain.FishSpecies) fishResponse {
	colors := make([]string, len(species.Colors))
	for i, c := range species.Colors {
		colors[i] = c.ColorName
	}
	predators := make([]string, len(species.Predators))
	for i, p := range species.Predators {
		predators[i] = p.PredatorName
	}
	facts := make([]string, len(species.FunFacts))
	for i, f := range species.FunFacts {
		facts[i] = f.Description
	}

	return fishResponse{
		ID:                    species.ID.String(),
		Name:                  species.Name,
		Family:                species.Family,
		MinSizeCm:             species.MinSizeCm,
		MaxSizeCm:             species.MaxSizeCm,
		DepthRangeMinM:        species.DepthRangeMinM,
		DepthRangeMaxM:        species.DepthRangeMaxM,
		WaterType:             species.WaterType,
		Description:           species.Description,
		ColorDescription:      species.ColorDescription,
		Environment:           species.Environment,
		Region:                species.Region,
		ConservationStatus:    species.ConservationStatus,
		ConsStatusDescription: species.ConsStatusDescription,
		Colors:                colors,
		Predators:             predators,
		FunFacts:              facts,
		ImageCount:            len(species.Images),
		CreatedAt:             species.CreatedAt,
	}
}
