// Command seeder populates the fish catalog from a JSON file. Each entry
// is inserted atomically (species row plus child batches in one
// transaction); entries whose name already exists in the catalog are
// skipped. It is intended to be run offline, not as part of the main
// server.
//
// Flags:
//
//	--file     path to the catalog JSON file (default ./seed/fish.json)
//	--dry-run  parse and validate the file without writing to DB
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/nvanschaik/fishtracker-backend/internal/adapter/postgres"
	fishrepo "github.com/nvanschaik/fishtracker-backend/internal/adapter/postgres/fish"
	"github.com/nvanschaik/fishtracker-backend/internal/app"
	"github.com/nvanschaik/fishtracker-backend/internal/config"
	"github.com/nvanschaik/fishtracker-backend/internal/domain"
)

type catalogEntry struct {
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
}

func main() {
	fileFlag := flag.String("file", "./seed/fish.json", "path to catalog JSON file")
	dryRunFlag := flag.Bool("dry-run", false, "parse the file without writing to DB")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	entries, err := loadCatalogFile(*fileFlag)
	if err != nil {
		logger.Error("load catalog file", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("catalog file parsed",
		slog.String("file", *fileFlag),
		slog.Int("entries", len(entries)),
	)

	if *dryRunFlag {
		logger.Info("dry run, nothing written")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	repo := fishrepo.New(pool)

	var created, skipped, failed int
	for _, entry := range entries {
		switch err := seedEntry(ctx, txm, repo, entry); {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrAlreadyExists):
			skipped++
		default:
			failed++
			logger.Error("seed entry",
				slog.String("name", entry.Name),
				slog.String("error", err.Error()),
			)
		}
	}

	logger.Info("seeding completed",
		slog.Int("created", created),
		slog.Int("skipped", skipped),
		slog.Int("failed", failed),
	)
	if failed > 0 {
		os.Exit(1)
	}
}

func loadCatalogFile(path string) ([]catalogEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []catalogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}

	for i, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("catalog entry %d: missing name", i)
		}
	}
	return entries, nil
}

// seedEntry inserts one species and its child rows in a single transaction.
// The repository reads the transaction from the context, so a mid-batch
// failure rolls back the species row as well.
func seedEntry(ctx context.Context, txm *postgres.TxManager, repo *fishrepo.Repo, entry catalogEntry) error {
	species := &domain.FishSpecies{
		ID:                    uuid.New(),
		Name:                  entry.Name,
		Family:                entry.Family,
		MinSizeCm:             entry.MinSizeCm,
		MaxSizeCm:             entry.MaxSizeCm,
		DepthRangeMinM:        entry.DepthRangeMinM,
		DepthRangeMaxM:        entry.DepthRangeMaxM,
		WaterType:             entry.WaterType,
		Description:           entry.Description,
		ColorDescription:      entry.ColorDescription,
		Environment:           entry.Environment,
		Region:                entry.Region,
		ConservationStatus:    entry.ConservationStatus,
		ConsStatusDescription: entry.ConsStatusDescription,
	}

	return txm.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := repo.Create(txCtx, species); err != nil {
			return err
		}
		if _, err := repo.InsertColors(txCtx, species.ID, entry.Colors); err != nil {
			return err
		}
		if _, err := repo.InsertPredators(txCtx, species.ID, entry.Predators); err != nil {
			return err
		}
		_, err := repo.InsertFunFacts(txCtx, species.ID, entry.FunFacts)
		return err
	})
}
