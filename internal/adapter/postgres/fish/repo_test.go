package fish_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nvanschaik/fishtracker-backend/internal/adapter/postgres/fish"
	"github.com/nvanschaik/fishtracker-backend/internal/adapter/postgres/testhelper"
	"github.com/nvanschaik/fishtracker-backend/internal/domain"
)

// newRepo sets up a test DB and returns a ready Repo + pool.
func newRepo(t *testing.T) (*fish.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return fish.New(pool), pool
}

// buildSpecies creates a minimal domain.FishSpecies suitable for Create.
func buildSpecies(name string) domain.FishSpecies {
	family := "Pomacentridae"
	waterType := "saltwater"
	minSize := 6.0
	maxSize := 11.0
	return domain.FishSpecies{
		ID:        uuid.New(),
		Name:      name,
		Family:    &family,
		WaterType: &waterType,
		MinSizeCm: &minSize,
		MaxSizeCm: &maxSize,
	}
}

func uniqueName(prefix string) string {
	return prefix + "-" + uuid.New().String()[:8]
}

// ---------------------------------------------------------------------------
// Create tests
// ---------------------------------------------------------------------------

func TestRepo_Create_HappyPath(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	species := buildSpecies(uniqueName("create-happy"))

	got, err := repo.Create(ctx, &species)
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	if got.ID != species.ID {
		t.Errorf("ID mismatch: got %s, want %s", got.ID, species.ID)
	}
	if got.Name != species.Name {
		t.Errorf("Name mismatch: got %q, want %q", got.Name, species.Name)
	}
	if got.Family == nil || *got.Family != *species.Family {
		t.Errorf("Family mismatch: got %v, want %q", got.Family, *species.Family)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be assigned by the database")
	}
}

func TestRepo_Create_DuplicateName(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	name := uniqueName("create-dup")
	first := buildSpecies(name)
	if _, err := repo.Create(ctx, &first); err != nil {
		t.Fatalf("Create first: unexpected error: %v", err)
	}

	second := buildSpecies(name)
	_, err := repo.Create(ctx, &second)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// GetByName / GetByID tests
// ---------------------------------------------------------------------------

func TestRepo_GetByName_LoadsChildren(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	species := buildSpecies(uniqueName("get-children"))
	if _, err := repo.Create(ctx, &species); err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	if _, err := repo.InsertColors(ctx, species.ID, []string{"orange", "black"}); err != nil {
		t.Fatalf("InsertColors: unexpected error: %v", err)
	}
	if _, err := repo.InsertPredators(ctx, species.ID, []string{"grouper"}); err != nil {
		t.Fatalf("InsertPredators: unexpected error: %v", err)
	}
	if _, err := repo.InsertFunFacts(ctx, species.ID, []string{"lives in anemones"}); err != nil {
		t.Fatalf("InsertFunFacts: unexpected error: %v", err)
	}
	if _, err := repo.InsertImages(ctx, species.ID, [][]byte{{0x01, 0x02}}); err != nil {
		t.Fatalf("InsertImages: unexpected error: %v", err)
	}

	got, err := repo.GetByName(ctx, species.Name)
	if err != nil {
		t.Fatalf("GetByName: unexpected error: %v", err)
	}

	if len(got.Colors) != 2 {
		t.Fatalf("expected 2 colors, got %d", len(got.Colors))
	}
	// Colors come back sorted by name.
	if got.Colors[0].ColorName != "black" || got.Colors[1].ColorName != "orange" {
		t.Errorf("colors not sorted: got %q, %q", got.Colors[0].ColorName, got.Colors[1].ColorName)
	}
	if len(got.Predators) != 1 || got.Predators[0].PredatorName != "grouper" {
		t.Errorf("predators mismatch: got %v", got.Predators)
	}
	if len(got.FunFacts) != 1 || got.FunFacts[0].Description != "lives in anemones" {
		t.Errorf("fun facts mismatch: got %v", got.FunFacts)
	}
	if len(got.Images) != 1 || len(got.Images[0].Blob) != 2 {
		t.Errorf("images mismatch: got %v", got.Images)
	}
}

func TestRepo_GetByName_EmptyChildrenAreEmptySlices(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	species := buildSpecies(uniqueName("get-empty"))
	if _, err := repo.Create(ctx, &species); err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	got, err := repo.GetByName(ctx, species.Name)
	if err != nil {
		t.Fatalf("GetByName: unexpected error: %v", err)
	}

	if got.Colors == nil || got.Predators == nil || got.FunFacts == nil || got.Images == nil {
		t.Error("expected empty child slices, got nil")
	}
	if len(got.Colors)+len(got.Predators)+len(got.FunFacts)+len(got.Images) != 0 {
		t.Errorf("expected no children, got %v", got)
	}
}

func TestRepo_GetByName_CaseSensitive(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	name := uniqueName("Get-Case")
	species := buildSpecies(name)
	if _, err := repo.Create(ctx, &species); err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	_, err := repo.GetByName(ctx, strings.ToLower(name))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for lowercased name, got %v", err)
	}
}

func TestRepo_GetByName_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.GetByName(ctx, uniqueName("no-such-fish"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepo_GetByID_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Child insert tests
// ---------------------------------------------------------------------------

func TestRepo_InsertColors_EmptyBatchIsNoop(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	colors, err := repo.InsertColors(ctx, uuid.New(), nil)
	if err != nil {
		t.Fatalf("InsertColors: unexpected error: %v", err)
	}
	if len(colors) != 0 {
		t.Errorf("expected empty result, got %v", colors)
	}
}

func TestRepo_InsertColors_MissingSpecies(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.InsertColors(ctx, uuid.New(), []string{"blue"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing parent, got %v", err)
	}
}

func TestRepo_InsertFunFacts_BlankDescriptionRejected(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	species := buildSpecies(uniqueName("blank-fact"))
	if _, err := repo.Create(ctx, &species); err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	_, err := repo.InsertFunFacts(ctx, species.ID, []string{""})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for blank description, got %v", err)
	}
}
