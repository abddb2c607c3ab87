package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nvanschaik/fishtracker-backend/internal/adapter/postgres"
	"github.com/nvanschaik/fishtracker-backend/internal/adapter/postgres/testhelper"
)

// deviceExists checks whether a device row with the given ID exists.
func deviceExists(t *testing.T, pool *pgxpool.Pool, deviceID uuid.UUID) bool {
	t.Helper()
	var exists bool
	err := pool.QueryRow(
		context.Background(),
		`SELECT EXISTS(SELECT 1 FROM devices WHERE id = $1)`,
		deviceID,
	).Scan(&exists)
	if err != nil {
		t.Fatalf("deviceExists query: %v", err)
	}
	return exists
}

func insertDevice(ctx context.Context, q postgres.Querier, deviceID uuid.UUID, identifier string) error {
	_, err := q.Exec(ctx,
		`INSERT INTO devices (id, device_identifier) VALUES ($1, $2)`,
		deviceID, identifier,
	)
	return err
}

func TestRunInTx_Commit(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	deviceID := uuid.New()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		return insertDevice(ctx, postgres.QuerierFromCtx(ctx, pool), deviceID, "tx-commit-"+deviceID.String()[:8])
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if !deviceExists(t, pool, deviceID) {
		t.Fatal("expected device to exist after committed transaction")
	}
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	deviceID := uuid.New()
	sentinel := errors.New("business logic error")

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		if execErr := insertDevice(ctx, postgres.QuerierFromCtx(ctx, pool), deviceID, "tx-rollback-"+deviceID.String()[:8]); execErr != nil {
			t.Fatalf("insert inside tx failed: %v", execErr)
		}
		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}

	if deviceExists(t, pool, deviceID) {
		t.Fatal("expected device NOT to exist after rolled-back transaction")
	}
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	deviceID := uuid.New()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic to be re-raised")
		}
		if r != "test panic" {
			t.Fatalf("expected panic value %q, got %v", "test panic", r)
		}

		if deviceExists(t, pool, deviceID) {
			t.Fatal("expected device NOT to exist after panic-rolled-back transaction")
		}
	}()

	_ = tm.RunInTx(context.Background(), func(ctx context.Context) error {
		if err := insertDevice(ctx, postgres.QuerierFromCtx(ctx, pool), deviceID, "tx-panic-"+deviceID.String()[:8]); err != nil {
			t.Fatalf("insert inside tx failed: %v", err)
		}
		panic("test panic")
	})
}

func TestRunInTx_QuerierFromCtx_UsesTx(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	deviceID := uuid.New()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		if err := insertDevice(ctx, q, deviceID, "tx-ctx-"+deviceID.String()[:8]); err != nil {
			return err
		}

		// Visible within the transaction.
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM devices WHERE id = $1)`, deviceID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			t.Fatal("expected device to be visible inside the transaction")
		}

		// Not visible outside: the pool querier sees pre-commit state.
		var outside bool
		if err := pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM devices WHERE id = $1)`, deviceID).Scan(&outside); err != nil {
			return err
		}
		if outside {
			t.Fatal("expected device NOT to be visible outside the transaction before commit")
		}

		return nil
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if !deviceExists(t, pool, deviceID) {
		t.Fatal("expected device to exist after commit")
	}
}
