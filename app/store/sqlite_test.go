package store

import (
	"context"
	"testing"
	"time"

	"github.com/riskwire/riskwire/app/alert"
)

func newTestRepo(t *testing.T) *AlertRepository {
	t.Helper()

	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("Expected in-memory database to open, got: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Expected migrations to apply, got: %v", err)
	}
	return NewAlertRepository(db)
}

func sampleAlert(uuid string) *alert.Alert {
	return &alert.Alert{
		UUID:      uuid,
		Title:     "Explosion reported near port",
		Summary:   "An explosion was reported near the port on Monday.",
		Link:      "https://example.com/story",
		Source:    "example.com",
		Published: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Country:   "Lebanon",
		City:      "Beirut",
	}
}

func TestAlertRepository_SaveAndExists(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	exists, err := repo.Exists(ctx, "alert-1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if exists {
		t.Error("Expected alert-1 to not exist yet")
	}

	saved, err := repo.SaveBatch(ctx, []*alert.Alert{sampleAlert("alert-1")})
	if err != nil {
		t.Fatalf("Expected save to succeed, got: %v", err)
	}
	if saved != 1 {
		t.Errorf("Expected 1 alert saved, got %d", saved)
	}

	exists, err = repo.Exists(ctx, "alert-1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !exists {
		t.Error("Expected alert-1 to exist after save")
	}
}

func TestAlertRepository_SaveBatchSkipsDuplicates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	alerts := []*alert.Alert{sampleAlert("alert-1"), sampleAlert("alert-2")}
	if saved, err := repo.SaveBatch(ctx, alerts); err != nil || saved != 2 {
		t.Fatalf("Expected 2 saved, got %d (err: %v)", saved, err)
	}

	// Re-saving the same batch must be a no-op.
	saved, err := repo.SaveBatch(ctx, alerts)
	if err != nil {
		t.Fatalf("Expected no error on duplicate batch, got: %v", err)
	}
	if saved != 0 {
		t.Errorf("Expected 0 saved on duplicate batch, got %d", saved)
	}
}
