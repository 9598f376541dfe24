package testutil

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sentinelops/sentinel/internal/domain/alert"
	"github.com/sentinelops/sentinel/internal/pkg/logger"
	"github.com/sentinelops/sentinel/internal/repository/postgres"
	"github.com/sentinelops/sentinel/migrations"
)

// NewTestDB creates an in-memory SQLite database with the full schema
func NewTestDB(t *testing.T) *postgres.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db := postgres.NewDB(sqlDB, "sqlite")
	if err := postgres.RunMigrations(db, migrations.GetFS()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// NewLogger creates a quiet logger for tests
func NewLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "console"})
}

// NewAlert creates an active alert with sensible defaults
func NewAlert(id string, overrides ...func(*alert.Alert)) *alert.Alert {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := &alert.Alert{
		ID:          id,
		Fingerprint: "fp-" + id,
		Title:       "High CPU usage",
		Description: "CPU usage above threshold",
		Severity:    alert.SeverityHigh,
		Status:      alert.StatusActive,
		Source:      "prometheus",
		Labels:      map[string]string{"service": "api"},
		StartsAt:    now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, fn := range overrides {
		fn(a)
	}
	return a
}
