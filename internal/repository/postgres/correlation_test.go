package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/sentinelops/sentinel/internal/domain/correlation"
	"github.com/sentinelops/sentinel/internal/pkg/errors"
	"github.com/sentinelops/sentinel/internal/repository/postgres"
	"github.com/sentinelops/sentinel/internal/testutil"
)

func TestCorrelationRepository_CreateBatchList(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewCorrelationRepository(db)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	batch := []*correlation.Correlation{
		{ID: "c1", AlertID: "a1", CorrelationID: "a2", Type: correlation.TypeTemporal, Confidence: 0.6, CreatedAt: now},
		{ID: "c2", AlertID: "a1", CorrelationID: "a3", Type: correlation.TypeCausal, Confidence: 0.9, CreatedAt: now},
		{ID: "c3", AlertID: "other", CorrelationID: "a4", Type: correlation.TypeSpatial, Confidence: 0.8, CreatedAt: now},
	}
	if err := repo.CreateBatch(ctx, batch); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	got, err := repo.ListByAlert(ctx, "a1")
	if err != nil {
		t.Fatalf("ListByAlert() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByAlert() = %d rows, want 2", len(got))
	}
	// Highest confidence first.
	if got[0].ID != "c2" || got[1].ID != "c1" {
		t.Errorf("ListByAlert() order = [%s %s], want [c2 c1]", got[0].ID, got[1].ID)
	}

	one, err := repo.GetByID(ctx, "c1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if one.Type != correlation.TypeTemporal || one.Confidence != 0.6 {
		t.Errorf("GetByID() = %s/%v, want temporal/0.6", one.Type, one.Confidence)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.IsNotFound(err) {
		t.Errorf("GetByID() error = %v, want not found", err)
	}
}

func TestCorrelationRepository_CreateBatchEmpty(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewCorrelationRepository(db)

	if err := repo.CreateBatch(context.Background(), nil); err != nil {
		t.Errorf("CreateBatch() error = %v for empty batch, want nil", err)
	}
}
