package ai_test

import (
	"context"
	"testing"
	"time"

	aiRepo "github.com/urbantwin/citytwin-backend/internal/data/repos/ai"
	"github.com/urbantwin/citytwin-backend/internal/data/repos/testutil"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
)

func TestAccumulateUpsertsSameDayRow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "usage-upsert")

	repo := aiRepo.NewUsageRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	day := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)

	if err := repo.Accumulate(dbc, u.ID, "zhipu", "glm-4-flash", day, 100, 40); err != nil {
		t.Fatalf("first accumulate: %v", err)
	}
	if err := repo.Accumulate(dbc, u.ID, "zhipu", "glm-4-flash", day.Add(2*time.Hour), 50, 10); err != nil {
		t.Fatalf("second accumulate: %v", err)
	}
	// A different model on the same day gets its own row.
	if err := repo.Accumulate(dbc, u.ID, "zhipu", "glm-4-plus", day, 7, 3); err != nil {
		t.Fatalf("other model accumulate: %v", err)
	}

	rows, err := repo.ListByUser(dbc, u.ID, time.Time{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, row := range rows {
		switch row.ModelName {
		case "glm-4-flash":
			if row.RequestCount != 2 || row.TokensInput != 150 || row.TokensOutput != 50 {
				t.Fatalf("flash counters: req=%d in=%d out=%d", row.RequestCount, row.TokensInput, row.TokensOutput)
			}
		case "glm-4-plus":
			if row.RequestCount != 1 || row.TokensInput != 7 || row.TokensOutput != 3 {
				t.Fatalf("plus counters: req=%d in=%d out=%d", row.RequestCount, row.TokensInput, row.TokensOutput)
			}
		default:
			t.Fatalf("unexpected model %q", row.ModelName)
		}
	}
}

func TestListByUserSinceFilters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "usage-since")

	repo := aiRepo.NewUsageRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := repo.Accumulate(dbc, u.ID, "qwen", "qwen-plus", old, 1, 1); err != nil {
		t.Fatalf("accumulate old: %v", err)
	}
	if err := repo.Accumulate(dbc, u.ID, "qwen", "qwen-plus", recent, 1, 1); err != nil {
		t.Fatalf("accumulate recent: %v", err)
	}

	rows, err := repo.ListByUser(dbc, u.ID, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].StatDate.Format("2006-01-02") != "2026-03-01" {
		t.Fatalf("since filter returned %d rows", len(rows))
	}
}
