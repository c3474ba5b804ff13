package ai_test

import (
	"context"
	"testing"

	aiRepo "github.com/urbantwin/citytwin-backend/internal/data/repos/ai"
	"github.com/urbantwin/citytwin-backend/internal/data/repos/testutil"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
)

func TestClearDefaultsKeepsAtMostOneDefault(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "prov-default")
	testutil.SeedProvider(t, ctx, tx, u.ID, "zhipu", true)
	newer := testutil.SeedProvider(t, ctx, tx, u.ID, "deepseek", false)

	repo := aiRepo.NewProviderRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	if err := repo.ClearDefaults(dbc, u.ID); err != nil {
		t.Fatalf("clear defaults: %v", err)
	}
	if err := repo.UpdateFields(dbc, newer.ID, map[string]interface{}{"is_default": true}); err != nil {
		t.Fatalf("set default: %v", err)
	}

	rows, err := repo.ListByUser(dbc, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defaults := 0
	for _, p := range rows {
		if p.IsDefault {
			defaults++
			if p.ProviderCode != "deepseek" {
				t.Fatalf("wrong default: %s", p.ProviderCode)
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default, got %d", defaults)
	}
}

func TestGetDefaultFallsBackToPriority(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "prov-priority")
	low := testutil.SeedProvider(t, ctx, tx, u.ID, "qwen", false)
	high := testutil.SeedProvider(t, ctx, tx, u.ID, "moonshot", false)

	repo := aiRepo.NewProviderRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	if err := repo.UpdateFields(dbc, low.ID, map[string]interface{}{"priority": 1}); err != nil {
		t.Fatalf("set priority: %v", err)
	}
	if err := repo.UpdateFields(dbc, high.ID, map[string]interface{}{"priority": 5}); err != nil {
		t.Fatalf("set priority: %v", err)
	}

	got, err := repo.GetDefault(dbc, u.ID)
	if err != nil {
		t.Fatalf("get default: %v", err)
	}
	if got.ProviderCode != "moonshot" {
		t.Fatalf("expected highest priority provider, got %s", got.ProviderCode)
	}
}
