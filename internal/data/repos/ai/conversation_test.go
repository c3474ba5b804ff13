package ai_test

import (
	"context"
	"testing"

	aiRepo "github.com/urbantwin/citytwin-backend/internal/data/repos/ai"
	"github.com/urbantwin/citytwin-backend/internal/data/repos/testutil"
	"github.com/urbantwin/citytwin-backend/internal/pkg/dbctx"
)

func TestDeleteSessionLeavesOtherSessionsAlone(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "conv-delete")
	testutil.SeedConversation(t, ctx, tx, u.ID, "s1", "user", "hello")
	testutil.SeedConversation(t, ctx, tx, u.ID, "s1", "assistant", "hi")
	testutil.SeedConversation(t, ctx, tx, u.ID, "s2", "user", "other session")

	repo := aiRepo.NewConversationRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	n, err := repo.DeleteSession(dbc, u.ID, "s1")
	if err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows deleted, got %d", n)
	}

	left, err := repo.ListBySession(dbc, u.ID, "s2", 0)
	if err != nil {
		t.Fatalf("list s2: %v", err)
	}
	if len(left) != 1 {
		t.Fatalf("expected s2 untouched, got %d rows", len(left))
	}

	gone, err := repo.ListBySession(dbc, u.ID, "s1", 0)
	if err != nil {
		t.Fatalf("list s1: %v", err)
	}
	if len(gone) != 0 {
		t.Fatalf("expected s1 empty, got %d rows", len(gone))
	}
}

func TestListRecentOrdersNewestFirst(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "conv-order")
	testutil.SeedConversation(t, ctx, tx, u.ID, "s1", "user", "first")
	testutil.SeedConversation(t, ctx, tx, u.ID, "s1", "assistant", "second")
	testutil.SeedConversation(t, ctx, tx, u.ID, "s1", "user", "third")

	repo := aiRepo.NewConversationRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	rows, err := repo.ListRecent(dbc, u.ID, "s1", 2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].CreatedAt.Before(rows[1].CreatedAt) {
		t.Fatalf("expected newest first, got %v before %v", rows[0].CreatedAt, rows[1].CreatedAt)
	}
}
