package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestAcceptInvitationCreatesCouple(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	inv := core.Invitation{
		Token:        "tok-accept",
		CoupleID:     "couple-42",
		InviterID:    "user-a",
		InviteeEmail: "partner@example.com",
		Status:       core.InvitationPending,
		CreatedAt:    time.Now(),
		ExpiresAt:    time.Now().Add(24 * time.Hour),
	}
	if _, err := repo.CreateInvitation(ctx, inv); err != nil {
		t.Fatalf("CreateInvitation: %v", err)
	}

	if err := repo.MarkInvitationAccepted(ctx, "tok-accept"); err != nil {
		t.Fatalf("MarkInvitationAccepted: %v", err)
	}

	var count int
	err := repo.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM couples WHERE id = ?`, "couple-42").Scan(&count)
	if err != nil {
		t.Fatalf("count couples: %v", err)
	}
	if count != 1 {
		t.Errorf("couples rows = %d, want 1", count)
	}

	// Second accept of the same token must not fire again.
	if err := repo.MarkInvitationAccepted(ctx, "tok-accept"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second accept = %v, want store.ErrNotFound", err)
	}
}

func TestMarkInvitationAcceptedUnknownToken(t *testing.T) {
	repo := newTestRepository(t)

	err := repo.MarkInvitationAccepted(context.Background(), "no-such-token")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("MarkInvitationAccepted = %v, want store.ErrNotFound", err)
	}
}

func TestReportCacheRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	periodStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	if _, _, err := repo.GetReportCache(ctx, "couple-1", "month", periodStart); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("empty cache read = %v, want store.ErrNotFound", err)
	}

	payload := []byte(`{"period":"month"}`)
	if err := repo.SaveReportCache(ctx, "couple-1", "month", periodStart, payload); err != nil {
		t.Fatalf("SaveReportCache: %v", err)
	}

	got, refreshedAt, err := repo.GetReportCache(ctx, "couple-1", "month", periodStart)
	if err != nil {
		t.Fatalf("GetReportCache: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload = %s, want %s", got, payload)
	}
	if refreshedAt.IsZero() {
		t.Error("refreshed_at should be set")
	}

	// Saving again for the same window replaces the payload.
	updated := []byte(`{"period":"month","v":2}`)
	if err := repo.SaveReportCache(ctx, "couple-1", "month", periodStart, updated); err != nil {
		t.Fatalf("SaveReportCache upsert: %v", err)
	}
	got, _, err = repo.GetReportCache(ctx, "couple-1", "month", periodStart)
	if err != nil {
		t.Fatalf("GetReportCache after upsert: %v", err)
	}
	if string(got) != string(updated) {
		t.Errorf("payload after upsert = %s, want %s", got, updated)
	}

	if err := repo.DeleteReportCache(ctx, "couple-1"); err != nil {
		t.Fatalf("DeleteReportCache: %v", err)
	}
	if _, _, err := repo.GetReportCache(ctx, "couple-1", "month", periodStart); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("read after delete = %v, want store.ErrNotFound", err)
	}
}
