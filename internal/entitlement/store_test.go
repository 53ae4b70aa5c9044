package entitlement

import (
	"context"
	"path/filepath"
	"testing"

	"ascii-theater/internal/tier"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "entitlements.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return s
}

func TestLookupUnknownIsFree(t *testing.T) {
	s := newTestStore(t)
	if got := s.Lookup(context.Background(), "nobody"); got != tier.Free {
		t.Errorf("Lookup(unknown) = %s, want free", got)
	}
	if got := s.Lookup(context.Background(), ""); got != tier.Free {
		t.Errorf("Lookup(empty) = %s, want free", got)
	}
}

func TestGrantAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Grant(ctx, "alice", tier.Premium); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if got := s.Lookup(ctx, "alice"); got != tier.Premium {
		t.Errorf("Lookup = %s, want premium", got)
	}

	// Granting again updates in place.
	if err := s.Grant(ctx, "alice", tier.Free); err != nil {
		t.Fatalf("second Grant: %v", err)
	}
	if got := s.Lookup(ctx, "alice"); got != tier.Free {
		t.Errorf("Lookup after downgrade = %s, want free", got)
	}
}

func TestGrantRequiresKey(t *testing.T) {
	s := newTestStore(t)
	if err := s.Grant(context.Background(), "", tier.Premium); err == nil {
		t.Error("Grant with empty key succeeded")
	}
}

func TestRevoke(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Grant(ctx, "bob", tier.Premium); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if err := s.Revoke(ctx, "bob"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if got := s.Lookup(ctx, "bob"); got != tier.Free {
		t.Errorf("Lookup after revoke = %s, want free", got)
	}
}

func TestLookupUnrecognizedTierValue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// A row with a tier value this build does not know about must not
	// grant anything.
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO accounts (account_key, tier) VALUES ('carol', 'platinum')"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if got := s.Lookup(ctx, "carol"); got != tier.Free {
		t.Errorf("Lookup(unrecognized tier) = %s, want free", got)
	}
}

func TestExportHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RecordExport(ctx, "alice", "mp4", "done", 20); err != nil {
		t.Fatalf("RecordExport: %v", err)
	}
	if err := s.RecordExport(ctx, "alice", "gif", "error", 0); err != nil {
		t.Fatalf("RecordExport: %v", err)
	}
	if err := s.RecordExport(ctx, "bob", "mov", "done", 300); err != nil {
		t.Fatalf("RecordExport: %v", err)
	}

	records, err := s.History(ctx, "alice")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Newest first.
	if records[0].Format != "gif" || records[0].Status != "error" {
		t.Errorf("records[0] = %+v, want the gif failure", records[0])
	}
	if records[1].Format != "mp4" || records[1].Frames != 20 {
		t.Errorf("records[1] = %+v, want the mp4 success", records[1])
	}

	empty, err := s.History(ctx, "nobody")
	if err != nil {
		t.Fatalf("History(empty): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("got %d records for unknown account, want 0", len(empty))
	}
}
