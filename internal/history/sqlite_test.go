package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func entry(id string, at time.Time) Entry {
	return Entry{
		BuildID:      id,
		CreatedAt:    at,
		TreeHash:     "deadbeef",
		Outcome:      "success",
		Duration:     42 * time.Millisecond,
		Files:        3,
		Declarations: 7,
		Violations:   0,
	}
}

func TestAppendAndRecent(t *testing.T) {
	store, err := Open(":memory:", 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		if err := store.Append(ctx, entry(fmt.Sprintf("build-%d", i), base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].BuildID != "build-2" {
		t.Fatalf("newest first expected, got %s", entries[0].BuildID)
	}
	if entries[0].Duration != 42*time.Millisecond {
		t.Fatalf("duration round trip: %v", entries[0].Duration)
	}
	if entries[0].Declarations != 7 || entries[0].Files != 3 {
		t.Fatalf("counts round trip: %+v", entries[0])
	}
}

func TestRecentLimit(t *testing.T) {
	store, err := Open(":memory:", 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, entry(fmt.Sprintf("build-%d", i), base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("limit not applied: %d", len(entries))
	}
}

func TestKeepPrunesOldBuilds(t *testing.T) {
	store, err := Open(":memory:", 2)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, entry(fmt.Sprintf("build-%d", i), base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("retention bound not enforced: %d entries", len(entries))
	}
	if entries[0].BuildID != "build-4" || entries[1].BuildID != "build-3" {
		t.Fatalf("wrong survivors: %s, %s", entries[0].BuildID, entries[1].BuildID)
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.db")
	store, err := Open(path, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRecentEmptyStore(t *testing.T) {
	store, err := Open(":memory:", 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
