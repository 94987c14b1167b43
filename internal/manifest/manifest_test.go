package manifest

import (
	"path/filepath"
	"testing"
	"time"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.manifest.json")
	m := &Manifest{
		BuildID:        NewBuildID(),
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
		TreeHash:       "abc123",
		ArtifactPath:   "data/schema.json",
		ArtifactSHA256: "def456",
		Files:          4,
		Declarations:   12,
		Examples:       3,
		StageDurations: map[string]string{"load": "1.2ms", "write": "800µs"},
		Outcome:        "success",
	}

	if err := m.Write(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.BuildID != m.BuildID || got.TreeHash != m.TreeHash || got.Declarations != 12 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.StageDurations["load"] != "1.2ms" {
		t.Fatalf("stage durations lost: %v", got.StageDurations)
	}
}

func TestNewBuildIDUnique(t *testing.T) {
	if NewBuildID() == NewBuildID() {
		t.Fatalf("build IDs should be unique")
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected an error for a missing manifest")
	}
}
