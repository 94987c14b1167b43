// Package manifest records what one build produced, for downstream
// collaborators (site generator, search indexer) and for CI diffing.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Manifest is written next to the artifact after every successful build.
type Manifest struct {
	BuildID   string    `json:"build_id"`
	CreatedAt time.Time `json:"created_at"`

	TreeHash       string `json:"tree_hash"`
	ArtifactPath   string `json:"artifact_path"`
	ArtifactSHA256 string `json:"artifact_sha256"`

	Files        int `json:"files"`
	Declarations int `json:"declarations"`
	Examples     int `json:"examples"`

	// StageDurations maps stage name to duration string ("12.3ms").
	StageDurations map[string]string `json:"stage_durations,omitempty"`

	Outcome string `json:"outcome"`
}

// NewBuildID returns a fresh build identifier.
func NewBuildID() string {
	return uuid.NewString()
}

// Write serializes the manifest as indented JSON at path.
func (m *Manifest) Write(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Read loads a manifest from path.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
