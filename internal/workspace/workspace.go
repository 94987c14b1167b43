// Package workspace manages throwaway working directories for fetched
// source trees.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
)

// Manager owns one temporary directory for the life of a run.
type Manager struct {
	base string
	path string
}

// NewManager creates a manager. base is the parent directory for the
// workspace; empty uses the system temp dir.
func NewManager(base string) *Manager {
	return &Manager{base: base}
}

// Create makes the workspace directory.
func (m *Manager) Create() error {
	path, err := os.MkdirTemp(m.base, "schemabuild-*")
	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	m.path = path
	slog.Debug("Workspace created", "path", path)
	return nil
}

// Path returns the workspace directory. Empty before Create.
func (m *Manager) Path() string {
	return m.path
}

// Cleanup removes the workspace and everything in it.
func (m *Manager) Cleanup() error {
	if m.path == "" {
		return nil
	}
	if err := os.RemoveAll(m.path); err != nil {
		return fmt.Errorf("cleanup workspace: %w", err)
	}
	slog.Debug("Workspace removed", "path", m.path)
	m.path = ""
	return nil
}
