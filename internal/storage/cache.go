// Package storage provides the on-disk artifact cache keyed by source
// tree hash. Because the build is deterministic, an unchanged tree hash
// proves the existing artifact is current.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var hashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Cache maps tree hashes to artifact content hashes under a root
// directory. One file per tree hash; safe to delete wholesale.
type Cache struct {
	root string
}

// Open creates the cache directory if needed and returns a Cache.
func Open(root string) (*Cache, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Cache{root: root}, nil
}

// Lookup returns the artifact content hash recorded for a tree hash.
func (c *Cache) Lookup(treeHash string) (artifactHash string, ok bool) {
	if !hashPattern.MatchString(treeHash) {
		return "", false
	}
	data, err := os.ReadFile(c.entryPath(treeHash))
	if err != nil {
		return "", false
	}
	artifactHash = strings.TrimSpace(string(data))
	if !hashPattern.MatchString(artifactHash) {
		return "", false
	}
	return artifactHash, true
}

// Record stores the artifact content hash for a tree hash.
func (c *Cache) Record(treeHash, artifactHash string) error {
	if !hashPattern.MatchString(treeHash) || !hashPattern.MatchString(artifactHash) {
		return fmt.Errorf("malformed hash")
	}
	tmp := c.entryPath(treeHash) + ".tmp"
	if err := os.WriteFile(tmp, []byte(artifactHash+"\n"), 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, c.entryPath(treeHash)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename cache entry: %w", err)
	}
	return nil
}

// Clear removes every cache entry.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cache) entryPath(treeHash string) string {
	return filepath.Join(c.root, treeHash)
}
