package build

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"git.home.luguber.info/inful/schemabuild/internal/loader"
)

// TreeHash computes a deterministic signature of a source tree from the
// (path, content-hash) pairs of its files, sorted by path. Identical
// trees hash identically regardless of walk or parse order, which is
// what the unchanged-tree build skip relies on.
func TreeHash(files []*loader.ParsedFile) string {
	sorted := make([]*loader.ParsedFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	h := sha256.New()
	for _, f := range sorted {
		h.Write([]byte(f.Path))
		h.Write([]byte{0})
		h.Write([]byte(f.Hash))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash returns the hex SHA-256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
