package storage

import (
	"strings"
	"testing"
)

func hash(c byte) string {
	return strings.Repeat(string(c), 64)
}

func TestCacheRoundTrip(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	tree, artifact := hash('a'), hash('b')
	if _, ok := c.Lookup(tree); ok {
		t.Fatalf("lookup before record should miss")
	}
	if err := c.Record(tree, artifact); err != nil {
		t.Fatalf("record: %v", err)
	}
	got, ok := c.Lookup(tree)
	if !ok || got != artifact {
		t.Fatalf("lookup: got (%q, %v)", got, ok)
	}
}

func TestCacheRejectsMalformedHashes(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := c.Record("../../etc/passwd", hash('a')); err == nil {
		t.Fatalf("malformed tree hash must be rejected")
	}
	if err := c.Record(hash('a'), "short"); err == nil {
		t.Fatalf("malformed artifact hash must be rejected")
	}
	if _, ok := c.Lookup("not-a-hash"); ok {
		t.Fatalf("malformed lookup must miss")
	}
}

func TestCacheClear(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := c.Record(hash('a'), hash('b')); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := c.Lookup(hash('a')); ok {
		t.Fatalf("lookup after clear should miss")
	}
}

func TestCacheOverwriteEntry(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := c.Record(hash('a'), hash('b')); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := c.Record(hash('a'), hash('c')); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, ok := c.Lookup(hash('a'))
	if !ok || got != hash('c') {
		t.Fatalf("lookup after overwrite: got (%q, %v)", got, ok)
	}
}
