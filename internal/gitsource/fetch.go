// Package gitsource fetches a schema source tree from a git repository.
// The docs pipeline often keeps schema sources next to the product code
// rather than next to the site, so builds can pull them on demand.
package gitsource

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/schemabuild/internal/config"
	berrors "git.home.luguber.info/inful/schemabuild/internal/errors"
	"git.home.luguber.info/inful/schemabuild/internal/retry"
)

// Fetch shallow-clones the configured repository into dest and returns
// the directory holding the schema tree (dest joined with the
// configured subpath).
func Fetch(ctx context.Context, cfg *config.GitSourceConfig, dest string) (string, error) {
	opts := &git.CloneOptions{
		URL:          cfg.URL,
		Depth:        1,
		SingleBranch: true,
	}
	if cfg.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(cfg.Branch)
	}
	if cfg.Token != "" {
		opts.Auth = &http.BasicAuth{Username: "token", Password: cfg.Token}
	}

	slog.Info("Fetching schema source tree", "url", cfg.URL, "branch", cfg.Branch)
	policy := retry.DefaultPolicy()
	err := policy.Do(ctx, func() error {
		_, cloneErr := git.PlainCloneContext(ctx, dest, false, opts)
		if cloneErr != nil {
			slog.Warn("Clone attempt failed", "url", cfg.URL, "error", cloneErr)
			// A half-finished clone poisons the next attempt.
			_ = os.RemoveAll(dest)
			_ = os.MkdirAll(dest, 0o755)
		}
		return cloneErr
	})
	if err != nil {
		return "", berrors.GitFetchError(cfg.URL, err)
	}

	dir := dest
	if cfg.Path != "" {
		dir = filepath.Join(dest, filepath.FromSlash(cfg.Path))
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return "", berrors.GitFetchError(cfg.URL,
				fmt.Errorf("repository has no directory %q", cfg.Path))
		}
	}
	return dir, nil
}
