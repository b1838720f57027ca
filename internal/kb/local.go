package kb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"appatlas/internal/artifact"
	"appatlas/internal/safeio"
)

// LocalSource reads artifacts from a directory holding one subdirectory per
// application. Paths are confined to the data root; application names and
// bundle IDs arrive from callers and must not escape it.
type LocalSource struct {
	fs *safeio.SafeFS
}

// NewLocalSource validates that root is a directory.
func NewLocalSource(root string) (*LocalSource, error) {
	fs, err := safeio.NewSafeFS(root)
	if err != nil {
		return nil, fmt.Errorf("kb: data directory: %w", err)
	}
	return &LocalSource{fs: fs}, nil
}

// ListApps returns every subdirectory that contains an overview artifact.
func (s *LocalSource) ListApps(ctx context.Context) ([]string, error) {
	entries, err := s.fs.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("kb: list apps: %w", err)
	}
	var apps []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := s.fs.Stat(filepath.Join(e.Name(), artifact.OverviewPath)); err == nil {
			apps = append(apps, e.Name())
		}
	}
	sort.Strings(apps)
	return apps, nil
}

func (s *LocalSource) Read(ctx context.Context, app, rel string) ([]byte, error) {
	data, err := s.fs.ReadFile(filepath.Join(app, filepath.FromSlash(rel)))
	if os.IsNotExist(err) || errors.Is(err, safeio.ErrOutsideRoot) {
		return nil, notFound(app, rel)
	}
	if err != nil {
		return nil, fmt.Errorf("kb: read %s/%s: %w", app, rel, err)
	}
	return data, nil
}

func (s *LocalSource) Exists(ctx context.Context, app, rel string) (bool, error) {
	_, err := s.fs.Stat(filepath.Join(app, filepath.FromSlash(rel)))
	if os.IsNotExist(err) || errors.Is(err, safeio.ErrOutsideRoot) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("kb: stat %s/%s: %w", app, rel, err)
	}
	return true, nil
}
