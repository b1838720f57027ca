package kb

import (
	"context"
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"appatlas/internal/artifact"
)

// DefaultCacheSize bounds the evictable cache entry count.
const DefaultCacheSize = 500

// Anchor artifacts are consulted by nearly every query, so they are pinned
// and never evicted.
var pinnedPaths = map[string]bool{
	artifact.OverviewPath:    true,
	artifact.SearchIndexPath: true,
	artifact.OrphanIndexPath: true,
}

// CachedSource wraps a Source with an in-memory byte cache: a pinned map for
// anchor artifacts and an LRU for everything else. Fetches run outside the
// pinned-map lock so slow remote reads do not serialize; a failed fetch is
// never cached.
type CachedSource struct {
	src Source

	mu     sync.Mutex
	pinned map[string][]byte
	cache  *lru.Cache[string, []byte]
}

// NewCached wraps src. size <= 0 uses DefaultCacheSize.
func NewCached(src Source, size int) (*CachedSource, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &CachedSource{
		src:    src,
		pinned: make(map[string][]byte),
		cache:  cache,
	}, nil
}

func (s *CachedSource) ListApps(ctx context.Context) ([]string, error) {
	return s.src.ListApps(ctx)
}

func (s *CachedSource) Read(ctx context.Context, app, rel string) ([]byte, error) {
	key := app + "/" + rel

	s.mu.Lock()
	if data, ok := s.pinned[key]; ok {
		s.mu.Unlock()
		return data, nil
	}
	s.mu.Unlock()
	if data, ok := s.cache.Get(key); ok {
		return data, nil
	}

	data, err := s.src.Read(ctx, app, rel)
	if err != nil {
		return nil, err
	}

	if pinnedPaths[rel] {
		s.mu.Lock()
		s.pinned[key] = data
		s.mu.Unlock()
	} else {
		s.cache.Add(key, data)
	}
	return data, nil
}

func (s *CachedSource) Exists(ctx context.Context, app, rel string) (bool, error) {
	key := app + "/" + rel
	s.mu.Lock()
	_, pinned := s.pinned[key]
	s.mu.Unlock()
	if pinned || s.cache.Contains(key) {
		return true, nil
	}
	return s.src.Exists(ctx, app, rel)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
