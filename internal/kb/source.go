// Package kb is the read side of the artifact layout: sources that fetch
// artifacts from a local directory, a GitHub repository, or a SQL store, a
// caching wrapper, and the query service the serving surface calls.
package kb

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound reports an artifact that does not exist in the source. Any
// other error from a source is transient: the artifact may exist, the fetch
// failed.
var ErrNotFound = errors.New("kb: not found")

// Source fetches raw artifact bytes for applications. Implementations must
// be safe for concurrent use.
type Source interface {
	// ListApps returns the names of available applications, sorted.
	ListApps(ctx context.Context) ([]string, error)
	// Read returns the raw bytes of one artifact, or an error wrapping
	// ErrNotFound when the artifact does not exist.
	Read(ctx context.Context, app, rel string) ([]byte, error)
	// Exists reports whether an artifact is present without necessarily
	// fetching it.
	Exists(ctx context.Context, app, rel string) (bool, error)
}

func notFound(app, rel string) error {
	return fmt.Errorf("%w: %s/%s", ErrNotFound, app, rel)
}
