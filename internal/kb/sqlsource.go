package kb

import (
	"context"
	"errors"

	"appatlas/internal/artifact"
)

// SQLSource reads artifacts from the pipeline's SQL store.
type SQLSource struct {
	store *artifact.SQLStore
}

func NewSQLSource(store *artifact.SQLStore) *SQLSource {
	return &SQLSource{store: store}
}

func (s *SQLSource) ListApps(ctx context.Context) ([]string, error) {
	return s.store.Apps(ctx)
}

func (s *SQLSource) Read(ctx context.Context, app, rel string) ([]byte, error) {
	data, err := s.store.Get(ctx, app, rel)
	if errors.Is(err, artifact.ErrNoArtifact) {
		return nil, notFound(app, rel)
	}
	return data, err
}

func (s *SQLSource) Exists(ctx context.Context, app, rel string) (bool, error) {
	return s.store.Exists(ctx, app, rel)
}
