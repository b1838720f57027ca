package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"appatlas/internal/util/jsonutil"
)

// LocalWriter writes artifacts under a root directory, one file per artifact.
type LocalWriter struct {
	root   string
	pretty bool
}

// NewLocalWriter creates the root directory if needed.
func NewLocalWriter(root string, pretty bool) (*LocalWriter, error) {
	if root == "" {
		return nil, fmt.Errorf("artifact: empty output root")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: create root: %w", err)
	}
	return &LocalWriter{root: root, pretty: pretty}, nil
}

func (w *LocalWriter) WriteJSON(_ context.Context, rel string, v any) error {
	data, err := encode(v, w.pretty)
	if err != nil {
		return fmt.Errorf("artifact: encode %s: %w", rel, err)
	}
	path := filepath.Join(w.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("artifact: mkdir for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("artifact: write %s: %w", rel, err)
	}
	return nil
}

func encode(v any, pretty bool) ([]byte, error) {
	if pretty {
		return jsonutil.MarshalIndentNoEscape(v, "  ")
	}
	return jsonutil.MarshalNoEscape(v)
}
