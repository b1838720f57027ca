package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNoArtifact reports a read of an artifact path that was never written.
var ErrNoArtifact = errors.New("artifact: not found")

// SQLStore keeps artifacts in a single table keyed by (app, path). The same
// store serves as a pipeline Writer (scoped to one app via ForApp) and as a
// read backend for the serving layer. The DSN picks the driver: anything that
// looks like a Postgres URL or keyword DSN uses pgx, everything else is
// treated as a SQLite file path.
type SQLStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

const sqlSchema = `
CREATE TABLE IF NOT EXISTS artifacts (
	app     TEXT NOT NULL,
	path    TEXT NOT NULL,
	content TEXT NOT NULL,
	PRIMARY KEY (app, path)
)`

// OpenSQL connects and pings the database behind dsn.
func OpenSQL(dsn string) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("artifact: empty sql dsn")
	}
	db, err := sql.Open(driverFor(dsn), dsn)
	if err != nil {
		return nil, fmt.Errorf("artifact: open sql store: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("artifact: ping sql store: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func driverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "pgx"
	}
	return "sqlite3"
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, sqlSchema)
	})
	return s.schemaErr
}

// Put upserts one artifact.
func (s *SQLStore) Put(ctx context.Context, app, rel string, content []byte) error {
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("artifact: ensure schema: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (app, path, content) VALUES ($1, $2, $3)
		 ON CONFLICT (app, path) DO UPDATE SET content = excluded.content`,
		app, rel, string(content))
	if err != nil {
		return fmt.Errorf("artifact: put %s/%s: %w", app, rel, err)
	}
	return nil
}

// Get reads one artifact, returning ErrNoArtifact when absent.
func (s *SQLStore) Get(ctx context.Context, app, rel string) ([]byte, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("artifact: ensure schema: %w", err)
	}
	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM artifacts WHERE app = $1 AND path = $2`, app, rel).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoArtifact, app, rel)
	}
	if err != nil {
		return nil, fmt.Errorf("artifact: get %s/%s: %w", app, rel, err)
	}
	return []byte(content), nil
}

// Exists reports whether an artifact is present.
func (s *SQLStore) Exists(ctx context.Context, app, rel string) (bool, error) {
	_, err := s.Get(ctx, app, rel)
	if errors.Is(err, ErrNoArtifact) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Apps lists application names that have an overview artifact.
func (s *SQLStore) Apps(ctx context.Context) ([]string, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("artifact: ensure schema: %w", err)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT app FROM artifacts WHERE path = $1 ORDER BY app`, OverviewPath)
	if err != nil {
		return nil, fmt.Errorf("artifact: list apps: %w", err)
	}
	defer rows.Close()
	var apps []string
	for rows.Next() {
		var app string
		if err := rows.Scan(&app); err != nil {
			return nil, fmt.Errorf("artifact: list apps: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// ForApp returns a Writer that stores artifacts under the given app name.
func (s *SQLStore) ForApp(app string, pretty bool) Writer {
	return &sqlWriter{store: s, app: app, pretty: pretty}
}

type sqlWriter struct {
	store  *SQLStore
	app    string
	pretty bool
}

func (w *sqlWriter) WriteJSON(ctx context.Context, rel string, v any) error {
	data, err := encode(v, w.pretty)
	if err != nil {
		return fmt.Errorf("artifact: encode %s: %w", rel, err)
	}
	return w.store.Put(ctx, w.app, rel, data)
}
