// Package artifact defines the persisted artifact layout shared by the
// offline pipeline (which writes it) and the knowledge-base access layer
// (which reads it), plus writer backends for local files, SQL databases, and
// S3-compatible object storage.
package artifact

import "context"

// Relative artifact paths within one application's output root.
const (
	OverviewPath    = "app_overview.json"
	SearchIndexPath = "search_index.json"
	ManifestPath    = "manifest.json"
	OrphanIndexPath = "orphans/_index.json"
)

// BundleStructurePath addresses a bundle's structure artifact.
func BundleStructurePath(bundleID string) string {
	return "bundles/" + bundleID + "/structure.json"
}

// BundleCodePath addresses a bundle's raw-content artifact.
func BundleCodePath(bundleID string) string {
	return "bundles/" + bundleID + "/code.json"
}

// ObjectPath addresses a per-object dependency artifact.
func ObjectPath(uuid string) string {
	return "objects/" + uuid + ".json"
}

// OrphanPath addresses a per-orphan detail artifact.
func OrphanPath(uuid string) string {
	return "orphans/" + uuid + ".json"
}

// Writer persists one application's artifacts. Implementations must be safe
// for concurrent use; the bundle coordinator writes from worker goroutines.
type Writer interface {
	WriteJSON(ctx context.Context, rel string, v any) error
}
