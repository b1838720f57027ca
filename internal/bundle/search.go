package bundle

import (
	"appatlas/internal/deps"
	"appatlas/internal/object"
)

// searchBundleLimit caps the bundle list embedded per index entry; the full
// list lives in the per-object artifact.
const searchBundleLimit = 5

// SearchEntry is one row of the flat name lookup.
type SearchEntry struct {
	UUID        string   `json:"uuid"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	BundleCount int      `json:"bundle_count"`
	Bundles     []string `json:"bundles"`
	DepsOut     int      `json:"deps_out"`
	DepsIn      int      `json:"deps_in"`
}

// BuildSearchIndex maps every object's display name to its metadata. Name
// collisions keep the last record in store order, matching how the search
// surface reports duplicates separately via the store.
func BuildSearchIndex(store *object.Store, edges []deps.Edge, assignments map[string][]string) map[string]SearchEntry {
	outCounts := make(map[string]int)
	inCounts := make(map[string]int)
	for _, e := range edges {
		outCounts[e.SourceUUID]++
		inCounts[e.TargetUUID]++
	}

	index := make(map[string]SearchEntry, store.Len())
	for _, rec := range store.Records() {
		bundles := assignments[rec.UUID]
		capped := bundles
		if len(capped) > searchBundleLimit {
			capped = capped[:searchBundleLimit]
		}
		if capped == nil {
			capped = []string{}
		}
		index[rec.Name] = SearchEntry{
			UUID:        rec.UUID,
			Type:        rec.Kind,
			Description: rec.Description(),
			BundleCount: len(bundles),
			Bundles:     capped,
			DepsOut:     outCounts[rec.UUID],
			DepsIn:      inCounts[rec.UUID],
		}
	}
	return index
}
