package bundle

import (
	"context"
	"fmt"
	"sort"

	"appatlas/internal/artifact"
	"appatlas/internal/deps"
	"appatlas/internal/object"
)

// DepRef is one neighbor in a calls/called_by list.
type DepRef struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	DepType string `json:"dep_type"`
}

// OrphanIndex lists the objects not reachable from any entry point, grouped
// by kind.
type OrphanIndex struct {
	Metadata OrphanIndexMeta           `json:"_metadata"`
	ByType   map[string][]InventoryRef `json:"by_type"`
}

type OrphanIndexMeta struct {
	Description  string `json:"description"`
	TotalObjects int    `json:"total_objects"`
}

// OrphanDetail is the full record for a single orphan, including its source
// text and its dependency neighborhood.
type OrphanDetail struct {
	UUID        string   `json:"uuid"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	SailCode    string   `json:"sail_code,omitempty"`
	Calls       []DepRef `json:"calls"`
	CalledBy    []DepRef `json:"called_by"`
}

// Orphans returns the records assigned to no bundle, in store order.
func Orphans(store *object.Store, assignments map[string][]string) []*object.Record {
	var out []*object.Record
	for _, rec := range store.Records() {
		if len(assignments[rec.UUID]) == 0 {
			out = append(out, rec)
		}
	}
	return out
}

// WriteOrphans writes the orphan index and one detail artifact per orphan.
// Nothing is written when every object is bundled.
func WriteOrphans(ctx context.Context, w artifact.Writer, orphans []*object.Record, graph *deps.Graph) error {
	if len(orphans) == 0 {
		return nil
	}

	byType := make(map[string][]InventoryRef)
	for _, rec := range orphans {
		byType[rec.Kind] = append(byType[rec.Kind], InventoryRef{UUID: rec.UUID, Name: rec.Name})
	}
	for kind, refs := range byType {
		sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
		byType[kind] = refs
	}
	index := &OrphanIndex{
		Metadata: OrphanIndexMeta{
			Description:  "Objects not reachable from any entry point.",
			TotalObjects: len(orphans),
		},
		ByType: byType,
	}
	if err := w.WriteJSON(ctx, artifact.OrphanIndexPath, index); err != nil {
		return fmt.Errorf("bundle: write orphan index: %w", err)
	}

	for _, rec := range orphans {
		detail := &OrphanDetail{
			UUID:        rec.UUID,
			Name:        rec.Name,
			Type:        rec.Kind,
			Description: rec.Description(),
			SailCode:    ExtractCode(rec),
			Calls:       targetRefs(graph.Outbound[rec.UUID]),
			CalledBy:    sourceRefs(graph.Inbound[rec.UUID]),
		}
		if err := w.WriteJSON(ctx, artifact.OrphanPath(rec.UUID), detail); err != nil {
			return fmt.Errorf("bundle: write orphan %s: %w", rec.UUID, err)
		}
	}
	return nil
}

func targetRefs(edges []deps.Edge) []DepRef {
	out := []DepRef{}
	for _, e := range edges {
		out = append(out, DepRef{Name: e.TargetName, Type: e.TargetKind, DepType: e.Kind})
	}
	return out
}

func sourceRefs(edges []deps.Edge) []DepRef {
	out := []DepRef{}
	for _, e := range edges {
		out = append(out, DepRef{Name: e.SourceName, Type: e.SourceKind, DepType: e.Kind})
	}
	return out
}
