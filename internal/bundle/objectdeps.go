package bundle

import (
	"context"
	"fmt"

	"appatlas/internal/artifact"
	"appatlas/internal/deps"
	"appatlas/internal/object"
)

// ObjectDetail is the per-object dependency artifact: full bundle membership
// plus the unscoped dependency neighborhood.
type ObjectDetail struct {
	UUID        string   `json:"uuid"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Bundles     []string `json:"bundles"`
	Calls       []DepRef `json:"calls"`
	CalledBy    []DepRef `json:"called_by"`
}

// WriteObjectDetails writes one detail artifact per object.
func WriteObjectDetails(ctx context.Context, w artifact.Writer, store *object.Store, graph *deps.Graph, assignments map[string][]string) error {
	for _, rec := range store.Records() {
		bundles := assignments[rec.UUID]
		if bundles == nil {
			bundles = []string{}
		}
		detail := &ObjectDetail{
			UUID:        rec.UUID,
			Name:        rec.Name,
			Type:        rec.Kind,
			Description: rec.Description(),
			Bundles:     bundles,
			Calls:       targetRefs(graph.Outbound[rec.UUID]),
			CalledBy:    sourceRefs(graph.Inbound[rec.UUID]),
		}
		if err := w.WriteJSON(ctx, artifact.ObjectPath(rec.UUID), detail); err != nil {
			return fmt.Errorf("bundle: write object %s: %w", rec.UUID, err)
		}
	}
	return nil
}
