// Package deps extracts the directed dependency graph between objects. It
// runs strictly after resolution: named references in expression text are
// attributed by name, and any address token that survived resolution is
// attributed by identifier. An address that resolved to nothing yields no
// edge.
package deps

import (
	"regexp"

	"appatlas/internal/object"
	"appatlas/internal/refpath"
	"appatlas/internal/sail"
)

// Edge is one directed dependency. Immutable; recomputed whenever the store
// changes, never persisted as mutable state.
type Edge struct {
	SourceUUID string `json:"source_uuid"`
	SourceName string `json:"source_name"`
	SourceKind string `json:"source_kind"`
	TargetUUID string `json:"target_uuid"`
	TargetName string `json:"target_name"`
	TargetKind string `json:"target_kind"`
	Kind       string `json:"kind"`
	Context    string `json:"context"`
}

// Analyze scans every record's configured reference fields and returns the
// full edge list. Per object, at most one edge is kept per target; self-edges
// are suppressed. Output order is deterministic for an unchanged store.
func Analyze(store *object.Store) []Edge {
	var edges []Edge
	for _, rec := range store.Records() {
		edges = append(edges, analyzeRecord(store, rec)...)
	}
	return edges
}

func analyzeRecord(store *object.Store, rec *object.Record) []Edge {
	if rec.Data == nil {
		return nil
	}
	seen := make(map[string]bool)
	var edges []Edge

	for _, path := range sail.CodeFields[rec.Kind] {
		for _, text := range refpath.Collect(rec.Data, path) {
			if text == "" {
				continue
			}
			edges = scanText(store, rec, text, path, seen, edges)
		}
	}

	for _, sf := range sail.StructuralFields[rec.Kind] {
		for _, value := range refpath.Collect(rec.Data, sf.Path) {
			if value == "" {
				continue
			}
			target, ok := store.ByUUID(value)
			if !ok {
				target, ok = store.ByName(value)
			}
			if !ok || target.UUID == rec.UUID || seen[target.UUID] {
				continue
			}
			seen[target.UUID] = true
			edges = append(edges, newEdge(rec, target, sf.EdgeKind, sf.Path))
		}
	}

	return edges
}

func scanText(store *object.Store, rec *object.Record, text, context string, seen map[string]bool, edges []Edge) []Edge {
	edges = scanNamedRefs(store, rec, text, context, seen, edges)
	edges = scanRecordURNs(store, rec, text, context, seen, edges)
	edges = scanAddressTokens(store, rec, text, context, seen, edges)
	return edges
}

func scanNamedRefs(store *object.Store, rec *object.Record, text, context string, seen map[string]bool, edges []Edge) []Edge {
	patterns := []struct {
		re       *regexp.Regexp
		edgeKind string
	}{
		{sail.RuleRefRe, sail.EdgeCalls},
		{sail.ConstantRefRe, sail.EdgeUsesConstant},
		{sail.TypeRefRe, sail.EdgeUsesCDT},
		{sail.RecordTypeRefRe, sail.EdgeUsesRecordType},
	}
	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			target, ok := store.ByName(m[1])
			if !ok || target.UUID == rec.UUID || seen[target.UUID] {
				continue
			}
			seen[target.UUID] = true
			edges = append(edges, newEdge(rec, target, p.edgeKind, context))
		}
	}
	return edges
}

func scanRecordURNs(store *object.Store, rec *object.Record, text, context string, seen map[string]bool, edges []Edge) []Edge {
	for _, m := range sail.RecordURNRe.FindAllStringSubmatch(text, -1) {
		target, ok := store.ByAddress(m[1])
		if !ok || target.UUID == rec.UUID || seen[target.UUID] {
			continue
		}
		seen[target.UUID] = true
		edges = append(edges, newEdge(rec, target, sail.EdgeUsesRecordType, context))
	}
	return edges
}

func scanAddressTokens(store *object.Store, rec *object.Record, text, context string, seen map[string]bool, edges []Edge) []Edge {
	tokens := sail.FullTokenRe.FindAllString(text, -1)
	tokens = append(tokens, sail.StandardTokens(text)...)
	for _, token := range tokens {
		target, ok := store.ByAddress(token)
		if !ok || target.UUID == rec.UUID || seen[target.UUID] {
			continue
		}
		seen[target.UUID] = true
		edges = append(edges, newEdge(rec, target, sail.EdgeKindFor(target.Kind), context))
	}
	return edges
}

func newEdge(src, dst *object.Record, kind, context string) Edge {
	return Edge{
		SourceUUID: src.UUID,
		SourceName: src.Name,
		SourceKind: src.Kind,
		TargetUUID: dst.UUID,
		TargetName: dst.Name,
		TargetKind: dst.Kind,
		Kind:       kind,
		Context:    context,
	}
}
