// Package bundle groups an application's objects into activity-centric
// bundles. Each bundle is rooted at an entry point (a user-facing surface or
// a standalone workflow), filled by walking the dependency graph, and
// persisted as a structure artifact plus a raw-content artifact. The same
// package builds the cross-bundle artifacts: application overview, search
// index, manifest, per-object dependency records, and the orphan set.
package bundle

import (
	"regexp"
	"strings"

	"appatlas/internal/object"
)

// Bundle type labels used in index entries and artifact metadata.
const (
	TypeAction    = "action"
	TypePage      = "page"
	TypeSite      = "site"
	TypeDashboard = "dashboard"
	TypeWebAPI    = "web_api"
	TypeProcess   = "process"
)

// EntryPoint roots one bundle. Exactly one of the type-specific fields is
// populated, matching BundleType.
type EntryPoint struct {
	UUID       string
	Name       string
	ObjectKind string
	BundleType string
	ParentName string

	// Action entry points carry the raw action payload and the owning
	// record type, which is excluded from the walk roots.
	Action         map[string]any
	RecordTypeUUID string

	// Page entry points carry the record type's view list.
	Views []map[string]any
}

// Discover finds every entry point in record order: record-type actions and
// view pages, sites, control panels, web APIs, and finally the standalone
// process models (models that are neither an action target nor a subprocess
// of another model).
func Discover(store *object.Store) []EntryPoint {
	var eps []EntryPoint

	for _, rec := range store.Records() {
		switch rec.Kind {
		case object.KindRecordType:
			for _, action := range mapList(rec.Data, "actions") {
				target := ""
				if raw := getString(action, "target_uuid"); raw != "" {
					if t, ok := resolveTarget(store, raw); ok {
						target = t.UUID
					}
				}
				name := actionName(action)
				ep := EntryPoint{
					UUID:           target,
					Name:           rec.Name + " - " + name,
					ObjectKind:     "Record Type Action",
					BundleType:     TypeAction,
					ParentName:     rec.Name,
					Action:         action,
					RecordTypeUUID: rec.UUID,
				}
				if ep.UUID == "" {
					ep.UUID = rec.UUID
				}
				eps = append(eps, ep)
			}

			views := mapList(rec.Data, "views")
			hasUI := false
			for _, v := range views {
				if getString(v, "ui_expr") != "" {
					hasUI = true
					break
				}
			}
			if hasUI {
				eps = append(eps, EntryPoint{
					UUID:       rec.UUID,
					Name:       rec.Name,
					ObjectKind: "Record Type Page",
					BundleType: TypePage,
					Views:      views,
				})
			}

		case object.KindSite:
			eps = append(eps, EntryPoint{UUID: rec.UUID, Name: rec.Name, ObjectKind: rec.Kind, BundleType: TypeSite})

		case object.KindControlPanel:
			eps = append(eps, EntryPoint{UUID: rec.UUID, Name: rec.Name, ObjectKind: rec.Kind, BundleType: TypeDashboard})

		case object.KindWebAPI:
			eps = append(eps, EntryPoint{UUID: rec.UUID, Name: rec.Name, ObjectKind: rec.Kind, BundleType: TypeWebAPI})
		}
	}

	eps = append(eps, discoverStandaloneProcesses(store)...)
	return eps
}

func discoverStandaloneProcesses(store *object.Store) []EntryPoint {
	actionTargets := make(map[string]bool)
	subprocesses := make(map[string]bool)
	for _, rec := range store.Records() {
		switch rec.Kind {
		case object.KindRecordType:
			for _, action := range mapList(rec.Data, "actions") {
				if raw := getString(action, "target_uuid"); raw != "" {
					if t, ok := resolveTarget(store, raw); ok {
						actionTargets[t.UUID] = true
					}
				}
			}
		case object.KindProcessModel:
			for _, node := range mapList(rec.Data, "nodes") {
				if sub := getString(node, "subprocess_uuid"); sub != "" {
					subprocesses[sub] = true
				}
			}
		}
	}

	var eps []EntryPoint
	for _, rec := range store.Records() {
		if rec.Kind != object.KindProcessModel || actionTargets[rec.UUID] || subprocesses[rec.UUID] {
			continue
		}
		eps = append(eps, EntryPoint{UUID: rec.UUID, Name: rec.Name, ObjectKind: rec.Kind, BundleType: TypeProcess})
	}
	return eps
}

// resolveTarget maps an action target, which may be an identifier or an
// already-resolved display name, to its record.
func resolveTarget(store *object.Store, value string) (*object.Record, bool) {
	if rec, ok := store.ByUUID(value); ok {
		return rec, true
	}
	return store.ByName(value)
}

var quotedRe = regexp.MustCompile(`^"(.+)"$`)

func actionName(action map[string]any) string {
	name := ""
	if exprs, ok := action["expressions"].(map[string]any); ok {
		name = getString(exprs, "TITLE")
	}
	if name == "" {
		name = getString(action, "reference_key")
	}
	if name == "" {
		return "Unknown"
	}
	if m := quotedRe.FindStringSubmatch(strings.TrimSpace(name)); m != nil {
		return m[1]
	}
	return name
}

func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func mapList(data map[string]any, key string) []map[string]any {
	items, _ := data[key].([]any)
	var out []map[string]any
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
