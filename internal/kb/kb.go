package kb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"appatlas/internal/artifact"
	"appatlas/internal/util/jsonutil"
)

// Detail levels for Bundle.
const (
	DetailSummary   = "summary"
	DetailStructure = "structure"
	DetailFull      = "full"
)

// maxResponseChars caps a single bundle response. Anything larger is
// replaced by a truncation notice steering the caller to the summary level.
const maxResponseChars = 80_000

const searchObjectLimit = 50

// KB answers queries over one source's artifact layout. All answers are
// decoded fresh from artifact bytes, so callers may mutate them freely.
type KB struct {
	src Source
}

func New(src Source) *KB {
	return &KB{src: src}
}

func (k *KB) readMap(ctx context.Context, app, rel string) (map[string]any, error) {
	data, err := k.src.Read(ctx, app, rel)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("kb: decode %s/%s: %w", app, rel, err)
	}
	return out, nil
}

// AppSummary is one row of ListApplications.
type AppSummary struct {
	Name          string         `json:"name"`
	TotalObjects  any            `json:"total_objects"`
	TotalErrors   any            `json:"total_errors"`
	Coverage      any            `json:"bundle_coverage"`
	BundlesByType map[string]int `json:"bundles_by_type"`
}

// ListApplications lists every application with its headline stats, read
// from each overview artifact.
func (k *KB) ListApplications(ctx context.Context) ([]AppSummary, error) {
	apps, err := k.src.ListApps(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AppSummary, 0, len(apps))
	for _, name := range apps {
		overview, err := k.readMap(ctx, name, artifact.OverviewPath)
		if err != nil {
			return nil, err
		}
		info, _ := overview["package_info"].(map[string]any)
		byType := make(map[string]int)
		for _, b := range anyMapList(overview, "bundles") {
			bt, _ := b["bundle_type"].(string)
			if bt == "" {
				bt = "unknown"
			}
			byType[bt]++
		}
		out = append(out, AppSummary{
			Name:          name,
			TotalObjects:  info["total_parsed_objects"],
			TotalErrors:   info["total_errors"],
			Coverage:      overview["coverage"],
			BundlesByType: byType,
		})
	}
	return out, nil
}

// Overview returns an application's full overview artifact.
func (k *KB) Overview(ctx context.Context, app string) (map[string]any, error) {
	return k.readMap(ctx, app, artifact.OverviewPath)
}

// SearchBundles filters the bundle index by a case-insensitive substring of
// the root or parent name, optionally restricted to one bundle type.
func (k *KB) SearchBundles(ctx context.Context, app, query, bundleType string) ([]map[string]any, error) {
	overview, err := k.readMap(ctx, app, artifact.OverviewPath)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	results := []map[string]any{}
	for _, b := range anyMapList(overview, "bundles") {
		if bundleType != "" {
			if bt, _ := b["bundle_type"].(string); bt != bundleType {
				continue
			}
		}
		name, _ := b["root_name"].(string)
		parent, _ := b["parent_name"].(string)
		if strings.Contains(strings.ToLower(name), q) || strings.Contains(strings.ToLower(parent), q) {
			results = append(results, b)
		}
	}
	return results, nil
}

// SearchObjects filters the search index by a case-insensitive substring of
// the object name, optionally restricted to one object type. Results are
// sorted by name and capped.
func (k *KB) SearchObjects(ctx context.Context, app, query, objectType string) ([]map[string]any, error) {
	index, err := k.readMap(ctx, app, artifact.SearchIndexPath)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)

	q := strings.ToLower(query)
	results := []map[string]any{}
	for _, name := range names {
		if !strings.Contains(strings.ToLower(name), q) {
			continue
		}
		info, ok := index[name].(map[string]any)
		if !ok {
			continue
		}
		if objectType != "" {
			if t, _ := info["type"].(string); t != objectType {
				continue
			}
		}
		row := map[string]any{"name": name}
		for key, val := range info {
			row[key] = val
		}
		results = append(results, row)
		if len(results) == searchObjectLimit {
			break
		}
	}
	return results, nil
}

// Bundle returns one bundle at the requested detail level. The bundle ID may
// also be a root name; it is resolved against the overview when no artifact
// matches directly.
func (k *KB) Bundle(ctx context.Context, app, bundleID, detail string) (any, error) {
	id, err := k.resolveBundleID(ctx, app, bundleID)
	if err != nil {
		return nil, err
	}
	structure, err := k.readMap(ctx, app, artifact.BundleStructurePath(id))
	if err != nil {
		return nil, err
	}

	switch detail {
	case DetailSummary, "":
		objects := []map[string]any{}
		for _, o := range anyMapList(structure, "objects") {
			objects = append(objects, map[string]any{
				"name":        o["name"],
				"type":        o["type"],
				"description": o["description"],
			})
		}
		return map[string]any{
			"_metadata":   structure["_metadata"],
			"entry_point": structure["entry_point"],
			"flow":        structure["flow"],
			"objects":     objects,
		}, nil

	case DetailStructure:
		return truncate(structure), nil

	case DetailFull:
		code, err := k.readMap(ctx, app, artifact.BundleCodePath(id))
		if err != nil {
			return nil, err
		}
		codeMap, _ := code["objects"].(map[string]any)
		for _, o := range anyMapList(structure, "objects") {
			uuid, _ := o["uuid"].(string)
			if entry, ok := codeMap[uuid].(map[string]any); ok {
				o["sail_code"] = entry["sail_code"]
			}
		}
		return truncate(structure), nil

	default:
		return nil, fmt.Errorf("kb: unknown detail level %q", detail)
	}
}

// resolveBundleID accepts a bundle ID, a legacy type-prefixed path, or a
// root name, in that order of preference.
func (k *KB) resolveBundleID(ctx context.Context, app, bundleID string) (string, error) {
	if ok, _ := k.src.Exists(ctx, app, artifact.BundleStructurePath(bundleID)); ok {
		return bundleID, nil
	}

	stripped := bundleID
	for _, prefix := range []string{"actions/", "processes/", "pages/", "sites/", "web_apis/", "dashboards/"} {
		stripped = strings.TrimPrefix(stripped, prefix)
	}
	stripped = strings.TrimSuffix(stripped, ".json")
	if stripped != bundleID {
		if ok, _ := k.src.Exists(ctx, app, artifact.BundleStructurePath(stripped)); ok {
			return stripped, nil
		}
	}

	overview, err := k.readMap(ctx, app, artifact.OverviewPath)
	if err != nil {
		return "", err
	}
	lower := strings.ToLower(bundleID)
	for _, b := range anyMapList(overview, "bundles") {
		if name, _ := b["root_name"].(string); strings.ToLower(name) == lower {
			if id, _ := b["id"].(string); id != "" {
				return id, nil
			}
		}
	}
	return bundleID, nil
}

// Dependencies looks an object up by case-insensitive name and returns its
// per-object dependency artifact.
func (k *KB) Dependencies(ctx context.Context, app, objectName string) (map[string]any, error) {
	index, err := k.readMap(ctx, app, artifact.SearchIndexPath)
	if err != nil {
		return nil, err
	}
	lower := strings.ToLower(objectName)
	uuid := ""
	for name, v := range index {
		if strings.ToLower(name) != lower {
			continue
		}
		if info, ok := v.(map[string]any); ok {
			uuid, _ = info["uuid"].(string)
		}
		break
	}
	if uuid == "" {
		return nil, fmt.Errorf("%w: object %q", ErrNotFound, objectName)
	}
	return k.readMap(ctx, app, artifact.ObjectPath(uuid))
}

// ObjectDetail returns the per-object dependency artifact by UUID.
func (k *KB) ObjectDetail(ctx context.Context, app, uuid string) (map[string]any, error) {
	return k.readMap(ctx, app, artifact.ObjectPath(uuid))
}

// Orphans returns the orphan index artifact.
func (k *KB) Orphans(ctx context.Context, app string) (map[string]any, error) {
	return k.readMap(ctx, app, artifact.OrphanIndexPath)
}

// Orphan returns one orphan's detail artifact by UUID.
func (k *KB) Orphan(ctx context.Context, app, uuid string) (map[string]any, error) {
	return k.readMap(ctx, app, artifact.OrphanPath(uuid))
}

// truncate replaces responses over the size cap with a notice.
func truncate(v map[string]any) any {
	text, err := jsonutil.MarshalNoEscape(v)
	if err != nil || len(text) <= maxResponseChars {
		return v
	}
	return map[string]any{
		"_truncated": true,
		"_message":   fmt.Sprintf("Response too large (%d chars). Use detail_level=%q.", len(text), DetailSummary),
	}
}

func anyMapList(m map[string]any, key string) []map[string]any {
	items, _ := m[key].([]any)
	var out []map[string]any
	for _, it := range items {
		if mm, ok := it.(map[string]any); ok {
			out = append(out, mm)
		}
	}
	return out
}
