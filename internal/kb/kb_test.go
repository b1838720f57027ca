package kb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"appatlas/internal/artifact"
	"appatlas/internal/bundle"
	"appatlas/internal/deps"
	"appatlas/internal/object"
)

const (
	fxRecordType = "50000001-0000-4000-8000-000000000001"
	fxProcess    = "50000002-0000-4000-8000-000000000002"
	fxInterface  = "50000003-0000-4000-8000-000000000003"
	fxRule       = "50000004-0000-4000-8000-000000000004"
	fxOrphan     = "50000005-0000-4000-8000-000000000005"
	fxBatch      = "50000006-0000-4000-8000-000000000006"
)

// buildFixture runs the artifact builders into a temp data directory holding
// one application named demo, and returns a KB reading it back.
func buildFixture(t *testing.T) *KB {
	t.Helper()
	store := object.NewStore([]*object.Record{
		{UUID: fxRecordType, Name: "Case", Kind: object.KindRecordType, Data: map[string]any{
			"actions": []any{
				map[string]any{
					"expressions": map[string]any{"TITLE": `"New Case"`},
					"target_uuid": fxProcess,
				},
			},
		}},
		{UUID: fxProcess, Name: "Intake Flow", Kind: object.KindProcessModel, Data: map[string]any{
			"nodes": []any{
				map[string]any{"node_id": "n1", "interface_uuid": fxInterface},
			},
		}},
		{UUID: fxInterface, Name: "AS_form", Kind: object.KindInterface, Data: map[string]any{
			"sail_code": `rule!AS_util()`,
		}},
		{UUID: fxRule, Name: "AS_util", Kind: object.KindExpressionRule, Data: map[string]any{
			"definition": `1 + 1`,
		}},
		{UUID: fxOrphan, Name: "AS_orphan", Kind: object.KindExpressionRule, Data: map[string]any{
			"definition": `todo()`,
		}},
		{UUID: fxBatch, Name: "Batch Cleanup", Kind: object.KindProcessModel, Data: map[string]any{}},
	})

	ctx := context.Background()
	root := t.TempDir()
	w, err := artifact.NewLocalWriter(filepath.Join(root, "demo"), false)
	if err != nil {
		t.Fatalf("NewLocalWriter: %v", err)
	}

	edges := deps.Analyze(store)
	c := &bundle.Coordinator{}
	res, err := c.Build(ctx, store, edges, w)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	info := bundle.PackageInfo{Filename: "demo.zip", TotalSourceFiles: 6, TotalParsedObjects: store.Len()}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := w.WriteJSON(ctx, artifact.OverviewPath, bundle.BuildOverview(store, edges, res, info, now)); err != nil {
		t.Fatalf("write overview: %v", err)
	}
	if err := w.WriteJSON(ctx, artifact.SearchIndexPath, bundle.BuildSearchIndex(store, edges, res.Assignments)); err != nil {
		t.Fatalf("write search index: %v", err)
	}
	graph := deps.BuildGraph(edges)
	if err := bundle.WriteObjectDetails(ctx, w, store, graph, res.Assignments); err != nil {
		t.Fatalf("write object details: %v", err)
	}
	if err := bundle.WriteOrphans(ctx, w, bundle.Orphans(store, res.Assignments), graph); err != nil {
		t.Fatalf("write orphans: %v", err)
	}

	src, err := NewLocalSource(root)
	if err != nil {
		t.Fatalf("NewLocalSource: %v", err)
	}
	cached, err := NewCached(src, 0)
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}
	return New(cached)
}

func TestListApplications(t *testing.T) {
	k := buildFixture(t)
	apps, err := k.ListApplications(context.Background())
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if len(apps) != 1 || apps[0].Name != "demo" {
		t.Fatalf("apps = %+v", apps)
	}
	if apps[0].BundlesByType["action"] != 1 || apps[0].BundlesByType["process"] != 1 {
		t.Fatalf("bundles by type = %v", apps[0].BundlesByType)
	}
	if apps[0].TotalObjects != float64(6) {
		t.Fatalf("total objects = %v", apps[0].TotalObjects)
	}
}

func TestSearchBundles(t *testing.T) {
	k := buildFixture(t)
	ctx := context.Background()

	hits, err := k.SearchBundles(ctx, "demo", "case", "")
	if err != nil {
		t.Fatalf("SearchBundles: %v", err)
	}
	if len(hits) != 1 || hits[0]["id"] != "Case_-_New_Case" {
		t.Fatalf("hits = %v", hits)
	}

	hits, err = k.SearchBundles(ctx, "demo", "", "process")
	if err != nil {
		t.Fatalf("SearchBundles by type: %v", err)
	}
	if len(hits) != 1 || hits[0]["root_name"] != "Batch Cleanup" {
		t.Fatalf("process hits = %v", hits)
	}
}

func TestSearchObjects(t *testing.T) {
	k := buildFixture(t)
	hits, err := k.SearchObjects(context.Background(), "demo", "as_", object.KindExpressionRule)
	if err != nil {
		t.Fatalf("SearchObjects: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %v", hits)
	}
	// Sorted by name.
	if hits[0]["name"] != "AS_orphan" || hits[1]["name"] != "AS_util" {
		t.Fatalf("hit order = %v", hits)
	}
	if hits[1]["uuid"] != fxRule {
		t.Fatalf("rule hit = %v", hits[1])
	}
}

func TestBundleDetailLevels(t *testing.T) {
	k := buildFixture(t)
	ctx := context.Background()

	summary, err := k.Bundle(ctx, "demo", "Case_-_New_Case", DetailSummary)
	if err != nil {
		t.Fatalf("Bundle summary: %v", err)
	}
	sm, ok := summary.(map[string]any)
	if !ok {
		t.Fatalf("summary type = %T", summary)
	}
	objects, _ := sm["objects"].([]map[string]any)
	if len(objects) != 3 {
		t.Fatalf("summary objects = %v", sm["objects"])
	}
	for _, o := range objects {
		if _, leaked := o["uuid"]; leaked {
			t.Fatalf("summary object carries uuid: %v", o)
		}
	}

	full, err := k.Bundle(ctx, "demo", "Case_-_New_Case", DetailFull)
	if err != nil {
		t.Fatalf("Bundle full: %v", err)
	}
	fm := full.(map[string]any)
	found := false
	for _, o := range anyMapList(fm, "objects") {
		if o["uuid"] == fxInterface {
			found = true
			if o["sail_code"] != `rule!AS_util()` {
				t.Fatalf("merged code = %v", o["sail_code"])
			}
		}
	}
	if !found {
		t.Fatalf("interface missing from full detail")
	}

	if _, err := k.Bundle(ctx, "demo", "Case_-_New_Case", "everything"); err == nil {
		t.Fatalf("unknown detail level accepted")
	}
}

func TestBundleIDResolution(t *testing.T) {
	k := buildFixture(t)
	ctx := context.Background()

	// Legacy type-prefixed path.
	if _, err := k.Bundle(ctx, "demo", "actions/Case_-_New_Case.json", DetailSummary); err != nil {
		t.Fatalf("legacy id: %v", err)
	}
	// Case-insensitive root name.
	if _, err := k.Bundle(ctx, "demo", "case - new case", DetailSummary); err != nil {
		t.Fatalf("root name: %v", err)
	}
	if _, err := k.Bundle(ctx, "demo", "no_such_bundle", DetailSummary); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing bundle err = %v", err)
	}
}

func TestDependencies(t *testing.T) {
	k := buildFixture(t)
	ctx := context.Background()

	detail, err := k.Dependencies(ctx, "demo", "as_UTIL")
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	if detail["uuid"] != fxRule || detail["name"] != "AS_util" {
		t.Fatalf("detail = %v", detail)
	}
	calledBy := detail["called_by"].([]any)
	if len(calledBy) != 1 {
		t.Fatalf("called_by = %v", calledBy)
	}
	if ref := calledBy[0].(map[string]any); ref["name"] != "AS_form" {
		t.Fatalf("caller = %v", ref)
	}

	if _, err := k.Dependencies(ctx, "demo", "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing object err = %v", err)
	}
}

func TestOrphans(t *testing.T) {
	k := buildFixture(t)
	ctx := context.Background()

	index, err := k.Orphans(ctx, "demo")
	if err != nil {
		t.Fatalf("Orphans: %v", err)
	}
	byType, _ := index["by_type"].(map[string]any)
	rules, _ := byType[object.KindExpressionRule].([]any)
	if len(rules) != 1 {
		t.Fatalf("orphaned rules = %v", byType)
	}

	detail, err := k.Orphan(ctx, "demo", fxOrphan)
	if err != nil {
		t.Fatalf("Orphan: %v", err)
	}
	if detail["name"] != "AS_orphan" || detail["sail_code"] != "todo()" {
		t.Fatalf("orphan detail = %v", detail)
	}
}
