package bundle

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"appatlas/internal/artifact"
	"appatlas/internal/deps"
	"appatlas/internal/object"
)

// memWriter captures artifact writes for inspection.
type memWriter struct {
	mu    sync.Mutex
	files map[string]any
}

func newMemWriter() *memWriter {
	return &memWriter{files: make(map[string]any)}
}

func (w *memWriter) WriteJSON(_ context.Context, rel string, v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[rel] = v
	return nil
}

const (
	rtUUID     = "20000001-0000-4000-8000-000000000001"
	pmUUID     = "20000002-0000-4000-8000-000000000002"
	ifaceUUID  = "20000003-0000-4000-8000-000000000003"
	utilUUID   = "20000004-0000-4000-8000-000000000004"
	rtDataUUID = "20000005-0000-4000-8000-000000000005"
	rtXtraUUID = "20000006-0000-4000-8000-000000000006"
	orphanUUID = "20000007-0000-4000-8000-000000000007"
	pm3UUID    = "20000008-0000-4000-8000-000000000008"
	ghostUUID  = "99999999-9999-4999-8999-999999999999"
)

func scenarioStore() *object.Store {
	return object.NewStore([]*object.Record{
		{UUID: rtUUID, Name: "Case", Kind: object.KindRecordType, Data: map[string]any{
			"actions": []any{
				map[string]any{
					"expressions": map[string]any{"TITLE": `"New Case"`},
					"target_uuid": pmUUID,
				},
				map[string]any{
					"expressions": map[string]any{"TITLE": `"New Case"`},
					"target_uuid": ghostUUID,
				},
			},
		}},
		{UUID: pmUUID, Name: "Intake Flow", Kind: object.KindProcessModel, Data: map[string]any{
			"nodes": []any{
				map[string]any{"node_id": "n1", "interface_uuid": ifaceUUID},
			},
		}},
		{UUID: ifaceUUID, Name: "AS_form", Kind: object.KindInterface, Data: map[string]any{
			"sail_code": `rule!AS_util() & recordType!CaseData`,
		}},
		{UUID: utilUUID, Name: "AS_util", Kind: object.KindExpressionRule, Data: map[string]any{
			"definition": `1 + 1`,
		}},
		{UUID: rtDataUUID, Name: "CaseData", Kind: object.KindRecordType, Data: map[string]any{
			"relationships": []any{
				map[string]any{"target_record_type_uuid": rtXtraUUID},
			},
		}},
		{UUID: rtXtraUUID, Name: "Extra", Kind: object.KindRecordType, Data: map[string]any{}},
		{UUID: orphanUUID, Name: "AS_orphan", Kind: object.KindExpressionRule, Data: map[string]any{}},
		{UUID: pm3UUID, Name: "Batch Cleanup", Kind: object.KindProcessModel, Data: map[string]any{}},
	})
}

func buildScenario(t *testing.T) (*Result, *memWriter) {
	t.Helper()
	store := scenarioStore()
	w := newMemWriter()
	c := &Coordinator{Workers: 2}
	res, err := c.Build(context.Background(), store, deps.Analyze(store), w)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return res, w
}

func indexByID(res *Result) map[string]IndexEntry {
	out := make(map[string]IndexEntry, len(res.Index))
	for _, e := range res.Index {
		out[e.ID] = e
	}
	return out
}

func TestBuildBundleMembership(t *testing.T) {
	res, _ := buildScenario(t)

	if len(res.Index) != 3 {
		t.Fatalf("bundles = %d, want 3: %+v", len(res.Index), res.Index)
	}
	byID := indexByID(res)

	action, ok := byID["Case_-_New_Case"]
	if !ok {
		t.Fatalf("action bundle missing: %v", byID)
	}
	// Target process, its interface, the called rule, and the record type
	// the interface names. The walk stops at CaseData, so Extra stays out,
	// and the owning record type never joins its own action bundle.
	if action.ObjectCount != 4 {
		t.Fatalf("action bundle size = %d", action.ObjectCount)
	}
	for _, uuid := range []string{pmUUID, ifaceUUID, utilUUID, rtDataUUID} {
		if len(res.Assignments[uuid]) != 1 || res.Assignments[uuid][0] != action.ID {
			t.Fatalf("assignment for %s = %v", uuid, res.Assignments[uuid])
		}
	}
	for _, uuid := range []string{rtUUID, rtXtraUUID, orphanUUID} {
		if _, bundled := res.Assignments[uuid]; bundled {
			t.Fatalf("%s should not be bundled", uuid)
		}
	}

	proc, ok := byID["Batch_Cleanup"]
	if !ok || proc.BundleType != TypeProcess || proc.ObjectCount != 1 {
		t.Fatalf("process bundle = %+v", proc)
	}
}

func TestBuildPartialAndCollisions(t *testing.T) {
	res, _ := buildScenario(t)
	byID := indexByID(res)

	degraded, ok := byID["Case_-_New_Case_2"]
	if !ok {
		t.Fatalf("collision id missing: %v", byID)
	}
	if !degraded.Partial {
		t.Fatalf("unresolved target not flagged partial: %+v", degraded)
	}
	if degraded.ObjectCount != 0 {
		t.Fatalf("degraded bundle size = %d", degraded.ObjectCount)
	}
	if byID["Case_-_New_Case"].Partial {
		t.Fatalf("resolved action flagged partial")
	}
}

func TestBuildIndexOrderAndKeyObjects(t *testing.T) {
	res, _ := buildScenario(t)

	for i := 1; i < len(res.Index); i++ {
		a, b := res.Index[i-1], res.Index[i]
		if a.BundleType > b.BundleType ||
			(a.BundleType == b.BundleType && a.RootName > b.RootName) {
			t.Fatalf("index out of order at %d: %+v", i, res.Index)
		}
	}

	action := indexByID(res)["Case_-_New_Case"]
	if len(action.KeyObjects) != 4 {
		t.Fatalf("key objects = %v", action.KeyObjects)
	}
	// The interface has the most in-bundle edges and ranks first.
	if action.KeyObjects[0] != "AS_form" {
		t.Fatalf("top key object = %v", action.KeyObjects)
	}
}

func TestBuildWritesArtifacts(t *testing.T) {
	res, w := buildScenario(t)

	for _, e := range res.Index {
		if _, ok := w.files[artifact.BundleStructurePath(e.ID)]; !ok {
			t.Fatalf("structure missing for %s", e.ID)
		}
		if _, ok := w.files[artifact.BundleCodePath(e.ID)]; !ok {
			t.Fatalf("code missing for %s", e.ID)
		}
	}

	code, ok := w.files[artifact.BundleCodePath("Case_-_New_Case")].(*Code)
	if !ok {
		t.Fatalf("code artifact type = %T", w.files[artifact.BundleCodePath("Case_-_New_Case")])
	}
	if code.Metadata.BundleID != "Case_-_New_Case" {
		t.Fatalf("code metadata = %+v", code.Metadata)
	}
	entry, ok := code.Objects[ifaceUUID]
	if !ok || entry.SailCode == "" {
		t.Fatalf("interface code entry = %+v", code.Objects)
	}

	structure, ok := w.files[artifact.BundleStructurePath("Case_-_New_Case")].(*Structure)
	if !ok {
		t.Fatalf("structure artifact type = %T", w.files[artifact.BundleStructurePath("Case_-_New_Case")])
	}
	if len(structure.Objects) != 4 {
		t.Fatalf("structure objects = %d", len(structure.Objects))
	}
}

func TestBuildHubSuppression(t *testing.T) {
	records := []*object.Record{
		{UUID: "30000001-0000-4000-8000-000000000001", Name: "AS_endpoint", Kind: object.KindWebAPI, Data: map[string]any{
			"sail_code": `rule!AS_hub()`,
		}},
		{UUID: "30000002-0000-4000-8000-000000000002", Name: "AS_hub", Kind: object.KindExpressionRule, Data: map[string]any{
			"definition": `rule!AS_behind()`,
		}},
		{UUID: "30000003-0000-4000-8000-000000000003", Name: "AS_behind", Kind: object.KindExpressionRule, Data: map[string]any{}},
	}
	for i := 0; i < 20; i++ {
		records = append(records, &object.Record{
			UUID: fmt.Sprintf("40000000-0000-4000-8000-%012d", i),
			Name: fmt.Sprintf("AS_caller%d", i),
			Kind: object.KindInterface,
			Data: map[string]any{"sail_code": `rule!AS_hub()`},
		})
	}
	store := object.NewStore(records)

	w := newMemWriter()
	c := &Coordinator{}
	res, err := c.Build(context.Background(), store, deps.Analyze(store), w)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	entry := indexByID(res)["AS_endpoint"]
	if entry.BundleType != TypeWebAPI {
		t.Fatalf("web api bundle = %+v", res.Index)
	}
	// The hub itself is recorded, but nothing behind it is pulled in.
	if entry.ObjectCount != 2 {
		t.Fatalf("web api bundle size = %d", entry.ObjectCount)
	}
	if _, bundled := res.Assignments["30000003-0000-4000-8000-000000000003"]; bundled {
		t.Fatalf("object behind hub was bundled")
	}
}

func TestSanitizeID(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Case - New Case", "Case_-_New_Case"},
		{"Submit (v2)!", "Submit_v2"},
		{"  spaced   out  ", "spaced_out"},
		{"", "unnamed"},
		{"///", "unnamed"},
	}
	for _, tc := range cases {
		if got := sanitizeID(tc.in); got != tc.want {
			t.Fatalf("sanitizeID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
