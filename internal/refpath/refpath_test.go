package refpath

import (
	"reflect"
	"testing"
)

func sampleData() map[string]any {
	return map[string]any{
		"sail_code": "a!foo()",
		"nodes": []any{
			map[string]any{
				"form_expression": "rule!one()",
				"inputs": []any{
					map[string]any{"input_expression": "rule!two()"},
					map[string]any{"input_expression": "rule!three()"},
				},
			},
			map[string]any{
				"form_expression": "rule!four()",
				"inputs":          []any{},
			},
		},
	}
}

func TestCollectScalar(t *testing.T) {
	got := Collect(sampleData(), "sail_code")
	if !reflect.DeepEqual(got, []string{"a!foo()"}) {
		t.Fatalf("Collect = %v", got)
	}
}

func TestCollectThroughLists(t *testing.T) {
	got := Collect(sampleData(), "nodes[].inputs[].input_expression")
	want := []string{"rule!two()", "rule!three()"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Collect = %v, want %v", got, want)
	}
}

func TestCollectMissingPath(t *testing.T) {
	if got := Collect(sampleData(), "nodes[].missing.deeper"); len(got) != 0 {
		t.Fatalf("missing path yielded %v", got)
	}
}

func TestApplyRewritesInPlace(t *testing.T) {
	data := sampleData()
	Apply(data, "nodes[].form_expression", func(s string) string { return s + "!" })
	got := Collect(data, "nodes[].form_expression")
	want := []string{"rule!one()!", "rule!four()!"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Apply result = %v, want %v", got, want)
	}
	// Untouched siblings stay untouched.
	if got := Collect(data, "sail_code"); got[0] != "a!foo()" {
		t.Fatalf("sibling mutated: %v", got)
	}
}

func TestApplySkipsNonStringLeaves(t *testing.T) {
	data := map[string]any{"value": 42}
	Apply(data, "value", func(s string) string { return "boom" })
	if data["value"] != 42 {
		t.Fatalf("non-string leaf rewritten: %v", data["value"])
	}
}
