package loader

import (
	"os"
	"path/filepath"
	"testing"

	"appatlas/internal/object"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadRecordsFromDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b", "rules.json"), `[
		{"uuid": "10000001-0000-4000-8000-000000000001", "name": "AS_one", "kind": "Expression Rule", "data": {}},
		{"name": "no_uuid", "kind": "Expression Rule"}
	]`)
	writeFile(t, filepath.Join(dir, "a", "iface.json"), `{"uuid": "10000002-0000-4000-8000-000000000002", "name": "AS_form", "kind": "Interface", "data": {"sail_code": "1"}}`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	records, err := LoadRecords(dir)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	// Files load in sorted path order, so a/ precedes b/.
	if records[0].Name != "AS_form" || records[1].Name != "AS_one" {
		t.Fatalf("order = %s, %s", records[0].Name, records[1].Name)
	}
	if records[0].SourceFile != "iface.json" {
		t.Fatalf("source file = %s", records[0].SourceFile)
	}
}

func TestLoadRecordsSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.json")
	writeFile(t, path, `{"uuid": "10000003-0000-4000-8000-000000000003", "name": "AS_x"}`)

	records, err := LoadRecords(path)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d", len(records))
	}
	if records[0].Kind != object.KindUnknown {
		t.Fatalf("kind default = %s", records[0].Kind)
	}
}

func TestLoadRecordsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	writeFile(t, path, `{not json`)
	if _, err := LoadRecords(path); err == nil {
		t.Fatalf("bad JSON accepted")
	}
}

func TestLoadRecordsMissingPath(t *testing.T) {
	if _, err := LoadRecords(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("missing path accepted")
	}
}

func TestLoadLabels(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.properties"), "# header\nlbl_One=First\n")
	writeFile(t, filepath.Join(dir, "b.properties"), "lbl_One=Shadowed\nlbl_Two=Second\n")
	writeFile(t, filepath.Join(dir, "skip.txt"), "lbl_Three=Nope\n")

	labels, err := LoadLabels(dir)
	if err != nil {
		t.Fatalf("LoadLabels: %v", err)
	}
	if labels["lbl_One"] != "First" || labels["lbl_Two"] != "Second" {
		t.Fatalf("labels = %v", labels)
	}
	if len(labels) != 2 {
		t.Fatalf("unexpected keys: %v", labels)
	}
}

func TestLoadLabelsEmptyDir(t *testing.T) {
	labels, err := LoadLabels("")
	if err != nil || len(labels) != 0 {
		t.Fatalf("empty dir = %v, %v", labels, err)
	}
}
