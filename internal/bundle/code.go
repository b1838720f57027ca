package bundle

import (
	"fmt"
	"strings"

	"appatlas/internal/object"
)

// Code is a bundle's raw-content artifact, fetched on demand. Only members
// that actually carry source text appear.
type Code struct {
	Metadata CodeMeta             `json:"_metadata"`
	Objects  map[string]CodeEntry `json:"objects"`
}

type CodeMeta struct {
	BundleID string `json:"bundle_id"`
}

type CodeEntry struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	SailCode string `json:"sail_code"`
}

// codeFieldsByKind names the payload field holding an object's primary
// source text. Process models are handled separately by concatenation.
var codeFieldsByKind = map[string][]string{
	object.KindInterface:      {"sail_code"},
	object.KindExpressionRule: {"definition"},
	object.KindWebAPI:         {"sail_code"},
	object.KindIntegration:    {"sail_code"},
}

func buildCode(bundleID string, members []*object.Record) *Code {
	entries := make(map[string]CodeEntry)
	for _, m := range members {
		code := ExtractCode(m)
		if code == "" {
			continue
		}
		entries[m.UUID] = CodeEntry{Name: m.Name, Type: m.Kind, SailCode: code}
	}
	return &Code{Metadata: CodeMeta{BundleID: bundleID}, Objects: entries}
}

// ExtractCode returns an object's source text, or "" when it has none.
// Process model text is the concatenation of every node, input, and output
// expression, each with a locating comment.
func ExtractCode(rec *object.Record) string {
	for _, field := range codeFieldsByKind[rec.Kind] {
		if val := getString(rec.Data, field); val != "" {
			return val
		}
	}
	if rec.Kind != object.KindProcessModel {
		return ""
	}

	var parts []string
	for _, node := range mapList(rec.Data, "nodes") {
		if expr := getString(node, "form_expression"); expr != "" {
			parts = append(parts, fmt.Sprintf("// Node: %s\n%s", nameOr(node, "node_name"), expr))
		}
		for _, in := range mapList(node, "inputs") {
			if expr := getString(in, "input_expression"); expr != "" {
				parts = append(parts, fmt.Sprintf("// Input: %s\n%s", nameOr(in, "name"), expr))
			}
		}
		for _, out := range mapList(node, "outputs") {
			if expr := getString(out, "output_expression"); expr != "" {
				parts = append(parts, fmt.Sprintf("// Output: %s\n%s", nameOr(out, "name"), expr))
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

func nameOr(m map[string]any, key string) string {
	if s := getString(m, key); s != "" {
		return s
	}
	return "?"
}
