// Package refpath walks dotted payload field paths with list notation.
//
// Supported forms:
//
//	"sail_code"                                   simple key
//	"nodes[].form_expression"                     iterate list, access key
//	"nodes[].gateway_conditions[].condition"      nested list iteration
//	"nodes[].subprocess_config.mappings[].expr"   mixed nesting
//
// Only string leaves are visited; anything else along the path is skipped
// silently, so a malformed payload never aborts a walk.
package refpath

import "strings"

// Collect returns all string values found at the leaf positions of path.
func Collect(data map[string]any, path string) []string {
	var out []string
	collect(data, strings.Split(path, "."), 0, &out)
	return out
}

// Apply rewrites every string leaf of path in place with fn.
func Apply(data map[string]any, path string, fn func(string) string) {
	apply(data, strings.Split(path, "."), 0, fn)
}

func collect(node any, parts []string, idx int, out *[]string) {
	if node == nil || idx >= len(parts) {
		return
	}
	key := parts[idx]

	if strings.HasSuffix(key, "[]") {
		items := listAt(node, strings.TrimSuffix(key, "[]"))
		if idx == len(parts)-1 {
			for _, item := range items {
				if s, ok := item.(string); ok {
					*out = append(*out, s)
				}
			}
			return
		}
		for _, item := range items {
			collect(item, parts, idx+1, out)
		}
		return
	}

	m, ok := node.(map[string]any)
	if !ok {
		return
	}
	if idx == len(parts)-1 {
		if s, ok := m[key].(string); ok {
			*out = append(*out, s)
		}
		return
	}
	collect(m[key], parts, idx+1, out)
}

func apply(node any, parts []string, idx int, fn func(string) string) {
	if node == nil || idx >= len(parts) {
		return
	}
	key := parts[idx]

	if strings.HasSuffix(key, "[]") {
		m, ok := node.(map[string]any)
		if !ok {
			return
		}
		items, ok := m[strings.TrimSuffix(key, "[]")].([]any)
		if !ok {
			return
		}
		if idx == len(parts)-1 {
			for i, item := range items {
				if s, ok := item.(string); ok {
					items[i] = fn(s)
				}
			}
			return
		}
		for _, item := range items {
			apply(item, parts, idx+1, fn)
		}
		return
	}

	m, ok := node.(map[string]any)
	if !ok {
		return
	}
	if idx == len(parts)-1 {
		if s, ok := m[key].(string); ok {
			m[key] = fn(s)
		}
		return
	}
	apply(m[key], parts, idx+1, fn)
}

func listAt(node any, key string) []any {
	m, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	items, _ := m[key].([]any)
	return items
}
