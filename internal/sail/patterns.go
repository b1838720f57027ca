// Package sail holds the shared reference idiom for embedded expression text:
// the token patterns references use, the per-kind tables saying where those
// references live inside payloads, and the edge-kind vocabulary derived from
// them. The resolver and the dependency analyzer both consult this package so
// that substitution and edge extraction always agree on what a reference is.
package sail

import "regexp"

// Address token patterns as they appear inside expression text.
var (
	// Full prefixed token: _a-{uuid}_{suffix} or _e-{uuid}_{suffix}.
	FullTokenRe = regexp.MustCompile(`(?i)(_[ae]-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}_[\w-]+)`)

	// Bare 36-char token. Callers must reject matches adjacent to hex or '-'
	// bytes (see StandardTokens); RE2 has no lookaround.
	bareTokenRe = regexp.MustCompile(`(?i)([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})`)
)

// Named reference patterns produced by resolution (and written by hand in
// expression source).
var (
	RuleRefRe       = regexp.MustCompile(`rule!([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`)
	ConstantRefRe   = regexp.MustCompile(`cons!([a-zA-Z_][a-zA-Z0-9_]*)`)
	TypeRefRe       = regexp.MustCompile(`type!([a-zA-Z_][a-zA-Z0-9_]*)`)
	RecordTypeRefRe = regexp.MustCompile(`recordType!([a-zA-Z_][a-zA-Z0-9_]*)`)
)

// Entity locator (record URN) pattern for edge extraction: any of the three
// URN heads followed by a bare token.
var RecordURNRe = regexp.MustCompile(`(?i)urn:appian:record-(?:type|field|relationship):v1:([0-9a-f-]{36})`)

// StandardTokens returns all bare 36-char tokens in text whose neighbors are
// not hex digits or '-', mirroring a boundary-guarded match.
func StandardTokens(text string) []string {
	var out []string
	for _, loc := range bareTokenRe.FindAllStringIndex(text, -1) {
		if loc[0] > 0 && isHexOrDash(text[loc[0]-1]) {
			continue
		}
		if loc[1] < len(text) && isHexOrDash(text[loc[1]]) {
			continue
		}
		out = append(out, text[loc[0]:loc[1]])
	}
	return out
}

func isHexOrDash(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b >= 'a' && b <= 'f':
		return true
	case b >= 'A' && b <= 'F':
		return true
	case b == '-':
		return true
	}
	return false
}
