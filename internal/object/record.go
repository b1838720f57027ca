package object

import "regexp"

// Record is one extracted application object. Identity is the UUID; Name is
// display-only and not unique across kinds. Data holds the kind-specific
// payload as parsed by the extractor; reference resolution rewrites string
// leaves of Data in place, after which the record is treated as read-only.
type Record struct {
	UUID       string         `json:"uuid"`
	Name       string         `json:"name"`
	Kind       string         `json:"kind"`
	Data       map[string]any `json:"data"`
	SourceFile string         `json:"source_file,omitempty"`
}

// Description returns the payload description, if the extractor found one.
func (r *Record) Description() string {
	if r == nil || r.Data == nil {
		return ""
	}
	if s, ok := r.Data["description"].(string); ok {
		return s
	}
	return ""
}

// Address token formats used by references between objects:
//
//	_a-{uuid}_{suffix}   prefixed, suffix may carry an application variant
//	{uuid}               bare 36-char token
//	{uuid}-{suffix}      suffixed
//
// The canonical form strips the application variant: `_a-{uuid}_{numericID}`.
var (
	prefixedTokenRe = regexp.MustCompile(`(?i)^_[ae]-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}_[\w-]+$`)
	standardTokenRe = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	suffixedTokenRe = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}-[\w-]+$`)
	canonicalRe     = regexp.MustCompile(`(?i)^_[ae]-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}_[0-9]+`)
)

// IsAddress reports whether v matches any of the three address token formats.
func IsAddress(v string) bool {
	if v == "" {
		return false
	}
	return prefixedTokenRe.MatchString(v) || standardTokenRe.MatchString(v) || suffixedTokenRe.MatchString(v)
}

// CanonicalAddress returns the canonical prefix of a prefixed address token
// ("" when v has no canonical form). Two tokens with the same canonical form
// designate the same object across application variants.
func CanonicalAddress(v string) string {
	return canonicalRe.FindString(v)
}

// BaseAddress strips prefix and suffix down to the bare 36-char token, or
// returns "" when v is not an address.
func BaseAddress(v string) string {
	if v == "" {
		return ""
	}
	if len(v) > 3 && (v[:3] == "_a-" || v[:3] == "_e-") {
		stripped := v[3:]
		for i := len(stripped) - 1; i > 0; i-- {
			if stripped[i] == '_' {
				return stripped[:i]
			}
		}
	}
	if suffixedTokenRe.MatchString(v) {
		return v[:36]
	}
	if standardTokenRe.MatchString(v) {
		return v
	}
	return ""
}
