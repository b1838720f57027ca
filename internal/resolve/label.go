package resolve

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

// Label-bundle calls look up display text by key at runtime:
//
//	rule!AS_displayDynamicLabel(bundleKey: "lbl_Sign")
//	rule!AS_displayDynamicLabel(bundle: cons!X, bundleKey: "lbl_Sign")
//
// When the key is present in the label lookup the whole call collapses to
// the quoted text. Calls carrying an arguments: parameter are left alone.
var labelCallRe = regexp.MustCompile(`(?s)rule!\w+\(\s*(?:bundle\s*:\s*[^,]+,\s*)?bundleKey\s*:\s*"([^"]+)"\s*\)`)

func (r *Resolver) resolveLabels(code string) string {
	if len(r.labels) == 0 {
		return code
	}
	return labelCallRe.ReplaceAllStringFunc(code, func(m string) string {
		key := labelCallRe.FindStringSubmatch(m)[1]
		if value, ok := r.labels[key]; ok {
			return `"` + value + `"`
		}
		return m
	})
}

// ParseLabels reads key=value label properties, merging into a lookup where
// the first definition of a key wins. Comment lines start with '#'.
func ParseLabels(readers ...io.Reader) (map[string]string, error) {
	lookup := make(map[string]string)
	for _, rd := range readers {
		sc := bufio.NewScanner(rd)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			k, v, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			k = strings.TrimSpace(k)
			if _, exists := lookup[k]; !exists {
				lookup[k] = strings.TrimSpace(v)
			}
		}
		if err := sc.Err(); err != nil {
			return lookup, err
		}
	}
	return lookup, nil
}
