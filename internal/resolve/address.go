package resolve

import (
	"regexp"

	"appatlas/internal/sail"
)

// Quoted address references inside expression text: #"_a-uuid_suffix" and
// #"uuid". Prefixed tokens try a full match, then the canonical prefix (which
// strips the application variant), then the base token.
var (
	prefixedRefRe = regexp.MustCompile(`#"(_[ae]-[\w-]+)"`)
	bareRefRe     = regexp.MustCompile(`#"([a-f0-9\-]{36})"`)
)

func (r *Resolver) resolveAddresses(code string) string {
	code = prefixedRefRe.ReplaceAllStringFunc(code, func(m string) string {
		token := prefixedRefRe.FindStringSubmatch(m)[1]
		if e, ok := r.lookupAddress(token); ok {
			return formatEntry(e)
		}
		return m
	})
	code = bareRefRe.ReplaceAllStringFunc(code, func(m string) string {
		token := bareRefRe.FindStringSubmatch(m)[1]
		if e, ok := r.addr[token]; ok {
			return formatEntry(e)
		}
		return m
	})
	return code
}

func formatEntry(e addrEntry) string {
	return sail.KindPrefix(e.kind) + e.name
}
