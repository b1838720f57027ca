// Package resolve rewrites opaque reference tokens inside object payloads
// into readable names. A Resolver is built once per application from the
// fully loaded object store, holds read-only lookup tables for its lifetime,
// and is discarded when the application's processing run ends.
//
// Resolution is purely substitutive: a token that matches nothing is left
// byte-for-byte unchanged, and resolved output never matches any reference
// pattern again, so resolving twice is a no-op.
package resolve

import (
	"appatlas/internal/object"
	"appatlas/internal/refpath"
	"appatlas/internal/sail"
)

type addrEntry struct {
	name string
	kind string
}

// Resolver resolves address tokens, entity locators, and translation
// locators against one application's object store.
type Resolver struct {
	addr      map[string]addrEntry // uuid, base, canonical -> entry
	canonical map[string]addrEntry // canonical prefix -> entry

	recordTypes map[string]string            // rt uuid (full + base) -> name
	fields      map[segKey]string            // (rt uuid, field uuid/name) -> field name
	rels        map[segKey]relEntry          // (rt uuid, rel uuid) -> rel
	texts       map[string]map[string]string // translation uuid -> locale -> text

	labels map[string]string // label bundle key -> display text
}

type segKey struct {
	recordType string
	segment    string
}

type relEntry struct {
	name       string
	targetUUID string
}

// New builds the lookup tables from the store. labels may be nil; it feeds
// the label-bundle pass only.
func New(store *object.Store, labels map[string]string) *Resolver {
	r := &Resolver{
		addr:        make(map[string]addrEntry),
		canonical:   make(map[string]addrEntry),
		recordTypes: make(map[string]string),
		fields:      make(map[segKey]string),
		rels:        make(map[segKey]relEntry),
		texts:       make(map[string]map[string]string),
		labels:      labels,
	}
	for _, rec := range store.Records() {
		r.indexAddress(rec)
		switch rec.Kind {
		case object.KindRecordType:
			r.indexRecordType(rec)
		case object.KindTranslationString:
			r.indexTranslation(rec)
		}
	}
	return r
}

func (r *Resolver) indexAddress(rec *object.Record) {
	entry := addrEntry{name: rec.Name, kind: rec.Kind}
	r.addr[rec.UUID] = entry
	if base := object.BaseAddress(rec.UUID); base != "" && base != rec.UUID {
		setDefault(r.addr, base, entry)
	}
	if canon := object.CanonicalAddress(rec.UUID); canon != "" {
		setDefault(r.addr, canon, entry)
		setDefault(r.canonical, canon, entry)
	}
}

// ResolveAll rewrites references in every record's payload in place. Code
// fields get the full substitution pipeline; single-address fields resolve to
// a plain name.
func (r *Resolver) ResolveAll(store *object.Store, locale string) {
	for _, rec := range store.Records() {
		data := rec.Data
		if data == nil {
			continue
		}
		for _, path := range sail.CodeFields[rec.Kind] {
			refpath.Apply(data, path, func(s string) string {
				return r.ResolveCode(s, locale)
			})
		}
		for _, path := range sail.UUIDFields[rec.Kind] {
			refpath.Apply(data, path, r.ResolveAddressName)
		}
	}
}

// ResolveCode resolves every reference format inside one expression string.
func (r *Resolver) ResolveCode(code, locale string) string {
	if code == "" {
		return code
	}
	code = r.resolveAddresses(code)
	code = r.resolveRecordURNs(code)
	code = r.resolveTranslations(code, locale)
	code = r.resolveLabels(code)
	return code
}

// ResolveAddressName resolves a single raw address to its object name,
// returning the input unchanged when unknown.
func (r *Resolver) ResolveAddressName(token string) string {
	if token == "" {
		return token
	}
	if e, ok := r.lookupAddress(token); ok {
		return e.name
	}
	return token
}

func (r *Resolver) lookupAddress(token string) (addrEntry, bool) {
	if e, ok := r.addr[token]; ok {
		return e, true
	}
	if canon := object.CanonicalAddress(token); canon != "" {
		if e, ok := r.canonical[canon]; ok {
			return e, true
		}
	}
	if base := object.BaseAddress(token); base != "" {
		if e, ok := r.addr[base]; ok {
			return e, true
		}
	}
	return addrEntry{}, false
}

func setDefault[K comparable, V any](m map[K]V, k K, v V) {
	if _, ok := m[k]; !ok {
		m[k] = v
	}
}
