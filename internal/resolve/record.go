package resolve

import (
	"regexp"
	"strings"

	"appatlas/internal/object"
)

// Entity locator (record URN) resolution. Five passes, applied in order:
//
//  1. constructor calls    #"urn:…:record-type:v1:{rt}"(      -> recordType!Name(
//  2. standard URNs        type / field / relationship, UUID segments
//  3. name-based fields    the field segment is a name, not a UUID
//  4. chain URNs           2+ segments traversing relationships
//  5. encoded traversals   field%40subfield
//
// A URN whose record type is unknown is left untouched by every pass.
const rtSeg = `[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}(?:-[\w-]+)?`

var (
	rtConstructorRe = regexp.MustCompile(`(?i)#"urn:appian:record-type:v1:(` + rtSeg + `)"\s*\(`)
	rtStandardRe    = regexp.MustCompile(`(?i)#"urn:appian:(record-type|record-field|record-relationship):v1:(` + rtSeg + `)(?:/(` + rtSeg + `))?(?:/(` + rtSeg + `))?"`)
	rtNameFieldRe   = regexp.MustCompile(`(?i)#"urn:appian:record-field:v1:(` + rtSeg + `)/([a-zA-Z_]\w*)"`)
	rtChainRe       = regexp.MustCompile(`(?i)#"urn:appian:record-field:v1:(` + rtSeg + `)((?:/` + rtSeg + `){2,})"`)
	rtEncodedRe     = regexp.MustCompile(`(?i)#"urn:appian:record-field:v1:(` + rtSeg + `)/([a-zA-Z_]\w*%40[a-zA-Z_]\w*)"`)
)

func (r *Resolver) indexRecordType(rec *object.Record) {
	rtKeys := []string{strings.ToLower(rec.UUID)}
	if base := object.BaseAddress(rec.UUID); base != "" && base != rec.UUID {
		rtKeys = append(rtKeys, strings.ToLower(base))
	}
	for _, rk := range rtKeys {
		setDefault(r.recordTypes, rk, rec.Name)
	}

	for _, item := range listField(rec.Data, "fields") {
		fid, _ := item["field_uuid"].(string)
		if fid == "" {
			continue
		}
		fname, _ := item["field_name"].(string)
		if fname == "" {
			fname = fid
		}
		keys := []string{strings.ToLower(fid)}
		if base := object.BaseAddress(fid); base != "" && base != fid {
			keys = append(keys, strings.ToLower(base))
		}
		for _, rk := range rtKeys {
			for _, k := range keys {
				setDefault(r.fields, segKey{rk, k}, fname)
			}
		}
	}

	for _, item := range listField(rec.Data, "relationships") {
		rid, _ := item["relationship_uuid"].(string)
		if rid == "" {
			continue
		}
		rname, _ := item["relationship_name"].(string)
		if rname == "" {
			rname = rid
		}
		target, _ := item["target_record_type_uuid"].(string)
		val := relEntry{name: rname, targetUUID: target}
		keys := []string{strings.ToLower(rid)}
		if base := object.BaseAddress(rid); base != "" && base != rid {
			keys = append(keys, strings.ToLower(base))
		}
		for _, rk := range rtKeys {
			for _, k := range keys {
				setDefault(r.rels, segKey{rk, k}, val)
			}
		}
	}
}

func (r *Resolver) resolveRecordURNs(code string) string {
	code = r.resolveConstructors(code)
	code = r.resolveStandardURNs(code)
	code = r.resolveNameFieldURNs(code)
	code = r.resolveChainURNs(code)
	code = r.resolveEncodedURNs(code)
	return code
}

func (r *Resolver) resolveConstructors(code string) string {
	return rtConstructorRe.ReplaceAllStringFunc(code, func(m string) string {
		sub := rtConstructorRe.FindStringSubmatch(m)
		rt, ok := r.normalizeRT(sub[1])
		if !ok {
			return m
		}
		return "recordType!" + r.recordTypes[rt] + "("
	})
}

func (r *Resolver) resolveStandardURNs(code string) string {
	return rtStandardRe.ReplaceAllStringFunc(code, func(m string) string {
		sub := rtStandardRe.FindStringSubmatch(m)
		urnType, rtRaw, seg1, seg2 := strings.ToLower(sub[1]), sub[2], sub[3], sub[4]
		rt, ok := r.normalizeRT(rtRaw)
		if !ok {
			return m
		}
		if out := r.resolveSegments(urnType, rt, seg1, seg2); out != "" {
			return out
		}
		return m
	})
}

func (r *Resolver) resolveNameFieldURNs(code string) string {
	return rtNameFieldRe.ReplaceAllStringFunc(code, func(m string) string {
		sub := rtNameFieldRe.FindStringSubmatch(m)
		rt, ok := r.normalizeRT(sub[1])
		if !ok {
			return m
		}
		return "recordType!" + r.recordTypes[rt] + "." + sub[2]
	})
}

func (r *Resolver) resolveChainURNs(code string) string {
	return rtChainRe.ReplaceAllStringFunc(code, func(m string) string {
		sub := rtChainRe.FindStringSubmatch(m)
		rt, ok := r.normalizeRT(sub[1])
		if !ok {
			return m
		}
		segments := strings.Split(strings.TrimPrefix(sub[2], "/"), "/")
		names := r.resolveChain(rt, segments)
		if len(names) == 0 {
			return m
		}
		return "recordType!" + r.recordTypes[rt] + "." + strings.Join(names, ".")
	})
}

func (r *Resolver) resolveEncodedURNs(code string) string {
	return rtEncodedRe.ReplaceAllStringFunc(code, func(m string) string {
		sub := rtEncodedRe.FindStringSubmatch(m)
		rt, ok := r.normalizeRT(sub[1])
		if !ok {
			return m
		}
		decoded := strings.ReplaceAll(sub[2], "%40", ".")
		return "recordType!" + r.recordTypes[rt] + "." + decoded
	})
}

// normalizeRT lowercases a matched record-type segment and falls back to the
// base token (first 36 chars) when the full form is unknown.
func (r *Resolver) normalizeRT(raw string) (string, bool) {
	low := strings.ToLower(raw)
	if _, ok := r.recordTypes[low]; ok {
		return low, true
	}
	if len(low) >= 36 {
		base := low[:36]
		if _, ok := r.recordTypes[base]; ok {
			return base, true
		}
	}
	return "", false
}

func (r *Resolver) resolveSegments(urnType, rt, seg1, seg2 string) string {
	rtName := r.recordTypes[rt]

	switch urnType {
	case "record-type":
		return "recordType!" + rtName

	case "record-field":
		if seg1 != "" && seg2 != "" {
			return r.resolveRelThenField(rt, rtName, seg1, seg2)
		}
		if seg1 != "" {
			return r.resolveFieldOrRel(rt, rtName, seg1)
		}

	case "record-relationship":
		if seg1 != "" {
			if rel, ok := r.rels[segKey{rt, strings.ToLower(seg1)}]; ok {
				return "recordType!" + rtName + "." + rel.name
			}
		}
	}
	return ""
}

func (r *Resolver) resolveRelThenField(rt, rtName, relSeg, fieldSeg string) string {
	rel, ok := r.rels[segKey{rt, strings.ToLower(relSeg)}]
	if !ok || rel.targetUUID == "" {
		return ""
	}
	fname, ok := r.fields[segKey{strings.ToLower(rel.targetUUID), strings.ToLower(fieldSeg)}]
	if !ok {
		return ""
	}
	return "recordType!" + rtName + "." + rel.name + "." + fname
}

func (r *Resolver) resolveFieldOrRel(rt, rtName, seg string) string {
	key := segKey{rt, strings.ToLower(seg)}
	if fname, ok := r.fields[key]; ok {
		return "recordType!" + rtName + "." + fname
	}
	if rel, ok := r.rels[key]; ok {
		return "recordType!" + rtName + "." + rel.name
	}
	return ""
}

func (r *Resolver) resolveChain(rt string, segments []string) []string {
	var names []string
	current := rt
	for _, seg := range segments {
		key := segKey{current, strings.ToLower(seg)}
		if rel, ok := r.rels[key]; ok {
			names = append(names, rel.name)
			if rel.targetUUID != "" {
				if next, ok := r.normalizeRT(rel.targetUUID); ok {
					current = next
				} else {
					current = strings.ToLower(rel.targetUUID)
				}
			}
			continue
		}
		if fname, ok := r.fields[key]; ok {
			names = append(names, fname)
			continue
		}
		return nil
	}
	return names
}

func listField(data map[string]any, key string) []map[string]any {
	items, _ := data[key].([]any)
	var out []map[string]any
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
