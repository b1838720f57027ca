package object

import (
	"sort"
	"strings"
)

// Store is the in-memory collection of one application's records. It is built
// once from the extractor output; resolution mutates record payloads in place
// but never adds or removes records. Address lookup also indexes the base and
// canonical variants of each UUID so that cross-application references still
// find their target (first record to claim a variant wins).
type Store struct {
	records []*Record
	byUUID  map[string]*Record
	byName  map[string][]*Record
}

// NewStore indexes the given records. Record order is preserved.
func NewStore(records []*Record) *Store {
	s := &Store{
		records: records,
		byUUID:  make(map[string]*Record, len(records)*2),
		byName:  make(map[string][]*Record, len(records)),
	}
	for _, r := range records {
		if r == nil || r.UUID == "" {
			continue
		}
		if _, ok := s.byUUID[r.UUID]; !ok {
			s.byUUID[r.UUID] = r
		}
		if base := BaseAddress(r.UUID); base != "" && base != r.UUID {
			if _, ok := s.byUUID[base]; !ok {
				s.byUUID[base] = r
			}
		}
		if canon := CanonicalAddress(r.UUID); canon != "" && canon != r.UUID {
			if _, ok := s.byUUID[canon]; !ok {
				s.byUUID[canon] = r
			}
		}
		key := strings.ToLower(r.Name)
		s.byName[key] = append(s.byName[key], r)
	}
	return s
}

// Records returns all records in insertion order. Callers must not reorder.
func (s *Store) Records() []*Record {
	if s == nil {
		return nil
	}
	return s.records
}

// Len returns the number of records.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// ByUUID looks a record up by exact UUID, or by the base or canonical variant
// of a record's UUID.
func (s *Store) ByUUID(uuid string) (*Record, bool) {
	if s == nil {
		return nil, false
	}
	r, ok := s.byUUID[uuid]
	return r, ok
}

// ByAddress resolves any address token to a record: exact match first, then
// canonical, then base.
func (s *Store) ByAddress(token string) (*Record, bool) {
	if s == nil {
		return nil, false
	}
	if r, ok := s.byUUID[token]; ok {
		return r, true
	}
	if canon := CanonicalAddress(token); canon != "" {
		if r, ok := s.byUUID[canon]; ok {
			return r, true
		}
	}
	if base := BaseAddress(token); base != "" {
		if r, ok := s.byUUID[base]; ok {
			return r, true
		}
	}
	return nil, false
}

// ByName looks a record up by case-insensitive display name. When several
// objects of different kinds share the name, the kind priority list decides;
// ties fall back to insertion order. Name lookup exists for reference text
// that carries no identifier; identifier paths must use ByUUID/ByAddress.
func (s *Store) ByName(name string) (*Record, bool) {
	if s == nil {
		return nil, false
	}
	candidates := s.byName[strings.ToLower(name)]
	if len(candidates) == 0 {
		return nil, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if kindPriority(c.Kind) < kindPriority(best.Kind) {
			best = c
		}
	}
	return best, true
}

// AllByName returns every record sharing the given display name, in kind
// priority order. Used by the search surface, where collisions are reported
// rather than resolved.
func (s *Store) AllByName(name string) []*Record {
	if s == nil {
		return nil
	}
	candidates := s.byName[strings.ToLower(name)]
	out := make([]*Record, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return kindPriority(out[i].Kind) < kindPriority(out[j].Kind)
	})
	return out
}

// CountsByKind tallies records per kind.
func (s *Store) CountsByKind() map[string]int {
	counts := make(map[string]int)
	for _, r := range s.Records() {
		counts[r.Kind]++
	}
	return counts
}
