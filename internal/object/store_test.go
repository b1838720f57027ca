package object

import "testing"

const (
	uuidA = "11111111-2222-3333-4444-555555555555"
	uuidB = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
)

func rec(uuid, name, kind string) *Record {
	return &Record{UUID: uuid, Name: name, Kind: kind, Data: map[string]any{}}
}

func TestByAddressVariants(t *testing.T) {
	full := "_a-0000000a-0000-4000-8000-000000000001_12345"
	s := NewStore([]*Record{rec(full, "GetThing", KindExpressionRule)})

	cases := []string{
		full,
		"_e-0000000a-0000-4000-8000-000000000001_12345",
		"0000000a-0000-4000-8000-000000000001",
		"0000000a-0000-4000-8000-000000000001-99",
	}
	for _, token := range cases {
		if _, ok := s.ByAddress(token); !ok {
			t.Fatalf("ByAddress(%q) did not resolve", token)
		}
	}
	if _, ok := s.ByAddress("deadbeef-0000-4000-8000-000000000001"); ok {
		t.Fatalf("unrelated token resolved")
	}
}

func TestByNamePrefersExpressionLevelKinds(t *testing.T) {
	s := NewStore([]*Record{
		rec(uuidA, "Shared", KindConstant),
		rec(uuidB, "Shared", KindExpressionRule),
	})
	got, ok := s.ByName("shared")
	if !ok {
		t.Fatalf("ByName missed")
	}
	if got.UUID != uuidB {
		t.Fatalf("ByName picked %s, want expression rule %s", got.UUID, uuidB)
	}
	all := s.AllByName("Shared")
	if len(all) != 2 || all[0].Kind != KindExpressionRule {
		t.Fatalf("AllByName order wrong: %+v", all)
	}
}

func TestFirstRecordWinsOnDuplicateUUID(t *testing.T) {
	first := rec(uuidA, "First", KindInterface)
	s := NewStore([]*Record{first, rec(uuidA, "Second", KindInterface)})
	got, _ := s.ByUUID(uuidA)
	if got != first {
		t.Fatalf("duplicate uuid displaced the first record")
	}
}

func TestCountsByKind(t *testing.T) {
	s := NewStore([]*Record{
		rec(uuidA, "A", KindInterface),
		rec(uuidB, "B", KindInterface),
		rec("33333333-2222-3333-4444-555555555555", "C", KindSite),
	})
	counts := s.CountsByKind()
	if counts[KindInterface] != 2 || counts[KindSite] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}
