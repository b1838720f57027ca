package sail

import (
	"reflect"
	"testing"
)

func TestStandardTokensBoundaries(t *testing.T) {
	uuid := "0000000a-0000-4000-8000-000000000001"

	cases := []struct {
		text string
		want []string
	}{
		{"ref=" + uuid + ")", []string{uuid}},
		{uuid, []string{uuid}},
		// Leading hex byte glues onto the token; no match.
		{"f" + uuid, nil},
		// Trailing dash means the token is part of a longer suffixed form.
		{uuid + "-12", nil},
		{"a(" + uuid + ", " + uuid + ")", []string{uuid, uuid}},
	}
	for _, tc := range cases {
		got := StandardTokens(tc.text)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("StandardTokens(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestFullTokenRe(t *testing.T) {
	token := "_a-0000000a-0000-4000-8000-000000000001_12345"
	m := FullTokenRe.FindStringSubmatch("#\"" + token + "\"")
	if m == nil || m[1] != token {
		t.Fatalf("FullTokenRe missed %q: %v", token, m)
	}
	if FullTokenRe.MatchString("_x-0000000a-0000-4000-8000-000000000001_1") {
		t.Fatalf("FullTokenRe matched a non-address prefix")
	}
}

func TestRecordURNRe(t *testing.T) {
	uuid := "0000000a-0000-4000-8000-000000000001"
	for _, head := range []string{"record-type", "record-field", "record-relationship"} {
		urn := "urn:appian:" + head + ":v1:" + uuid
		m := RecordURNRe.FindStringSubmatch(urn)
		if m == nil || m[1] != uuid {
			t.Fatalf("RecordURNRe missed %q", urn)
		}
	}
}

func TestEdgeKindFor(t *testing.T) {
	if got := EdgeKindFor("Constant"); got != EdgeUsesConstant {
		t.Fatalf("EdgeKindFor(Constant) = %q", got)
	}
	if got := EdgeKindFor("Interface"); got != EdgeCalls {
		t.Fatalf("EdgeKindFor(Interface) = %q", got)
	}
}
