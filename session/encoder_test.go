package session

import (
	"errors"
	"testing"
)

func TestDecodeProfileRejectsUnknownVersion(t *testing.T) {
	raw, err := EncodeProfile(testProfile())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	bumped := string([]byte{profileFormatVersion + 1}) + raw[1:]
	if _, err := DecodeProfile(bumped); !errors.Is(err, ErrCorruptRecord) {
		t.Fatalf("expected ErrCorruptRecord, got %v", err)
	}
}

func TestDecodeProfileRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "\x01", "\x01{", `{"id":"u-1"}`} {
		if _, err := DecodeProfile(raw); !errors.Is(err, ErrCorruptRecord) {
			t.Fatalf("DecodeProfile(%q): expected ErrCorruptRecord, got %v", raw, err)
		}
	}
}

func TestNormalizeCollapsesPartialState(t *testing.T) {
	partial := State{Token: "tok", Role: 0, Profile: testProfile(), Authenticated: true}
	if st := partial.normalize(); st.Authenticated || st.Token != "" || st.Profile != nil {
		t.Fatalf("expected logged-out state, got %+v", st)
	}
}
