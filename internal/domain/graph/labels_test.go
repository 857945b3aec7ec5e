package graph

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeLabel(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "  Deep learning  ", want: "Deep learning"},
		{in: "   ", wantErr: ErrBlankLabel},
		{in: "two\nlines", wantErr: ErrMultilineLabel},
		{in: strings.Repeat("a", MaxLabelLength+1), wantErr: ErrLabelTooLong},
	}
	for _, tc := range cases {
		got, err := NormalizeLabel(tc.in)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("NormalizeLabel(%q): expected %v, got %v", tc.in, tc.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NormalizeLabel(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeLabel(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateLiteral(t *testing.T) {
	cases := []struct {
		value    string
		datatype string
		ok       bool
	}{
		{"5", DatatypeInteger, true},
		{"5.5", DatatypeInteger, false},
		{"5.5", DatatypeDecimal, true},
		{"yes", DatatypeBoolean, false},
		{"true", DatatypeBoolean, true},
		{"2024-02-30", DatatypeDate, false},
		{"2024-02-28", DatatypeDate, true},
		{"https://example.org/x", DatatypeAnyURI, true},
		{"not a uri", DatatypeAnyURI, false},
		{"multi\nline text", DatatypeString, true},
		{"anything", "orkg:custom", true},
	}
	for _, tc := range cases {
		err := ValidateLiteral(tc.value, tc.datatype)
		if tc.ok && err != nil {
			t.Fatalf("ValidateLiteral(%q,%q): unexpected error %v", tc.value, tc.datatype, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("ValidateLiteral(%q,%q): expected ErrInvalidValue, got %v", tc.value, tc.datatype, err)
		}
	}
}

func TestNormalizeDatatype(t *testing.T) {
	if got, err := NormalizeDatatype(""); err != nil || got != DatatypeString {
		t.Fatalf("NormalizeDatatype(\"\")=%q,%v", got, err)
	}
	if _, err := NormalizeDatatype("integer"); !errors.Is(err, ErrInvalidDatatype) {
		t.Fatalf("expected ErrInvalidDatatype, got %v", err)
	}
	if !ThingID("R12").Valid() || ThingID("_r1").Valid() || ThingID("#x").Valid() {
		t.Fatalf("ThingID.Valid mismatch")
	}
}
