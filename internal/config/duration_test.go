package config

import (
	"testing"
	"time"
)

func TestParseDurationExtended(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"90s", 90 * time.Second},
		{"36h", 36 * time.Hour},
		{"3d", 72 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
		{"1w2d", 9 * 24 * time.Hour},
		{"1.5d", 36 * time.Hour},
		{"-2d", -48 * time.Hour},
		{"1d12h30m", 36*time.Hour + 30*time.Minute},
	}
	for _, tc := range cases {
		got, err := parseDurationExtended(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseDurationExtendedRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "d", "1dd2", "w3", "1..5d", "soon"} {
		if _, err := parseDurationExtended(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
