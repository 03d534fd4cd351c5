package imagegen

import (
	"testing"
	"time"
)

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 12, 31, 23, 59, 1, 0, time.UTC)
	if got := FileName("card", 4, ts); got != "card_04_20241231_235901.png" {
		t.Fatalf("file name mismatch: %q", got)
	}
	if got := FileName("card", 12, ts); got != "card_12_20241231_235901.png" {
		t.Fatalf("file name mismatch: %q", got)
	}
}

func TestParseIndex(t *testing.T) {
	cases := []struct {
		name string
		want int
		ok   bool
	}{
		{"card_00_20250101_000000.png", 0, true},
		{"card_05_20250101_000000.png", 5, true},
		{"card_12.png", 12, true},
		{"card_x_1.png", 0, false},
		{"cardx_01_1.png", 0, false},
		{"other_01_1.png", 0, false},
		{"card_", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseIndex(tc.name, "card")
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseIndex(%q): got (%d,%v) want (%d,%v)", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}
