package foodtext

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{name: "empty", in: "", out: ""},
		{name: "identity", in: "asparagus", out: "asparagus"},
		{name: "case and medial punctuation", in: "Chicken-Breast, grilled", out: "chicken breast grilled"},
		{name: "precomposed accent", in: "Jalapeño", out: "jalapeno"},
		{name: "combining accent", in: "café latte", out: "cafe latte"},
		{name: "fullwidth", in: "ＲＩＣＥ", out: "rice"},
		{name: "zero width", in: "sal\u200bmon", out: "salmon"},
		{name: "invalid utf8", in: string([]byte{'p', 0xff, 'e', 'a'}), out: "pea"},
		{name: "collapse and trim", in: "  olive \t oil  ", out: "olive oil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.in); got != tt.out {
				t.Fatalf("Key(%q) = %q, want %q", tt.in, got, tt.out)
			}
		})
	}
}

func TestHint_KeepsCountPunctuation(t *testing.T) {
	if got := Hint("  ~6 Spears, about 2.5-3 SLICES!"); got != "~6 spears about 2.5-3 slices" {
		t.Fatalf("Hint = %q", got)
	}
}

func TestHint_FoldsDashes(t *testing.T) {
	cases := map[string]string{
		"6–8 spears":    "6-8 spears",
		"6 — 8 spears":  "6 - 8 spears",
		"2−3 slices":    "2-3 slices",
		"3‐4 wings":     "3-4 wings",
		"4－5 strips":    "4-5 strips",
		"half‑and‑half": "half-and-half",
	}
	for in, want := range cases {
		if got := Hint(in); got != want {
			t.Fatalf("Hint(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSingular(t *testing.T) {
	cases := map[string]string{
		"spears":    "spear",
		"slices":    "slice",
		"berries":   "berry",
		"peaches":   "peach",
		"dishes":    "dish",
		"glass":     "glass",
		"tomatoes":  "tomato",
		"egg":       "egg",
		"cup":       "cup",
		"tbs":       "tbs",
		"asparagus": "asparagus",
	}
	for in, want := range cases {
		if got := Singular(in); got != want {
			t.Fatalf("Singular(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestContains(t *testing.T) {
	k := Key("Grilled Chicken Wing")
	if !ContainsWord(k, "wing") || ContainsWord(k, "win") {
		t.Fatalf("ContainsWord wrong for %q", k)
	}
	if !ContainsPhrase(k, "chicken wing") || ContainsPhrase(k, "hick") || ContainsPhrase(k, "") {
		t.Fatalf("ContainsPhrase wrong for %q", k)
	}
}
