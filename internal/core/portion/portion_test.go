package portion

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"platewise/internal/core/foodtext"
	"platewise/internal/platform/logger"
)

func quiet() Option { return WithLogger(logger.Nop()) }

func TestScenario_AsparagusSpears(t *testing.T) {
	got := NewScaler(quiet()).Estimate(Inputs{Name: "asparagus", Hints: "~6 spears"}, 0)
	if got.Source != SourceCount || got.Grams != 95 {
		t.Fatalf("result = %+v", got)
	}
	if got.Range == nil || *got.Range != [2]int{81, 109} {
		t.Fatalf("range = %v", got.Range)
	}
}

func TestScenario_UnknownFood(t *testing.T) {
	got := NewScaler(quiet()).Estimate(Inputs{Name: "unknown_food_xyz"}, 0)
	if got.Source != SourceBase || got.Grams != 100 || *got.Range != [2]int{85, 115} {
		t.Fatalf("result = %+v range=%v", got, got.Range)
	}
}

func TestLookupBase(t *testing.T) {
	tests := []struct {
		name, category string
		kind           MatchKind
		key            string
		grams          int
	}{
		{name: "Asparagus", kind: MatchName, key: "asparagus", grams: 90},
		{name: "grilled chicken breast", kind: MatchContains, key: "chicken breast", grams: 140},
		{name: "Fresh Strawberries", kind: MatchContains, key: "strawberry", grams: 100},
		{name: "eggplant parm", category: "Vegetables", kind: MatchCategory, key: "vegetable", grams: 85},
		{name: "mystery", category: "nope", kind: MatchFallback, grams: 100},
		{name: "", category: "", kind: MatchFallback, grams: 100},
	}
	for _, tt := range tests {
		got := LookupBase(tt.name, tt.category)
		if got.Kind != tt.kind || got.Key != tt.key || got.Grams != tt.grams {
			t.Fatalf("LookupBase(%q,%q) = %+v", tt.name, tt.category, got)
		}
	}
	if got := LookupBase("salmon fillet", "fruit"); got.Category != "fruit" {
		t.Fatalf("known caller category should win, got %q", got.Category)
	}
	if got := LookupBase("salmon fillet", "???"); got.Category != "protein" {
		t.Fatalf("table category should fill in, got %q", got.Category)
	}
}

func TestTableInvariants(t *testing.T) {
	check := func(what string, b Base) {
		if b.Min > b.Grams || b.Grams > b.Max || b.Min%5 != 0 || b.Max%5 != 0 || b.Grams%5 != 0 {
			t.Fatalf("%s = %+v", what, b)
		}
	}
	check("fallback", bases.Fallback)
	for k, b := range bases.Categories {
		check(k, b)
	}
	for k, b := range bases.Names {
		check(k, b.Base)
		if _, ok := bases.Categories[b.Category]; !ok {
			t.Fatalf("%s has unknown category %q", k, b.Category)
		}
	}
	if _, err := loadTable([]byte(`{"fallback":{"grams":10,"min":20,"max":30}}`)); err == nil {
		t.Fatalf("min > grams should be rejected")
	}
	if _, err := loadTable([]byte(`{`)); err == nil {
		t.Fatalf("bad json should be rejected")
	}
}

func TestParseCounts(t *testing.T) {
	tests := []struct {
		hints string
		want  []Count
	}{
		{hints: "~6 spears", want: []Count{{N: 6, Unit: "spear"}}},
		{hints: "about 2-3 slices", want: []Count{{N: 2.5, Unit: "slice"}}},
		{hints: "2 to 4 Wings", want: []Count{{N: 3, Unit: "wing"}}},
		{hints: "1.5 cups", want: []Count{{N: 1.5, Unit: "cup"}}},
		{hints: "2 tablespoons", want: []Count{{N: 2, Unit: "tbsp"}}},
		{hints: "6–8 spears", want: []Count{{N: 7, Unit: "spear"}}},
		{hints: "about 2 — 3 wedges", want: []Count{{N: 2.5, Unit: "wedge"}}},
		{hints: "3 large eggs", want: []Count{{N: 3, Unit: "egg"}}},
		{hints: "2 extra large eggs", want: []Count{{N: 2, Unit: "egg"}}},
		{hints: "4 small meatballs", want: []Count{{N: 4, Unit: "meatball"}}},
		{hints: "0 spears", want: nil},
		{hints: "51 spears", want: nil},
		{hints: "no numbers here", want: nil},
		{hints: "", want: nil},
	}
	for _, tt := range tests {
		got := ParseCounts(tt.hints)
		if len(got) != len(tt.want) {
			t.Fatalf("ParseCounts(%q) = %+v, want %+v", tt.hints, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("ParseCounts(%q)[%d] = %+v, want %+v", tt.hints, i, got[i], tt.want[i])
			}
		}
	}
}

func TestCountGrams_SizeWordAndTypographicRange(t *testing.T) {
	tests := []struct {
		hints, name string
		want        float64
	}{
		{"3 large eggs", "scrambled eggs", 150},
		{"6–8 spears", "asparagus", 112},
		{"2—4 wings", "chicken wings", 96},
	}
	for _, tt := range tests {
		got, _, ok := CountGrams(tt.hints, foodtext.Key(tt.name))
		if !ok || got != tt.want {
			t.Fatalf("CountGrams(%q, %q) = %v, %v, want %v", tt.hints, tt.name, got, ok, tt.want)
		}
	}
}

func TestUnitWeight_FoodAware(t *testing.T) {
	tests := []struct {
		unit, name string
		want       float64
	}{
		{"spear", "asparagus", 16},
		{"spears", "broccoli", 30},
		{"spear", "dill pickles", 35},
		{"spear", "", 16},
		{"wing", "buffalo chicken", 32},
		{"wing", "cauliflower", 30},
		{"wedge", "lemon", 8},
		{"wedges", "lime", 7},
		{"wedge", "potato", 30},
		{"wedge", "orange", 25},
		{"tbs", "olive oil", 14},
	}
	for _, tt := range tests {
		got, ok := UnitWeight(tt.unit, tt.name)
		if !ok || got != tt.want {
			t.Fatalf("UnitWeight(%q,%q) = %v,%v want %v", tt.unit, tt.name, got, ok, tt.want)
		}
	}
	if _, ok := UnitWeight("parsec", "asparagus"); ok {
		t.Fatalf("unknown unit should miss")
	}
}

func TestCount_ClampsAndFallsThrough(t *testing.T) {
	s := NewScaler(quiet())
	// 20 spears x 16g = 320g, clamped to asparagus max 150
	if got := s.Estimate(Inputs{Name: "asparagus", Hints: "20 spears"}, 0); got.Grams != 150 || got.Source != SourceCount {
		t.Fatalf("clamped = %+v", got)
	}
	// out of range count is ignored, so the base wins
	if got := s.Estimate(Inputs{Name: "asparagus", Hints: "60 spears"}, 0); got.Source != SourceBase || got.Grams != 90 {
		t.Fatalf("rejected count = %+v", got)
	}
	// unknown unit is ignored; the next phrase with a known unit is used
	if got := s.Estimate(Inputs{Name: "lemon", Hints: "3 parsecs, 2 wedges"}, 0); got.Source != SourceCount || got.Grams != 15 {
		t.Fatalf("second phrase = %+v", got)
	}
}

func TestFootprint(t *testing.T) {
	if got := ItemArea(Inputs{MaskArea: 500, BBox: &BBox{W: 100, H: 100}}); got != 500 {
		t.Fatalf("mask should win, got %v", got)
	}
	if got := ItemArea(Inputs{BBox: &BBox{W: 20, H: 30}}); got != 600 {
		t.Fatalf("bbox area = %v", got)
	}
	if got := ItemArea(Inputs{BBox: &BBox{W: -1, H: 30}}); got != 0 {
		t.Fatalf("degenerate bbox = %v", got)
	}
	tests := []struct {
		item, plate, want float64
		ok                bool
	}{
		{item: 100, plate: 1000, want: 0.1, ok: true},
		{item: 1, plate: 1e6, want: MinPlateRatio, ok: true},
		{item: 900, plate: 1000, want: MaxPlateRatio, ok: true},
		{item: 100, plate: 0, ok: false},
		{item: 0, plate: 1000, ok: false},
	}
	for _, tt := range tests {
		got, ok := PlateRatio(tt.item, tt.plate)
		if ok != tt.ok || math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("PlateRatio(%v,%v) = %v,%v", tt.item, tt.plate, got, ok)
		}
	}
}

func TestCurves(t *testing.T) {
	for _, cat := range []string{"vegetable", "leafy", "protein", "fruit", "condiment", "oil", "sauce", "grain", ""} {
		c := CurveFor(cat)
		prev := 0.0
		for r := MinPlateRatio; r <= MaxPlateRatio; r += 0.005 {
			m := c.At(r)
			if m < prev {
				t.Fatalf("%s curve not monotonic at %v", cat, r)
			}
			prev = m
		}
	}
	if got := curveProtein.At(0.15); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("nominal multiplier = %v", got)
	}
	if got := curveProtein.At(0.1); math.Abs(got-0.85) > 1e-9 {
		t.Fatalf("lerp = %v", got)
	}
	if got := (Curve{}).At(0.3); got != 1 {
		t.Fatalf("empty curve = %v", got)
	}
}

func TestArea(t *testing.T) {
	s := NewScaler(quiet())
	// salmon 140g at 15% of the plate is nominal
	got := s.Estimate(Inputs{Name: "salmon", BBox: &BBox{W: 150, H: 100}}, 100000)
	if got.Source != SourceArea || got.Grams != 140 {
		t.Fatalf("nominal = %+v", got)
	}
	// a speck on the plate clamps to the ratio floor and falls through to base
	got = s.Estimate(Inputs{Name: "salmon", MaskArea: 10}, 100000)
	if got.Source != SourceBase {
		t.Fatalf("tiny footprint = %+v", got)
	}
	// huge footprint is clamped to the base max
	got = s.Estimate(Inputs{Name: "salmon", MaskArea: 90000}, 100000)
	if got.Source != SourceArea || got.Grams != 250 {
		t.Fatalf("huge = %+v", got)
	}
	// count beats area
	got = s.Estimate(Inputs{Name: "chicken wing", Hints: "4 wings", MaskArea: 90000}, 100000)
	if got.Source != SourceCount || got.Grams != 130 {
		t.Fatalf("count first = %+v", got)
	}
}

func TestRoundingAndRange(t *testing.T) {
	cases := map[float64]int{0: 5, -3: 5, 1: 5, 2.4: 5, 7.4: 5, 7.5: 10, 96: 95, 97.5: 100}
	for in, want := range cases {
		if got := Round5(in); got != want {
			t.Fatalf("Round5(%v) = %d, want %d", in, got, want)
		}
	}
	if got := Round5(math.NaN()); got != 5 {
		t.Fatalf("Round5(NaN) = %d", got)
	}
	if got := RangeOf(100); got != [2]int{85, 115} {
		t.Fatalf("RangeOf(100) = %v", got)
	}
}

func TestEstimate_Invariants(t *testing.T) {
	s := NewScaler(quiet())
	names := []string{"asparagus", "chicken wing", "rice", "olive oil", "lemon", "mystery", "Jalapeño poppers", "side salad"}
	hints := []string{"", "~6 spears", "2-3 wedges", "1 cup", "large", "small side", "49 slices", "3 tbsp"}
	areas := []float64{0, 10, 5000, 20000, 80000}
	for _, n := range names {
		for _, h := range hints {
			for _, a := range areas {
				in := Inputs{Name: n, Hints: h, MaskArea: a}
				got := s.Estimate(in, 100000)
				if got.Grams < 5 || got.Grams%5 != 0 {
					t.Fatalf("%+v -> %+v", in, got)
				}
				if got.Range == nil {
					t.Fatalf("%+v has no range", in)
				}
				if got.Source == SourceCount || got.Source == SourceArea {
					b := LookupBase(n, "")
					if got.Grams < b.Min || got.Grams > b.Max {
						t.Fatalf("%+v -> %d outside [%d,%d]", in, got.Grams, b.Min, b.Max)
					}
				}
			}
		}
	}
}

type failing struct {
	panics bool
}

func (failing) Source() Source { return SourceCount }

func (f failing) Estimate(Inputs, float64) (Result, bool, error) {
	if f.panics {
		panic("estimator exploded")
	}
	return Result{}, false, errors.New("estimator broke")
}

func TestEstimate_DegradesToHeuristic(t *testing.T) {
	for _, f := range []failing{{panics: false}, {panics: true}} {
		s := NewScaler(quiet(), WithEstimators(f, BaseEstimator{}))
		got := s.Estimate(Inputs{Name: "large banana"}, 0)
		if got.Source != SourceHeuristic || got.Grams != 170 {
			t.Fatalf("panics=%v: %+v", f.panics, got)
		}
	}
}

func TestEstimate_UltimateFallback(t *testing.T) {
	fallbacks := []func(Inputs) (Result, error){
		func(Inputs) (Result, error) { return Result{}, errors.New("nope") },
		func(Inputs) (Result, error) { panic("nope") },
		func(Inputs) (Result, error) { return Result{Grams: 3}, nil },
		nil,
	}
	for i, fb := range fallbacks {
		s := NewScaler(quiet(), WithEstimators(failing{}), WithFallback(fb))
		got := s.Estimate(Inputs{Name: "anything"}, 0)
		if got.Grams != 100 || got.Source != SourceHeuristic || *got.Range != [2]int{85, 115} {
			t.Fatalf("fallback %d: %+v", i, got)
		}
	}
}

func TestHeuristic(t *testing.T) {
	tests := []struct {
		in   Inputs
		want int
	}{
		{in: Inputs{Name: "banana"}, want: 120},
		{in: Inputs{Name: "banana", Hints: "small"}, want: 85},
		{in: Inputs{Name: "banana", Hints: "big large"}, want: 170},
		{in: Inputs{Name: "rice", Hints: "small side"}, want: 65},
		{in: Inputs{Name: "asparagus", Hints: "6 spears"}, want: 95},
		{in: Inputs{Name: "lemon", Hints: "2 wedges"}, want: 15},
	}
	for _, tt := range tests {
		got, err := Heuristic(tt.in)
		if err != nil || got.Grams != tt.want || got.Source != SourceHeuristic {
			t.Fatalf("Heuristic(%+v) = %+v, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestDevTelemetry(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Options{Level: "info", Format: "json", Writer: &buf})
	NewScaler(WithLogger(&l)).Estimate(Inputs{Name: "rice"}, 0)
	if buf.Len() != 0 {
		t.Fatalf("telemetry without dev: %s", buf.String())
	}
	NewScaler(WithLogger(&l), WithDev(true)).Estimate(Inputs{Name: "rice"}, 0)
	if !strings.Contains(buf.String(), "⧉ PORTION") || !strings.Contains(buf.String(), `"source":"base"`) {
		t.Fatalf("telemetry = %s", buf.String())
	}
}
