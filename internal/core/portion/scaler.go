package portion

import (
	"fmt"

	"platewise/internal/core/foodtext"
	"platewise/internal/platform/logger"
)

// Source names the estimator a result came from
type Source string

// result sources
const (
	SourceCount     Source = "count"
	SourceArea      Source = "area"
	SourceBase      Source = "base"
	SourceHeuristic Source = "heuristic"
)

// Inputs is one detection
type Inputs struct {
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Hints    string  `json:"hints,omitempty"`
	BBox     *BBox   `json:"bbox,omitempty"`
	MaskArea float64 `json:"mask_area,omitempty"`
}

// Result is a gram estimate; Grams is a positive multiple of 5
type Result struct {
	Grams  int     `json:"grams"`
	Source Source  `json:"source"`
	Range  *[2]int `json:"range,omitempty"`
}

// ultimate is returned when even the heuristic fails
func ultimate() Result {
	r := [2]int{85, 115}
	return Result{Grams: 100, Source: SourceHeuristic, Range: &r}
}

// Estimator is one strategy; ok false passes to the next estimator, an error demotes to the heuristic
type Estimator interface {
	Source() Source
	Estimate(in Inputs, plateArea float64) (Result, bool, error)
}

func finish(g float64, src Source) Result {
	grams := Round5(g)
	r := RangeOf(grams)
	return Result{Grams: grams, Source: src, Range: &r}
}

// CountEstimator reads "<n> <unit>" hints
type CountEstimator struct{}

// Source implements Estimator
func (CountEstimator) Source() Source { return SourceCount }

// Estimate implements Estimator
func (CountEstimator) Estimate(in Inputs, _ float64) (Result, bool, error) {
	g, _, ok := CountGrams(in.Hints, foodtext.Key(in.Name))
	if !ok {
		return Result{}, false, nil
	}
	base := LookupBase(in.Name, in.Category)
	return finish(base.Clamp(g), SourceCount), true, nil
}

// AreaEstimator scales by the item's share of the plate
type AreaEstimator struct{}

// Source implements Estimator
func (AreaEstimator) Source() Source { return SourceArea }

// Estimate implements Estimator
func (AreaEstimator) Estimate(in Inputs, plateArea float64) (Result, bool, error) {
	base := LookupBase(in.Name, in.Category)
	g, _, ok := AreaGrams(base, ItemArea(in), plateArea)
	if !ok {
		return Result{}, false, nil
	}
	return finish(base.Clamp(g), SourceArea), true, nil
}

// BaseEstimator returns the table default
type BaseEstimator struct{}

// Source implements Estimator
func (BaseEstimator) Source() Source { return SourceBase }

// Estimate implements Estimator
func (BaseEstimator) Estimate(in Inputs, _ float64) (Result, bool, error) {
	base := LookupBase(in.Name, in.Category)
	return finish(float64(base.Grams), SourceBase), true, nil
}

// DefaultEstimators is count, then area, then base
func DefaultEstimators() []Estimator {
	return []Estimator{CountEstimator{}, AreaEstimator{}, BaseEstimator{}}
}

// Scaler runs estimators in order; Estimate never fails or panics
type Scaler struct {
	estimators []Estimator
	fallback   func(Inputs) (Result, error)
	dev        bool
	log        *logger.Logger
}

// Option configures a Scaler
type Option func(*Scaler)

// WithEstimators replaces the estimator order
func WithEstimators(e ...Estimator) Option { return func(s *Scaler) { s.estimators = e } }

// WithFallback replaces Heuristic
func WithFallback(fn func(Inputs) (Result, error)) Option {
	return func(s *Scaler) { s.fallback = fn }
}

// WithDev turns on per estimate telemetry
func WithDev(on bool) Option { return func(s *Scaler) { s.dev = on } }

// WithLogger sets the telemetry logger
func WithLogger(l *logger.Logger) Option { return func(s *Scaler) { s.log = l } }

// NewScaler builds a Scaler with DefaultEstimators and Heuristic
func NewScaler(opts ...Option) *Scaler {
	s := &Scaler{estimators: DefaultEstimators(), fallback: Heuristic}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = logger.Named("portion")
	}
	return s
}

// Estimate returns the first estimator hit; errors and panics demote to the fallback, then to 100g
func (s *Scaler) Estimate(in Inputs, plateArea float64) Result {
	res, err := s.ordered(in, plateArea)
	if err != nil {
		s.log.Debug().Err(err).Str("name", in.Name).Msg("portion estimator failed, using heuristic")
		res, err = s.heuristic(in)
		if err != nil {
			s.log.Debug().Err(err).Str("name", in.Name).Msg("portion heuristic failed")
			res = ultimate()
		}
	}
	if s.dev {
		s.log.Info().
			Str("name", in.Name).
			Str("category", in.Category).
			Str("hints", in.Hints).
			Float64("plate_area", plateArea).
			Str("source", string(res.Source)).
			Int("grams", res.Grams).
			Msg("⧉ PORTION")
	}
	return res
}

func (s *Scaler) ordered(in Inputs, plateArea float64) (Result, error) {
	for _, e := range s.estimators {
		r, ok, err := safeEstimate(e, in, plateArea)
		if err != nil {
			return Result{}, fmt.Errorf("%s estimator: %w", e.Source(), err)
		}
		if ok {
			return r, nil
		}
	}
	return Result{}, fmt.Errorf("no estimator matched %q", in.Name)
}

func safeEstimate(e Estimator, in Inputs, plateArea float64) (r Result, ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, ok, err = Result{}, false, fmt.Errorf("panic: %v", p)
		}
	}()
	return e.Estimate(in, plateArea)
}

func (s *Scaler) heuristic(in Inputs) (r Result, err error) {
	if s.fallback == nil {
		return Result{}, fmt.Errorf("no fallback")
	}
	defer func() {
		if p := recover(); p != nil {
			r, err = Result{}, fmt.Errorf("heuristic panic: %v", p)
		}
	}()
	r, err = s.fallback(in)
	if err == nil && (r.Grams < 5 || r.Grams%5 != 0) {
		err = fmt.Errorf("heuristic returned %d grams", r.Grams)
	}
	return r, err
}
