// Package sweep evaluates a burn rate model over a geometric range of
// hypothetical error rates and assembles the point series a chart plots.
package sweep

import (
	"errors"
	"fmt"
	"math"

	"github.com/bayneri/burnrate/internal/burnrate"
)

const (
	DefaultBase    = 0.995
	DefaultSamples = 1100

	ExhaustionSeries = "exhaustion"
	DetectedSeries   = "detected"
)

var ErrInvalidSweep = errors.New("invalid sweep options")

type Options struct {
	Base    float64
	Samples int
}

func DefaultOptions() Options {
	return Options{Base: DefaultBase, Samples: DefaultSamples}
}

func (o Options) Validate() error {
	if math.IsNaN(o.Base) || o.Base <= 0 || o.Base >= 1 {
		return fmt.Errorf("%w: base must be between 0 and 1, got %v", ErrInvalidSweep, o.Base)
	}
	if o.Samples <= 0 {
		return fmt.Errorf("%w: samples must be positive, got %d", ErrInvalidSweep, o.Samples)
	}
	return nil
}

type Point struct {
	ErrorRate float64          `json:"errorRate"`
	Minutes   burnrate.Minutes `json:"minutes"`
}

type Series struct {
	Name     string            `json:"name"`
	Severity burnrate.Severity `json:"severity,omitempty"`
	Points   []Point           `json:"points"`
}

type WindowSummary struct {
	Name              string            `json:"name"`
	Severity          burnrate.Severity `json:"severity"`
	BurnRate          float64           `json:"burnRate"`
	DurationMinutes   float64           `json:"durationMinutes"`
	Threshold         float64           `json:"threshold"`
	BudgetConsumption float64           `json:"budgetConsumption"`
}

// Curve is the complete output of one sweep. Windows and the first
// len(Windows) entries of Series share the model's window order.
type Curve struct {
	TargetPercent float64         `json:"targetPercent"`
	PeriodDays    float64         `json:"periodDays"`
	ErrorBudget   float64         `json:"errorBudget"`
	Windows       []WindowSummary `json:"windows"`
	Series        []Series        `json:"series"`
}

func (c Curve) Lookup(name string) (Series, bool) {
	for _, s := range c.Series {
		if s.Name == name {
			return s, true
		}
	}
	return Series{}, false
}

// Summaries describes every window of the model for display.
func Summaries(model *burnrate.Model) []WindowSummary {
	objective := model.Objective()
	budget := model.ErrorBudget()
	var out []WindowSummary
	for _, w := range model.Windows() {
		out = append(out, WindowSummary{
			Name:              w.Name,
			Severity:          w.Severity,
			BurnRate:          w.BurnRate,
			DurationMinutes:   w.Duration,
			Threshold:         w.Threshold(budget),
			BudgetConsumption: w.BudgetConsumption(objective.PeriodDays),
		})
	}
	return out
}

// Run samples error rates base^(2i) for i in [0, Samples) and stops at the
// first rate below the error budget. Every series is ascending in error rate.
func Run(model *burnrate.Model, opts Options) (Curve, error) {
	if model == nil {
		return Curve{}, errors.New("nil model")
	}
	if err := opts.Validate(); err != nil {
		return Curve{}, err
	}

	windows := model.Windows()
	budget := model.ErrorBudget()
	perWindow := make([][]Point, len(windows))
	var detected, exhaustion []Point

	for i := 0; i < opts.Samples; i++ {
		errorRate := math.Pow(opts.Base, float64(i*2))
		if errorRate < budget {
			break
		}
		timings, err := model.Evaluate(errorRate)
		if err != nil {
			return Curve{}, err
		}
		for j := range windows {
			perWindow[j] = append(perWindow[j], Point{ErrorRate: errorRate, Minutes: timings.PerWindow[j]})
		}
		detected = append(detected, Point{ErrorRate: errorRate, Minutes: timings.Detected})
		exhaustion = append(exhaustion, Point{ErrorRate: errorRate, Minutes: timings.Exhausted})
	}

	var series []Series
	for j, w := range windows {
		series = append(series, Series{Name: w.Name, Severity: w.Severity, Points: ascending(perWindow[j])})
	}
	series = append(series,
		Series{Name: ExhaustionSeries, Points: ascending(exhaustion)},
		Series{Name: DetectedSeries, Points: ascending(detected)},
	)

	objective := model.Objective()
	return Curve{
		TargetPercent: objective.TargetPercent,
		PeriodDays:    objective.PeriodDays,
		ErrorBudget:   budget,
		Windows:       Summaries(model),
		Series:        series,
	}, nil
}

func ascending(points []Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}
