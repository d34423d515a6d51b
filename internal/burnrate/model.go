// Package burnrate models multi-window, multi-burn-rate alerting: how long
// each alert window needs to notice a sustained error rate, and how long the
// error budget lasts at that rate.
package burnrate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

var (
	ErrInvalidModel     = errors.New("invalid burn rate model")
	ErrInvalidErrorRate = errors.New("invalid error rate")
)

type Severity int

const (
	UnknownSeverity Severity = iota
	Page
	Ticket
)

func (s Severity) String() string {
	switch s {
	case Page:
		return "page"
	case Ticket:
		return "ticket"
	default:
		return "unknown"
	}
}

func ParseSeverity(value string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "page":
		return Page, nil
	case "ticket":
		return Ticket, nil
	default:
		return UnknownSeverity, fmt.Errorf("severity must be page or ticket, got %q", value)
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	if string(text) == "unknown" {
		*s = UnknownSeverity
		return nil
	}
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Objective is the SLO the windows protect.
type Objective struct {
	TargetPercent float64
	PeriodDays    float64
}

func (o Objective) ErrorBudget() float64 {
	return 1 - o.TargetPercent/100
}

func (o Objective) PeriodMinutes() float64 {
	return o.PeriodDays * minutesPerDay
}

func (o Objective) Validate() error {
	var errs []string
	if !finite(o.TargetPercent) || o.TargetPercent <= 0 || o.TargetPercent >= 100 {
		errs = append(errs, fmt.Sprintf("objective must be between 0 and 100, got %v", o.TargetPercent))
	}
	if !finite(o.PeriodDays) || o.PeriodDays <= 0 {
		errs = append(errs, fmt.Sprintf("period must be positive, got %v days", o.PeriodDays))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Window is one alert check: a look-back duration in minutes sized to catch
// a given burn rate.
type Window struct {
	Name     string
	Severity Severity
	BurnRate float64
	Duration float64
}

// Threshold is the error rate at which the window's budget check trips.
func (w Window) Threshold(errorBudget float64) float64 {
	return w.BurnRate * errorBudget
}

// BudgetConsumption is the fraction of the whole budget the window burns when
// its burn rate is sustained for its own duration.
func (w Window) BudgetConsumption(periodDays float64) float64 {
	return (w.BurnRate * w.Duration) / (periodDays * minutesPerDay)
}

func (w Window) Validate() error {
	var errs []string
	if strings.TrimSpace(w.Name) == "" {
		errs = append(errs, "name is required")
	}
	if !finite(w.BurnRate) || w.BurnRate <= 0 {
		errs = append(errs, fmt.Sprintf("burn rate must be positive, got %v", w.BurnRate))
	}
	if !finite(w.Duration) || w.Duration <= 0 {
		errs = append(errs, fmt.Sprintf("duration must be positive, got %v minutes", w.Duration))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Model is a validated objective plus its alert windows. It is never mutated
// after NewModel returns.
type Model struct {
	objective Objective
	windows   []Window
}

func NewModel(objective Objective, windows []Window) (*Model, error) {
	var errs []string
	if err := objective.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(windows) == 0 {
		errs = append(errs, "at least one window is required")
	}
	seen := map[string]bool{}
	for i, w := range windows {
		if err := w.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("windows[%d]: %s", i, err))
		}
		if seen[w.Name] {
			errs = append(errs, fmt.Sprintf("windows[%d]: duplicate name %q", i, w.Name))
		}
		seen[w.Name] = true
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidModel, strings.Join(errs, "; "))
	}
	copied := make([]Window, len(windows))
	copy(copied, windows)
	return &Model{objective: objective, windows: copied}, nil
}

func (m *Model) Objective() Objective {
	return m.objective
}

func (m *Model) ErrorBudget() float64 {
	return m.objective.ErrorBudget()
}

func (m *Model) Windows() []Window {
	out := make([]Window, len(m.windows))
	copy(out, m.windows)
	return out
}

func (m *Model) Thresholds() []float64 {
	budget := m.ErrorBudget()
	out := make([]float64, len(m.windows))
	for i, w := range m.windows {
		out[i] = w.Threshold(budget)
	}
	return out
}

func (m *Model) checks() []Check {
	budget := m.ErrorBudget()
	out := make([]Check, len(m.windows))
	for i, w := range m.windows {
		out[i] = Check{Threshold: w.Threshold(budget), Duration: w.Duration}
	}
	return out
}

// Evaluate computes detection and exhaustion for one sustained error rate.
func (m *Model) Evaluate(errorRate float64) (Timings, error) {
	if err := ValidateErrorRate(errorRate); err != nil {
		return Timings{}, err
	}
	return EvaluateTimings(m.checks(), errorRate, m.ErrorBudget(), m.objective.PeriodDays), nil
}

// DetectedBy folds the per-window values of one severity only.
func (m *Model) DetectedBy(t Timings, severity Severity) Minutes {
	detected := Never
	for i, w := range m.windows {
		if w.Severity != severity || i >= len(t.PerWindow) {
			continue
		}
		detected = Min(detected, t.PerWindow[i])
	}
	return detected
}

func ValidateErrorRate(errorRate float64) error {
	if math.IsNaN(errorRate) || errorRate <= 0 || errorRate > 1 {
		return fmt.Errorf("%w: %v must be in (0, 1]", ErrInvalidErrorRate, errorRate)
	}
	return nil
}

// ParseErrorRate accepts a fraction ("0.05") or a percentage ("5%").
func ParseErrorRate(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	scale := 1.0
	if strings.HasSuffix(trimmed, "%") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "%"))
		scale = 100
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidErrorRate, value)
	}
	rate := parsed / scale
	if err := ValidateErrorRate(rate); err != nil {
		return 0, err
	}
	return rate, nil
}

func finite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
