package spec

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bayneri/burnrate/internal/burnrate"
	"github.com/bayneri/burnrate/internal/sweep"
)

const (
	APIVersionV1      = "burnrate.dev/v1"
	KindBurnRateModel = "BurnRateModel"
)

type Spec struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	SLO        SLO      `yaml:"slo"`
	Windows    []Window `yaml:"windows,omitempty"`
	Sweep      *Sweep   `yaml:"sweep,omitempty"`
}

type Metadata struct {
	Name    string            `yaml:"name"`
	Project string            `yaml:"project,omitempty"`
	Labels  map[string]string `yaml:"labels,omitempty"`
	Runbook string            `yaml:"runbook,omitempty"`
}

type SLO struct {
	Objective float64 `yaml:"objective"`
	Period    string  `yaml:"period"`
	SLORef    string  `yaml:"sloRef,omitempty"`
}

type Window struct {
	Name     string  `yaml:"name"`
	Window   string  `yaml:"window"`
	BurnRate float64 `yaml:"burnRate"`
	Severity string  `yaml:"severity,omitempty"`
}

type Sweep struct {
	Base    float64 `yaml:"base,omitempty"`
	Samples int     `yaml:"samples,omitempty"`
}

var windowRe = regexp.MustCompile(`^(\d+)([smhdw])$`)

// DefaultWindows is the classic three-tier setup: page within the hour at
// 14.4x, page over six hours at 6x, ticket over three days at 1x.
func DefaultWindows() []Window {
	return []Window{
		{Name: "1h", Window: "1h", BurnRate: 14.4, Severity: "page"},
		{Name: "6h", Window: "6h", BurnRate: 6, Severity: "page"},
		{Name: "3d", Window: "3d", BurnRate: 1, Severity: "ticket"},
	}
}

func (s Spec) EffectiveWindows() []Window {
	if len(s.Windows) == 0 {
		return DefaultWindows()
	}
	return s.Windows
}

func (s Spec) Validate() error {
	var errs []string
	if s.APIVersion != APIVersionV1 {
		errs = append(errs, fmt.Sprintf("apiVersion must be %q", APIVersionV1))
	}
	if s.Kind != KindBurnRateModel {
		errs = append(errs, fmt.Sprintf("kind must be %q", KindBurnRateModel))
	}
	if strings.TrimSpace(s.Metadata.Name) == "" {
		errs = append(errs, "metadata.name is required")
	}
	if s.SLO.Objective <= 0 || s.SLO.Objective >= 100 {
		errs = append(errs, "slo.objective must be between 0 and 100")
	}
	period, err := ParseWindow(s.SLO.Period)
	if err != nil {
		errs = append(errs, "slo.period must look like 30d, 4w, or 720h")
	}

	seen := map[string]bool{}
	for i, w := range s.Windows {
		prefix := fmt.Sprintf("windows[%d]", i)
		if strings.TrimSpace(w.Name) == "" {
			errs = append(errs, fmt.Sprintf("%s.name is required", prefix))
		} else if seen[w.Name] {
			errs = append(errs, fmt.Sprintf("%s.name %q is duplicated", prefix, w.Name))
		}
		seen[w.Name] = true
		duration, err := ParseWindow(w.Window)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s.window must look like 5m, 1h, or 3d", prefix))
		} else if period > 0 && duration > period {
			errs = append(errs, fmt.Sprintf("%s.window %s exceeds slo.period %s", prefix, w.Window, s.SLO.Period))
		}
		if w.BurnRate <= 0 {
			errs = append(errs, fmt.Sprintf("%s.burnRate must be positive", prefix))
		}
		if w.Severity != "" {
			if _, err := burnrate.ParseSeverity(w.Severity); err != nil {
				errs = append(errs, fmt.Sprintf("%s.%s", prefix, err))
			}
		}
	}

	if s.Sweep != nil {
		opts := s.SweepOptions()
		if err := opts.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("sweep: %s", strings.TrimPrefix(err.Error(), sweep.ErrInvalidSweep.Error()+": ")))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Model converts a validated document into the burn rate model, resolving
// every window string to minutes.
func (s Spec) Model() (*burnrate.Model, error) {
	period, err := ParseWindow(s.SLO.Period)
	if err != nil {
		return nil, fmt.Errorf("slo.period: %w", err)
	}
	var windows []burnrate.Window
	for _, w := range s.EffectiveWindows() {
		duration, err := ParseWindow(w.Window)
		if err != nil {
			return nil, fmt.Errorf("window %s: %w", w.Name, err)
		}
		severity := burnrate.Page
		if w.Severity != "" {
			severity, err = burnrate.ParseSeverity(w.Severity)
			if err != nil {
				return nil, fmt.Errorf("window %s: %w", w.Name, err)
			}
		}
		windows = append(windows, burnrate.Window{
			Name:     w.Name,
			Severity: severity,
			BurnRate: w.BurnRate,
			Duration: duration.Minutes(),
		})
	}
	return burnrate.NewModel(burnrate.Objective{
		TargetPercent: s.SLO.Objective,
		PeriodDays:    period.Hours() / 24,
	}, windows)
}

func (s Spec) SweepOptions() sweep.Options {
	opts := sweep.DefaultOptions()
	if s.Sweep == nil {
		return opts
	}
	if s.Sweep.Base != 0 {
		opts.Base = s.Sweep.Base
	}
	if s.Sweep.Samples != 0 {
		opts.Samples = s.Sweep.Samples
	}
	return opts
}

func ParseWindow(window string) (time.Duration, error) {
	matches := windowRe.FindStringSubmatch(window)
	if matches == nil {
		return 0, fmt.Errorf("invalid window %q", window)
	}
	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid window %q", window)
	}
	if amount == 0 {
		return 0, fmt.Errorf("window %q must be positive", window)
	}
	unit := windowUnits[matches[2]]
	if int64(amount) > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("window %q is too long", window)
	}
	return time.Duration(amount) * unit, nil
}

var windowUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
}

// FormatWindow is the inverse of ParseWindow for whole units.
func FormatWindow(duration time.Duration) (string, error) {
	switch {
	case duration <= 0:
		return "", fmt.Errorf("window %s must be positive", duration)
	case duration%(7*24*time.Hour) == 0:
		return fmt.Sprintf("%dw", duration/(7*24*time.Hour)), nil
	case duration%(24*time.Hour) == 0:
		return fmt.Sprintf("%dd", duration/(24*time.Hour)), nil
	case duration%time.Hour == 0:
		return fmt.Sprintf("%dh", duration/time.Hour), nil
	case duration%time.Minute == 0:
		return fmt.Sprintf("%dm", duration/time.Minute), nil
	case duration%time.Second == 0:
		return fmt.Sprintf("%ds", duration/time.Second), nil
	default:
		return "", fmt.Errorf("duration %s cannot be expressed as a window", duration)
	}
}
