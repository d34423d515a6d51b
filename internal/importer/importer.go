package importer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	monitoringpb "cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/bayneri/burnrate/internal/monitoring"
	"github.com/bayneri/burnrate/internal/spec"
	"google.golang.org/genproto/googleapis/type/calendarperiod"
	"google.golang.org/protobuf/types/known/durationpb"
)

type Options struct {
	SLORef string
	Name   string
}

type Result struct {
	Spec     spec.Spec
	Warnings []string
}

// Import reads an SLO and its burn-rate alert policies and rebuilds the model
// document that would produce them.
func Import(ctx context.Context, source monitoring.SLOSource, opts Options) (Result, error) {
	sloRef := strings.TrimSpace(opts.SLORef)
	if sloRef == "" {
		return Result{}, errors.New("--slo is required")
	}
	project, err := projectFromRef(sloRef)
	if err != nil {
		return Result{}, err
	}

	slo, err := source.GetSLO(ctx, sloRef)
	if err != nil {
		return Result{}, err
	}
	period, err := sloPeriod(slo)
	if err != nil {
		return Result{}, err
	}

	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = sanitizeName(slo.GetDisplayName())
	}
	if name == "" {
		name = lastSegment(sloRef)
	}

	specDoc := spec.Spec{
		APIVersion: spec.APIVersionV1,
		Kind:       spec.KindBurnRateModel,
		Metadata: spec.Metadata{
			Name:    name,
			Project: project,
			Labels:  copyLabels(slo.GetUserLabels()),
		},
		SLO: spec.SLO{
			Objective: roundPercent(slo.GetGoal() * 100),
			Period:    period,
			SLORef:    sloRef,
		},
	}

	policies, err := source.ListBurnRatePolicies(ctx, project, sloRef)
	if err != nil {
		return Result{}, err
	}
	sort.Slice(policies, func(i, j int) bool {
		if policies[i].GetDisplayName() == policies[j].GetDisplayName() {
			return policies[i].GetName() < policies[j].GetName()
		}
		return policies[i].GetDisplayName() < policies[j].GetDisplayName()
	})

	var warnings []string
	var windows []importedWindow
	seen := map[string]bool{}
	for _, policy := range policies {
		for _, condition := range policy.GetConditions() {
			out, warn, ok := conditionToWindow(policy, condition, sloRef)
			if warn != "" {
				warnings = append(warnings, warn)
			}
			if !ok {
				continue
			}
			out.window.Name = uniqueName(out.window.Name, seen)
			windows = append(windows, out)
		}
	}

	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].minutes < windows[j].minutes
	})
	for _, w := range windows {
		specDoc.Windows = append(specDoc.Windows, w.window)
	}
	if len(specDoc.Windows) == 0 {
		warnings = append(warnings, "no burn-rate alert policies found for the SLO; default windows apply")
	}

	if err := specDoc.Validate(); err != nil {
		return Result{}, fmt.Errorf("imported model is invalid: %w", err)
	}
	return Result{Spec: specDoc, Warnings: warnings}, nil
}

type importedWindow struct {
	window  spec.Window
	minutes float64
}

func conditionToWindow(policy *monitoringpb.AlertPolicy, condition *monitoringpb.AlertPolicy_Condition, sloRef string) (importedWindow, string, bool) {
	threshold := condition.GetConditionThreshold()
	if threshold == nil {
		return importedWindow{}, fmt.Sprintf("skipping %q condition %q: not a threshold condition", policy.GetDisplayName(), condition.GetDisplayName()), false
	}
	ref, window, ok := monitoring.ParseBurnRateFilter(threshold.GetFilter())
	if !ok || ref != sloRef {
		return importedWindow{}, "", false
	}
	switch threshold.GetComparison() {
	case monitoringpb.ComparisonType_COMPARISON_GT, monitoringpb.ComparisonType_COMPARISON_GE:
	default:
		return importedWindow{}, fmt.Sprintf("skipping %q: comparison %v is not an upper burn-rate bound", policy.GetDisplayName(), threshold.GetComparison()), false
	}
	duration, err := spec.ParseWindow(window)
	if err != nil {
		return importedWindow{}, fmt.Sprintf("skipping %q: %v", policy.GetDisplayName(), err), false
	}
	if threshold.GetThresholdValue() <= 0 {
		return importedWindow{}, fmt.Sprintf("skipping %q: burn rate must be positive", policy.GetDisplayName()), false
	}

	name := policy.GetUserLabels()[monitoring.WindowLabel]
	if name == "" {
		name = window
	}
	severity := monitoring.SeverityName(policy.GetSeverity())
	if severity == "" {
		severity = "page"
	}
	return importedWindow{
		window: spec.Window{
			Name:     name,
			Window:   window,
			BurnRate: threshold.GetThresholdValue(),
			Severity: severity,
		},
		minutes: duration.Minutes(),
	}, "", true
}

func sloPeriod(slo *monitoringpb.ServiceLevelObjective) (string, error) {
	if rolling := slo.GetRollingPeriod(); rolling != nil {
		return durationToWindow(rolling)
	}
	if cal := slo.GetCalendarPeriod(); cal != calendarperiod.CalendarPeriod_CALENDAR_PERIOD_UNSPECIFIED {
		window := calendarToWindow(cal)
		if window == "" {
			return "", fmt.Errorf("unsupported calendar period %v", cal)
		}
		return window, nil
	}
	return "", fmt.Errorf("slo %s has no period", slo.GetName())
}

func durationToWindow(duration *durationpb.Duration) (string, error) {
	if duration == nil {
		return "", errors.New("missing rolling period")
	}
	window, err := spec.FormatWindow(duration.AsDuration())
	if err != nil {
		return "", fmt.Errorf("rolling period: %w", err)
	}
	return window, nil
}

// Calendar periods are approximated by their nominal length.
func calendarToWindow(period calendarperiod.CalendarPeriod) string {
	switch period {
	case calendarperiod.CalendarPeriod_DAY:
		return "1d"
	case calendarperiod.CalendarPeriod_WEEK:
		return "1w"
	case calendarperiod.CalendarPeriod_FORTNIGHT:
		return "2w"
	case calendarperiod.CalendarPeriod_MONTH:
		return "30d"
	case calendarperiod.CalendarPeriod_QUARTER:
		return "90d"
	default:
		return ""
	}
}

func projectFromRef(ref string) (string, error) {
	parts := strings.Split(ref, "/")
	if len(parts) < 2 || parts[0] != "projects" || parts[1] == "" {
		return "", fmt.Errorf("slo reference %q must start with projects/<id>/", ref)
	}
	return parts[1], nil
}

func uniqueName(name string, seen map[string]bool) string {
	candidate := name
	for i := 2; seen[candidate]; i++ {
		candidate = fmt.Sprintf("%s-%d", name, i)
	}
	seen[candidate] = true
	return candidate
}

func copyLabels(labels map[string]string) map[string]string {
	if len(labels) == 0 {
		return nil
	}
	out := map[string]string{}
	for k, v := range labels {
		out[k] = v
	}
	return out
}

func roundPercent(value float64) float64 {
	return math.Round(value*10000) / 10000
}

func lastSegment(name string) string {
	parts := strings.Split(name, "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

func sanitizeName(name string) string {
	trimmed := strings.TrimSpace(strings.ToLower(name))
	if trimmed == "" {
		return ""
	}
	var out []rune
	for _, r := range trimmed {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			out = append(out, r)
		} else {
			out = append(out, '-')
		}
	}
	return strings.Trim(string(out), "-")
}
