package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bayneri/burnrate/internal/burnrate"
	"github.com/bayneri/burnrate/internal/spec"
)

const ManagedByLabel = "managed-by"
const ManagedByValue = "burnrate"
const ModelNameLabel = "model-name"

type Plan struct {
	Project     string      `json:"project,omitempty"`
	ModelName   string      `json:"modelName"`
	SLORef      string      `json:"sloRef,omitempty"`
	Objective   float64     `json:"objective"`
	Period      string      `json:"period"`
	ErrorBudget float64     `json:"errorBudget"`
	Alerts      []AlertPlan `json:"alerts"`
}

// AlertPlan is one burn-rate alert policy, derived from a single window.
type AlertPlan struct {
	ID                string            `json:"id"`
	DisplayName       string            `json:"displayName"`
	WindowName        string            `json:"windowName"`
	Window            string            `json:"window"`
	LookbackMinutes   float64           `json:"lookbackMinutes"`
	BurnRate          float64           `json:"burnRate"`
	Threshold         float64           `json:"threshold"`
	BudgetConsumption float64           `json:"budgetConsumption"`
	Severity          string            `json:"severity"`
	Labels            map[string]string `json:"labels,omitempty"`
	Runbook           string            `json:"runbook,omitempty"`
	Description       string            `json:"description"`
}

type Options struct {
	ProjectOverride string
	SLORefOverride  string
	Labels          map[string]string
}

func Build(specDoc spec.Spec, opts Options) (Plan, error) {
	model, err := specDoc.Model()
	if err != nil {
		return Plan{}, err
	}

	labels := mergeLabels(specDoc.Metadata.Labels, opts.Labels)
	labels[ManagedByLabel] = ManagedByValue
	labels[ModelNameLabel] = sanitizeID(specDoc.Metadata.Name)

	project := specDoc.Metadata.Project
	if opts.ProjectOverride != "" {
		project = opts.ProjectOverride
	}
	sloRef := specDoc.SLO.SLORef
	if opts.SLORefOverride != "" {
		sloRef = opts.SLORefOverride
	}

	objective := model.Objective()
	budget := model.ErrorBudget()
	source := specDoc.EffectiveWindows()

	var alerts []AlertPlan
	for i, w := range model.Windows() {
		alertID := sanitizeID(fmt.Sprintf("%s-%s-burn", specDoc.Metadata.Name, w.Name))
		alerts = append(alerts, AlertPlan{
			ID:                alertID,
			DisplayName:       fmt.Sprintf("%s %s burn rate", specDoc.Metadata.Name, w.Name),
			WindowName:        w.Name,
			Window:            source[i].Window,
			LookbackMinutes:   w.Duration,
			BurnRate:          w.BurnRate,
			Threshold:         w.Threshold(budget),
			BudgetConsumption: w.BudgetConsumption(objective.PeriodDays),
			Severity:          w.Severity.String(),
			Labels:            mergeLabels(labels, nil),
			Runbook:           specDoc.Metadata.Runbook,
			Description:       description(w, budget),
		})
	}

	return Plan{
		Project:     project,
		ModelName:   specDoc.Metadata.Name,
		SLORef:      sloRef,
		Objective:   objective.TargetPercent,
		Period:      specDoc.SLO.Period,
		ErrorBudget: budget,
		Alerts:      alerts,
	}, nil
}

func description(w burnrate.Window, budget float64) string {
	return fmt.Sprintf("%s alert: error rate above %.4f%% (%.1fx budget) over %s",
		w.Severity, w.Threshold(budget)*100, w.BurnRate, burnrate.FormatDuration(w.Duration))
}

func mergeLabels(base, extra map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func sanitizeID(input string) string {
	normalized := strings.ToLower(input)
	var out []rune
	lastDash := false
	for _, r := range normalized {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			out = append(out, r)
			lastDash = false
			continue
		}
		if !lastDash {
			out = append(out, '-')
			lastDash = true
		}
	}
	result := strings.Trim(string(out), "-")
	if result == "" {
		return "model"
	}
	return result
}

func SortedLabels(labels map[string]string) []string {
	var out []string
	for k, v := range labels {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(out)
	return out
}
