// Package terraform writes a plan's alert policies as Terraform JSON
// configuration for the google provider.
package terraform

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bayneri/burnrate/internal/monitoring"
	"github.com/bayneri/burnrate/internal/planner"
)

const (
	outputFile   = "main.tf.json"
	resourceType = "google_monitoring_alert_policy"
)

type config struct {
	Terraform terraformBlock                    `json:"terraform"`
	Provider  map[string]providerBlock          `json:"provider"`
	Variable  map[string]variableBlock          `json:"variable"`
	Resource  map[string]map[string]alertPolicy `json:"resource"`
	Output    map[string]outputBlock            `json:"output,omitempty"`
}

type terraformBlock struct {
	RequiredProviders map[string]requiredProvider `json:"required_providers"`
}

type requiredProvider struct {
	Source  string `json:"source"`
	Version string `json:"version"`
}

type providerBlock struct {
	Project string `json:"project"`
}

type variableBlock struct {
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description"`
}

type outputBlock struct {
	Value       []string `json:"value"`
	Description string   `json:"description"`
}

type alertPolicy struct {
	Project       string            `json:"project"`
	DisplayName   string            `json:"display_name"`
	Combiner      string            `json:"combiner"`
	Documentation documentation     `json:"documentation"`
	Conditions    []condition       `json:"conditions"`
	UserLabels    map[string]string `json:"user_labels"`
	Enabled       bool              `json:"enabled"`
	Severity      string            `json:"severity"`
}

type documentation struct {
	Content  string `json:"content"`
	MimeType string `json:"mime_type"`
}

type condition struct {
	DisplayName        string             `json:"display_name"`
	ConditionThreshold conditionThreshold `json:"condition_threshold"`
}

type conditionThreshold struct {
	Filter                string  `json:"filter"`
	Comparison            string  `json:"comparison"`
	ThresholdValue        float64 `json:"threshold_value"`
	Duration              string  `json:"duration"`
	EvaluationMissingData string  `json:"evaluation_missing_data"`
}

// Write renders one alert policy resource per planned window into
// outDir/main.tf.json. The project is a variable defaulting to the plan's.
func Write(plan planner.Plan, outDir string) (string, error) {
	if strings.TrimSpace(plan.SLORef) == "" {
		return "", errors.New("terraform export needs an slo reference")
	}
	if outDir == "" {
		outDir = filepath.Join("out", "terraform")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(buildConfig(plan), "", "  ")
	if err != nil {
		return "", err
	}
	data = append(data, '\n')
	path := filepath.Join(outDir, outputFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func buildConfig(plan planner.Plan) config {
	policies := map[string]alertPolicy{}
	var refs []string
	for _, alert := range plan.Alerts {
		name := tfName("alert", alert.ID)
		policies[name] = buildAlertPolicy(plan, alert)
		refs = append(refs, fmt.Sprintf("${%s.%s.name}", resourceType, name))
	}
	sort.Strings(refs)

	cfg := config{
		Terraform: terraformBlock{RequiredProviders: map[string]requiredProvider{
			"google": {Source: "hashicorp/google", Version: ">= 5.0"},
		}},
		Provider: map[string]providerBlock{"google": {Project: "${var.project}"}},
		Variable: map[string]variableBlock{
			"project": {Type: "string", Default: plan.Project, Description: "GCP project that owns the SLO"},
		},
		Resource: map[string]map[string]alertPolicy{},
	}
	if len(policies) > 0 {
		cfg.Resource[resourceType] = policies
		cfg.Output = map[string]outputBlock{
			"alert_policy_names": {Value: refs, Description: fmt.Sprintf("Burn rate alert policies for %s", plan.ModelName)},
		}
	}
	return cfg
}

func buildAlertPolicy(plan planner.Plan, alert planner.AlertPlan) alertPolicy {
	labels := map[string]string{}
	for k, v := range alert.Labels {
		labels[k] = v
	}
	labels[monitoring.WindowLabel] = monitoring.LabelValue(alert.WindowName)

	return alertPolicy{
		Project:     "${var.project}",
		DisplayName: alert.DisplayName,
		Combiner:    "OR",
		Documentation: documentation{
			Content:  monitoring.AlertDocumentation(alert, plan.SLORef),
			MimeType: "text/markdown",
		},
		Conditions: []condition{{
			DisplayName: fmt.Sprintf("burn rate above %.1fx over %s", alert.BurnRate, alert.Window),
			ConditionThreshold: conditionThreshold{
				Filter:                monitoring.BurnRateFilter(plan.SLORef, alert.Window),
				Comparison:            "COMPARISON_GT",
				ThresholdValue:        alert.BurnRate,
				Duration:              "0s",
				EvaluationMissingData: "EVALUATION_MISSING_DATA_NO_OP",
			},
		}},
		UserLabels: labels,
		Enabled:    true,
		Severity:   monitoring.SeverityFor(alert.Severity).String(),
	}
}

// tfName turns an alert ID into a Terraform resource name.
func tfName(prefix, value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		return prefix + "_" + name
	}
	return name
}
