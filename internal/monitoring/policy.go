package monitoring

import (
	"fmt"
	"regexp"
	"strings"

	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/bayneri/burnrate/internal/planner"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// WindowLabel carries the model's window name on each policy so import can
// restore it.
const WindowLabel = "burnrate-window"

var burnRateFilterRe = regexp.MustCompile(`select_slo_burn_rate\(\s*"([^"]+)"\s*,\s*"([^"]+)"\s*\)`)

// BuildAlertPolicy renders one plan alert as a single-condition policy. The
// condition fires as soon as the look-back burn rate exceeds the window's
// burn rate, which is the moment the model counts as detection.
func BuildAlertPolicy(sloRef string, alert planner.AlertPlan) (*monitoringpb.AlertPolicy, error) {
	if strings.TrimSpace(sloRef) == "" {
		return nil, fmt.Errorf("alert %s: slo reference is required", alert.ID)
	}
	if strings.TrimSpace(alert.Window) == "" {
		return nil, fmt.Errorf("alert %s: window is empty", alert.ID)
	}

	condition := &monitoringpb.AlertPolicy_Condition{
		DisplayName: fmt.Sprintf("burn rate above %.1fx over %s", alert.BurnRate, alert.Window),
		Condition: &monitoringpb.AlertPolicy_Condition_ConditionThreshold{
			ConditionThreshold: &monitoringpb.AlertPolicy_Condition_MetricThreshold{
				Filter:                BurnRateFilter(sloRef, alert.Window),
				Comparison:            monitoringpb.ComparisonType_COMPARISON_GT,
				ThresholdValue:        alert.BurnRate,
				Duration:              durationpb.New(0),
				EvaluationMissingData: monitoringpb.AlertPolicy_Condition_EVALUATION_MISSING_DATA_NO_OP,
			},
		},
	}

	labels := map[string]string{}
	for k, v := range alert.Labels {
		labels[k] = v
	}
	labels[WindowLabel] = LabelValue(alert.WindowName)

	return &monitoringpb.AlertPolicy{
		DisplayName: alert.DisplayName,
		Documentation: &monitoringpb.AlertPolicy_Documentation{
			Content:  AlertDocumentation(alert, sloRef),
			MimeType: "text/markdown",
		},
		Conditions: []*monitoringpb.AlertPolicy_Condition{condition},
		Combiner:   monitoringpb.AlertPolicy_OR,
		UserLabels: labels,
		Enabled:    wrapperspb.Bool(true),
		Severity:   SeverityFor(alert.Severity),
	}, nil
}

// BuildAlertPolicies builds every policy of a plan in plan order.
func BuildAlertPolicies(plan planner.Plan) ([]*monitoringpb.AlertPolicy, error) {
	var policies []*monitoringpb.AlertPolicy
	for _, alert := range plan.Alerts {
		policy, err := BuildAlertPolicy(plan.SLORef, alert)
		if err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}
	return policies, nil
}

// AlertDocumentation is the markdown body attached to every burn-rate policy.
func AlertDocumentation(alert planner.AlertPlan, sloRef string) string {
	lines := []string{
		fmt.Sprintf("SLO: %s", sloRef),
		fmt.Sprintf("Window: %s (%s)", alert.WindowName, alert.Window),
		fmt.Sprintf("Burn rate: %.1fx", alert.BurnRate),
		fmt.Sprintf("Error rate threshold: %.4f%%", alert.Threshold*100),
		fmt.Sprintf("Budget consumed before firing: %.2f%%", alert.BudgetConsumption*100),
	}
	if alert.Runbook != "" {
		lines = append(lines, fmt.Sprintf("Runbook: %s", alert.Runbook))
	}
	return strings.Join(lines, "\n")
}

func SeverityFor(value string) monitoringpb.AlertPolicy_Severity {
	switch strings.ToLower(value) {
	case "page":
		return monitoringpb.AlertPolicy_CRITICAL
	case "ticket":
		return monitoringpb.AlertPolicy_WARNING
	default:
		return monitoringpb.AlertPolicy_SEVERITY_UNSPECIFIED
	}
}

// SeverityName maps a policy severity back to the model's page/ticket split.
// Unspecified severities return "".
func SeverityName(value monitoringpb.AlertPolicy_Severity) string {
	switch value {
	case monitoringpb.AlertPolicy_CRITICAL:
		return "page"
	case monitoringpb.AlertPolicy_ERROR, monitoringpb.AlertPolicy_WARNING:
		return "ticket"
	default:
		return ""
	}
}

func BurnRateFilter(sloRef, window string) string {
	return fmt.Sprintf("select_slo_burn_rate(%q, %q)", sloRef, window)
}

// ParseBurnRateFilter extracts the SLO reference and look-back window from a
// select_slo_burn_rate filter.
func ParseBurnRateFilter(filter string) (sloRef, window string, ok bool) {
	matches := burnRateFilterRe.FindStringSubmatch(filter)
	if matches == nil {
		return "", "", false
	}
	return matches[1], matches[2], true
}

// ReferencesSLO reports whether any condition of the policy watches sloRef.
func ReferencesSLO(policy *monitoringpb.AlertPolicy, sloRef string) bool {
	for _, condition := range policy.GetConditions() {
		ref, _, ok := ParseBurnRateFilter(condition.GetConditionThreshold().GetFilter())
		if ok && ref == sloRef {
			return true
		}
	}
	return false
}

// LabelValue coerces input into a valid Cloud Monitoring label value.
func LabelValue(input string) string {
	normalized := strings.ToLower(input)
	var out []rune
	for _, r := range normalized {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			out = append(out, r)
			continue
		}
		out = append(out, '_')
	}
	if len(out) > 63 {
		out = out[:63]
	}
	return string(out)
}

func hasManagedLabel(labels map[string]string, filter map[string]string) bool {
	if len(labels) == 0 {
		return false
	}
	for key, value := range filter {
		if labels[key] != value {
			return false
		}
	}
	return true
}
