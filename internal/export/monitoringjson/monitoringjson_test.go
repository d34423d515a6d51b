package monitoringjson

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/bayneri/burnrate/internal/planner"
	"github.com/bayneri/burnrate/internal/spec"
)

func testPlan(t *testing.T) planner.Plan {
	t.Helper()
	specDoc := spec.Spec{
		APIVersion: spec.APIVersionV1,
		Kind:       spec.KindBurnRateModel,
		Metadata:   spec.Metadata{Name: "checkout-api", Project: "demo"},
		SLO: spec.SLO{
			Objective: 99.9,
			Period:    "30d",
			SLORef:    "projects/demo/services/checkout/serviceLevelObjectives/availability",
		},
	}
	plan, err := planner.Build(specDoc, planner.Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return plan
}

func TestWriteMonitoringJSON(t *testing.T) {
	path, err := Write(testPlan(t), t.TempDir())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var payload struct {
		Project       string                   `json:"project"`
		Model         string                   `json:"model"`
		ErrorBudget   float64                  `json:"errorBudget"`
		AlertPolicies []map[string]interface{} `json:"alertPolicies"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Project != "demo" {
		t.Fatalf("expected project demo, got %q", payload.Project)
	}
	if payload.Model != "checkout-api" || payload.ErrorBudget <= 0 {
		t.Fatalf("unexpected model metadata %+v", payload)
	}
	if len(payload.AlertPolicies) != 3 {
		t.Fatalf("expected 3 alert policies, got %d", len(payload.AlertPolicies))
	}
	if payload.AlertPolicies[0]["severity"] != "CRITICAL" || payload.AlertPolicies[2]["severity"] != "WARNING" {
		t.Fatalf("unexpected severities %v / %v", payload.AlertPolicies[0]["severity"], payload.AlertPolicies[2]["severity"])
	}
	if !strings.Contains(string(data), `select_slo_burn_rate(\"projects/demo/services/checkout/serviceLevelObjectives/availability\", \"1h\")`) {
		t.Fatalf("expected burn rate filter in output:\n%s", data)
	}
}

func TestWriteRequiresSLORef(t *testing.T) {
	plan := testPlan(t)
	plan.SLORef = ""
	if _, err := Write(plan, t.TempDir()); err == nil {
		t.Fatalf("expected error without slo reference")
	}
}
