package monitoringjson

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bayneri/burnrate/internal/monitoring"
	"github.com/bayneri/burnrate/internal/planner"
	"google.golang.org/protobuf/encoding/protojson"
)

const outputFile = "monitoring.json"

type document struct {
	Project       string            `json:"project"`
	Model         string            `json:"model"`
	SLO           string            `json:"slo"`
	Objective     float64           `json:"objective"`
	Period        string            `json:"period"`
	ErrorBudget   float64           `json:"errorBudget"`
	AlertPolicies []json.RawMessage `json:"alertPolicies"`
}

// Write renders every planned alert policy in the Cloud Monitoring API's JSON
// form, ready for `gcloud alpha monitoring policies create --policy-from-file`
// one entry at a time.
func Write(plan planner.Plan, outDir string) (string, error) {
	if outDir == "" {
		outDir = filepath.Join("out", "monitoring-json")
	}
	policies, err := monitoring.BuildAlertPolicies(plan)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}

	doc := document{
		Project:     plan.Project,
		Model:       plan.ModelName,
		SLO:         plan.SLORef,
		Objective:   plan.Objective,
		Period:      plan.Period,
		ErrorBudget: plan.ErrorBudget,
	}
	for _, policy := range policies {
		raw, err := protojson.Marshal(policy)
		if err != nil {
			return "", fmt.Errorf("encode policy %q: %w", policy.GetDisplayName(), err)
		}
		doc.AlertPolicies = append(doc.AlertPolicies, json.RawMessage(raw))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
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
