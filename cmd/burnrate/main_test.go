package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testModel = "testdata/model.yaml"

func TestRunCurveWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	err := run("curve", []string{"-f", testModel, "--out", dir, "--samples", "20", "--probe", "5%,0.0005"}, &out)
	if err != nil {
		t.Fatalf("curve: %v", err)
	}
	for _, name := range []string{"curve.json", "curve.csv", "summary.md"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	summary, err := os.ReadFile(filepath.Join(dir, "summary.md"))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if !strings.Contains(string(summary), "| 0.0500% | never |") {
		t.Fatalf("expected never probe row:\n%s", summary)
	}
}

func TestRunCurveSingleFormat(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	if err := run("curve", []string{"-f", testModel, "--out", dir, "--format", "csv"}, &out); err != nil {
		t.Fatalf("curve: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "curve.json")); !os.IsNotExist(err) {
		t.Fatalf("json output should not be written")
	}
	if strings.Count(out.String(), "Wrote") != 1 {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunProbe(t *testing.T) {
	var out bytes.Buffer
	if err := run("probe", []string{"-f", testModel, "--error-rate", "5%"}, &out); err != nil {
		t.Fatalf("probe: %v", err)
	}
	text := out.String()
	for _, want := range []string{"Error rate: 5.0000%", "Detected:        0d 0h 17m 16s", "page-now"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
}

func TestRunProbeRejectsInvalidRate(t *testing.T) {
	var out bytes.Buffer
	if err := run("probe", []string{"-f", testModel, "--error-rate", "0"}, &out); err == nil {
		t.Fatalf("expected error for zero error rate")
	}
	if err := run("probe", []string{"-f", testModel}, &out); err == nil {
		t.Fatalf("expected error without --error-rate")
	}
}

func TestRunValidateAndPlan(t *testing.T) {
	var out bytes.Buffer
	if err := run("validate", []string{"-f", testModel}, &out); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out.String(), "Model is valid.") {
		t.Fatalf("unexpected validate output %q", out.String())
	}
	out.Reset()
	if err := run("plan", []string{"-f", testModel, "--labels", "env=prod"}, &out); err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !strings.Contains(out.String(), "env=prod") {
		t.Fatalf("expected extra label in plan:\n%s", out.String())
	}
}

func TestRunRejectsProjectMismatch(t *testing.T) {
	var out bytes.Buffer
	if err := run("plan", []string{"-f", testModel, "--project", "other"}, &out); err == nil {
		t.Fatalf("expected project mismatch error")
	}
}

func TestRunExplain(t *testing.T) {
	var out bytes.Buffer
	if err := run("explain", []string{"detection"}, &out); err != nil {
		t.Fatalf("explain: %v", err)
	}
	if err := run("explain", nil, &out); err == nil {
		t.Fatalf("expected error without topic")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if err := run("analyze", nil, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	got, err := parseFormats("md, JSON,md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(got, ",") != "md,json" {
		t.Fatalf("unexpected formats %v", got)
	}
	if _, err := parseFormats("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, err := parseFormats(" , "); err == nil {
		t.Fatalf("expected error for empty formats")
	}
}

func TestExitError(t *testing.T) {
	err := exitError{code: 2, err: errors.New("partial import")}
	if err.ExitCode() != 2 || err.Error() != "partial import" {
		t.Fatalf("unexpected exit error %v", err)
	}
	if (exitError{}).ExitCode() != 1 {
		t.Fatalf("expected default exit code 1")
	}
	sentinel := errors.New("boom")
	if !errors.Is(exitError{code: 3, err: sentinel}, sentinel) {
		t.Fatalf("expected exit error to unwrap")
	}
}
