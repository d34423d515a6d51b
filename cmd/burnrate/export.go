package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bayneri/burnrate/internal/export/monitoringjson"
	"github.com/bayneri/burnrate/internal/export/terraform"
)

func runExport(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New("export requires a format: monitoring-json, terraform")
	}
	switch args[0] {
	case "terraform":
		return runExportTerraform(args[1:], stdout)
	case "monitoring-json":
		return runExportMonitoringJSON(args[1:], stdout)
	default:
		return fmt.Errorf("unknown export format %q", args[0])
	}
}

func runExportTerraform(args []string, stdout io.Writer) error {
	fs, opts := baseFlags("export terraform", args)
	outDir := fs.String("out", filepath.Join("out", "terraform"), "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	plan, _, err := buildPlan(opts)
	if err != nil {
		return err
	}
	if err := requireTarget(plan); err != nil {
		return err
	}
	path, err := terraform.Write(plan, *outDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote Terraform export to %s\n", path)
	return nil
}

func runExportMonitoringJSON(args []string, stdout io.Writer) error {
	fs, opts := baseFlags("export monitoring-json", args)
	outDir := fs.String("out", filepath.Join("out", "monitoring-json"), "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	plan, _, err := buildPlan(opts)
	if err != nil {
		return err
	}
	if err := requireTarget(plan); err != nil {
		return err
	}
	path, err := monitoringjson.Write(plan, *outDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote Monitoring JSON export to %s\n", path)
	return nil
}
