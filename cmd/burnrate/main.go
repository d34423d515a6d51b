package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bayneri/burnrate/internal/alerting"
	"github.com/bayneri/burnrate/internal/planner"
	"github.com/bayneri/burnrate/internal/spec"
)

const version = "0.1.0"

type commandOptions struct {
	file    string
	project string
	sloRef  string
	dryRun  bool
	verbose bool
	labels  string
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			usage()
			os.Exit(1)
		}
		fail(err)
	}
}

var errUsage = errors.New("usage")

func run(command string, args []string, stdout io.Writer) error {
	switch command {
	case "curve":
		return runCurve(args, stdout)
	case "probe":
		return runProbe(args, stdout)
	case "plan":
		return runPlan(args, stdout)
	case "validate":
		return runValidate(args, stdout)
	case "explain":
		return runExplain(args, stdout)
	case "import":
		return runImport(args, stdout)
	case "export":
		return runExport(args, stdout)
	case "apply":
		return runApply(args, stdout)
	case "delete":
		return runDelete(args, stdout)
	case "serve":
		return runServe(args)
	case "version":
		fmt.Fprintln(stdout, version)
		return nil
	default:
		return errUsage
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "burnrate - multi-window, multi-burn-rate alert modelling")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  burnrate curve    -f model.yaml [--out out/curve] [--format json,csv,md]")
	fmt.Fprintln(os.Stderr, "  burnrate probe    -f model.yaml --error-rate 5%")
	fmt.Fprintln(os.Stderr, "  burnrate plan     -f model.yaml")
	fmt.Fprintln(os.Stderr, "  burnrate validate -f model.yaml")
	fmt.Fprintln(os.Stderr, "  burnrate explain  burn-rate|detection")
	fmt.Fprintln(os.Stderr, "  burnrate import   --slo projects/p/services/s/serviceLevelObjectives/id")
	fmt.Fprintln(os.Stderr, "  burnrate export   monitoring-json|terraform -f model.yaml")
	fmt.Fprintln(os.Stderr, "  burnrate apply    -f model.yaml [--dry-run]")
	fmt.Fprintln(os.Stderr, "  burnrate delete   -f model.yaml [--dry-run]")
	fmt.Fprintln(os.Stderr, "  burnrate serve    -f model.yaml [--addr :8080]")
}

func baseFlags(cmd string, args []string) (*flag.FlagSet, *commandOptions) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := &commandOptions{}
	fs.StringVar(&opts.file, "f", "", "path to burn rate model")
	fs.StringVar(&opts.project, "project", "", "GCP project ID (overrides metadata.project)")
	fs.StringVar(&opts.sloRef, "slo-ref", "", "SLO resource name (overrides slo.sloRef)")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "show planned changes without applying")
	fs.BoolVar(&opts.verbose, "verbose", false, "verbose output")
	fs.StringVar(&opts.labels, "labels", "", "extra labels in key=value,key=value format")
	return fs, opts
}

func runPlan(args []string, stdout io.Writer) error {
	fs, opts := baseFlags("plan", args)
	if err := fs.Parse(args); err != nil {
		return err
	}
	plan, _, err := buildPlan(opts)
	if err != nil {
		return err
	}
	planner.Render(stdout, plan)
	return nil
}

func runValidate(args []string, stdout io.Writer) error {
	fs, opts := baseFlags("validate", args)
	if err := fs.Parse(args); err != nil {
		return err
	}
	specDoc, err := loadSpec(opts)
	if err != nil {
		return err
	}
	if _, err := specDoc.Model(); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Model is valid.")
	return nil
}

func runExplain(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("explain requires a topic: %s", strings.Join(alerting.Topics(), ", "))
	}
	text, err := alerting.Explain(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, text)
	return nil
}

func loadSpec(opts *commandOptions) (spec.Spec, error) {
	if strings.TrimSpace(opts.file) == "" {
		return spec.Spec{}, errors.New("-f is required")
	}
	specDoc, err := spec.Load(opts.file)
	if err != nil {
		return spec.Spec{}, err
	}
	if err := specDoc.Validate(); err != nil {
		return spec.Spec{}, err
	}
	return specDoc, nil
}

func buildPlan(opts *commandOptions) (planner.Plan, spec.Spec, error) {
	labels, err := spec.ParseLabels(opts.labels)
	if err != nil {
		return planner.Plan{}, spec.Spec{}, err
	}
	specDoc, err := loadSpec(opts)
	if err != nil {
		return planner.Plan{}, spec.Spec{}, err
	}
	if opts.project != "" && specDoc.Metadata.Project != "" && opts.project != specDoc.Metadata.Project {
		return planner.Plan{}, spec.Spec{}, fmt.Errorf("--project %q does not match metadata.project %q", opts.project, specDoc.Metadata.Project)
	}

	plan, err := planner.Build(specDoc, planner.Options{
		ProjectOverride: opts.project,
		SLORefOverride:  opts.sloRef,
		Labels:          labels,
	})
	if err != nil {
		return planner.Plan{}, spec.Spec{}, err
	}
	return plan, specDoc, nil
}

// requireTarget checks the fields every Cloud Monitoring command needs.
func requireTarget(plan planner.Plan) error {
	if strings.TrimSpace(plan.Project) == "" {
		return errors.New("project is required via --project or metadata.project")
	}
	if strings.TrimSpace(plan.SLORef) == "" {
		return errors.New("slo reference is required via --slo-ref or slo.sloRef")
	}
	return nil
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	if err == nil {
		os.Exit(1)
	}
	type exitCoder interface {
		ExitCode() int
	}
	var coded exitCoder
	if errors.As(err, &coded) {
		os.Exit(coded.ExitCode())
	}
	os.Exit(1)
}
