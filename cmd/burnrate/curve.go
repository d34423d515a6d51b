package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bayneri/burnrate/internal/burnrate"
	"github.com/bayneri/burnrate/internal/report"
	"github.com/bayneri/burnrate/internal/sweep"
	"go.uber.org/zap"
)

var allFormats = []string{"json", "csv", "md"}

func runCurve(args []string, stdout io.Writer) error {
	fs, opts := baseFlags("curve", args)
	outDir := fs.String("out", filepath.Join("out", "curve"), "output directory")
	formats := fs.String("format", strings.Join(allFormats, ","), "comma-separated outputs: json, csv, md")
	base := fs.Float64("base", 0, "sweep base (overrides sweep.base)")
	samples := fs.Int("samples", 0, "sweep samples (overrides sweep.samples)")
	probes := fs.String("probe", "", "comma-separated error rates to tabulate in summary.md (e.g. 1%,5%,0.5)")
	explain := fs.Bool("explain", false, "include the formulas in summary.md")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger := newLogger(opts.verbose)
	defer logger.Sync()

	selected, err := parseFormats(*formats)
	if err != nil {
		return err
	}
	specDoc, err := loadSpec(opts)
	if err != nil {
		return err
	}
	model, err := specDoc.Model()
	if err != nil {
		return err
	}
	sweepOpts := specDoc.SweepOptions()
	if *base != 0 {
		sweepOpts.Base = *base
	}
	if *samples != 0 {
		sweepOpts.Samples = *samples
	}

	curve, err := sweep.Run(model, sweepOpts)
	if err != nil {
		return err
	}
	probeResults, err := probeAll(model, *probes)
	if err != nil {
		return err
	}
	if detected, ok := curve.Lookup(sweep.DetectedSeries); ok {
		logger.Debug("sweep complete",
			zap.Int("points", len(detected.Points)),
			zap.Float64("base", sweepOpts.Base),
			zap.Float64("errorBudget", curve.ErrorBudget))
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return err
	}
	for _, format := range selected {
		var path string
		switch format {
		case "json":
			path = filepath.Join(*outDir, "curve.json")
			err = report.WriteCurveJSON(path, curve)
		case "csv":
			path = filepath.Join(*outDir, "curve.csv")
			err = report.WriteCurveCSV(path, curve)
		case "md":
			path = filepath.Join(*outDir, "summary.md")
			err = report.WriteMarkdownSummary(path, curve, probeResults, report.Options{
				Explain: *explain,
				Title:   specDoc.Metadata.Name,
			})
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		fmt.Fprintf(stdout, "Wrote %s\n", path)
	}
	return nil
}

func parseFormats(input string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(input, ",") {
		format := strings.ToLower(strings.TrimSpace(part))
		if format == "" || seen[format] {
			continue
		}
		switch format {
		case "json", "csv", "md":
		default:
			return nil, fmt.Errorf("unknown format %q (available: %s)", format, strings.Join(allFormats, ", "))
		}
		seen[format] = true
		out = append(out, format)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("--format needs at least one of %s", strings.Join(allFormats, ", "))
	}
	return out, nil
}

func probeAll(model *burnrate.Model, input string) ([]sweep.ProbeResult, error) {
	var out []sweep.ProbeResult
	for _, part := range strings.Split(input, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		rate, err := burnrate.ParseErrorRate(part)
		if err != nil {
			return nil, err
		}
		result, err := sweep.Probe(model, rate)
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, nil
}
