package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bayneri/burnrate/internal/sweep"
)

func runProbe(args []string, stdout io.Writer) error {
	fs, opts := baseFlags("probe", args)
	rates := fs.String("error-rate", "", "sustained error rate, as a fraction (0.05) or percentage (5%); comma-separated for several")
	asJSON := fs.Bool("json", false, "print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*rates) == "" {
		return errors.New("--error-rate is required")
	}
	specDoc, err := loadSpec(opts)
	if err != nil {
		return err
	}
	model, err := specDoc.Model()
	if err != nil {
		return err
	}
	results, err := probeAll(model, *rates)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for i, result := range results {
		if i > 0 {
			fmt.Fprintln(stdout, "")
		}
		renderProbe(stdout, result)
	}
	return nil
}

func renderProbe(w io.Writer, result sweep.ProbeResult) {
	fmt.Fprintf(w, "Error rate: %.4f%%\n", result.ErrorRate*100)
	for _, window := range result.PerWindow {
		fmt.Fprintf(w, "  %-12s %-7s %s\n", window.Name, window.Severity, window.Detection)
	}
	fmt.Fprintf(w, "Detected:        %s\n", result.Detected)
	fmt.Fprintf(w, "Paged:           %s\n", result.DetectedPage)
	fmt.Fprintf(w, "Ticketed:        %s\n", result.DetectedTicket)
	fmt.Fprintf(w, "Budget gone:     %s\n", result.Exhausted)
	fmt.Fprintf(w, "Time to respond: %s\n", result.ResponseTime)
	if !result.Detected.Occurs() && result.Exhausted.Occurs() {
		fmt.Fprintln(w, "warning: no window detects this error rate before the budget is exhausted")
	}
}
