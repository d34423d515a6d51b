package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/bayneri/burnrate/internal/alerting"
	"github.com/bayneri/burnrate/internal/burnrate"
	"github.com/bayneri/burnrate/internal/sweep"
)

type Options struct {
	Explain bool
	Title   string
}

func WriteMarkdownSummary(path string, curve sweep.Curve, probes []sweep.ProbeResult, opts Options) error {
	return os.WriteFile(path, []byte(RenderMarkdownSummary(curve, probes, opts)), 0644)
}

func RenderMarkdownSummary(curve sweep.Curve, probes []sweep.ProbeResult, opts Options) string {
	title := opts.Title
	if title == "" {
		title = "Burn rate model"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Objective: %.3f%%\n", curve.TargetPercent)
	fmt.Fprintf(&b, "- Period: %g days\n", curve.PeriodDays)
	fmt.Fprintf(&b, "- Error budget: %.4f%%\n", curve.ErrorBudget*100)
	if detected, ok := curve.Lookup(sweep.DetectedSeries); ok {
		fmt.Fprintf(&b, "- Sampled error rates: %d\n", len(detected.Points))
	}
	fmt.Fprintf(&b, "\n")

	fmt.Fprintf(&b, "| Window | Severity | Lookback | Burn rate | Threshold | Budget consumed |\n")
	fmt.Fprintf(&b, "| --- | --- | --- | --- | --- | --- |\n")
	for _, w := range curve.Windows {
		fmt.Fprintf(&b, "| %s | %s | %s | %.1fx | %.4f%% | %.2f%% |\n",
			w.Name, w.Severity, burnrate.FormatDuration(w.DurationMinutes), w.BurnRate, w.Threshold*100, w.BudgetConsumption*100)
	}

	if len(probes) > 0 {
		fmt.Fprintf(&b, "\n## Probes\n\n")
		fmt.Fprintf(&b, "| Error rate | Detected | Page | Ticket | Exhausted | Time to respond |\n")
		fmt.Fprintf(&b, "| --- | --- | --- | --- | --- | --- |\n")
		for _, p := range probes {
			fmt.Fprintf(&b, "| %.4f%% | %s | %s | %s | %s | %s |\n",
				p.ErrorRate*100, p.Detected, p.DetectedPage, p.DetectedTicket, p.Exhausted, p.ResponseTime)
		}
	}

	if opts.Explain {
		fmt.Fprintf(&b, "\n## How computed\n\n")
		fmt.Fprintf(&b, "%s\n", alerting.ExplainDetection())
	}
	return b.String()
}
