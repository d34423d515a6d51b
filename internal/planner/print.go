package planner

import (
	"fmt"
	"io"
	"strings"
)

func Render(w io.Writer, plan Plan) {
	fmt.Fprintf(w, "Model: %s\n", plan.ModelName)
	if plan.Project != "" {
		fmt.Fprintf(w, "Project: %s\n", plan.Project)
	}
	if plan.SLORef != "" {
		fmt.Fprintf(w, "SLO: %s\n", plan.SLORef)
	}
	fmt.Fprintf(w, "Objective: %.3f%% over %s (error budget %.4f%%)\n", plan.Objective, plan.Period, plan.ErrorBudget*100)
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, "Alerts:")
	for _, alert := range plan.Alerts {
		fmt.Fprintf(w, "- %s (%s, %.1fx, threshold %.4f%%, %.2f%% of budget, %s)\n",
			alert.WindowName, alert.Window, alert.BurnRate, alert.Threshold*100, alert.BudgetConsumption*100, alert.Severity)
	}

	if len(plan.Alerts) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintf(w, "Labels: %s\n", strings.Join(SortedLabels(plan.Alerts[0].Labels), ", "))
	}
}
