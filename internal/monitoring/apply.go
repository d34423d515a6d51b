package monitoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/bayneri/burnrate/internal/planner"
	"go.uber.org/zap"
)

// ApplyPlan creates or updates one policy per plan alert, then removes
// managed policies of the same model that are no longer planned.
func ApplyPlan(ctx context.Context, client Client, plan planner.Plan, logger *zap.Logger) error {
	if plan.Project == "" {
		return errors.New("plan has no project; set metadata.project or --project")
	}
	if plan.SLORef == "" {
		return errors.New("plan has no slo reference; set slo.sloRef or --slo-ref")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	keep := map[string]bool{}
	for _, alert := range plan.Alerts {
		action, err := client.ApplyAlert(ctx, ApplyAlertRequest{
			Project: plan.Project,
			SLORef:  plan.SLORef,
			Alert:   alert,
		})
		if err != nil {
			return fmt.Errorf("apply alert %s: %w", alert.ID, err)
		}
		keep[alert.DisplayName] = true
		logger.Info("alert policy "+string(action),
			zap.String("alert", alert.DisplayName),
			zap.String("window", alert.Window),
			zap.Float64("burnRate", alert.BurnRate),
			zap.String("severity", alert.Severity))
	}

	deleted, err := client.DeleteManagedAlerts(ctx, DeleteRequest{
		Project: plan.Project,
		Labels:  managedLabels(plan),
		Keep:    keep,
	})
	logDeleted(logger, "alert policy pruned", plan, deleted)
	if err != nil {
		return fmt.Errorf("prune alerts: %w", err)
	}
	return nil
}

// DeletePlan removes every managed policy of the plan's model.
func DeletePlan(ctx context.Context, client Client, plan planner.Plan, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	deleted, err := client.DeleteManagedAlerts(ctx, DeleteRequest{
		Project: plan.Project,
		Labels:  managedLabels(plan),
	})
	logDeleted(logger, "alert policy deleted", plan, deleted)
	return len(deleted), err
}

func logDeleted(logger *zap.Logger, msg string, plan planner.Plan, names []string) {
	for _, name := range names {
		logger.Info(msg, zap.String("alert", name), zap.String("project", plan.Project))
	}
}

func managedLabels(plan planner.Plan) map[string]string {
	labels := map[string]string{planner.ManagedByLabel: planner.ManagedByValue}
	if len(plan.Alerts) > 0 {
		if name, ok := plan.Alerts[0].Labels[planner.ModelNameLabel]; ok {
			labels[planner.ModelNameLabel] = name
		}
	}
	return labels
}
