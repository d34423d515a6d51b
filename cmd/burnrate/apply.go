package main

import (
	"context"
	"fmt"
	"io"

	"github.com/bayneri/burnrate/internal/monitoring"
	"github.com/bayneri/burnrate/internal/planner"
)

func runApply(args []string, stdout io.Writer) error {
	fs, opts := baseFlags("apply", args)
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
	if opts.dryRun {
		planner.Render(stdout, plan)
		return nil
	}
	logger := newLogger(opts.verbose)
	defer logger.Sync()

	ctx := context.Background()
	client, err := monitoring.NewGCPClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := monitoring.ApplyPlan(ctx, client, plan, logger); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Applied %d alert policies in project %s.\n", len(plan.Alerts), plan.Project)
	fmt.Fprintf(stdout, "Cloud Console: https://console.cloud.google.com/monitoring/alerting/policies?project=%s\n", plan.Project)
	return nil
}

func runDelete(args []string, stdout io.Writer) error {
	fs, opts := baseFlags("delete", args)
	if err := fs.Parse(args); err != nil {
		return err
	}
	plan, _, err := buildPlan(opts)
	if err != nil {
		return err
	}
	if plan.Project == "" {
		return fmt.Errorf("project is required via --project or metadata.project")
	}
	if opts.dryRun {
		fmt.Fprintf(stdout, "Delete would remove managed alert policies for %s in project %s.\n", plan.ModelName, plan.Project)
		return nil
	}
	logger := newLogger(opts.verbose)
	defer logger.Sync()

	ctx := context.Background()
	client, err := monitoring.NewGCPClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()
	deleted, err := monitoring.DeletePlan(ctx, client, plan, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Deleted %d alert policies for %s in project %s.\n", deleted, plan.ModelName, plan.Project)
	return nil
}
