package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bayneri/burnrate/internal/server"
	"go.uber.org/zap"
)

func runServe(args []string) error {
	fs, opts := baseFlags("serve", args)
	addr := fs.String("addr", ":8080", "listen address")
	maxSamples := fs.Int("max-samples", 0, "largest samples a curve request may ask for (default: the model's sweep.samples)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	plan, specDoc, err := buildPlan(opts)
	if err != nil {
		return err
	}
	model, err := specDoc.Model()
	if err != nil {
		return err
	}
	logger := newLogger(opts.verbose)
	defer logger.Sync()

	srv, err := server.New(server.Config{
		Addr:       *addr,
		Model:      model,
		Plan:       plan,
		Sweep:      specDoc.SweepOptions(),
		MaxSamples: *maxSamples,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("serving model", zap.String("model", specDoc.Metadata.Name), zap.Int("windows", len(plan.Alerts)))
	return srv.Run(ctx)
}
