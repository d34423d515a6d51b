package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bayneri/burnrate/internal/importer"
	"github.com/bayneri/burnrate/internal/monitoring"
	"gopkg.in/yaml.v3"
)

func runImport(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	sloRef := fs.String("slo", "", "SLO resource name (projects/p/services/s/serviceLevelObjectives/id)")
	name := fs.String("name", "", "metadata.name for the imported model")
	outPath := fs.String("out", "", "output path for the imported model")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*sloRef) == "" {
		return errors.New("--slo is required")
	}

	ctx := context.Background()
	client, err := monitoring.NewGCPClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := importer.Import(ctx, client, importer.Options{
		SLORef: *sloRef,
		Name:   *name,
	})
	if err != nil {
		return err
	}

	path := *outPath
	if strings.TrimSpace(path) == "" {
		path = filepath.Join("out", "import", fmt.Sprintf("%s.yaml", result.Spec.Metadata.Name))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(result.Spec)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote imported model to %s\n", path)
	for _, warn := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warn)
	}
	if len(result.Warnings) > 0 {
		return exitError{code: 2, err: errors.New("partial import")}
	}
	return nil
}
