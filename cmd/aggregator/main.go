// Command aggregator runs one pipeline batch and exits. Intended for cron.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"dalatbot/pipeline"
)

func main() {
	_ = godotenv.Load()

	sourcesPath := flag.String("sources", os.Getenv("SOURCES_FILE"), "path to sources YAML (defaults to compiled-in registry)")
	dryRun := flag.Bool("dry-run", false, "run the full pipeline but do not publish")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, cleanup, err := pipeline.BuildFromEnv(ctx, pipeline.Options{
		SourcesPath: *sourcesPath,
		DryRun:      *dryRun,
	})
	if err != nil {
		log.Fatalf("failed to build pipeline: %v", err)
	}
	defer cleanup()

	report := p.Run(ctx)

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal run report: %v", err)
	}
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))

	if len(report.Errors) > 0 {
		os.Exit(1)
	}
}
