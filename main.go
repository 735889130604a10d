package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"dalatbot/api"
	"dalatbot/pipeline"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	ctx := context.Background()
	p, cleanup, err := pipeline.BuildFromEnv(ctx, pipeline.Options{
		SourcesPath: os.Getenv("SOURCES_FILE"),
	})
	if err != nil {
		log.Fatalf("failed to build pipeline: %v", err)
	}
	defer cleanup()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	r := api.NewRouter(p, p.Registry)
	log.Printf("Starting API server on %s", addr)
	log.Println("API endpoints available:")
	log.Println("  GET  /api/health")
	log.Println("  POST /api/pipeline/run")
	log.Println("  GET  /api/pipeline/last")
	log.Println("  GET  /api/sources")

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
