package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/liftlog/internal/api"
	"github.com/claude/liftlog/internal/export"
	"github.com/google/uuid"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "liftlog server URL (e.g. https://liftlog.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("LIFTLOG_AUTH_API_KEY"), "API key (defaults to LIFTLOG_AUTH_API_KEY)")
	user := flag.String("user", "", "user UUID whose workouts to export")
	outDir := flag.String("out", ".", "directory to write CSV files into")
	dryRun := flag.Bool("dry-run", false, "report what would be exported without writing files")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-export", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" || *user == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-export -server <URL> -user <UUID> [-api-key KEY] [-out DIR] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *apiKey == "" {
		fmt.Fprintf(os.Stderr, "Error: -api-key or LIFTLOG_AUTH_API_KEY is required\n")
		os.Exit(1)
	}

	userID, err := uuid.Parse(*user)
	if err != nil {
		log.Error("invalid user UUID", "user", *user, "error", err)
		os.Exit(1)
	}

	// Strip trailing slash from server URL
	*serverURL = strings.TrimRight(*serverURL, "/")

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Error("failed to create output directory", "path", *outDir, "error", err)
		os.Exit(1)
	}

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	stateDir := filepath.Join(homeDir, ".liftlog-export")

	state, err := export.OpenStateDB(stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if *dryRun {
		log.Info("DRY RUN mode — workouts will be listed but no files written")
	}

	client := api.NewClient(*serverURL, *apiKey, userID)
	exporter := export.New(client, state, *outDir, *dryRun, log)

	summary, err := exporter.Run(context.Background())
	if err != nil {
		log.Error("export failed", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("=== Export Summary ===")
	fmt.Printf("  Workouts exported: %d\n", summary.Exported)
	fmt.Printf("  Workouts skipped:  %d (active or already exported)\n", summary.Skipped)
	fmt.Println()
	log.Info("export complete")
}
