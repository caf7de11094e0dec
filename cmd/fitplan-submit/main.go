package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/claude/fitplan/internal/client"
	"github.com/claude/fitplan/internal/config"
	"github.com/claude/fitplan/internal/editor"
	"github.com/claude/fitplan/internal/models"
	"github.com/claude/fitplan/internal/plandef"
	"github.com/claude/fitplan/internal/submit"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	file := flag.String("file", "", "path to a YAML program definition")
	programID := flag.Int("program-id", 0, "update this existing program instead of creating one")
	dryRun := flag.Bool("dry-run", false, "build and validate, print the payload, send nothing")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("fitplan-submit", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *file == "" {
		fmt.Fprintf(os.Stderr, "Usage: fitplan-submit -file <program.yaml> [-config config.yaml] [-program-id N] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))

	def, err := plandef.Load(*file)
	if err != nil {
		log.Error("failed to read program definition", "file", *file, "error", err)
		os.Exit(1)
	}
	if *programID > 0 && len(def.Days) > 0 {
		fmt.Fprintf(os.Stderr, "Error: %s lists days, but -program-id only updates details. %s\n", *file, submit.DaysLockedMessage)
		os.Exit(1)
	}

	svc, err := client.New(cfg.Service.BaseURL, cfg.Service.SessionID, cfg.Service.Timeout)
	if err != nil {
		log.Error("failed to create program service client", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var current *models.ProgramSummary
	base := editor.NewDraft()
	if *programID > 0 {
		current, err = svc.GetProgram(ctx, *programID)
		if err != nil {
			log.Error("failed to fetch program", "id", *programID, "error", err)
			os.Exit(1)
		}
		base = editor.FromSummary(*current)
	}

	p, err := plandef.Apply(ctx, base, def, plandef.NewCatalogLookup(svc))
	if err != nil {
		log.Error("failed to build program", "file", *file, "error", err)
		os.Exit(1)
	}
	summary := editor.Summary(p)
	log.Info("program built", "name", p.Name, "workout_days", summary.WorkoutDays, "rest_days", summary.RestDays)

	if *dryRun {
		// Print exactly the body that would be sent.
		var body any
		if current != nil {
			body, err = submit.UpdateRequest(*current, p)
		} else {
			err = editor.Validate(p)
			body = editor.Serialize(p)
		}
		if err != nil {
			printFieldErrors(err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(body); err != nil {
			log.Error("failed to print payload", "error", err)
			os.Exit(1)
		}
		return
	}

	sub := submit.New(svc, log)
	var saved *models.ProgramSummary
	if current != nil {
		saved, err = sub.Update(ctx, *current, p)
	} else {
		saved, err = sub.Create(ctx, p)
	}
	if err != nil {
		if client.IsUnauthorized(err) {
			fmt.Fprintln(os.Stderr, "Please sign in again: the configured session_id is no longer valid.")
		}
		printFieldErrors(err)
		log.Error("submit failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Saved program %d: %s\n", saved.ID, saved.Name)
}

func printFieldErrors(err error) {
	fields := submit.FieldErrors(err)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", k, fields[k])
	}
}
