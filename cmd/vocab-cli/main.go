// Command vocab-cli runs the local console over the spaced-repetition
// engine. Reminders fire straight into the terminal, which makes it handy
// for exercising interval and pack settings without a bot token.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/notexe/vocab-trainer/internal/cli"
	"github.com/notexe/vocab-trainer/internal/config"
	"github.com/notexe/vocab-trainer/internal/jobqueue"
	"github.com/notexe/vocab-trainer/internal/lookup"
	"github.com/notexe/vocab-trainer/internal/pack"
	"github.com/notexe/vocab-trainer/internal/srs"
	"github.com/notexe/vocab-trainer/internal/store"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create data directory: %v\n", err)
		os.Exit(1)
	}
	ledger, err := store.Open(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer ledger.Close()

	packs := make(map[string][]string)
	for id, path := range cfg.Pack.Files {
		words, err := pack.Load(path)
		if err != nil {
			log.Printf("[main] pack %s unavailable: %v", id, err)
			continue
		}
		packs[id] = words
	}

	var explainer *lookup.Explainer
	if cfg.DeepSeek.APIKey != "" {
		explainer, err = lookup.NewExplainer(cfg.DeepSeek)
		if err != nil {
			log.Printf("[main] AI explanations disabled: %v", err)
		}
	}

	queue := jobqueue.New()
	defer queue.Close()

	engine, err := srs.New(queue, ledger, cli.Notifier{}, srs.Options{
		Intervals:  cfg.Intervals(),
		DailyCap:   cfg.Pack.DailyCap,
		Cooldown:   cfg.Cooldown(),
		TickPeriod: cfg.TickPeriod(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create engine: %v\n", err)
		os.Exit(1)
	}

	if err := engine.ResumeTicks(); err != nil {
		log.Printf("[main] failed to resume pack admissions: %v", err)
	}

	console, err := cli.New(engine, explainer, packs, cfg.View.PageSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create console: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := console.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
