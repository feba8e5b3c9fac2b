// Command vocab-bot runs the Telegram spaced-repetition vocabulary trainer.
//
// Usage:
//
//	./vocab-bot -config ~/.vocab-trainer/config.yaml
//
// Environment:
//
//	TELEGRAM_BOT_TOKEN  Bot API token (overrides config)
//	DEEPSEEK_API_KEY    Enables AI explanations (optional)
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

	"github.com/notexe/vocab-trainer/internal/config"
	"github.com/notexe/vocab-trainer/internal/jobqueue"
	"github.com/notexe/vocab-trainer/internal/lookup"
	"github.com/notexe/vocab-trainer/internal/pack"
	"github.com/notexe/vocab-trainer/internal/srs"
	"github.com/notexe/vocab-trainer/internal/store"
	"github.com/notexe/vocab-trainer/internal/telegram"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
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
	if cfg.Telegram.BotToken == "" {
		fmt.Fprintln(os.Stderr, "Bot token is required (set TELEGRAM_BOT_TOKEN or telegram.bot_token)")
		os.Exit(1)
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
		log.Printf("[main] loaded pack %s: %d words", id, len(words))
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

	client := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.PollTimeout)
	bot := telegram.NewBot(client, explainer, packs, cfg.View.PageSize, cfg.Telegram.PollTimeout)

	engine, err := srs.New(queue, ledger, bot, srs.Options{
		Intervals:  cfg.Intervals(),
		DailyCap:   cfg.Pack.DailyCap,
		Cooldown:   cfg.Cooldown(),
		TickPeriod: cfg.TickPeriod(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create engine: %v\n", err)
		os.Exit(1)
	}
	bot.AttachEngine(engine)

	if err := engine.ResumeTicks(); err != nil {
		log.Printf("[main] failed to resume pack admissions: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("[main] Interrupted, shutting down...")
		cancel()
	}()

	if err := bot.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Bot error: %v\n", err)
		os.Exit(1)
	}
}
