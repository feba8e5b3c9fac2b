// Command mcp-vocab provides an MCP server for the spaced-repetition engine.
//
// This server provides tools for scheduling reminder sequences, enrolling in
// curated packs, and reading the reconciled dictionary snapshot.
//
// Usage:
//
//	./mcp-vocab          # Start MCP server (stdio)
//	./mcp-vocab --help   # Show help
//
// Environment:
//
//	VOCAB_DB_PATH       Path to SQLite database (default: ~/.vocab-trainer/vocab.db)
//	TELEGRAM_BOT_TOKEN  When set, reminders are delivered to Telegram;
//	                    otherwise they are logged to stderr.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/vocab-trainer/internal/config"
	"github.com/notexe/vocab-trainer/internal/jobqueue"
	"github.com/notexe/vocab-trainer/internal/srs"
	"github.com/notexe/vocab-trainer/internal/store"
	"github.com/notexe/vocab-trainer/internal/telegram"
)

// logNotifier delivers to stderr when no Telegram token is configured.
type logNotifier struct{}

func (logNotifier) SendNotification(userID int64, text string) error {
	log.Printf("[notify] user %d: 🔔 Reminder: %s", userID, text)
	return nil
}

func (logNotifier) SendMessage(userID int64, text string) error {
	log.Printf("[notify] user %d: %s", userID, text)
	return nil
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	cfg, err := config.Load(config.GetDefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	dbPath := os.Getenv("VOCAB_DB_PATH")
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create data directory: %v\n", err)
		os.Exit(1)
	}

	ledger, err := store.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer ledger.Close()

	queue := jobqueue.New()
	defer queue.Close()

	var notifier srs.Notifier = logNotifier{}
	if cfg.Telegram.BotToken != "" {
		client := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.PollTimeout)
		notifier = telegram.NewBot(client, nil, nil, cfg.View.PageSize, cfg.Telegram.PollTimeout)
	}

	engine, err := srs.New(queue, ledger, notifier, srs.Options{
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
		log.Printf("[mcp] failed to resume pack admissions: %v", err)
	}

	s := srs.NewServer(engine)

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Vocab Server - spaced-repetition engine via MCP protocol

USAGE:
    mcp-vocab          Start MCP server (communicates via stdio)
    mcp-vocab --help   Show this help

ENVIRONMENT:
    VOCAB_DB_PATH       Path to SQLite database file
                        Default: ~/.vocab-trainer/vocab.db
    TELEGRAM_BOT_TOKEN  Deliver reminders to Telegram instead of stderr

TOOLS:
    schedule_item     Schedule the reminder sequence for a word
    cancel_item       Cancel all reminders for a word
    enroll_pack       Enroll a user in a curated pack (drip-fed daily)
    cancel_candidate  Cancel one pack backlog entry
    snapshot          Get the dictionary: active + pending items
    random_word       Random word from the active set

CONFIGURATION:
    Add to ~/.vocab-trainer/mcp.json of your MCP client:
    {
      "mcpServers": {
        "vocab": {
          "command": "/path/to/mcp-vocab",
          "args": []
        }
      }
    }`)
}
