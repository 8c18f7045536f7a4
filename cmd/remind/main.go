// Command remind is an interactive terminal client for the reminders
// store: list, add, complete and delete reminders backed by a SQLite
// database.
//
// Usage:
//
//	./remind            # Start the interactive prompt
//	./remind --help     # Show help
//
// Environment:
//
//	REMIND_CONFIG          Path to config file (default: ~/.remindkit/config.yaml)
//	REMIND_STORAGE__PATH   Path to SQLite database (default: ~/.remindkit/reminders.db)
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"remindkit/internal/config"
	"remindkit/internal/reminder"
	"remindkit/internal/repl"
	"remindkit/internal/storage"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	ctx := context.Background()

	configPath := os.Getenv("REMIND_CONFIG")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create data directory: %v\n", err)
		os.Exit(1)
	}

	svc, err := storage.Open(ctx, storage.Options{
		Path:            cfg.Storage.Path,
		DefaultListName: cfg.Storage.DefaultList,
		Policy:          storage.AccessPolicy(cfg.Storage.AccessPolicy),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	store := reminder.New(svc)

	r, err := repl.NewREPL(store, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}

	if err := r.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`remind - interactive reminder client

USAGE:
    remind            Start the interactive prompt
    remind --help     Show this help

COMMANDS (inside the prompt):
    list              Show incomplete reminders
    all               Show every reminder
    add <title> [| due 2006-01-02 15:04] [| prio high] [| notes <text>]
    done <id|pos>     Toggle completion
    rm <id|pos>       Delete a reminder
    access / grant    Inspect or request store access
    quit              Exit

ENVIRONMENT:
    REMIND_CONFIG          Path to config file
                           Default: ~/.remindkit/config.yaml
    REMIND_STORAGE__PATH   Path to SQLite database file
                           Default: ~/.remindkit/reminders.db`)
}
