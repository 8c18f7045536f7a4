// Command mcp-remind provides an MCP server over the reminders store.
//
// The server exposes tools for checking and requesting access, then
// listing, creating, completing and deleting reminders in a SQLite
// database.
//
// Usage:
//
//	./mcp-remind          # Start MCP server (stdio)
//	./mcp-remind --help   # Show help
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

	"github.com/mark3labs/mcp-go/server"
	"zombiezen.com/go/log"

	"remindkit/internal/config"
	"remindkit/internal/reminder"
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
	s := reminder.NewServer(store)

	log.Infof(ctx, "serving reminders over stdio from %s", cfg.Storage.Path)
	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Remind Server - Reminder management via MCP protocol

USAGE:
    mcp-remind          Start MCP server (communicates via stdio)
    mcp-remind --help   Show this help

ENVIRONMENT:
    REMIND_CONFIG          Path to config file
                           Default: ~/.remindkit/config.yaml
    REMIND_STORAGE__PATH   Path to SQLite database file
                           Default: ~/.remindkit/reminders.db

TOOLS:
    check_access       Read the current access state
    request_access     Request full access; loads reminders on grant
    list_reminders     List reminders (incomplete or all), dated first
    create_reminder    Create a reminder (title, due_at, priority, notes)
    complete_reminder  Toggle a reminder's completion flag
    delete_reminder    Delete a reminder permanently`)
}
