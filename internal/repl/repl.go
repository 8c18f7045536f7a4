package repl

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"remindkit/internal/config"
	"remindkit/internal/reminder"
	"remindkit/internal/ui"
)

// REPL is the interactive front-end over a reminder store. It issues
// one store operation per input line and waits for it to finish before
// reading the next, so operations never overlap.
type REPL struct {
	store     *reminder.Store
	config    *config.Config
	rl        *readline.Instance
	formatter *ui.Formatter
	status    *ui.StatusDisplay

	// filter currently in effect for the list view; done/rm refresh
	// with it.
	filter reminder.Filter
}

func NewREPL(store *reminder.Store, cfg *config.Config) (*REPL, error) {
	rl, err := setupReadline()
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}

	formatter := ui.NewFormatter(cfg.UI.ColoredOutput)
	status := ui.NewStatusDisplay(formatter, true)

	return &REPL{
		store:     store,
		config:    cfg,
		rl:        rl,
		formatter: formatter,
		status:    status,
		filter:    reminder.FilterIncomplete,
	}, nil
}

func (r *REPL) Start(ctx context.Context) error {
	defer r.rl.Close()

	// Surface the loading flag while a fetch is in flight.
	cancel := r.store.Subscribe(func(snap reminder.Snapshot) {
		if snap.Loading {
			r.status.Show("Loading reminders...")
		} else {
			r.status.Hide()
		}
	})
	defer cancel()

	r.displayWelcome()
	r.bootstrapAccess(ctx)

	for {
		input, err := r.readInput()
		if err != nil {
			if isEOF(err) {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		command, args := splitCommand(input)
		if command == "quit" || command == "exit" {
			fmt.Println("Goodbye!")
			return nil
		}

		if err := r.handleCommand(ctx, command, args); err != nil {
			r.displayError(err)
		}
	}
}

// bootstrapAccess runs the permission flow once at startup: read the
// state, prompt when it is still unknown, then load the list when
// authorized.
func (r *REPL) bootstrapAccess(ctx context.Context) {
	state := r.store.CheckAccess(ctx)

	switch state {
	case reminder.AccessUnknown:
		// RequestAccess loads the incomplete list on grant.
		if err := r.store.RequestAccess(ctx); err != nil {
			r.displayError(err)
			return
		}
	case reminder.AccessAuthorized:
		if err := r.store.List(ctx, r.filter); err != nil {
			r.displayError(err)
			return
		}
	case reminder.AccessDenied:
		r.displayAccess(state)
		return
	}

	r.displayList()
}

func (r *REPL) handleCommand(ctx context.Context, command, args string) error {
	// The previous action's error has been shown; a new action
	// replaces it.
	r.store.ClearError()

	switch command {
	case "help", "h", "?":
		r.displayHelp()
		return nil

	case "list", "ls":
		r.filter = reminder.FilterIncomplete
		if err := r.store.List(ctx, r.filter); err != nil {
			return err
		}
		r.displayList()
		return nil

	case "all":
		r.filter = reminder.FilterAll
		if err := r.store.List(ctx, r.filter); err != nil {
			return err
		}
		r.displayList()
		return nil

	case "add":
		if args == "" {
			return fmt.Errorf("usage: add <title> [| due <%s>] [| prio <none|low|medium|high>] [| notes <text>]", dueInputLayout)
		}
		draft, err := parseDraft(args)
		if err != nil {
			return err
		}
		if err := r.store.Create(ctx, draft); err != nil {
			return err
		}
		r.displayList()
		return nil

	case "done":
		id, err := r.resolveID(args)
		if err != nil {
			return err
		}
		if err := r.store.ToggleComplete(ctx, id, r.filter); err != nil {
			return err
		}
		r.displayList()
		return nil

	case "rm", "delete":
		id, err := r.resolveID(args)
		if err != nil {
			return err
		}
		if err := r.store.Delete(ctx, id, r.filter); err != nil {
			return err
		}
		r.displayList()
		return nil

	case "access":
		r.displayAccess(r.store.CheckAccess(ctx))
		return nil

	case "grant":
		if err := r.store.RequestAccess(ctx); err != nil {
			return err
		}
		r.displayAccess(r.store.Snapshot().Access)
		r.displayList()
		return nil

	default:
		return fmt.Errorf("unknown command: %s (try 'help')", command)
	}
}

const dueInputLayout = "2006-01-02 15:04"

// parseDraft parses "title | due 2024-03-01 09:00 | prio high | notes ...".
// Everything before the first pipe is the title.
func parseDraft(args string) (reminder.Draft, error) {
	parts := strings.Split(args, "|")
	draft := reminder.Draft{Title: strings.TrimSpace(parts[0])}

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, _ := strings.Cut(part, " ")
		value = strings.TrimSpace(value)

		switch key {
		case "due":
			t, err := time.ParseInLocation(dueInputLayout, value, time.Local)
			if err != nil {
				return reminder.Draft{}, fmt.Errorf("invalid due date %q (use %s)", value, dueInputLayout)
			}
			draft.DueAt = &t
		case "prio", "priority":
			p, ok := reminder.ParsePriority(value)
			if !ok {
				return reminder.Draft{}, fmt.Errorf("invalid priority %q (use none, low, medium or high)", value)
			}
			draft.Priority = p
		case "notes":
			draft.Notes = value
		default:
			return reminder.Draft{}, fmt.Errorf("unknown field %q (use due, prio or notes)", key)
		}
	}

	return draft, nil
}

// resolveID accepts either a reminder ID or a 1-based position in the
// displayed list.
func (r *REPL) resolveID(args string) (string, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return "", fmt.Errorf("usage: done|rm <id or list position>")
	}

	if n, err := strconv.Atoi(args); err == nil {
		reminders := r.store.Snapshot().Reminders
		if n < 1 || n > len(reminders) {
			return "", fmt.Errorf("no reminder at position %d", n)
		}
		return reminders[n-1].ID, nil
	}

	return args, nil
}
