package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "remindkit"
	serverVersion = "1.0.0"
)

// Server exposes a Store over MCP.
type Server struct {
	mcpServer *server.MCPServer
	store     *Store
}

// NewServer creates an MCP server backed by the given store.
func NewServer(store *Store) *Server {
	s := &Server{
		store: store,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	// check_access
	s.mcpServer.AddTool(
		mcp.NewTool("check_access",
			mcp.WithDescription("Read the current reminders access state (unknown, authorized or denied) without prompting"),
		),
		s.handleCheckAccess,
	)

	// request_access
	s.mcpServer.AddTool(
		mcp.NewTool("request_access",
			mcp.WithDescription("Request full access to the reminders store; on grant the incomplete reminders are loaded"),
		),
		s.handleRequestAccess,
	)

	// list_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("Fetch and return reminders, dated ones first in due order"),
			mcp.WithString("filter", mcp.Description("Filter: incomplete (default) or all")),
		),
		s.handleListReminders,
	)

	// create_reminder
	s.mcpServer.AddTool(
		mcp.NewTool("create_reminder",
			mcp.WithDescription("Create a reminder with a title, optional due date, priority and notes"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Reminder title")),
			mcp.WithString("due_at", mcp.Description("Due date in RFC3339 format (e.g. 2025-01-15T09:00:00Z); truncated to the minute")),
			mcp.WithString("priority", mcp.Description("Priority: none, low, medium, high (default: none)")),
			mcp.WithString("notes", mcp.Description("Optional notes")),
		),
		s.handleCreateReminder,
	)

	// complete_reminder
	s.mcpServer.AddTool(
		mcp.NewTool("complete_reminder",
			mcp.WithDescription("Toggle the completion flag of a reminder"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithString("filter", mcp.Description("Filter used to refresh the list afterwards: incomplete (default) or all")),
		),
		s.handleCompleteReminder,
	)

	// delete_reminder
	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder permanently"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithString("filter", mcp.Description("Filter used to refresh the list afterwards: incomplete (default) or all")),
		),
		s.handleDeleteReminder,
	)
}

func parseFilter(s string) (Filter, error) {
	switch s {
	case "", "incomplete":
		return FilterIncomplete, nil
	case "all":
		return FilterAll, nil
	default:
		return FilterIncomplete, fmt.Errorf("unknown filter %q (use incomplete or all)", s)
	}
}

func (s *Server) snapshotResult() *mcp.CallToolResult {
	output, _ := json.MarshalIndent(s.store.Snapshot(), "", "  ")
	return mcp.NewToolResultText(string(output))
}

func (s *Server) handleCheckAccess(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state := s.store.CheckAccess(ctx)
	return mcp.NewToolResultText(fmt.Sprintf("Reminders access is %s.", state)), nil
}

func (s *Server) handleRequestAccess(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.store.RequestAccess(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to request access: %v", err)), nil
	}
	return s.snapshotResult(), nil
}

func (s *Server) handleListReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter, err := parseFilter(req.GetString("filter", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.store.List(ctx, filter); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}

	snap := s.store.Snapshot()
	if len(snap.Reminders) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}

	output, _ := json.MarshalIndent(snap.Reminders, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleCreateReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draft := Draft{
		Title: req.GetString("title", ""),
		Notes: req.GetString("notes", ""),
	}

	if v := req.GetString("due_at", ""); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid due_at format: %v (use RFC3339, e.g. 2025-01-15T09:00:00Z)", err)), nil
		}
		draft.DueAt = &t
	}

	p, ok := ParsePriority(req.GetString("priority", ""))
	if !ok {
		return mcp.NewToolResultError("invalid priority (use none, low, medium or high)"), nil
	}
	draft.Priority = p

	if err := s.store.Create(ctx, draft); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create reminder: %v", err)), nil
	}

	return s.snapshotResult(), nil
}

func (s *Server) handleCompleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	filter, err := parseFilter(req.GetString("filter", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.store.ToggleComplete(ctx, id, filter); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to toggle reminder: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s toggled.", id)), nil
}

func (s *Server) handleDeleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	filter, err := parseFilter(req.GetString("filter", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.store.Delete(ctx, id, filter); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminder: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s deleted.", id)), nil
}
