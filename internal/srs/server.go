package srs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "vocab"
	serverVersion = "1.0.0"
)

// Server is the MCP server exposing the scheduling core.
type Server struct {
	mcpServer *server.MCPServer
	engine    *Engine
}

// NewServer creates a new vocab MCP server backed by the given engine.
func NewServer(engine *Engine) *Server {
	s := &Server{
		engine: engine,
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
	// schedule_item
	s.mcpServer.AddTool(
		mcp.NewTool("schedule_item",
			mcp.WithDescription("Schedule the full spaced-repetition reminder sequence for a word or phrase"),
			mcp.WithNumber("user_id", mcp.Required(), mcp.Description("Owning user id")),
			mcp.WithString("text", mcp.Required(), mcp.Description("The word or phrase to learn")),
		),
		s.handleScheduleItem,
	)

	// cancel_item
	s.mcpServer.AddTool(
		mcp.NewTool("cancel_item",
			mcp.WithDescription("Cancel all outstanding reminders for a word, and mark any matching pack backlog rows cancelled"),
			mcp.WithNumber("user_id", mcp.Required(), mcp.Description("Owning user id")),
			mcp.WithString("text", mcp.Required(), mcp.Description("The word or phrase to remove")),
		),
		s.handleCancelItem,
	)

	// enroll_pack
	s.mcpServer.AddTool(
		mcp.NewTool("enroll_pack",
			mcp.WithDescription("Enroll the user in a curated vocabulary pack; words are drip-fed under the daily cap"),
			mcp.WithNumber("user_id", mcp.Required(), mcp.Description("Owning user id")),
			mcp.WithString("pack_id", mcp.Required(), mcp.Description("Pack identifier")),
			mcp.WithString("words", mcp.Required(), mcp.Description("JSON array of candidate words, in admission order")),
		),
		s.handleEnrollPack,
	)

	// cancel_candidate
	s.mcpServer.AddTool(
		mcp.NewTool("cancel_candidate",
			mcp.WithDescription("Mark one pack backlog entry cancelled (does not stop live reminders; use cancel_item for that)"),
			mcp.WithNumber("user_id", mcp.Required(), mcp.Description("Owning user id")),
			mcp.WithString("pack_id", mcp.Required(), mcp.Description("Pack identifier")),
			mcp.WithString("text", mcp.Required(), mcp.Description("The candidate word")),
		),
		s.handleCancelCandidate,
	)

	// snapshot
	s.mcpServer.AddTool(
		mcp.NewTool("snapshot",
			mcp.WithDescription("Get the user's dictionary: active items with next due time, pending pack items with estimated start date"),
			mcp.WithNumber("user_id", mcp.Required(), mcp.Description("Owning user id")),
			mcp.WithString("ordering", mcp.Description("Sort order: 'lexical' (default) or 'ease' (length, then vowel count)")),
			mcp.WithBoolean("reverse", mcp.Description("Reverse the sort order")),
			mcp.WithNumber("page", mcp.Description("1-indexed page number (default 1)")),
			mcp.WithNumber("page_size", mcp.Description("Items per page (default 25)")),
		),
		s.handleSnapshot,
	)

	// random_word
	s.mcpServer.AddTool(
		mcp.NewTool("random_word",
			mcp.WithDescription("Pick a random word from the user's active learning set, for recall practice"),
			mcp.WithNumber("user_id", mcp.Required(), mcp.Description("Owning user id")),
		),
		s.handleRandomWord,
	)
}

func (s *Server) handleScheduleItem(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := int64(req.GetFloat("user_id", 0))
	text := req.GetString("text", "")
	if userID == 0 {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	res, err := s.engine.ScheduleItem(userID, text, ProvenanceUser, 0)
	if err != nil {
		if errors.Is(err, ErrEmptyIdentity) {
			return mcp.NewToolResultError("text must not be empty"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to schedule item: %v", err)), nil
	}
	if res == Duplicate {
		return mcp.NewToolResultText(fmt.Sprintf("%q is already being learned; no new reminders created.", text)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Scheduled %d reminders for %q.", s.engine.SequenceLength(), text)), nil
}

func (s *Server) handleCancelItem(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := int64(req.GetFloat("user_id", 0))
	text := req.GetString("text", "")
	if userID == 0 {
		return mcp.NewToolResultError("user_id is required"), nil
	}
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	timers, ledgerRows := s.engine.CancelItemEverywhere(userID, text)
	return mcp.NewToolResultText(fmt.Sprintf(
		"Cancelled %d reminders for %q (%d backlog rows updated).", timers, text, ledgerRows)), nil
}

func (s *Server) handleEnrollPack(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := int64(req.GetFloat("user_id", 0))
	packID := req.GetString("pack_id", "")
	wordsJSON := req.GetString("words", "")
	if userID == 0 || packID == "" {
		return mcp.NewToolResultError("user_id and pack_id are required"), nil
	}

	var words []string
	if err := json.Unmarshal([]byte(wordsJSON), &words); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid words array: %v", err)), nil
	}

	summary, err := s.engine.Enroll(userID, packID, words)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyPack):
			return mcp.NewToolResultError("pack has no candidates"), nil
		case errors.Is(err, ErrPackAlreadyActive):
			return mcp.NewToolResultError("pack enrollment is already in progress"), nil
		case errors.Is(err, ErrPackAlreadyCompleted):
			return mcp.NewToolResultError("pack is already completed"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to enroll: %v", err)), nil
	}

	output, _ := json.MarshalIndent(summary, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleCancelCandidate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := int64(req.GetFloat("user_id", 0))
	packID := req.GetString("pack_id", "")
	text := req.GetString("text", "")
	if userID == 0 || packID == "" || text == "" {
		return mcp.NewToolResultError("user_id, pack_id and text are required"), nil
	}

	found, err := s.engine.CancelCandidate(userID, packID, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to cancel candidate: %v", err)), nil
	}
	if !found {
		return mcp.NewToolResultText(fmt.Sprintf("%q is not in pack %s.", text, packID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%q marked cancelled in pack %s.", text, packID)), nil
}

func (s *Server) handleSnapshot(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := int64(req.GetFloat("user_id", 0))
	if userID == 0 {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	ordering := OrderLexical
	if req.GetString("ordering", "") == "ease" {
		ordering = OrderEase
	}
	reverse := req.GetBool("reverse", false)
	page := int(req.GetFloat("page", 1))
	pageSize := int(req.GetFloat("page_size", 25))

	items, err := s.engine.Snapshot(userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build snapshot: %v", err)), nil
	}
	pageItems, pageNum, totalPages := Arrange(items, ordering, reverse, pageSize, page)

	if len(pageItems) == 0 {
		return mcp.NewToolResultText("Dictionary is empty."), nil
	}

	payload := struct {
		Page       int        `json:"page"`
		TotalPages int        `json:"total_pages"`
		Items      []ViewItem `json:"items"`
	}{pageNum, totalPages, pageItems}

	output, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleRandomWord(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := int64(req.GetFloat("user_id", 0))
	if userID == 0 {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	word, ok := s.engine.RandomActive(userID)
	if !ok {
		return mcp.NewToolResultText("The active learning set is empty."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("🎲 Random word: %s", word)), nil
}
