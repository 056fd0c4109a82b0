// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes Alma note tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/almahq/alma/internal/apperr"
	"github.com/almahq/alma/internal/notes"
	"github.com/almahq/alma/internal/projects"
)

// Server wraps the MCP server with Alma tools.
type Server struct {
	mcp      *server.MCPServer
	svc      *notes.Service
	registry *projects.Registry
}

// New creates a new MCP server with all Alma tools registered.
func New(svc *notes.Service, registry *projects.Registry) *Server {
	s := &Server{svc: svc, registry: registry}

	s.mcp = server.NewMCPServer(
		"Alma",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note. The title is derived from the first content line."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content of the note")),
		mcp.WithString("project", mcp.Description("Project id (defaults to 'default')")),
		mcp.WithString("type", mcp.Description("Content type: note, idea, task, or reference")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note by id, including its backlinks."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id (UUID)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Replace a note's content and tags."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id (UUID)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New markdown content")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithString("project", mcp.Description("Move the note to this project id")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes, optionally filtered by project or tag."),
		mcp.WithString("project", mcp.Description("Filter by project id")),
		mcp.WithString("tag", mcp.Description("Filter by tag")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through note titles, content, and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find ids of notes that wiki-link to the given title."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("regenerate_indexes",
		mcp.WithDescription("Rebuild all index documents from the markdown files on disk. "+
			"Run after external edits or git pulls."),
	), s.regenerate)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	project := req.GetString("project", "")
	if project != "" && !s.registry.Exists(project) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown project: %s", project)), nil
	}

	note, err := s.svc.Create(ctx, content, project, req.GetString("type", ""), splitTags(req.GetString("tags", "")))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(note), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.Read(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	backlinks, _ := s.svc.Backlinks(ctx, note.Title)
	return jsonResult(map[string]any{
		"note":      note,
		"backlinks": backlinks,
	}), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.Update(ctx, id, content, splitTags(req.GetString("tags", "")), req.GetString("project", ""))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(note), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.List(ctx, notes.ListOptions{
		Project: req.GetString("project", ""),
		Tag:     req.GetString("tag", ""),
		Limit:   100,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(hits), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids, err := s.svc.Backlinks(ctx, title)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ids), nil
}

func (s *Server) regenerate(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.Regenerate(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}
