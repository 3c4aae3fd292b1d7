// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes team-digest tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/anurajdeol90/team-digest/internal/digest"
	"github.com/anurajdeol90/team-digest/internal/digestservice"
	"github.com/anurajdeol90/team-digest/internal/storage"
	"github.com/anurajdeol90/team-digest/internal/window"
)

const logFormatURI = "team-digest://log-format"

// Server wraps the MCP server with team-digest tools.
type Server struct {
	mcp      *server.MCPServer
	svc      *digestservice.Service
	agg      *digest.Aggregator
	store    storage.Provider
	defaults digestservice.Options
	now      func() time.Time
}

// New creates a new MCP server with all team-digest tools registered.
func New(svc *digestservice.Service, agg *digest.Aggregator, store storage.Provider, defaults digestservice.Options) *Server {
	s := &Server{svc: svc, agg: agg, store: store, defaults: defaults, now: time.Now}

	s.mcp = server.NewMCPServer(
		"Team Digest",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("build_digest",
		mcp.WithDescription("Build a digest from the daily logs in a date window. "+
			"Dates are YYYY-MM-DD or relative (today, yesterday, last monday). "+
			"Without dates the window is the seven days ending today."),
		mcp.WithString("start", mcp.Description("First day of the window")),
		mcp.WithString("end", mcp.Description("Last day of the window, inclusive")),
		mcp.WithString("mode", mcp.Description("Action grouping"),
			mcp.Enum(string(digest.ModeFlatLegacy), string(digest.ModeGroupByPriority), string(digest.ModeFlatByOwner))),
		mcp.WithBoolean("kpis", mcp.Description("Include the Executive KPIs block")),
		mcp.WithBoolean("owners", mcp.Description("Include the owner breakdown table")),
		mcp.WithString("format", mcp.Description("Output format"),
			mcp.Enum(digestservice.FormatMarkdown, digestservice.FormatJSON, digestservice.FormatHTML)),
		mcp.WithString("title", mcp.Description("Title override")),
	), s.buildDigest)

	s.mcp.AddTool(mcp.NewTool("diagnose_logs",
		mcp.WithDescription("Report, per log in a date window, which sections, bullets and priority tags the parser found."),
		mcp.WithString("start", mcp.Description("First day of the window")),
		mcp.WithString("end", mcp.Description("Last day of the window, inclusive")),
	), s.diagnoseLogs)

	s.mcp.AddTool(mcp.NewTool("list_logs",
		mcp.WithDescription("List the dated daily logs in the logs directory."),
	), s.listLogs)

	s.mcp.AddTool(mcp.NewTool("read_log",
		mcp.WithDescription("Read the raw Markdown of one daily log."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Day of the log (YYYY-MM-DD or relative)")),
	), s.readLog)

	s.mcp.AddTool(mcp.NewTool("get_log_format",
		mcp.WithDescription("Returns the daily log format the digest parser understands. "+
			"Call this before drafting a log."),
	), s.getLogFormat)

	// Resource: log format contract.
	s.mcp.AddResource(
		mcp.NewResource(logFormatURI, "Log Format Contract",
			mcp.WithResourceDescription("Daily Markdown log format consumed by the digest."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readLogFormatResource,
	)

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

func (s *Server) resolve(req mcp.CallToolRequest) (window.Range, error) {
	return window.Resolve(req.GetString("start", ""), req.GetString("end", ""), s.now())
}

func (s *Server) buildDigest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rng, err := s.resolve(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := s.defaults
	if m := req.GetString("mode", ""); m != "" {
		mode, err := digest.ParseMode(m)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		opts.Mode = mode
	}
	opts.EmitKPIs = req.GetBool("kpis", opts.EmitKPIs)
	opts.OwnerBreakdown = req.GetBool("owners", opts.OwnerBreakdown)
	opts.Format = req.GetString("format", opts.Format)
	opts.Title = req.GetString("title", opts.Title)

	d, err := s.svc.Build(ctx, rng, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(d.Body)), nil
}

func (s *Server) diagnoseLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rng, err := s.resolve(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	diags, err := s.svc.Diagnose(ctx, rng)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(digestservice.FormatDiagnosis(rng, diags)), nil
}

type logEntry struct {
	Date string `json:"date"`
	Path string `json:"path"`
}

func (s *Server) listLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logs, err := s.agg.Logs()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries := make([]logEntry, 0, len(logs))
	for _, l := range logs {
		entries = append(entries, logEntry{Date: l.Date.Format(digest.DateLayout), Path: l.Path})
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	day, err := window.ParseDate(raw, s.now())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	logs, err := s.agg.Match(day, day)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(logs) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no log for %s", day.Format(digest.DateLayout))), nil
	}
	data, err := s.store.Read(logs[0].Path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", logs[0].Path)), nil
	}
	return mcp.NewToolResultText(strings.TrimPrefix(string(data), "\ufeff")), nil
}

func (s *Server) getLogFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(LogFormatContract), nil
}

func (s *Server) readLogFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      logFormatURI,
			MIMEType: "text/markdown",
			Text:     LogFormatContract,
		},
	}, nil
}
