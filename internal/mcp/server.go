// Package mcp exposes digest runs as MCP tools over stdio.
package mcp

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DevRickLin/daily-digest/internal/biz/usecase"
	"github.com/DevRickLin/daily-digest/internal/service"
)

// DigestMCPServer serves run_daily_digest and preview_daily_digest
type DigestMCPServer struct {
	server *mcp.Server
	runner service.DigestRunner
	logger *log.Logger
}

// NewServer creates the MCP server and registers its tools
func NewServer(runner service.DigestRunner, version string, logger *log.Logger) *DigestMCPServer {
	s := &DigestMCPServer{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "daily-digest",
			Version: version,
		}, nil),
		runner: runner,
		logger: logger.WithPrefix("mcp"),
	}
	s.registerTools()
	return s
}

func (s *DigestMCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "run_daily_digest",
		Description: "Build today's group chat report, save it and deliver it to the configured targets. Optionally include an AI brief.",
	}, s.handleRun)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "preview_daily_digest",
		Description: "Build a group chat report without AI, delivery or saving. Use date (YYYY-MM-DD) for a past civil day.",
	}, s.handlePreview)
}

// RunInput is the input for run_daily_digest
type RunInput struct {
	WithAI  *bool  `json:"with_ai,omitempty" jsonschema:"Include an AI brief (default true)"`
	Deliver *bool  `json:"deliver,omitempty" jsonschema:"Send the report to delivery targets (default true)"`
	Date    string `json:"date,omitempty" jsonschema:"Civil day as YYYY-MM-DD; empty means today"`
}

// PreviewInput is the input for preview_daily_digest
type PreviewInput struct {
	Date string `json:"date,omitempty" jsonschema:"Civil day as YYYY-MM-DD; empty means today"`
}

// TargetOutput is one delivery outcome
type TargetOutput struct {
	Target    string `json:"target"`
	PartsSent int    `json:"parts_sent"`
	Parts     int    `json:"parts"`
	Error     string `json:"error,omitempty"`
}

// DigestOutput describes a finished run
type DigestOutput struct {
	Success      bool           `json:"success"`
	Error        string         `json:"error,omitempty"`
	RunID        string         `json:"run_id,omitempty"`
	Date         string         `json:"date,omitempty"`
	Messages     int            `json:"messages"`
	Scanned      int            `json:"scanned"`
	StopReason   string         `json:"stop_reason,omitempty"`
	Summary      string         `json:"summary,omitempty"`
	Report       string         `json:"report,omitempty"`
	ArtifactPath string         `json:"artifact_path,omitempty"`
	Deliveries   []TargetOutput `json:"deliveries,omitempty"`
}

func (s *DigestMCPServer) handleRun(ctx context.Context, req *mcp.CallToolRequest, input RunInput) (*mcp.CallToolResult, DigestOutput, error) {
	opts := usecase.RunOptions{
		EnableAI: boolOr(input.WithAI, true),
		Deliver:  boolOr(input.Deliver, true),
		Save:     true,
		Date:     input.Date,
	}
	return nil, s.run(ctx, opts), nil
}

func (s *DigestMCPServer) handlePreview(ctx context.Context, req *mcp.CallToolRequest, input PreviewInput) (*mcp.CallToolResult, DigestOutput, error) {
	return nil, s.run(ctx, usecase.RunOptions{Date: input.Date}), nil
}

func (s *DigestMCPServer) run(ctx context.Context, opts usecase.RunOptions) DigestOutput {
	res, err := s.runner.Run(ctx, opts)
	if err != nil {
		s.logger.Warn("tool run failed", "err", err)
		return DigestOutput{Success: false, Error: err.Error()}
	}
	return toOutput(res)
}

func toOutput(res *usecase.RunResult) DigestOutput {
	out := DigestOutput{
		Success:      true,
		RunID:        res.RunID,
		Date:         res.Window.Label,
		Messages:     len(res.Accepted),
		Scanned:      res.Diagnostics.Scanned,
		StopReason:   res.Diagnostics.StopReason(),
		Summary:      res.Summary.Kind.String(),
		Report:       res.Report,
		ArtifactPath: res.ArtifactPath,
	}
	for _, d := range res.Deliveries {
		t := TargetOutput{Target: d.Target.String(), PartsSent: d.PartsSent, Parts: d.Parts}
		if d.Err != nil {
			t.Error = d.Err.Error()
		}
		out.Deliveries = append(out.Deliveries, t)
	}
	return out
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// Run starts the MCP server with stdio transport
func (s *DigestMCPServer) Run(ctx context.Context) error {
	s.logger.Info("serving tools over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
