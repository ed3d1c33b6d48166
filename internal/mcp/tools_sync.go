package mcpserver

import (
	"context"
	"fmt"

	"gridbase/internal/domain"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerSyncTools() {
	s.mcp.AddTool(mcp.NewTool("list_sync_jobs",
		mcp.WithDescription("List configured sync jobs with their last run status and whether they are currently running"),
	), s.handleListSyncJobs)

	s.mcp.AddTool(mcp.NewTool("run_sync_job",
		mcp.WithDescription("🛑 DESTRUCTIVE: Execute a sync job now. Mirror jobs in replace mode drop and rewrite the target table."),
		mcp.WithString("jobId", mcp.Description("Sync job ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRunSyncJob)

	s.mcp.AddTool(mcp.NewTool("list_run_logs",
		mcp.WithDescription("List the most recent run logs for a sync job"),
		mcp.WithString("jobId", mcp.Description("Sync job ID"), mcp.Required()),
	), s.handleListRunLogs)
}

func (s *Server) handleListSyncJobs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobs, err := s.sync.ListJobs()
	if err != nil {
		return nil, fmt.Errorf("list sync jobs: %w", err)
	}

	running := make(map[string]bool)
	for _, id := range s.sync.RunningJobs() {
		running[id] = true
	}

	type jobStatus struct {
		domain.SyncJob
		Running bool `json:"running"`
	}
	out := make([]jobStatus, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, jobStatus{SyncJob: j, Running: running[j.ID]})
	}
	return jsonResult(out)
}

func (s *Server) handleRunSyncJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID := req.GetString("jobId", "")
	if jobID == "" {
		return nil, fmt.Errorf("jobId is required")
	}

	// A failed run still produced a log; the error text is inside it.
	runLog, err := s.sync.RunJob(ctx, jobID)
	if runLog != nil {
		return jsonResult(runLog)
	}
	return nil, err
}

func (s *Server) handleListRunLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID := req.GetString("jobId", "")
	if jobID == "" {
		return nil, fmt.Errorf("jobId is required")
	}
	logs, err := s.sync.ListRunLogs(jobID)
	if err != nil {
		return nil, fmt.Errorf("list run logs: %w", err)
	}
	return jsonResult(logs)
}

func boolPtr(v bool) *bool { return &v }
