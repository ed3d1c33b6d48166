package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	// ── gridbase://jobs ────────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"gridbase://jobs",
		"Sync Jobs",
		mcp.WithMIMEType("application/json"),
	), s.handleJobsResource)

	// ── gridbase://targets ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"gridbase://targets",
		"Mirror Targets",
		mcp.WithMIMEType("application/json"),
	), s.handleTargetsResource)

	// ── gridbase://job/{jobId}/logs ────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"gridbase://job/{jobId}/logs",
			"Run Logs of a Job",
		),
		s.handleJobLogsResource,
	)
}

func (s *Server) handleJobsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jobs, err := s.sync.ListJobs()
	if err != nil {
		return nil, err
	}
	return jsonResource("gridbase://jobs", jobs)
}

func (s *Server) handleTargetsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	targets, err := s.sync.ListTargets()
	if err != nil {
		return nil, err
	}
	return jsonResource("gridbase://targets", targets)
}

func (s *Server) handleJobLogsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	jobID := extractJobIDFromURI(uri)
	if jobID == "" {
		return nil, fmt.Errorf("could not extract jobId from URI: %s", uri)
	}

	logs, err := s.sync.ListRunLogs(jobID)
	if err != nil {
		return nil, err
	}
	return jsonResource(uri, logs)
}

// extractJobIDFromURI extracts the job ID from "gridbase://job/{id}/logs".
func extractJobIDFromURI(uri string) string {
	middle, ok := strings.CutPrefix(uri, "gridbase://job/")
	if !ok {
		return ""
	}
	jobID, ok := strings.CutSuffix(middle, "/logs")
	if !ok || strings.Contains(jobID, "/") {
		return ""
	}
	return jobID
}

// jsonResource wraps v as a single JSON resource content.
func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := marshalIndentJSON(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
