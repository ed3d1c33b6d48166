package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("analyze_table",
		mcp.WithPromptDescription("Inspect a table's schema and data and summarize what it contains"),
		mcp.WithArgument("tableId",
			mcp.ArgumentDescription("Backend table ID"),
			mcp.RequiredArgument(),
		),
	), s.handleAnalyzeTablePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("import_data",
		mcp.WithPromptDescription("Guide through importing a batch of records into a table"),
		mcp.WithArgument("tableId",
			mcp.ArgumentDescription("Backend table ID to import into"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("description",
			mcp.ArgumentDescription("What the records are and where they come from"),
			mcp.RequiredArgument(),
		),
	), s.handleImportDataPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("refresh_mirror",
		mcp.WithPromptDescription("Run a mirror job and verify the copy landed"),
		mcp.WithArgument("jobName",
			mcp.ArgumentDescription("Name or ID of the sync job to refresh"),
			mcp.RequiredArgument(),
		),
	), s.handleRefreshMirrorPrompt)
}

func (s *Server) handleAnalyzeTablePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	tableID := req.Params.Arguments["tableId"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Analyze table %s", tableID),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Analyze table %s. Follow these steps:

1. Use get_fields to see the columns: note each field's type, which one is primary, and any select options
2. Use get_rows to fetch the data
3. Summarize: row count, what each column holds, value ranges for numbers and dates, and the distribution of select values
4. Point out data quality issues: empty cells, duplicated names, numbers stored as text

Keep the summary short and concrete.`, tableID),
				},
			},
		},
	}, nil
}

func (s *Server) handleImportDataPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	tableID := req.Params.Arguments["tableId"]
	description := req.Params.Arguments["description"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Import records into table %s", tableID),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Import the following records into table %s: %s. Follow these steps:

1. Use get_fields to learn the field names and types of the table
2. Map the incoming values onto those field names; single and multiple select values go by option label, link fields by row id
3. Build the rows as a JSON array and call add_rows; rows carrying an "id" update the existing row, rows without one are created
4. Check the createdIds/updatedIds in the result and verify with get_rows that the data landed

Do not invent field names; anything that has no matching field must be reported back, not silently dropped.`, tableID, description),
				},
			},
		},
	}, nil
}

func (s *Server) handleRefreshMirrorPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	jobName := req.Params.Arguments["jobName"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Refresh mirror job %s", jobName),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Refresh the mirror job "%s". Follow these steps:

1. Use list_sync_jobs to find the job by name or id and confirm it is a mirror job that is not already running
2. Run it with run_sync_job
3. Read the returned run log: rowsRead and rowsWritten should match; a "replace" mode job rewrites the whole target table
4. If the run failed, use list_run_logs to compare with earlier runs and report what changed

Report the final status with the row counts.`, jobName),
				},
			},
		},
	}, nil
}
