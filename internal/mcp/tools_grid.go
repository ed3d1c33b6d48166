package mcpserver

import (
	"context"
	"fmt"
	"sort"

	"gridbase/schema"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerGridTools() {
	s.mcp.AddTool(mcp.NewTool("get_fields",
		mcp.WithDescription("List the field definitions of a table: ids, names, types, and select options"),
		mcp.WithNumber("tableId", mcp.Description("Backend table ID"), mcp.Required()),
	), s.handleGetFields)

	s.mcp.AddTool(mcp.NewTool("get_rows",
		mcp.WithDescription("Fetch all rows of a table, keyed by field display names, ordered by row id"),
		mcp.WithNumber("tableId", mcp.Description("Backend table ID"), mcp.Required()),
	), s.handleGetRows)

	s.mcp.AddTool(mcp.NewTool("get_row",
		mcp.WithDescription("Fetch a single row by id, keyed by field display names"),
		mcp.WithNumber("tableId", mcp.Description("Backend table ID"), mcp.Required()),
		mcp.WithNumber("rowId", mcp.Description("Row ID"), mcp.Required()),
	), s.handleGetRow)

	s.mcp.AddTool(mcp.NewTool("add_row",
		mcp.WithDescription("Create a row, or update one when rowId is given. Values are keyed by field display names; select values use option labels."),
		mcp.WithNumber("tableId", mcp.Description("Backend table ID"), mcp.Required()),
		mcp.WithString("rowJSON", mcp.Description("Row values as a JSON object"), mcp.Required()),
		mcp.WithNumber("rowId", mcp.Description("Existing row ID to update (omit to create)")),
	), s.handleAddRow)

	s.mcp.AddTool(mcp.NewTool("add_rows",
		mcp.WithDescription(`Create or update many rows in one batch. Rows with an "id" key are updated, the rest created.`),
		mcp.WithNumber("tableId", mcp.Description("Backend table ID"), mcp.Required()),
		mcp.WithString("rowsJSON", mcp.Description("JSON array of row objects"), mcp.Required()),
	), s.handleAddRows)
}

func (s *Server) handleGetFields(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tableID, err := tableIDArg(req.GetArguments())
	if err != nil {
		return nil, err
	}
	fields, err := s.client.Fields(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("get fields: %w", err)
	}
	return jsonResult(fields)
}

func (s *Server) handleGetRows(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tableID, err := tableIDArg(req.GetArguments())
	if err != nil {
		return nil, err
	}
	data, err := s.client.GetData(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("get rows: %w", err)
	}

	rows := make([]schema.Row, 0, len(data))
	for _, row := range data {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID() < rows[j].ID() })
	return jsonResult(rows)
}

func (s *Server) handleGetRow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	tableID, err := tableIDArg(args)
	if err != nil {
		return nil, err
	}
	rowID, ok := args["rowId"].(float64)
	if !ok || rowID <= 0 {
		return nil, fmt.Errorf("rowId is required")
	}
	row, err := s.client.GetRow(ctx, tableID, int64(rowID))
	if err != nil {
		return nil, fmt.Errorf("get row: %w", err)
	}
	return jsonResult(row)
}

func (s *Server) handleAddRow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	tableID, err := tableIDArg(args)
	if err != nil {
		return nil, err
	}
	rowJSON := req.GetString("rowJSON", "")
	if rowJSON == "" {
		return nil, fmt.Errorf("rowJSON is required")
	}

	var row schema.Row
	if err := parseJSON(rowJSON, &row); err != nil {
		return nil, fmt.Errorf("parse rowJSON: %w", err)
	}
	var rowID int64
	if v, ok := args["rowId"].(float64); ok {
		rowID = int64(v)
	}

	id, err := s.client.AddData(ctx, tableID, row, rowID)
	if err != nil {
		return nil, fmt.Errorf("add row: %w", err)
	}
	return jsonResult(map[string]int64{"id": id})
}

func (s *Server) handleAddRows(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	tableID, err := tableIDArg(args)
	if err != nil {
		return nil, err
	}
	rowsJSON := req.GetString("rowsJSON", "")
	if rowsJSON == "" {
		return nil, fmt.Errorf("rowsJSON is required")
	}

	var rows []schema.Row
	if err := parseJSON(rowsJSON, &rows); err != nil {
		return nil, fmt.Errorf("parse rowsJSON: %w", err)
	}

	res, err := s.client.AddDataBatch(ctx, tableID, rows)
	if res == nil {
		return nil, err
	}

	// A partial failure still reports which group landed; the error
	// text rides along instead of masking it.
	out := map[string]any{
		"createdIds": res.CreatedIDs,
		"updatedIds": res.UpdatedIDs,
	}
	if err != nil {
		out["error"] = err.Error()
	}
	return jsonResult(out)
}
