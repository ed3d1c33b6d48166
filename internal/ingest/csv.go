package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gridbase/schema"
)

// ── CSV ingest ──────────────────────────────────────────────
// Reads push-ready rows from a local CSV file. Cell values are
// inferred as number, bool, or string; an "id" column feeds the
// reserved row id so existing rows get updated instead of duplicated.

// ReadCSV parses the file at path into rows keyed by column name.
// A zero delimiter means comma. Without a header the columns are
// named col_1, col_2, and so on.
func ReadCSV(path string, delimiter rune, hasHeader bool) ([]schema.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv file")
	}

	var headers []string
	var cells [][]string
	if hasHeader {
		headers = records[0]
		cells = records[1:]
	} else {
		// Generate column names: col_1, col_2, ...
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("col_%d", i+1)
		}
		cells = records
	}

	rows := make([]schema.Row, 0, len(cells))
	for i, rec := range cells {
		row := make(schema.Row, len(headers))
		for j, h := range headers {
			if j >= len(rec) {
				continue
			}
			if h == "id" {
				id, err := parseRowID(rec[j])
				if err != nil {
					return nil, fmt.Errorf("row %d: %w", i+1, err)
				}
				if id != 0 {
					row["id"] = id
				}
				continue
			}
			row[h] = inferValue(rec[j])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseRowID reads an id cell. Empty means "create a new row".
func parseRowID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// inferValue tries to parse a cell as a number or bool.
func inferValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// Try number.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	// Try bool.
	switch strings.ToLower(s) {
	case "true", "yes":
		return true
	case "false", "no":
		return false
	}

	return s
}
