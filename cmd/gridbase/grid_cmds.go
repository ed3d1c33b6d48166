package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"gridbase/internal/ingest"
	"gridbase/schema"
)

// ── fields ─────────────────────────────────────────────────

func cmdFields(args []string) error {
	fs := flag.NewFlagSet("fields", flag.ExitOnError)
	cf := addClientFlags(fs)
	tableID := fs.Int64("table", 0, "table id (required)")
	asJSON := fs.Bool("json", false, "print the raw field list as JSON")
	fs.Parse(args)

	if *tableID == 0 {
		fs.Usage()
		return fmt.Errorf("-table is required")
	}
	client, err := cf.client()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fields, err := client.Fields(ctx, *tableID)
	if err != nil {
		return err
	}

	if *asJSON {
		out, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tFLAGS\tOPTIONS")
	for _, f := range fields {
		var flags []string
		if f.Primary {
			flags = append(flags, "primary")
		}
		if f.ReadOnly {
			flags = append(flags, "read-only")
		}
		var opts []string
		for _, o := range f.SelectOptions {
			opts = append(opts, o.Value)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			f.ID, f.Name, f.Type, strings.Join(flags, ","), strings.Join(opts, ", "))
	}
	return w.Flush()
}

// ── pull ───────────────────────────────────────────────────

func cmdPull(args []string) error {
	fs := flag.NewFlagSet("pull", flag.ExitOnError)
	cf := addClientFlags(fs)
	tableID := fs.Int64("table", 0, "table id (required)")
	format := fs.String("format", "csv", "output format: csv or json")
	out := fs.String("out", "-", "output file, - for stdout")
	fs.Parse(args)

	if *tableID == 0 {
		fs.Usage()
		return fmt.Errorf("-table is required")
	}
	if *format != "csv" && *format != "json" {
		return fmt.Errorf("unknown format %q (want csv or json)", *format)
	}
	client, err := cf.client()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fm, err := client.FieldMap(ctx, *tableID)
	if err != nil {
		return err
	}
	data, err := client.GetData(ctx, *tableID)
	if err != nil {
		return err
	}
	rows := sortedRows(data)

	var w io.Writer = os.Stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if *format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	return writeCSV(w, fm, rows)
}

func sortedRows(data map[int64]schema.Row) []schema.Row {
	rows := make([]schema.Row, 0, len(data))
	for _, row := range data {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID() < rows[j].ID() })
	return rows
}

// writeCSV renders rows with an id column followed by the fields in
// backend order. Cells holding lists or nested values are serialized
// as JSON text.
func writeCSV(w io.Writer, fm *schema.FieldMap, rows []schema.Row) error {
	cw := csv.NewWriter(w)

	header := []string{"id"}
	for _, f := range fm.Fields() {
		header = append(header, f.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{strconv.FormatInt(row.ID(), 10)}
		for _, f := range fm.Fields() {
			record = append(record, formatCell(row[f.Name]))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		out, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(out)
	}
}

// ── push ───────────────────────────────────────────────────

func cmdPush(args []string) error {
	fs := flag.NewFlagSet("push", flag.ExitOnError)
	cf := addClientFlags(fs)
	tableID := fs.Int64("table", 0, "table id (required)")
	file := fs.String("file", "", "input file (required)")
	format := fs.String("format", "", "input format: csv or json (default from extension)")
	delimiter := fs.String("delimiter", ",", "csv field delimiter")
	header := fs.Bool("header", true, "csv input has a header row")
	jsonPath := fs.String("json-path", "", "dot path to the row array inside the JSON document")
	fs.Parse(args)

	if *tableID == 0 || *file == "" {
		fs.Usage()
		return fmt.Errorf("-table and -file are required")
	}
	client, err := cf.client()
	if err != nil {
		return err
	}
	defer client.Close()

	rows, err := readRows(*file, *format, *delimiter, *header, *jsonPath)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("nothing to push")
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	res, err := client.AddDataBatch(ctx, *tableID, rows)
	if res != nil {
		fmt.Printf("created %d rows, updated %d rows\n", len(res.CreatedIDs), len(res.UpdatedIDs))
	}
	return err
}

func readRows(path, format, delimiter string, header bool, jsonPath string) ([]schema.Row, error) {
	if format == "" {
		switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
		case "json":
			format = "json"
		default:
			format = "csv"
		}
	}
	switch format {
	case "csv":
		delim := ','
		if delimiter != "" {
			delim = []rune(delimiter)[0]
		}
		return ingest.ReadCSV(path, delim, header)
	case "json":
		return ingest.ReadJSON(path, jsonPath)
	default:
		return nil, fmt.Errorf("unknown format %q (want csv or json)", format)
	}
}
