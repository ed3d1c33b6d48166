package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"gridbase/internal/domain"
	mcpserver "gridbase/internal/mcp"
	"gridbase/internal/service"
)

// ── mirror ─────────────────────────────────────────────────

func cmdMirror(args []string) error {
	fs := flag.NewFlagSet("mirror", flag.ExitOnError)
	cf := addClientFlags(fs)
	lf := addLocalFlags(fs)
	tableID := fs.Int64("table", 0, "table id (required)")
	targetRef := fs.String("target", "", "target id or name (required)")
	destTable := fs.String("dest-table", "", "destination table name (default table_<id>)")
	mode := fs.String("mode", string(domain.SyncModeReplace), "write mode: replace or append")
	fs.Parse(args)

	if *tableID == 0 || *targetRef == "" {
		fs.Usage()
		return fmt.Errorf("-table and -target are required")
	}
	client, err := cf.client()
	if err != nil {
		return err
	}
	defer client.Close()

	env, err := openLocal(lf, client, noopEmitter{}, cf.logger())
	if err != nil {
		return err
	}
	defer env.close()

	target, err := resolveTarget(env.sync, *targetRef)
	if err != nil {
		return err
	}
	table := *destTable
	if table == "" {
		table = fmt.Sprintf("table_%d", *tableID)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	read, written, err := env.sync.MirrorTable(ctx, *tableID, target.ID, table, domain.SyncMode(*mode))
	if err != nil {
		return err
	}
	fmt.Printf("mirrored %d rows into %s.%s (%d written)\n", read, target.Name, table, written)
	return nil
}

// resolveTarget accepts a target id or its name.
func resolveTarget(sync *service.SyncService, ref string) (*domain.MirrorTarget, error) {
	targets, err := sync.ListTargets()
	if err != nil {
		return nil, err
	}
	for i := range targets {
		if targets[i].ID == ref || targets[i].Name == ref {
			return &targets[i], nil
		}
	}
	return nil, fmt.Errorf("no target with id or name %q", ref)
}

// ── target ─────────────────────────────────────────────────

func cmdTarget(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: gridbase target <add|list|rm|test> [flags]")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "add":
		return cmdTargetAdd(rest)
	case "list":
		return cmdTargetList(rest)
	case "rm":
		return cmdTargetRm(rest)
	case "test":
		return cmdTargetTest(rest)
	default:
		return fmt.Errorf("unknown target subcommand %q (want add, list, rm or test)", sub)
	}
}

func cmdTargetAdd(args []string) error {
	fs := flag.NewFlagSet("target add", flag.ExitOnError)
	lf := addLocalFlags(fs)
	name := fs.String("name", "", "target name (required)")
	driver := fs.String("driver", "", "driver: sqlite, mysql, postgres or mongodb (required)")
	host := fs.String("host", "", "hostname, or file path for sqlite")
	port := fs.Int("port", 0, "port (0 uses the driver default)")
	database := fs.String("database", "", "database name (not used by sqlite)")
	user := fs.String("user", "", "username")
	password := fs.String("password", "", "password (stored in the secret store)")
	passwordFile := fs.String("password-file", "", "file containing the password")
	sslMode := fs.String("sslmode", "", "ssl mode (postgres: disable/require; mysql: require enables TLS)")
	fs.Parse(args)

	if *name == "" || *driver == "" {
		fs.Usage()
		return fmt.Errorf("-name and -driver are required")
	}

	pass := *password
	if pass == "" && *passwordFile != "" {
		data, err := os.ReadFile(*passwordFile)
		if err != nil {
			return fmt.Errorf("read password file: %w", err)
		}
		pass = strings.TrimSpace(string(data))
	}

	env, err := openLocal(lf, nil, noopEmitter{}, nil)
	if err != nil {
		return err
	}
	defer env.close()

	target := &domain.MirrorTarget{
		Name:     *name,
		Driver:   domain.Driver(*driver),
		Host:     *host,
		Port:     *port,
		Database: *database,
		Username: *user,
		SSLMode:  *sslMode,
	}
	if err := env.sync.CreateTarget(target, pass); err != nil {
		return err
	}
	fmt.Printf("target %s created (%s)\n", target.Name, target.ID)
	return nil
}

func cmdTargetList(args []string) error {
	fs := flag.NewFlagSet("target list", flag.ExitOnError)
	lf := addLocalFlags(fs)
	fs.Parse(args)

	env, err := openLocal(lf, nil, noopEmitter{}, nil)
	if err != nil {
		return err
	}
	defer env.close()

	targets, err := env.sync.ListTargets()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDRIVER\tHOST\tPORT\tDATABASE")
	for _, t := range targets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			t.ID, t.Name, t.Driver, t.Host, t.Port, t.Database)
	}
	return w.Flush()
}

func cmdTargetRm(args []string) error {
	fs := flag.NewFlagSet("target rm", flag.ExitOnError)
	lf := addLocalFlags(fs)
	ref := fs.String("id", "", "target id or name (required)")
	fs.Parse(args)

	if *ref == "" {
		fs.Usage()
		return fmt.Errorf("-id is required")
	}
	env, err := openLocal(lf, nil, noopEmitter{}, nil)
	if err != nil {
		return err
	}
	defer env.close()

	target, err := resolveTarget(env.sync, *ref)
	if err != nil {
		return err
	}
	if err := env.sync.DeleteTarget(target.ID); err != nil {
		return err
	}
	fmt.Printf("target %s removed\n", target.Name)
	return nil
}

func cmdTargetTest(args []string) error {
	fs := flag.NewFlagSet("target test", flag.ExitOnError)
	lf := addLocalFlags(fs)
	ref := fs.String("id", "", "target id or name (required)")
	fs.Parse(args)

	if *ref == "" {
		fs.Usage()
		return fmt.Errorf("-id is required")
	}
	env, err := openLocal(lf, nil, noopEmitter{}, nil)
	if err != nil {
		return err
	}
	defer env.close()

	target, err := resolveTarget(env.sync, *ref)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := env.sync.TestTarget(ctx, target.ID); err != nil {
		return err
	}
	fmt.Printf("target %s is reachable\n", target.Name)
	return nil
}

// ── job ────────────────────────────────────────────────────

func cmdJob(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: gridbase job <add|list|rm|run|logs> [flags]")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "add":
		return cmdJobAdd(rest)
	case "list":
		return cmdJobList(rest)
	case "rm":
		return cmdJobRm(rest)
	case "run":
		return cmdJobRun(rest)
	case "logs":
		return cmdJobLogs(rest)
	default:
		return fmt.Errorf("unknown job subcommand %q (want add, list, rm, run or logs)", sub)
	}
}

func cmdJobAdd(args []string) error {
	fs := flag.NewFlagSet("job add", flag.ExitOnError)
	lf := addLocalFlags(fs)
	name := fs.String("name", "", "job name (required)")
	kind := fs.String("kind", "", "job kind: mirror or push (required)")
	tableID := fs.Int64("table", 0, "table id (required)")
	targetRef := fs.String("target", "", "mirror target id or name")
	destTable := fs.String("dest-table", "", "mirror destination table name")
	mode := fs.String("mode", "", "mirror write mode: replace or append")
	file := fs.String("file", "", "push source file")
	format := fs.String("format", "", "push source format: csv or json")
	cron := fs.String("cron", "", "run on this cron schedule")
	watch := fs.String("watch", "", "run when this file changes")
	disabled := fs.Bool("disabled", false, "create the job disabled")
	fs.Parse(args)

	if *name == "" || *kind == "" || *tableID == 0 {
		fs.Usage()
		return fmt.Errorf("-name, -kind and -table are required")
	}
	if *cron != "" && *watch != "" {
		return fmt.Errorf("-cron and -watch are mutually exclusive")
	}

	env, err := openLocal(lf, nil, noopEmitter{}, nil)
	if err != nil {
		return err
	}
	defer env.close()

	job := &domain.SyncJob{
		Name:         *name,
		Kind:         domain.JobKind(*kind),
		TableID:      *tableID,
		TargetTable:  *destTable,
		SyncMode:     domain.SyncMode(*mode),
		SourcePath:   *file,
		SourceFormat: *format,
		Enabled:      !*disabled,
	}
	if *targetRef != "" {
		target, err := resolveTarget(env.sync, *targetRef)
		if err != nil {
			return err
		}
		job.TargetID = target.ID
	}
	switch {
	case *cron != "":
		job.TriggerType = domain.TriggerSchedule
		job.TriggerConfig = *cron
	case *watch != "":
		job.TriggerType = domain.TriggerFileWatch
		job.TriggerConfig = *watch
	default:
		job.TriggerType = domain.TriggerManual
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := env.sync.CreateJob(ctx, job); err != nil {
		return err
	}
	fmt.Printf("job %s created (%s)\n", job.Name, job.ID)
	return nil
}

func cmdJobList(args []string) error {
	fs := flag.NewFlagSet("job list", flag.ExitOnError)
	lf := addLocalFlags(fs)
	fs.Parse(args)

	env, err := openLocal(lf, nil, noopEmitter{}, nil)
	if err != nil {
		return err
	}
	defer env.close()

	jobs, err := env.sync.ListJobs()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tKIND\tTABLE\tTRIGGER\tENABLED\tLAST STATUS")
	for _, j := range jobs {
		trigger := j.TriggerType
		if j.TriggerConfig != "" {
			trigger = fmt.Sprintf("%s (%s)", j.TriggerType, j.TriggerConfig)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%t\t%s\n",
			j.ID, j.Name, j.Kind, j.TableID, trigger, j.Enabled, j.LastStatus)
	}
	return w.Flush()
}

func cmdJobRm(args []string) error {
	fs := flag.NewFlagSet("job rm", flag.ExitOnError)
	lf := addLocalFlags(fs)
	id := fs.String("id", "", "job id (required)")
	fs.Parse(args)

	if *id == "" {
		fs.Usage()
		return fmt.Errorf("-id is required")
	}
	env, err := openLocal(lf, nil, noopEmitter{}, nil)
	if err != nil {
		return err
	}
	defer env.close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := env.sync.DeleteJob(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("job %s removed\n", *id)
	return nil
}

func cmdJobRun(args []string) error {
	fs := flag.NewFlagSet("job run", flag.ExitOnError)
	cf := addClientFlags(fs)
	lf := addLocalFlags(fs)
	id := fs.String("id", "", "job id (required)")
	fs.Parse(args)

	if *id == "" {
		fs.Usage()
		return fmt.Errorf("-id is required")
	}
	client, err := cf.client()
	if err != nil {
		return err
	}
	defer client.Close()

	env, err := openLocal(lf, client, noopEmitter{}, cf.logger())
	if err != nil {
		return err
	}
	defer env.close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runLog, err := env.sync.RunJob(ctx, *id)
	if runLog != nil {
		fmt.Printf("job %s: %s (read %d, written %d, took %s)\n",
			*id, runLog.Status, runLog.RowsRead, runLog.RowsWritten,
			runLog.FinishedAt.Sub(runLog.StartedAt).Round(time.Millisecond))
	}
	return err
}

func cmdJobLogs(args []string) error {
	fs := flag.NewFlagSet("job logs", flag.ExitOnError)
	lf := addLocalFlags(fs)
	id := fs.String("id", "", "job id (required)")
	fs.Parse(args)

	if *id == "" {
		fs.Usage()
		return fmt.Errorf("-id is required")
	}
	env, err := openLocal(lf, nil, noopEmitter{}, nil)
	if err != nil {
		return err
	}
	defer env.close()

	logs, err := env.sync.ListRunLogs(*id)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSTATUS\tREAD\tWRITTEN\tERROR")
	for _, l := range logs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			l.StartedAt.Format(time.RFC3339), l.Status, l.RowsRead, l.RowsWritten, l.Error)
	}
	return w.Flush()
}

// ── serve ──────────────────────────────────────────────────

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cf := addClientFlags(fs)
	lf := addLocalFlags(fs)
	fs.Parse(args)

	client, err := cf.client()
	if err != nil {
		return err
	}
	defer client.Close()

	appLog := cf.logger()
	env, err := openLocal(lf, client, &service.LogEmitter{Log: appLog}, appLog)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	env.sync.RestartWatchers(ctx)
	appLog.Info("serve: running", "data", *lf.data)

	<-ctx.Done()
	appLog.Info("serve: shutting down")

	// Give in-flight runs a window to finish before closing the store.
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer waitCancel()
	env.sync.WaitRunning(waitCtx)
	env.close()
	return nil
}

// ── mcp ────────────────────────────────────────────────────

func cmdMCP(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cf := addClientFlags(fs)
	lf := addLocalFlags(fs)
	fs.Parse(args)

	client, err := cf.client()
	if err != nil {
		return err
	}
	defer client.Close()

	appLog := cf.logger()
	env, err := openLocal(lf, client, noopEmitter{}, appLog)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Scheduled jobs keep running while the MCP session is open.
	env.sync.RestartWatchers(ctx)

	srv := mcpserver.New(mcpserver.Deps{Client: client, Sync: env.sync})
	appLog.Info("mcp: serving on stdio")
	serveErr := srv.ServeStdio()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer waitCancel()
	env.sync.WaitRunning(waitCtx)
	env.close()
	return serveErr
}
