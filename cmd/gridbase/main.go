// Command gridbase is the command line interface for the gridbase
// client library and sync engine. It talks to a grid backend over its
// REST API, moves table data in and out of local files and mirror
// databases, and can run as a long-lived daemon or MCP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gridbase"
	"gridbase/internal/secret"
	"gridbase/internal/service"
	"gridbase/internal/storage"
	"gridbase/logger"
)

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "fields":
		err = cmdFields(args)
	case "pull":
		err = cmdPull(args)
	case "push":
		err = cmdPush(args)
	case "mirror":
		err = cmdMirror(args)
	case "target":
		err = cmdTarget(args)
	case "job":
		err = cmdJob(args)
	case "serve":
		err = cmdServe(args)
	case "mcp":
		err = cmdMCP(args)
	case "help", "-h", "-help", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("gridbase %s: %v", cmd, err)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: gridbase <command> [flags]

Commands:
  fields   list the fields of a table
  pull     download a table as CSV or JSON
  push     upload a CSV or JSON file into a table
  mirror   copy a table into a mirror database once
  target   manage mirror targets (add, list, rm, test)
  job      manage sync jobs (add, list, rm, run, logs)
  serve    run scheduled and file-watch jobs until interrupted
  mcp      serve the MCP stdio interface for AI agents

Run "gridbase <command> -h" for command flags.

The API token is taken from -token, -token-file, or the
GRIDBASE_TOKEN environment variable, in that order. The backend
address is taken from -url or GRIDBASE_URL.
`)
}

// ── Shared flag groups ─────────────────────────────────────

// clientFlags are the backend connection flags shared by every
// command that talks to the grid API.
type clientFlags struct {
	url       *string
	token     *string
	tokenFile *string
	verbose   *bool
}

func addClientFlags(fs *flag.FlagSet) *clientFlags {
	return &clientFlags{
		url:       fs.String("url", os.Getenv("GRIDBASE_URL"), "backend base URL (or GRIDBASE_URL)"),
		token:     fs.String("token", "", "API token (or GRIDBASE_TOKEN)"),
		tokenFile: fs.String("token-file", "", "file containing the API token"),
		verbose:   fs.Bool("v", false, "verbose logging"),
	}
}

func (f *clientFlags) logger() logger.Interface {
	level := logger.Warn
	if *f.verbose {
		level = logger.Debug
	}
	return logger.New(logger.Config{Level: level})
}

// client resolves the token and builds a backend client.
func (f *clientFlags) client() (*gridbase.Client, error) {
	token := *f.token
	if token == "" && *f.tokenFile != "" {
		t, err := gridbase.TokenFromFile(*f.tokenFile)
		if err != nil {
			return nil, err
		}
		token = t
	}
	if token == "" {
		token = os.Getenv("GRIDBASE_TOKEN")
	}
	if *f.url == "" {
		return nil, fmt.Errorf("backend URL is required (-url or GRIDBASE_URL)")
	}
	if token == "" {
		return nil, fmt.Errorf("API token is required (-token, -token-file or GRIDBASE_TOKEN)")
	}
	return gridbase.New(*f.url, token, &gridbase.Options{Logger: f.logger()})
}

// localFlags locate the machine-local state: the jobs database and
// the secret store holding target passwords.
type localFlags struct {
	data    *string
	secrets *string
}

func addLocalFlags(fs *flag.FlagSet) *localFlags {
	return &localFlags{
		data:    fs.String("data", defaultDataDir(), "directory for the local jobs database"),
		secrets: fs.String("secrets", "file", "secret store backend: file or env"),
	}
}

func defaultDataDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", "gridbase")
}

// localEnv bundles the opened local state for commands that need it.
type localEnv struct {
	db   *storage.DB
	sync *service.SyncService
}

func (e *localEnv) close() {
	e.sync.Stop()
	e.db.Close()
}

// openLocal opens the jobs database and builds a sync service over
// it. grid may be nil for commands that never reach the backend
// (target management, job listing).
func openLocal(lf *localFlags, grid service.GridClient, emitter service.EventEmitter, log logger.Interface) (*localEnv, error) {
	db, err := storage.New(filepath.Join(*lf.data, "gridbase.db"))
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	var secrets secret.Store
	switch *lf.secrets {
	case "file":
		secrets = secret.NewFileStore(filepath.Join(*lf.data, "secrets"))
	case "env":
		secrets = secret.NewEnvStore()
	default:
		db.Close()
		return nil, fmt.Errorf("unknown secret store %q (want file or env)", *lf.secrets)
	}

	sync := service.NewSyncService(
		storage.NewJobStore(db),
		storage.NewTargetStore(db),
		secrets,
		grid,
		emitter,
		log,
	)
	return &localEnv{db: db, sync: sync}, nil
}

// noopEmitter drops events. One-shot commands have nowhere to send
// them; the serve daemon uses a LogEmitter instead.
type noopEmitter struct{}

func (noopEmitter) Emit(_ context.Context, _ string, _ any) {}
