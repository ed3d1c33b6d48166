package gridbase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gridbase/api"
	"gridbase/cache"
	"gridbase/logger"
	"gridbase/schema"
)

// ── Client ──────────────────────────────────────────────────
// One Client talks to one backend with one token. Both are fixed at
// construction; there is no process-wide state. Field metadata is
// fetched per table, translated through the schema package in both
// directions, and cached between operations unless the caller opts
// out.

const defaultSchemaTTL = 5 * time.Minute

// Options configures a Client. nil means all defaults.
type Options struct {
	// HTTPClient overrides the transport used for backend calls.
	HTTPClient *http.Client

	// Logger receives decode warnings and cache trouble. Defaults to
	// logger.Nop.
	Logger logger.Interface

	// Cache holds serialized field listings between operations.
	// Defaults to a client-owned in-memory store.
	Cache cache.Store

	// SchemaTTL bounds how long a cached field listing is reused.
	// 0 keeps the 5 minute default.
	SchemaTTL time.Duration

	// AlwaysRefreshMetadata fetches field metadata on every operation
	// instead of consulting the cache. Slower, but immune to schema
	// edits happening elsewhere mid-session.
	AlwaysRefreshMetadata bool

	// IncludeReadOnly keeps read-only fields in fetched rows. By
	// default they are dropped, matching what a caller may write back.
	IncludeReadOnly bool

	// PageSize caps rows per listing page. 0 keeps the backend default.
	PageSize int
}

// backendClient is the slice of the api client the Client depends on.
type backendClient interface {
	ListFields(ctx context.Context, tableID int64) ([]api.Field, error)
	ListRows(ctx context.Context, tableID int64) ([]map[string]any, error)
	GetRow(ctx context.Context, tableID, rowID int64) (map[string]any, error)
	CreateRow(ctx context.Context, tableID int64, payload map[string]any) (map[string]any, error)
	UpdateRow(ctx context.Context, tableID, rowID int64, payload map[string]any) (map[string]any, error)
	CreateRows(ctx context.Context, tableID int64, payloads []map[string]any) ([]map[string]any, error)
	UpdateRows(ctx context.Context, tableID int64, payloads []map[string]any) ([]map[string]any, error)
}

// Client is a handle on one grid backend.
type Client struct {
	baseURL string
	token   string

	backend backendClient
	log     logger.Interface
	cache   cache.Store

	ownedCache      *cache.Memory
	schemaTTL       time.Duration
	alwaysRefresh   bool
	includeReadOnly bool
}

// New builds a client for the backend at baseURL. opts may be nil.
func New(baseURL, token string, opts *Options) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if token == "" {
		return nil, fmt.Errorf("token is required")
	}
	if opts == nil {
		opts = &Options{}
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop
	}
	ttl := opts.SchemaTTL
	if ttl == 0 {
		ttl = defaultSchemaTTL
	}

	c := &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		token:           token,
		log:             log,
		schemaTTL:       ttl,
		alwaysRefresh:   opts.AlwaysRefreshMetadata,
		includeReadOnly: opts.IncludeReadOnly,
	}
	c.backend = api.New(baseURL, token, &api.Options{
		HTTPClient: opts.HTTPClient,
		PageSize:   opts.PageSize,
	})
	c.cache = opts.Cache
	if c.cache == nil {
		owned := cache.NewMemory()
		c.cache = owned
		c.ownedCache = owned
	}
	return c, nil
}

// BaseURL returns the backend address the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// Close releases client-owned resources. A cache passed in through
// Options stays the caller's to shut down.
func (c *Client) Close() error {
	if c.ownedCache != nil {
		return c.ownedCache.Shutdown()
	}
	return nil
}

// ── Field metadata ──────────────────────────────────────────

func fieldsCacheKey(tableID int64) string {
	return fmt.Sprintf("gridbase:fields:%d", tableID)
}

// Fields returns the raw field metadata of a table, served from cache
// when allowed.
func (c *Client) Fields(ctx context.Context, tableID int64) ([]api.Field, error) {
	if !c.alwaysRefresh {
		if fields, ok := c.cachedFields(ctx, tableID); ok {
			return fields, nil
		}
	}
	fields, err := c.backend.ListFields(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if !c.alwaysRefresh {
		c.storeFields(ctx, tableID, fields)
	}
	return fields, nil
}

// FieldMap resolves the field listing of a table into the name and
// option translation tables the codec works with.
func (c *Client) FieldMap(ctx context.Context, tableID int64) (*schema.FieldMap, error) {
	fields, err := c.Fields(ctx, tableID)
	if err != nil {
		return nil, err
	}
	return schema.Build(tableID, fields)
}

// InvalidateFields drops the cached field listing of a table. Call it
// after the table's schema was edited elsewhere; the client never
// invalidates on its own.
func (c *Client) InvalidateFields(tableID int64) {
	if err := c.cache.Delete(context.Background(), fieldsCacheKey(tableID)); err != nil {
		c.log.Warn("schema cache invalidate failed", "table", tableID, "error", err)
	}
}

func (c *Client) cachedFields(ctx context.Context, tableID int64) ([]api.Field, bool) {
	data, err := c.cache.Get(ctx, fieldsCacheKey(tableID))
	if err != nil {
		c.log.Warn("schema cache read failed", "table", tableID, "error", err)
		return nil, false
	}
	if data == nil {
		return nil, false
	}
	var fields []api.Field
	if err := json.Unmarshal(data, &fields); err != nil {
		c.log.Warn("schema cache entry corrupt", "table", tableID, "error", err)
		return nil, false
	}
	return fields, true
}

func (c *Client) storeFields(ctx context.Context, tableID int64, fields []api.Field) {
	data, err := json.Marshal(fields)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, fieldsCacheKey(tableID), data, c.schemaTTL); err != nil {
		c.log.Warn("schema cache write failed", "table", tableID, "error", err)
	}
}

// ── Reads ───────────────────────────────────────────────────

// GetData fetches every row of a table keyed by row id, values in
// caller form. Read-only fields are dropped unless the client was
// built with IncludeReadOnly.
func (c *Client) GetData(ctx context.Context, tableID int64) (map[int64]schema.Row, error) {
	fm, err := c.FieldMap(ctx, tableID)
	if err != nil {
		return nil, err
	}
	raws, err := c.backend.ListRows(ctx, tableID)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]schema.Row, len(raws))
	for _, raw := range raws {
		row, warnings := schema.Decode(raw, fm)
		c.logWarnings(tableID, warnings)
		id := row.ID()
		if id == 0 {
			return nil, fmt.Errorf("table %d returned a row without an id", tableID)
		}
		if !c.includeReadOnly {
			dropReadOnly(row, fm)
		}
		out[id] = row
	}
	return out, nil
}

// GetRow fetches one row in caller form.
func (c *Client) GetRow(ctx context.Context, tableID, rowID int64) (schema.Row, error) {
	fm, err := c.FieldMap(ctx, tableID)
	if err != nil {
		return nil, err
	}
	raw, err := c.backend.GetRow(ctx, tableID, rowID)
	if err != nil {
		return nil, err
	}
	row, warnings := schema.Decode(raw, fm)
	c.logWarnings(tableID, warnings)
	if !c.includeReadOnly {
		dropReadOnly(row, fm)
	}
	return row, nil
}

// ── Writes ──────────────────────────────────────────────────

// AddData writes one row. rowID 0 creates the row and returns the
// assigned id; a non-zero rowID updates that row.
func (c *Client) AddData(ctx context.Context, tableID int64, row schema.Row, rowID int64) (int64, error) {
	fm, err := c.FieldMap(ctx, tableID)
	if err != nil {
		return 0, err
	}
	payload, err := schema.Encode(row, fm)
	if err != nil {
		return 0, err
	}
	// The route carries the id for updates; never send it in the body.
	delete(payload, "id")

	if rowID != 0 {
		if _, err := c.backend.UpdateRow(ctx, tableID, rowID, payload); err != nil {
			return 0, err
		}
		return rowID, nil
	}

	stored, err := c.backend.CreateRow(ctx, tableID, payload)
	if err != nil {
		return 0, err
	}
	id := schema.Row(stored).ID()
	if id == 0 {
		return 0, fmt.Errorf("backend returned a created row without an id")
	}
	return id, nil
}

// ── Helpers ─────────────────────────────────────────────────

func (c *Client) logWarnings(tableID int64, warnings []schema.Warning) {
	for _, w := range warnings {
		c.log.Warn("unresolved row value",
			"table", tableID, "row", w.RowID, "field", w.Field, "reason", w.Reason)
	}
}

func dropReadOnly(row schema.Row, fm *schema.FieldMap) {
	for _, f := range fm.Fields() {
		if f.ReadOnly {
			delete(row, f.Name)
		}
	}
}
