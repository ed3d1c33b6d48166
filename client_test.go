package gridbase

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridbase/api"
	"gridbase/logger"
	"gridbase/schema"
)

// The api client must keep satisfying the backend surface.
var _ backendClient = (*api.Client)(nil)

// fakeBackend records calls and plays back canned responses.
type fakeBackend struct {
	fields     []api.Field
	fieldsErr  error
	fieldCalls int

	rows    []map[string]any
	rowsErr error
	row     map[string]any

	createRowPayloads []map[string]any
	updateRowPayloads []map[string]any
	updateRowIDs      []int64

	createBatches [][]map[string]any
	updateBatches [][]map[string]any
	createRowsErr error
	updateRowsErr error

	nextID int64
}

func (f *fakeBackend) ListFields(_ context.Context, _ int64) ([]api.Field, error) {
	f.fieldCalls++
	if f.fieldsErr != nil {
		return nil, f.fieldsErr
	}
	return f.fields, nil
}

func (f *fakeBackend) ListRows(_ context.Context, _ int64) ([]map[string]any, error) {
	if f.rowsErr != nil {
		return nil, f.rowsErr
	}
	return f.rows, nil
}

func (f *fakeBackend) GetRow(_ context.Context, _, _ int64) (map[string]any, error) {
	return f.row, nil
}

func (f *fakeBackend) CreateRow(_ context.Context, _ int64, payload map[string]any) (map[string]any, error) {
	f.createRowPayloads = append(f.createRowPayloads, payload)
	f.nextID++
	out := map[string]any{"id": float64(f.nextID)}
	for k, v := range payload {
		out[k] = v
	}
	return out, nil
}

func (f *fakeBackend) UpdateRow(_ context.Context, _ int64, rowID int64, payload map[string]any) (map[string]any, error) {
	f.updateRowPayloads = append(f.updateRowPayloads, payload)
	f.updateRowIDs = append(f.updateRowIDs, rowID)
	out := map[string]any{"id": float64(rowID)}
	for k, v := range payload {
		out[k] = v
	}
	return out, nil
}

func (f *fakeBackend) CreateRows(_ context.Context, _ int64, payloads []map[string]any) ([]map[string]any, error) {
	if f.createRowsErr != nil {
		return nil, f.createRowsErr
	}
	f.createBatches = append(f.createBatches, payloads)
	out := make([]map[string]any, len(payloads))
	for i := range payloads {
		f.nextID++
		out[i] = map[string]any{"id": float64(f.nextID)}
	}
	return out, nil
}

func (f *fakeBackend) UpdateRows(_ context.Context, _ int64, payloads []map[string]any) ([]map[string]any, error) {
	if f.updateRowsErr != nil {
		return nil, f.updateRowsErr
	}
	f.updateBatches = append(f.updateBatches, payloads)
	out := make([]map[string]any, len(payloads))
	for i, p := range payloads {
		out[i] = map[string]any{"id": p["id"]}
	}
	return out, nil
}

func testFields() []api.Field {
	return []api.Field{
		{ID: 1, Name: "Name", Type: "text", Primary: true},
		{ID: 2, Name: "Status", Type: "single_select", SelectOptions: []api.SelectOption{
			{ID: 10, Value: "Open"},
			{ID: 11, Value: "Done"},
		}},
		{ID: 5, Name: "Created", Type: "created_on", ReadOnly: true},
	}
}

func newTestClient(t *testing.T, fake *fakeBackend, opts *Options) *Client {
	t.Helper()
	c, err := New("http://backend.test", "tok", opts)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	c.backend = fake
	return c
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New("", "tok", nil)
	require.Error(t, err)

	_, err = New("http://backend.test", "", nil)
	require.Error(t, err)
}

func TestGetDataDecodesAndKeysByID(t *testing.T) {
	fake := &fakeBackend{
		fields: testFields(),
		rows: []map[string]any{
			{"id": float64(1), "order": "1.0", "field_1": "Alice", "field_2": float64(10), "field_5": "2024-01-01"},
			{"id": float64(2), "order": "2.0", "field_1": "Bob", "field_2": nil, "field_5": "2024-01-02"},
		},
	}
	c := newTestClient(t, fake, nil)

	data, err := c.GetData(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, data, 2)

	assert.Equal(t, "Alice", data[1]["Name"])
	assert.Equal(t, "Open", data[1]["Status"])
	assert.NotContains(t, data[1], "Created", "read-only fields drop by default")
	assert.NotContains(t, data[1], "order")
	assert.Nil(t, data[2]["Status"])
}

func TestGetDataIncludeReadOnly(t *testing.T) {
	fake := &fakeBackend{
		fields: testFields(),
		rows: []map[string]any{
			{"id": float64(1), "field_1": "Alice", "field_5": "2024-01-01"},
		},
	}
	c := newTestClient(t, fake, &Options{IncludeReadOnly: true})

	data, err := c.GetData(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", data[1]["Created"])
}

func TestGetDataRowWithoutIDFails(t *testing.T) {
	fake := &fakeBackend{
		fields: testFields(),
		rows:   []map[string]any{{"field_1": "ghost"}},
	}
	c := newTestClient(t, fake, nil)

	_, err := c.GetData(context.Background(), 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without an id")
}

func TestGetDataLogsDecodeWarnings(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewZerolog(zerolog.New(&buf), logger.Config{Level: logger.Warn})

	fake := &fakeBackend{
		fields: testFields(),
		rows: []map[string]any{
			{"id": float64(1), "field_1": "Alice", "field_2": float64(999)},
		},
	}
	c := newTestClient(t, fake, &Options{Logger: log})

	data, err := c.GetData(context.Background(), 42)
	require.NoError(t, err, "unknown options warn, they never fail the fetch")
	assert.Equal(t, float64(999), data[1]["Status"])

	out := buf.String()
	assert.Contains(t, out, "unresolved row value")
	assert.Contains(t, out, "999")
}

func TestGetRow(t *testing.T) {
	fake := &fakeBackend{
		fields: testFields(),
		row:    map[string]any{"id": float64(7), "field_1": "Alice", "field_2": float64(11)},
	}
	c := newTestClient(t, fake, nil)

	row, err := c.GetRow(context.Background(), 42, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), row.ID())
	assert.Equal(t, "Done", row["Status"])
}

func TestAddDataCreates(t *testing.T) {
	fake := &fakeBackend{fields: testFields()}
	c := newTestClient(t, fake, nil)

	id, err := c.AddData(context.Background(), 42, Row{"Name": "Carol", "Status": "Open"}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.Len(t, fake.createRowPayloads, 1)
	payload := fake.createRowPayloads[0]
	assert.Equal(t, "Carol", payload["field_1"])
	assert.Equal(t, int64(10), payload["field_2"])
	assert.NotContains(t, payload, "id")
}

func TestAddDataUpdates(t *testing.T) {
	fake := &fakeBackend{fields: testFields()}
	c := newTestClient(t, fake, nil)

	id, err := c.AddData(context.Background(), 42, Row{"Name": "Carol"}, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)

	assert.Empty(t, fake.createRowPayloads)
	require.Len(t, fake.updateRowPayloads, 1)
	assert.Equal(t, []int64{9}, fake.updateRowIDs)
	assert.NotContains(t, fake.updateRowPayloads[0], "id")
}

func TestAddDataUnknownFieldNoCall(t *testing.T) {
	fake := &fakeBackend{fields: testFields()}
	c := newTestClient(t, fake, nil)

	_, err := c.AddData(context.Background(), 42, Row{"Nmae": "typo"}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrUnknownField)
	assert.Empty(t, fake.createRowPayloads, "nothing may reach the backend")
}

func TestFieldsServedFromCache(t *testing.T) {
	fake := &fakeBackend{fields: testFields(), rows: []map[string]any{}}
	c := newTestClient(t, fake, nil)
	ctx := context.Background()

	_, err := c.GetData(ctx, 42)
	require.NoError(t, err)
	_, err = c.GetData(ctx, 42)
	require.NoError(t, err)

	assert.Equal(t, 1, fake.fieldCalls, "second fetch must reuse the cached listing")
}

func TestAlwaysRefreshMetadataBypassesCache(t *testing.T) {
	fake := &fakeBackend{fields: testFields(), rows: []map[string]any{}}
	c := newTestClient(t, fake, &Options{AlwaysRefreshMetadata: true})
	ctx := context.Background()

	_, err := c.GetData(ctx, 42)
	require.NoError(t, err)
	_, err = c.GetData(ctx, 42)
	require.NoError(t, err)

	assert.Equal(t, 2, fake.fieldCalls)
}

func TestInvalidateFieldsForcesRefetch(t *testing.T) {
	fake := &fakeBackend{fields: testFields(), rows: []map[string]any{}}
	c := newTestClient(t, fake, nil)
	ctx := context.Background()

	_, err := c.GetData(ctx, 42)
	require.NoError(t, err)

	c.InvalidateFields(42)

	_, err = c.GetData(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, fake.fieldCalls)
}

func TestSchemaTTLExpires(t *testing.T) {
	fake := &fakeBackend{fields: testFields(), rows: []map[string]any{}}
	c := newTestClient(t, fake, &Options{SchemaTTL: 10 * time.Millisecond})
	ctx := context.Background()

	_, err := c.GetData(ctx, 42)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, err = c.GetData(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, fake.fieldCalls)
}

func TestFieldMapSurfacesAmbiguity(t *testing.T) {
	fake := &fakeBackend{fields: []api.Field{
		{ID: 1, Name: "Amount", Type: "number"},
		{ID: 2, Name: "Amount", Type: "text"},
	}}
	c := newTestClient(t, fake, nil)

	_, err := c.FieldMap(context.Background(), 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrAmbiguousFieldName)
}
