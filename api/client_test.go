package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFieldsSendsTokenHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token secret-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "/api/database/fields/table/42/", r.URL.Path)
		fmt.Fprint(w, `[
			{"id": 1, "table_id": 42, "name": "Name", "type": "text", "primary": true},
			{"id": 2, "table_id": 42, "name": "Status", "type": "single_select",
			 "select_options": [{"id": 10, "value": "Open", "color": "blue"}]},
			{"id": 3, "table_id": 42, "name": "Created", "type": "created_on", "read_only": true}
		]`)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-token", nil)
	fields, err := c.ListFields(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, fields, 3)

	assert.Equal(t, int64(1), fields[0].ID)
	assert.True(t, fields[0].Primary)
	assert.Equal(t, "Status", fields[1].Name)
	require.Len(t, fields[1].SelectOptions, 1)
	assert.Equal(t, "Open", fields[1].SelectOptions[0].Value)
	assert.True(t, fields[2].ReadOnly)
}

func TestListRowsFollowsPagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"count": 3, "next": null, "previous": null,
				"results": [{"id": 3, "field_1": "c"}]}`)
			return
		}
		fmt.Fprintf(w, `{"count": 3, "next": %q, "previous": null,
			"results": [{"id": 1, "field_1": "a"}, {"id": 2, "field_1": "b"}]}`,
			srv.URL+"/api/database/rows/table/42/?page=2")
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", nil)
	rows, err := c.ListRows(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "a", rows[0]["field_1"])
	assert.Equal(t, "b", rows[1]["field_1"])
	assert.Equal(t, "c", rows[2]["field_1"])
}

func TestCreateRowPostsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/database/rows/table/7/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "hello", payload["field_1"])

		fmt.Fprint(w, `{"id": 99, "field_1": "hello"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", nil)
	row, err := c.CreateRow(context.Background(), 7, map[string]any{"field_1": "hello"})
	require.NoError(t, err)
	assert.Equal(t, float64(99), row["id"])
}

func TestBatchEndpointsWrapItems(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		assert.Equal(t, "/api/database/rows/table/7/batch/", r.URL.Path)

		var payload struct {
			Items []map[string]any `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Items, 2)

		fmt.Fprint(w, `{"items": [{"id": 1}, {"id": 2}]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", nil)
	payloads := []map[string]any{{"field_1": "a"}, {"field_1": "b"}}

	created, err := c.CreateRows(context.Background(), 7, payloads)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Len(t, created, 2)

	updated, err := c.UpdateRows(context.Background(), 7, payloads)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Len(t, updated, 2)
}

func TestStatusCodeMapsToErrorKind(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrAuth},
		{"forbidden", http.StatusForbidden, ErrAuth},
		{"missing table", http.StatusNotFound, ErrNotFound},
		{"bad gateway", http.StatusBadGateway, ErrBackendUnavailable},
		{"service unavailable", http.StatusServiceUnavailable, ErrBackendUnavailable},
		{"gateway timeout", http.StatusGatewayTimeout, ErrBackendUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tc.status)
			}))
			defer srv.Close()

			c := New(srv.URL, "tok", nil)
			_, err := c.ListFields(context.Background(), 1)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, "nope", apiErr.Body)
		})
	}
}

func TestUnmappedStatusStaysGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", nil)
	_, err := c.ListRows(context.Background(), 1)
	require.Error(t, err)

	assert.NotErrorIs(t, err, ErrAuth)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrBackendUnavailable)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestListRowsRejectsBodyWithoutResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count": 0, "next": null, "previous": null}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", nil)
	_, err := c.ListRows(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no results")
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL, "tok", nil)
	_, err := c.ListFields(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	c := New("http://grid.local/", "tok", nil)
	assert.Equal(t, "http://grid.local", c.BaseURL())
}

func TestPageSizeParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "250", r.URL.Query().Get("size"))
		fmt.Fprint(w, `{"count": 0, "next": null, "previous": null, "results": []}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", &Options{PageSize: 250})
	rows, err := c.ListRows(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
