package roblesvc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/aula/core"
	logsvc "github.com/trezcool/aula/services/logger"
	inmemprefs "github.com/trezcool/aula/storage/prefs/inmem"
)

type recordedRequest struct {
	method string
	path   string
	query  map[string]string
	body   map[string]interface{}
}

// newTestDatabase serves every call with status and body, recording what it receives.
func newTestDatabase(t *testing.T, status int, body string) (*Database, func() []recordedRequest) {
	t.Helper()
	var (
		mutex sync.Mutex
		reqs  []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{method: r.Method, path: r.URL.Path, query: map[string]string{}}
		for k := range r.URL.Query() {
			rec.query[k] = r.URL.Query().Get(k)
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		mutex.Lock()
		reqs = append(reqs, rec)
		mutex.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	prefs := inmemprefs.NewPreferences()
	require.NoError(t, prefs.Store(context.Background(), core.PrefToken, "tok"))
	logger := logsvc.NewDiscardLogger()
	exec := NewExecutor(NewHTTPClient(0), prefs, &fakeRefresher{prefs: prefs}, logger)
	recorded := func() []recordedRequest {
		mutex.Lock()
		defer mutex.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
	return NewDatabase(srv.URL+"/proj/", exec, logger), recorded
}

func TestDatabase_Read(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantRows int
		wantErr  int
	}{
		{name: "list", status: 200, body: `[{"_id":"1"},{"_id":"2"}]`, wantRows: 2},
		{name: "empty list", status: 200, body: `[]`, wantRows: 0},
		{name: "object body is empty", status: 200, body: `{"data":[]}`, wantRows: 0},
		{name: "null body is empty", status: 200, body: `null`, wantRows: 0},
		{name: "no body is empty", status: 200, body: ``, wantRows: 0},
		{name: "server error", status: 500, body: `{"message":"boom"}`, wantErr: 500},
		{name: "forbidden", status: 403, body: ``, wantErr: 403},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, reqs := newTestDatabase(t, tt.status, tt.body)
			rows, err := db.Read(context.Background(), "courses", Eq("teacherId", "t1"))
			if tt.wantErr != 0 {
				assert.Equal(t, tt.wantErr, core.StatusCode(err), "Read() error = %v", err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, rows, tt.wantRows)

			require.Len(t, reqs(), 1)
			req := reqs()[0]
			assert.Equal(t, http.MethodGet, req.method)
			assert.Equal(t, "/proj/read", req.path)
			assert.Equal(t, map[string]string{"tableName": "courses", "teacherId": "t1"}, req.query)
		})
	}
}

func TestDatabase_Insert(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantID       string
		wantContract bool
		wantStatus   int
	}{
		{name: "inserted", status: 201, body: `{"inserted":[{"_id":"c1","name":"Math"}],"skipped":[]}`, wantID: "c1"},
		{name: "nothing inserted", status: 201, body: `{"inserted":[],"skipped":[{}]}`, wantContract: true},
		{name: "no inserted key", status: 201, body: `{}`, wantContract: true},
		{name: "garbage", status: 201, body: `oops`, wantContract: true},
		{name: "rejected", status: 400, body: `{"message":"bad"}`, wantStatus: 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, reqs := newTestDatabase(t, tt.status, tt.body)
			row, err := db.Insert(context.Background(), "courses", map[string]string{"name": "Math"})
			switch {
			case tt.wantContract:
				assert.True(t, errors.Is(err, core.ErrContractViolation), "Insert() error = %v", err)
				return
			case tt.wantStatus != 0:
				assert.Equal(t, tt.wantStatus, core.StatusCode(err))
				return
			}
			require.NoError(t, err)
			var fields map[string]string
			require.NoError(t, json.Unmarshal(row, &fields))
			assert.Equal(t, tt.wantID, fields["_id"])

			req := reqs()[0]
			assert.Equal(t, http.MethodPost, req.method)
			assert.Equal(t, "/proj/insert", req.path)
			assert.Equal(t, "courses", req.body["tableName"])
			assert.Equal(t, []interface{}{map[string]interface{}{"name": "Math"}}, req.body["records"])
		})
	}
}

func TestDatabase_UpdateDelete(t *testing.T) {
	ctx := context.Background()

	db, reqs := newTestDatabase(t, 200, `{}`)
	require.NoError(t, db.Update(ctx, "groups", "g1", map[string]string{"name": "A"}))
	require.NoError(t, db.Delete(ctx, "groups", "g1"))

	got := reqs()
	require.Len(t, got, 2)
	upd, del := got[0], got[1]
	assert.Equal(t, http.MethodPut, upd.method)
	assert.Equal(t, "/proj/update", upd.path)
	assert.Equal(t, map[string]interface{}{
		"tableName": "groups",
		"idColumn":  "_id",
		"idValue":   "g1",
		"updates":   map[string]interface{}{"name": "A"},
	}, upd.body)
	assert.Equal(t, http.MethodDelete, del.method)
	assert.Equal(t, "/proj/delete", del.path)
	assert.Equal(t, map[string]interface{}{"tableName": "groups", "idColumn": "_id", "idValue": "g1"}, del.body)

	db, _ = newTestDatabase(t, 404, `{"message":"Record not found"}`)
	err := db.Delete(ctx, "groups", "nope")
	assert.Equal(t, 404, core.StatusCode(err))
}
