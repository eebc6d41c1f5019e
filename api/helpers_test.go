package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/warp/finance-engine/api"
	"github.com/warp/finance-engine/finance"
	"github.com/warp/finance-engine/finance/store"
	"github.com/warp/finance-engine/logger"
)

var testToday = finance.NewDate(2025, 3, 20)

const userPath = "/api/users/u1"

type testAPI struct {
	t      *testing.T
	router http.Handler
	store  finance.Store
}

// newTestAPI serves a router over s (memory when nil) with the clock fixed
// at testToday.
func newTestAPI(t *testing.T, s finance.Store) *testAPI {
	t.Helper()
	if s == nil {
		s = store.NewMemory()
	}
	h := api.NewHandler(s, nil, logger.NewWithWriter(io.Discard))
	h.Now = func() time.Time { return testToday }
	return &testAPI{t: t, router: api.NewRouter(h), store: s}
}

// do sends body as JSON. A string body is sent verbatim.
func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var rdr io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// mustDo fails the test unless the response has the expected status.
func (a *testAPI) mustDo(status int, method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	rec := a.do(method, path, body)
	require.Equal(a.t, status, rec.Code, rec.Body.String())
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

func (a *testAPI) seedMarch() {
	a.mustDo(http.StatusCreated, http.MethodPost, userPath+"/categories", map[string]any{"id": "food", "name": "Food"})
	a.mustDo(http.StatusCreated, http.MethodPost, userPath+"/categories", map[string]any{"id": "groceries", "name": "Groceries", "parentId": "food"})
	a.mustDo(http.StatusCreated, http.MethodPost, userPath+"/categories", map[string]any{"id": "fun", "name": "Fun"})

	for _, tx := range []map[string]any{
		{"amount": 3000, "type": "income", "date": "2025-03-01", "description": "Salary"},
		{"amount": 100.25, "type": "expense", "categoryId": "groceries", "date": "2025-03-03"},
		{"amount": 350, "type": "expense", "categoryId": "groceries", "date": "2025-03-10"},
		{"amount": 50, "type": "expense", "categoryId": "fun", "date": "2025-03-12"},
		{"amount": 75, "type": "expense", "categoryId": "fun", "date": "2025-03-14", "status": "pending"},
		{"amount": 999, "type": "expense", "categoryId": "fun", "date": "2025-03-15", "status": "failed"},
		{"amount": 40, "type": "expense", "categoryId": "fun", "date": "2025-02-27"},
	} {
		a.mustDo(http.StatusCreated, http.MethodPost, userPath+"/transactions", tx)
	}
}
