package quote

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type quoteResponse struct {
	Data Quote `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func newTestRouter() http.Handler {
	handler := NewHandler(HandlerConfig{Service: newTestService(NewMemoryStore(time.Minute))})
	r := chi.NewRouter()
	r.Post("/api/v1/quotes", handler.Create)
	r.Post("/api/v1/quotes/merge", handler.Merge)
	r.Get("/api/v1/quotes/{id}", handler.Get)
	return r
}

func TestQuoteHandlers(t *testing.T) {
	router := newTestRouter()

	t.Run("create and fetch", func(t *testing.T) {
		body := `{
			"taxes": [{"id": "vat", "rate": "10", "type": "exclusive"}],
			"items": [{"key": "sku-1", "price": "100", "qty": "2", "taxGroups": [["vat"]],
				"discounts": [{"kind": "percent", "value": "10"}]}]
		}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var created quoteResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		require.Equal(t, "q-1", created.Data.ID)
		requireDecimal(t, "198", created.Data.Total)

		getReq := httptest.NewRequest(http.MethodGet, "/api/v1/quotes/q-1", nil)
		getRec := httptest.NewRecorder()
		router.ServeHTTP(getRec, getReq)
		require.Equal(t, http.StatusOK, getRec.Code)
		var fetched quoteResponse
		require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &fetched))
		requireDecimal(t, "18", fetched.Data.Tax)
	})

	t.Run("merge", func(t *testing.T) {
		body := `{
			"strategy": "difference",
			"current": {"items": [{"key": "plan", "price": "10", "qty": "1", "meta": {"name": "Basic"}}]},
			"next": {"items": [{"key": "plan", "price": "30", "qty": "1", "meta": {"name": "Pro"}}]}
		}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/merge", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var merged quoteResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &merged))
		require.Len(t, merged.Data.Lines, 1)
		require.Equal(t, "Basic to Pro", merged.Data.Lines[0].Description)
		requireDecimal(t, "20", merged.Data.Total)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(`{"items": [`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "BAD_REQUEST", resp.Error.Code)
	})

	t.Run("validation details", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(`{"items": [{"price": "1", "qty": "1", "discounts": [{"kind": "bogo", "value": "1"}]}]}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		var fields []FieldError
		require.NoError(t, json.Unmarshal(resp.Error.Details, &fields))
		require.Equal(t, []FieldError{{Field: "items[0].discounts[0].kind", Rule: "oneof", Param: "percent amount"}}, fields)
	})

	t.Run("unprocessable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(`{"items": [{"price": "1", "qty": "1", "taxGroups": [["gst"]]}]}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "UNPROCESSABLE", resp.Error.Code)
		require.Contains(t, resp.Error.Message, "unknown tax id")
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes/missing", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "NOT_FOUND", resp.Error.Code)
	})
}

func TestHandlerWithoutService(t *testing.T) {
	handler := NewHandler(HandlerConfig{})
	rec := httptest.NewRecorder()
	handler.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/quotes", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
