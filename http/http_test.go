package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, "http://localdepthmap"+path, nil)
	h.ServeHTTP(rec, req)
	return rec
}

func TestAdminHandler(t *testing.T) {
	loaded := false
	h := NewAdminHandler(AdminOptions{
		Version: "v1.2.3",
		Ready:   func() bool { return loaded },
		Summary: func() ([]byte, error) {
			if !loaded {
				return nil, nil
			}
			return []byte(`{"name":"plan"}`), nil
		},
	})

	t.Run("health", func(t *testing.T) {
		require.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health").Code)
	})

	t.Run("version", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/version")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "v1.2.3", rec.Body.String())
	})

	t.Run("metrics", func(t *testing.T) {
		require.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/metrics").Code)
	})

	t.Run("no graph loaded", func(t *testing.T) {
		require.Equal(t, http.StatusServiceUnavailable, serve(h, http.MethodGet, "/ready").Code)
		require.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/graph").Code)
	})

	t.Run("graph loaded", func(t *testing.T) {
		loaded = true
		require.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/ready").Code)

		rec := serve(h, http.MethodGet, "/graph")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		require.JSONEq(t, `{"name":"plan"}`, rec.Body.String())
	})

	t.Run("graph with wrong method", func(t *testing.T) {
		require.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodPost, "/graph").Code)
	})
}

func TestHandleSummaryFailure(t *testing.T) {
	h := HandleSummary(func() ([]byte, error) {
		return nil, errors.New("encoding failed")
	})
	require.Equal(t, http.StatusInternalServerError, serve(h, http.MethodGet, "/graph").Code)

	require.Equal(t, http.StatusNotFound, serve(HandleSummary(nil), http.MethodGet, "/graph").Code)
	require.Equal(t, http.StatusServiceUnavailable, serve(HandleReadyCheck(nil), http.MethodGet, "/ready").Code)
}

func TestMetricsPathFormatter(t *testing.T) {
	require.Equal(t, "/graph", MetricsPathFormatter(http.StatusOK, "/graph"))
	require.Empty(t, MetricsPathFormatter(http.StatusNotFound, "/missing"))
	require.Empty(t, MetricsPathFormatter(http.StatusMethodNotAllowed, "/graph"))
}
