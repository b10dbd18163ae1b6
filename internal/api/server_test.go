package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priceduck/pricewatch/internal/orchestrator"
)

type stubSummary struct {
	snap orchestrator.Snapshot
}

func (s *stubSummary) Snapshot() orchestrator.Snapshot { return s.snap }

func TestHandleSummary(t *testing.T) {
	srv := NewServer(0, &stubSummary{snap: orchestrator.Snapshot{
		Attempts:  3,
		Succeeded: 2,
		Failed:    1,
		StartedAt: time.Now().UTC(),
	}}, slog.Default())

	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summary", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var snap orchestrator.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 3, snap.Attempts)
	assert.Equal(t, 2, snap.Succeeded)
}

func TestHandleHealth(t *testing.T) {
	srv := NewServer(0, &stubSummary{}, slog.Default())

	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
