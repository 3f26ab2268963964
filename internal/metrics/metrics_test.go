package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestCountersRecord(t *testing.T) {
	m := New()
	m.GameCreated()
	m.MoveResolved(true)
	m.MoveResolved(false)
	m.MoveResolved(false)
	m.GameFinished(DetectedBySync)
	m.StreamClientConnected()
	m.StreamClientConnected()
	m.StreamClientDisconnected()

	body := scrape(t, m)
	assert.Contains(t, body, "bsgame_games_created_total 1")
	assert.Contains(t, body, `bsgame_moves_total{result="hit"} 1`)
	assert.Contains(t, body, `bsgame_moves_total{result="miss"} 2`)
	assert.Contains(t, body, `bsgame_games_finished_total{detected_by="sync"} 1`)
	assert.Contains(t, body, "bsgame_stream_clients 1")
}

func TestRuntimeCollectorsRegistered(t *testing.T) {
	assert.Contains(t, scrape(t, New()), "go_goroutines")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.GameCreated()
	m.MoveResolved(true)
	m.GameFinished(DetectedByMove)
	m.StreamClientConnected()
	m.StreamClientDisconnected()
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
