package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "p1", r.Header.Get(PlayerIDHeader))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, http.MethodPut, r.Method)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "v", body["k"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "p1", "tok")
	var result struct {
		Status string `json:"status"`
	}
	require.NoError(t, c.Put("/x", map[string]string{"k": "v"}, &result))
	assert.Equal(t, "ok", result.Status)
}

func TestClientDecodesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"NOT_YOUR_TURN","message":"not your turn"}}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "", "").Post("/moves", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "NOT_YOUR_TURN", apiErr.Code)
	assert.Equal(t, "not your turn (NOT_YOUR_TURN)", err.Error())
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "", "").Get("/health", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestReadEvents(t *testing.T) {
	stream := strings.Join([]string{
		"event: connected",
		"data: {}",
		"",
		": keepalive",
		"",
		"event: snapshot",
		"data: line one",
		"data: line two",
		"",
		"event: closed",
		`data: {"reason":"game deleted"}`,
		"",
		"event: snapshot",
		"data: never read",
		"",
	}, "\n")

	var got []SSEEvent
	closed, err := readEvents(strings.NewReader(stream), func(event, data string) {
		got = append(got, SSEEvent{Event: event, Data: data})
	})
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Equal(t, []SSEEvent{
		{Event: "connected", Data: "{}"},
		{Event: "snapshot", Data: "line one\nline two"},
		{Event: "closed", Data: `{"reason":"game deleted"}`},
	}, got)
}

func TestReadEventsEndOfStream(t *testing.T) {
	closed, err := readEvents(strings.NewReader("event: move\ndata: {}\n\n"), func(string, string) {})
	require.NoError(t, err)
	assert.False(t, closed)
}
