package bridge_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lambda-feedback/deskshell/internal/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEventsHandler_StreamsEvents(t *testing.T) {
	hub := createHub(0)

	srv := httptest.NewServer(bridge.NewEventsHandler(hub, zap.NewNop()))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	// the handler subscribes before writing the response header
	require.Equal(t, 1, hub.Subscribers())

	require.NoError(t, hub.Emit("sidecar-stdout", "hello\n"))
	require.NoError(t, hub.Emit("window-fullscreen", true))

	reader := bufio.NewReader(res.Body)

	var lines []string
	for len(lines) < 6 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		lines = append(lines, strings.TrimSuffix(line, "\n"))
	}

	assert.Equal(t, []string{
		"event: sidecar-stdout",
		`data: "hello\n"`,
		"",
		"event: window-fullscreen",
		"data: true",
		"",
	}, lines)
}

func TestEventsHandler_MethodNotAllowed(t *testing.T) {
	hub := createHub(0)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/events", nil)

	bridge.NewEventsHandler(hub, zap.NewNop()).ServeHTTP(w, r)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, 0, hub.Subscribers())
}

func TestEventsHandler_UnsubscribesOnDisconnect(t *testing.T) {
	hub := createHub(0)

	ctx, cancel := context.WithCancel(context.Background())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		bridge.NewEventsHandler(hub, zap.NewNop()).ServeHTTP(w, r)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return hub.Subscribers() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not return after disconnect")
	}

	assert.Equal(t, 0, hub.Subscribers())
}
