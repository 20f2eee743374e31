package handlers

import (
	"bufio"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/masquerade/internal/services/events"
)

func TestEventsHandler_StreamsSessionEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	server := httptest.NewServer(NewEventsHandler(rdb, logger))
	defer server.Close()

	sessionID := uuid.New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/v1/events/sessions/"+sessionID.String(), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 64)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	waitFor := func(prefix string) string {
		t.Helper()
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					t.Fatalf("stream closed before %q", prefix)
				}
				if strings.HasPrefix(line, prefix) {
					return line
				}
			case <-ctx.Done():
				t.Fatalf("timed out waiting for %q", prefix)
			}
		}
	}

	waitFor("event: connected")

	b := events.NewBroadcaster(rdb, logger)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		// the subscription may land just after the connected event
		for {
			_ = b.Publish(ctx, sessionID, events.ElevatorDoors(sessionID, 2, true))
			select {
			case <-stop:
				return
			case <-time.After(50 * time.Millisecond):
			}
		}
	}()

	waitFor("event: elevator.doors")
	data := waitFor("data: ")
	assert.Contains(t, data, `"elevator":2`)
	assert.Contains(t, data, `"open":true`)
}

func TestEventsHandler_BadRequests(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	h := NewEventsHandler(nil, logger)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/v1/events/sessions/" + uuid.NewString(), http.StatusMethodNotAllowed},
		{http.MethodGet, "/v1/events/games/" + uuid.NewString(), http.StatusBadRequest},
		{http.MethodGet, "/v1/events/sessions/nope", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, rr.Code, tt.path)
	}
}
