package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/masquerade/pkg/design"
	"github.com/jwebster45206/masquerade/pkg/queue"
	"github.com/jwebster45206/masquerade/pkg/state"
)

const (
	// PollInterval is how often to check the session for updates
	PollInterval = 100 * time.Millisecond
	// SettleTimeout is max time to wait for the game loop to apply an event
	// and run any timers it started
	SettleTimeout = 10 * time.Second
)

// EnqueueResponse is the response from the async events endpoint
type EnqueueResponse struct {
	EventID string `json:"event_id"`
}

// PostEvent posts a player event to the async endpoint and returns the event_id
func PostEvent(ctx context.Context, client *http.Client, baseURL string, event *queue.PlayerEvent) (string, error) {
	reqBody, err := event.ToJSON()
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	url := fmt.Sprintf("%s/v1/sessions/%s/events", baseURL, event.SessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create event request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send event request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("events endpoint returned %d (expected 202): %s", resp.StatusCode, string(body))
	}

	var enqueued EnqueueResponse
	if err := json.NewDecoder(resp.Body).Decode(&enqueued); err != nil {
		return "", fmt.Errorf("failed to parse event response: %w", err)
	}

	return enqueued.EventID, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s returned %d: %s", url, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", url, err)
	}
	return nil
}

// GetSession retrieves the stored session snapshot
func GetSession(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID) (*state.SessionState, error) {
	var ss state.SessionState
	if err := getJSON(ctx, client, fmt.Sprintf("%s/v1/sessions/%s", baseURL, sessionID), &ss); err != nil {
		return nil, err
	}
	return &ss, nil
}

// GetDesign retrieves the live level design
func GetDesign(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID) (*design.LevelDesign, error) {
	var d design.LevelDesign
	if err := getJSON(ctx, client, fmt.Sprintf("%s/v1/sessions/%s/design", baseURL, sessionID), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// PollForSession polls the session until check passes. The last check
// error is returned on timeout.
func PollForSession(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID, timeout time.Duration, check func(*state.SessionState) error) (*state.SessionState, error) {
	deadline := time.After(timeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	lastErr := fmt.Errorf("no snapshot read")
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, fmt.Errorf("timeout waiting for session update (waited %v): %w", timeout, lastErr)
		case <-ticker.C:
			ss, err := GetSession(ctx, client, baseURL, sessionID)
			if err != nil {
				lastErr = err
				continue
			}
			if lastErr = check(ss); lastErr == nil {
				return ss, nil
			}
		}
	}
}
