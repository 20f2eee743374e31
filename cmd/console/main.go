package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	seed := flag.Int64("seed", 0, "session seed (0 lets the server choose)")
	startLevel := flag.Int("level", 0, "starting level (0 uses the server default)")
	flag.Parse()

	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    30 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	ss, err := createSession(client, cfg.APIBaseURL, *seed, *startLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The stream outlives any single request, so it gets its own client.
	eventChan := make(chan SSEEvent, 64)
	go func() {
		defer close(eventChan)
		if err := listenToSSE(ctx, &http.Client{}, cfg.APIBaseURL, ss.ID, eventChan); err != nil && ctx.Err() == nil {
			eventChan <- SSEEvent{Type: streamErrorEvent, Data: map[string]interface{}{"error": err.Error()}}
		}
	}()

	p := tea.NewProgram(NewConsoleUI(cfg, client, ss, eventChan),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	if err := deleteSession(client, cfg.APIBaseURL, ss.ID); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to end session: %v\n", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
