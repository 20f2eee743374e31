package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/masquerade/internal/session"
	"github.com/jwebster45206/masquerade/pkg/queue"
	"github.com/jwebster45206/masquerade/pkg/storage"
)

// Enqueuer accepts player events for the game loop
type Enqueuer interface {
	Enqueue(ctx context.Context, event *queue.PlayerEvent) error
}

type SessionsHandler struct {
	sessions *session.Manager
	storage  storage.Storage
	queue    Enqueuer
	logger   *slog.Logger
}

func NewSessionsHandler(logger *slog.Logger, sessions *session.Manager, storage storage.Storage, queue Enqueuer) *SessionsHandler {
	return &SessionsHandler{
		sessions: sessions,
		storage:  storage,
		queue:    queue,
		logger:   logger,
	}
}

// CreateSessionRequest defines the optional body for creating a session
type CreateSessionRequest struct {
	Seed       int64 `json:"seed,omitempty"`
	StartLevel int   `json:"start_level,omitempty"`
}

type SessionListResponse struct {
	Sessions []uuid.UUID `json:"sessions"`
}

type EnqueueResponse struct {
	EventID string `json:"event_id"`
}

// ServeHTTP handles HTTP requests for game sessions
// Routes:
// POST /v1/sessions               - Start a session
// GET /v1/sessions                - List stored sessions
// GET /v1/sessions/{id}           - Read the stored snapshot
// GET /v1/sessions/{id}/design    - Read the live level design
// DELETE /v1/sessions/{id}        - End a session
// POST /v1/sessions/{id}/events   - Queue a player event
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	if path == "" {
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET")
		}
		return
	}

	parts := strings.Split(path, "/")
	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleRead(w, r, sessionID)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.handleDelete(w, r, sessionID)
	case len(parts) == 2 && parts[1] == "design" && r.Method == http.MethodGet:
		h.handleDesign(w, sessionID)
	case len(parts) == 2 && parts[1] == "events" && r.Method == http.MethodPost:
		h.handleEvent(w, r, sessionID)
	case len(parts) > 2 || (len(parts) == 2 && parts[1] != "design" && parts[1] != "events"):
		writeError(w, h.logger, http.StatusNotFound, "Unknown session resource")
	default:
		h.logger.Warn("Method not allowed for sessions endpoint", "method", r.Method, "path", r.URL.Path)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *SessionsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("Invalid create session body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.StartLevel < 0 {
		writeError(w, h.logger, http.StatusBadRequest, "start_level must not be negative")
		return
	}

	s, err := h.sessions.Create(req.Seed, req.StartLevel)
	if err != nil {
		h.logger.Error("Failed to create session", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}

	snap := s.Snapshot()
	if err := h.storage.SaveSession(r.Context(), snap); err != nil {
		h.logger.Error("Failed to save new session", "error", err, "session_id", s.ID())
		h.sessions.Remove(s.ID())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}

	h.logger.Info("Session created", "session_id", s.ID(), "seed", s.Seed(), "level", snap.Level)
	writeJSON(w, h.logger, http.StatusCreated, snap)
}

func (h *SessionsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.storage.ListSessions(r.Context())
	if err != nil {
		h.logger.Error("Failed to list sessions", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	writeJSON(w, h.logger, http.StatusOK, SessionListResponse{Sessions: ids})
}

func (h *SessionsHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	snap, err := h.storage.LoadSession(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "error", err, "session_id", id)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if snap == nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, snap)
}

func (h *SessionsHandler) handleDesign(w http.ResponseWriter, id uuid.UUID) {
	s, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s.Design())
}

func (h *SessionsHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	live := h.sessions.Remove(id)

	snap, err := h.storage.LoadSession(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session for delete", "error", err, "session_id", id)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	if !live && snap == nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}

	if err := h.storage.DeleteSession(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "error", err, "session_id", id)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	h.logger.Info("Session deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionsHandler) handleEvent(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if _, err := h.sessions.Get(id); err != nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}

	var event queue.PlayerEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.logger.Warn("Invalid player event body", "error", err, "session_id", id)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := event.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	event.EventID = uuid.NewString()
	event.SessionID = id
	event.EnqueuedAt = time.Now()

	if err := h.queue.Enqueue(r.Context(), &event); err != nil {
		h.logger.Error("Failed to enqueue player event", "error", err, "session_id", id)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to queue event")
		return
	}
	writeJSON(w, h.logger, http.StatusAccepted, EnqueueResponse{EventID: event.EventID})
}
