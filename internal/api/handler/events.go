package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/reforge-labs/reforge/internal/pipeline"
	"github.com/reforge-labs/reforge/internal/rework"
	"github.com/reforge-labs/reforge/internal/store"
	"github.com/reforge-labs/reforge/pkg/apierr"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventsHandler serves a run's progress events, as a JSON snapshot and as a
// live websocket stream.
type EventsHandler struct {
	logger *slog.Logger
	store  *store.Store
	events *pipeline.EventLog
}

func NewEventsHandler(logger *slog.Logger, s *store.Store, events *pipeline.EventLog) *EventsHandler {
	return &EventsHandler{logger: logger, store: s, events: events}
}

// List returns every event recorded for the run so far.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	_, run, ok := resolveProjectRun(w, r, h.logger, h.store)
	if !ok {
		return
	}
	if h.events == nil {
		writeAPIError(w, r, h.logger, apierr.EventsUnavailable(errors.New("event streaming not configured")))
		return
	}

	events, err := h.events.Replay(r.Context(), run.ID)
	if err != nil {
		writeAPIError(w, r, h.logger, apierr.EventsUnavailable(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run_id": run.ID,
		"events": events,
		"total":  len(events),
	})
}

// Stream upgrades to a websocket, replays the run's events from the
// beginning, then forwards new ones as they land. The connection closes
// itself after a terminal event.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	_, run, ok := resolveProjectRun(w, r, h.logger, h.store)
	if !ok {
		return
	}
	if h.events == nil {
		writeAPIError(w, r, h.logger, apierr.EventsUnavailable(errors.New("event streaming not configured")))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Reader drains control frames and cancels the stream when the client
	// goes away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Debug("websocket closed unexpectedly", slog.String("error", err.Error()))
				}
				return
			}
		}
	}()

	events := make(chan pipeline.StoredEvent, 16)
	go h.follow(ctx, run.ID, events)

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
			if ev.Kind == rework.EventCompleted || ev.Kind == rework.EventFatal {
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished"))
				return
			}
		}
	}
}

// follow replays the stream from the beginning, then tails it until ctx is
// cancelled. Closing the channel tells the writer to hang up.
func (h *EventsHandler) follow(ctx context.Context, runID uuid.UUID, out chan<- pipeline.StoredEvent) {
	defer close(out)

	lastID := ""
	for {
		batch, err := h.events.Follow(ctx, runID, lastID)
		if err != nil {
			if ctx.Err() == nil {
				h.logger.Warn("event follow failed",
					slog.String("run_id", runID.String()),
					slog.String("error", err.Error()))
			}
			return
		}
		for _, ev := range batch {
			lastID = ev.ID
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}
