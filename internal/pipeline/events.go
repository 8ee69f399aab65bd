package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"github.com/reforge-labs/reforge/internal/rework"
)

const (
	// eventStreamMaxLen bounds each per-run stream; a run emits a handful of
	// events per batch so this never trims a live run.
	eventStreamMaxLen = "1024"
	// eventStreamTTL expires a run's stream; the run row keeps the durable
	// outcome, the stream only serves live progress and short-term replay.
	eventStreamTTL = 24 * time.Hour
)

// EventStreamKey names the per-run progress stream.
func EventStreamKey(runID uuid.UUID) string {
	return "reforge:run:" + runID.String() + ":events"
}

// StoredEvent is a progress event as read back from the stream. ID is the
// stream entry ID and orders events; At is the append time.
type StoredEvent struct {
	ID string    `json:"id"`
	At time.Time `json:"at"`
	rework.Event
}

// EventLog relays runner progress events through per-run Valkey streams so
// the API can replay and follow them.
type EventLog struct {
	client valkey.Client
	logger *slog.Logger
}

func NewEventLog(client valkey.Client, logger *slog.Logger) *EventLog {
	return &EventLog{client: client, logger: logger}
}

// Append records one event on the run's stream and refreshes its TTL.
func (l *EventLog) Append(ctx context.Context, runID uuid.UUID, ev rework.Event) error {
	payload := struct {
		At time.Time `json:"at"`
		rework.Event
	}{At: time.Now().UTC(), Event: ev}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	key := EventStreamKey(runID)
	resp := l.client.Do(ctx, l.client.B().Xadd().
		Key(key).
		Maxlen().Almost().Threshold(eventStreamMaxLen).
		Id("*").
		FieldValue().FieldValue("data", string(data)).
		Build())
	if err := resp.Error(); err != nil {
		return fmt.Errorf("xadd event: %w", err)
	}

	resp = l.client.Do(ctx, l.client.B().Expire().
		Key(key).Seconds(int64(eventStreamTTL.Seconds())).Build())
	if err := resp.Error(); err != nil {
		l.logger.Warn("event stream expire failed",
			slog.String("run_id", runID.String()),
			slog.String("error", err.Error()))
	}
	return nil
}

// Sink adapts the log to the runner's event callback. Relay failures are
// logged and dropped: progress transport must never fail a run.
func (l *EventLog) Sink(ctx context.Context, runID uuid.UUID) rework.Sink {
	return func(ev rework.Event) {
		if err := l.Append(ctx, runID, ev); err != nil {
			l.logger.Warn("event relay failed",
				slog.String("run_id", runID.String()),
				slog.String("kind", string(ev.Kind)),
				slog.String("error", err.Error()))
		}
	}
}

// Replay returns every event still retained for the run, oldest first.
func (l *EventLog) Replay(ctx context.Context, runID uuid.UUID) ([]StoredEvent, error) {
	resp := l.client.Do(ctx, l.client.B().Xrange().
		Key(EventStreamKey(runID)).Start("-").End("+").
		Build())
	if err := resp.Error(); err != nil {
		return nil, fmt.Errorf("xrange events: %w", err)
	}

	entries, err := resp.AsXRange()
	if err != nil {
		return nil, fmt.Errorf("parse xrange response: %w", err)
	}
	return decodeEntries(entries), nil
}

// Follow blocks up to a few seconds for events after afterID and returns
// them, oldest first. An empty result means the wait timed out; callers loop.
// Use "0" to follow from the beginning of the stream.
func (l *EventLog) Follow(ctx context.Context, runID uuid.UUID, afterID string) ([]StoredEvent, error) {
	if afterID == "" {
		afterID = "0"
	}

	resp := l.client.Do(ctx, l.client.B().Xread().
		Count(64).Block(5000).
		Streams().Key(EventStreamKey(runID)).Id(afterID).
		Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("xread events: %w", err)
	}

	results, err := resp.AsXRead()
	if err != nil {
		return nil, fmt.Errorf("parse xread response: %w", err)
	}

	var out []StoredEvent
	for _, entries := range results {
		out = append(out, decodeEntries(entries)...)
	}
	return out, nil
}

func decodeEntries(entries []valkey.XRangeEntry) []StoredEvent {
	out := make([]StoredEvent, 0, len(entries))
	for _, entry := range entries {
		data, ok := entry.FieldValues["data"]
		if !ok {
			continue
		}
		var ev StoredEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			continue
		}
		ev.ID = entry.ID
		out = append(out, ev)
	}
	return out
}
