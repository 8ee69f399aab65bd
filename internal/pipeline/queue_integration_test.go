//go:build integration

package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"github.com/reforge-labs/reforge/internal/rework"
)

func setupValkey(t *testing.T) valkey.Client {
	t.Helper()
	addr := os.Getenv("TEST_VALKEY_ADDR")
	if addr == "" {
		t.Fatal("TEST_VALKEY_ADDR not set")
	}
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		t.Skipf("valkey not available: %v", err)
	}
	ctx := context.Background()
	resp := client.Do(ctx, client.B().Ping().Build())
	if resp.Error() != nil {
		t.Skipf("valkey ping failed: %v", resp.Error())
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestQueue_EnqueueConsumeAck(t *testing.T) {
	client := setupValkey(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	consumer := NewConsumer(client, "test-"+uuid.New().String(), logger)
	if err := consumer.EnsureGroup(ctx); err != nil {
		t.Fatal(err)
	}

	want := ReworkMessage{
		RunID:     uuid.New(),
		ProjectID: uuid.New(),
		SourceID:  uuid.New(),
		Trigger:   "manual",
	}
	if _, err := NewProducer(client).Enqueue(ctx, want); err != nil {
		t.Fatal(err)
	}

	var got ReworkMessage
	err := consumer.Consume(ctx, func(_ context.Context, msg ReworkMessage) error {
		if msg.RunID == want.RunID {
			got = msg
			cancel()
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		t.Fatal(err)
	}

	if got.RunID != want.RunID || got.ProjectID != want.ProjectID || got.Trigger != "manual" {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestEventLog_AppendReplayFollow(t *testing.T) {
	client := setupValkey(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	log := NewEventLog(client, logger)
	runID := uuid.New()

	events := []rework.Event{
		{Kind: rework.EventBatchStarted, Category: "misc", BatchIndex: 1, BatchCount: 1, FileCount: 2},
		{Kind: rework.EventCategoryDone, Category: "misc", BatchCount: 1},
		{Kind: rework.EventCompleted, FileCount: 2},
	}
	for _, ev := range events {
		if err := log.Append(ctx, runID, ev); err != nil {
			t.Fatal(err)
		}
	}

	replayed, err := log.Replay(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(replayed) != len(events) {
		t.Fatalf("expected %d events, got %d", len(events), len(replayed))
	}
	for i, ev := range replayed {
		if ev.Kind != events[i].Kind {
			t.Errorf("event %d: expected kind %s, got %s", i, events[i].Kind, ev.Kind)
		}
		if ev.ID == "" || ev.At.IsZero() {
			t.Errorf("event %d: missing stream metadata: %+v", i, ev)
		}
	}

	// Follow from after the first entry picks up the remainder.
	tail, err := log.Follow(ctx, runID, replayed[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tail) != 2 || tail[0].Kind != rework.EventCategoryDone {
		t.Errorf("expected the two trailing events, got %+v", tail)
	}
}
