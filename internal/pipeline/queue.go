// Package pipeline turns a queued rework run into a finished archive. It
// owns the Valkey work queue, the per-run progress event streams, and the
// staged execution (fetch, select, review, rework, archive) the worker
// drives for each message.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

const (
	StreamName = "reforge:rework"
	GroupName  = "reforge-workers"
)

// ReworkMessage is the payload enqueued for worker processing.
type ReworkMessage struct {
	RunID     uuid.UUID `json:"run_id"`
	ProjectID uuid.UUID `json:"project_id"`
	SourceID  uuid.UUID `json:"source_id"`
	Trigger   string    `json:"trigger"` // "manual", "schedule"
}

// Producer enqueues rework jobs to the Valkey stream.
type Producer struct {
	client valkey.Client
}

func NewProducer(client valkey.Client) *Producer {
	return &Producer{client: client}
}

func (p *Producer) Enqueue(ctx context.Context, msg ReworkMessage) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}

	resp := p.client.Do(ctx, p.client.B().Xadd().
		Key(StreamName).Id("*").
		FieldValue().FieldValue("data", string(data)).
		Build())
	if err := resp.Error(); err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	id, err := resp.ToString()
	if err != nil {
		return "", fmt.Errorf("parse xadd response: %w", err)
	}
	return id, nil
}

// Consumer reads rework jobs from the Valkey stream.
type Consumer struct {
	client     valkey.Client
	consumerID string
	logger     *slog.Logger
}

func NewConsumer(client valkey.Client, consumerID string, logger *slog.Logger) *Consumer {
	return &Consumer{client: client, consumerID: consumerID, logger: logger}
}

// EnsureGroup creates the consumer group if it doesn't exist.
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	resp := c.client.Do(ctx, c.client.B().XgroupCreate().
		Key(StreamName).Group(GroupName).Id("0").Mkstream().Build())
	if err := resp.Error(); err != nil {
		// BUSYGROUP means group already exists — that's fine
		if err.Error() != "BUSYGROUP Consumer Group name already exists" {
			return fmt.Errorf("xgroup create: %w", err)
		}
	}
	return nil
}

// Consume blocks until a message is available, processes it via handler, and
// ACKs. On startup, it first drains any pending messages from a previous
// crash.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, ReworkMessage) error) error {
	// First, drain pending messages from previous runs (Id "0" returns pending)
	c.drainPending(ctx, handler)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		resp := c.client.Do(ctx, c.client.B().Xreadgroup().
			Group(GroupName, c.consumerID).
			Count(1).Block(5000).
			Streams().Key(StreamName).Id(">").
			Build())

		if err := resp.Error(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Timeout is normal for BLOCK reads
			continue
		}

		results, err := resp.AsXRead()
		if err != nil {
			continue
		}

		for _, messages := range results {
			for _, msg := range messages {
				c.processMessage(ctx, msg, handler)
			}
		}
	}
}

// drainPending reads messages previously delivered to this consumer but not ACKed.
func (c *Consumer) drainPending(ctx context.Context, handler func(context.Context, ReworkMessage) error) {
	// XREADGROUP with Id "0" returns pending messages for this consumer
	resp := c.client.Do(ctx, c.client.B().Xreadgroup().
		Group(GroupName, c.consumerID).
		Count(10).
		Streams().Key(StreamName).Id("0").
		Build())

	if err := resp.Error(); err != nil {
		c.logger.Warn("drain pending failed", slog.String("error", err.Error()))
		return
	}

	results, err := resp.AsXRead()
	if err != nil {
		return
	}

	for _, messages := range results {
		for _, msg := range messages {
			c.logger.Info("recovering pending message", slog.String("id", msg.ID))
			c.processMessage(ctx, msg, handler)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg valkey.XRangeEntry, handler func(context.Context, ReworkMessage) error) {
	dataStr, ok := msg.FieldValues["data"]
	if !ok {
		c.logger.Warn("message missing data field", slog.String("id", msg.ID))
		c.ack(ctx, msg.ID)
		return
	}

	var reworkMsg ReworkMessage
	if err := json.Unmarshal([]byte(dataStr), &reworkMsg); err != nil {
		c.logger.Error("unmarshal message", slog.String("error", err.Error()), slog.String("id", msg.ID))
		c.ack(ctx, msg.ID)
		return
	}

	if err := handler(ctx, reworkMsg); err != nil {
		// No ACK: the message stays pending and is recovered on restart.
		// Re-processing is safe because the run's status guard makes a
		// second claim a no-op.
		c.logger.Error("handle message", slog.String("error", err.Error()),
			slog.String("id", msg.ID),
			slog.String("run_id", reworkMsg.RunID.String()))
	} else {
		c.ack(ctx, msg.ID)
	}
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	resp := c.client.Do(ctx, c.client.B().Xack().
		Key(StreamName).Group(GroupName).Id(msgID).Build())
	if err := resp.Error(); err != nil {
		c.logger.Error("xack failed", slog.String("error", err.Error()), slog.String("id", msgID))
	}
}
