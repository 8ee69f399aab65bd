// Package valkey creates the shared Valkey client. The run queue and the
// per-run event streams both ride on it.
package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/reforge-labs/reforge/internal/config"
)

// NewClient connects to Valkey and verifies connectivity with a bounded
// ping. A bad address fails startup, not the first enqueue.
func NewClient(cfg config.ValkeyConfig) (valkey.Client, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{cfg.Addr},
		SelectDB:    cfg.DB,
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping valkey: %w", err)
	}

	return client, nil
}
