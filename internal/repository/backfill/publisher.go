// Package backfill publishes supplier backfill requests onto a Redis stream.
package backfill

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Kind tags every message so consumers can route mixed streams.
const Kind = "BackfillRequest"

// DefaultStream is used when no stream name is configured.
const DefaultStream = "storeassist:backfill"

// store is the consumer interface for stream publishing (ISP).
type store interface {
	XAdd(ctx context.Context, stream string, maxLen int64, fields map[string]string) (string, error)
}

// Message is the JSON payload written under the "payload" field.
type Message struct {
	Kind          string `json:"kind"`
	SKU           string `json:"sku"`
	MissingVendor string `json:"missingVendor,omitempty"`
	Timestamp     int64  `json:"ts"` // unix millis
}

// Publisher writes backfill requests to a capped stream.
type Publisher struct {
	store  store
	stream string
	maxLen int64
	now    func() time.Time
}

// New creates a stream publisher. maxLen <= 0 disables trimming.
func New(s store, stream string, maxLen int64) *Publisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &Publisher{store: s, stream: stream, maxLen: maxLen, now: time.Now}
}

// Publish enqueues a backfill request and returns the stream entry ID.
func (p *Publisher) Publish(ctx context.Context, sku, missingVendor string) (string, error) {
	msg := Message{
		Kind:          Kind,
		SKU:           sku,
		MissingVendor: missingVendor,
		Timestamp:     p.now().UTC().UnixMilli(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal backfill: %w", err)
	}

	id, err := p.store.XAdd(ctx, p.stream, p.maxLen, map[string]string{
		"kind":    Kind,
		"payload": string(data),
	})
	if err != nil {
		return "", fmt.Errorf("publish backfill %s: %w", sku, err)
	}
	return id, nil
}
