package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // consumers depend on narrow sub-interfaces
type Store interface {
	Pinger
	JSONStore
	CounterStore
	IndexManager
	Searcher
	StreamPublisher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONSetItem holds a single key+path+data triple for pipelined JSON.SET.
type JSONSetItem struct {
	Key  string
	Path string
	Data []byte
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	JSONSetMulti(ctx context.Context, items []JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CounterStore keeps integer counters that expire on their own.
type CounterStore interface {
	// Counter returns the value at key, 0 when the key is absent.
	Counter(ctx context.Context, key string) (int64, error)
	// IncrWithTTL adds delta and returns the new value. The TTL is only
	// applied when the key has none, so the first write of a period fixes it.
	IncrWithTTL(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchText(ctx context.Context, q *TextQuery) (*SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*SearchResult, error)
}

// StreamPublisher appends messages to a stream.
type StreamPublisher interface {
	XAdd(ctx context.Context, stream string, maxLen int64, fields map[string]string) (string, error)
}
