package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/storeassist/internal/db"
)

var _ db.Store = (*Store)(nil)

// DefaultClientName tags connections in CLIENT LIST.
const DefaultClientName = "storeassist"

const (
	readyPollMin = 50 * time.Millisecond
	readyPollMax = time.Second
)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs      []string
	Password   string
	ClientName string
	// ReadyTimeout bounds Open's wait for the first successful PING.
	ReadyTimeout time.Duration
}

// Store implements db.Store over a rueidis client. It needs Redis 8+
// (or Redis Stack) for JSON and FT commands.
type Store struct {
	client rueidis.Client
}

// NewStore creates a store without checking connectivity.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	name := cfg.ClientName
	if name == "" {
		name = DefaultClientName
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		ClientName:   name,
		DisableCache: true,
		// FT.SEARCH replies are parsed as RESP2 arrays.
		AlwaysRESP2: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &Store{client: client}, nil
}

// Open creates a store and blocks until it answers PING or ReadyTimeout passes.
// The store is closed again when it never becomes ready.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	s, err := NewStore(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.ReadyTimeout > 0 {
		if err := s.WaitForReady(ctx, cfg.ReadyTimeout); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// NewStoreForTest wraps an existing rueidis client, typically a rueidis/mock client.
func NewStoreForTest(client rueidis.Client) *Store {
	return &Store{client: client}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings immediately, then retries with a doubling delay until
// the store answers or timeout expires. The last ping error is reported.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	delay := readyPollMin
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("database not ready after %s: %w", timeout, err)
		case <-t.C:
		}
		delay = min(delay*2, readyPollMax)
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) doMulti(ctx context.Context, cmds ...rueidis.Completed) []rueidis.RedisResult {
	return s.client.DoMulti(ctx, cmds...)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr reports whether err is a server reply whose message contains
// substr, ignoring case. Transport errors never match.
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
