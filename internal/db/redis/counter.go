package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/storeassist/internal/db"
)

// Counter reads an integer counter. A missing key reads as 0.
func (s *Store) Counter(ctx context.Context, key string) (int64, error) {
	cmd := s.b().Get().Key(key).Build()
	raw, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return 0, nil
		}
		return 0, &db.Error{Op: db.OpGet, Err: err}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &db.Error{Op: db.OpGet, Err: err}
	}
	return n, nil
}

// IncrWithTTL pipelines INCRBY and EXPIRE NX in one round trip.
// A zero ttl skips the EXPIRE.
func (s *Store) IncrWithTTL(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	cmds := rueidis.Commands{s.b().Incrby().Key(key).Increment(delta).Build()}
	if ttl > 0 {
		cmds = append(cmds, s.b().Expire().Key(key).Seconds(int64(ttl.Seconds())).Nx().Build())
	}

	res := s.doMulti(ctx, cmds...)
	n, err := res[0].AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpIncrBy, Err: err}
	}
	if len(res) > 1 {
		if err := res[1].Error(); err != nil {
			return n, &db.Error{Op: db.OpExpire, Err: err}
		}
	}
	return n, nil
}
