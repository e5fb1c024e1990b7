package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/itemstore/store"
)

// scanCount is the COUNT hint passed to SCAN.
const scanCount = 512

// Store adapts a redis.UniversalClient to store.Store.
type Store struct {
	client  redis.UniversalClient
	cluster bool
}

var _ store.Store = (*Store)(nil)

// New wraps client. The client is owned by the caller.
func New(client redis.UniversalClient) *Store {
	_, cluster := client.(*redis.ClusterClient)
	return &Store{client: client, cluster: cluster}
}

// Client returns the underlying client.
func (s *Store) Client() redis.UniversalClient {
	return s.client
}

func isNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// toBytes converts an MGET/HMGET reply slot. Absent entries are nil.
func toBytes(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(val), nil
	case []byte:
		return val, nil
	default:
		return nil, fmt.Errorf("unexpected reply type %T", v)
	}
}

func toBytesSlice(op string, vals []any) ([][]byte, error) {
	out := make([][]byte, len(vals))
	for i, v := range vals {
		b, err := toBytes(v)
		if err != nil {
			return nil, store.Unavailable(op, err)
		}
		out[i] = b
	}
	return out, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return store.Unavailable("set", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if isNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, store.Unavailable("get", err)
	}
	return b, true, nil
}

func (s *Store) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	if len(keys) == 0 {
		return [][]byte{}, nil
	}
	if s.cluster && len(keys) > 1 {
		return s.pipelinedGet(ctx, keys)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, store.Unavailable("mget", err)
	}
	return toBytesSlice("mget", vals)
}

// pipelinedGet replaces MGET on a cluster, where the keys may live in
// different slots.
func (s *Store) pipelinedGet(ctx context.Context, keys []string) ([][]byte, error) {
	cmds := make([]*redis.StringCmd, len(keys))
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = p.Get(ctx, k)
		}
		return nil
	})
	if err != nil && !isNil(err) {
		return nil, store.Unavailable("mget", err)
	}
	out := make([][]byte, len(keys))
	for i, cmd := range cmds {
		b, err := cmd.Bytes()
		if isNil(err) {
			continue
		}
		if err != nil {
			return nil, store.Unavailable("mget", err)
		}
		out[i] = b
	}
	return out, nil
}

func (s *Store) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	if s.cluster && len(keys) > 1 {
		return s.pipelinedDel(ctx, keys)
	}
	n, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, store.Unavailable("del", err)
	}
	return n, nil
}

func (s *Store) pipelinedDel(ctx context.Context, keys []string) (int64, error) {
	cmds := make([]*redis.IntCmd, len(keys))
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = p.Del(ctx, k)
		}
		return nil
	})
	if err != nil {
		return 0, store.Unavailable("del", err)
	}
	var n int64
	for _, cmd := range cmds {
		n += cmd.Val()
	}
	return n, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, store.Unavailable("exists", err)
	}
	return n > 0, nil
}

// Keys enumerates keys with SCAN MATCH instead of KEYS so large keyspaces do
// not block the server. On a cluster every master is scanned.
func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{})
		out  []string
	)
	collect := func(ctx context.Context, c redis.Cmdable) error {
		iter := c.Scan(ctx, 0, pattern, scanCount).Iterator()
		for iter.Next(ctx) {
			k := iter.Val()
			mu.Lock()
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				out = append(out, k)
			}
			mu.Unlock()
		}
		return iter.Err()
	}

	var err error
	if cc, ok := s.client.(*redis.ClusterClient); ok {
		err = cc.ForEachMaster(ctx, func(ctx context.Context, c *redis.Client) error {
			return collect(ctx, c)
		})
	} else {
		err = collect(ctx, s.client)
	}
	if err != nil {
		return nil, store.Unavailable("scan", err)
	}
	return out, nil
}

func (s *Store) HSet(ctx context.Context, key, field string, value []byte) error {
	if err := s.client.HSet(ctx, key, field, value).Err(); err != nil {
		return store.Unavailable("hset", err)
	}
	return nil
}

func (s *Store) HGet(ctx context.Context, key, field string) ([]byte, bool, error) {
	b, err := s.client.HGet(ctx, key, field).Bytes()
	if isNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, store.Unavailable("hget", err)
	}
	return b, true, nil
}

func (s *Store) HMGet(ctx context.Context, key string, fields ...string) ([][]byte, error) {
	if len(fields) == 0 {
		return [][]byte{}, nil
	}
	vals, err := s.client.HMGet(ctx, key, fields...).Result()
	if err != nil {
		return nil, store.Unavailable("hmget", err)
	}
	return toBytesSlice("hmget", vals)
}

func (s *Store) HDel(ctx context.Context, key string, fields ...string) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	n, err := s.client.HDel(ctx, key, fields...).Result()
	if err != nil {
		return 0, store.Unavailable("hdel", err)
	}
	return n, nil
}

func (s *Store) HExists(ctx context.Context, key, field string) (bool, error) {
	ok, err := s.client.HExists(ctx, key, field).Result()
	if err != nil {
		return false, store.Unavailable("hexists", err)
	}
	return ok, nil
}

func (s *Store) ZAdd(ctx context.Context, key string, score float64, member string) error {
	if err := s.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err(); err != nil {
		return store.Unavailable("zadd", err)
	}
	return nil
}

func members(ms []string) []any {
	out := make([]any, len(ms))
	for i, m := range ms {
		out[i] = m
	}
	return out
}

func (s *Store) ZRem(ctx context.Context, key string, ms ...string) (int64, error) {
	if len(ms) == 0 {
		return 0, nil
	}
	n, err := s.client.ZRem(ctx, key, members(ms)...).Result()
	if err != nil {
		return 0, store.Unavailable("zrem", err)
	}
	return n, nil
}

func (s *Store) ZCard(ctx context.Context, key string) (int64, error) {
	n, err := s.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, store.Unavailable("zcard", err)
	}
	return n, nil
}

func (s *Store) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	ms, err := s.client.ZRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, store.Unavailable("zrange", err)
	}
	return ms, nil
}

func (s *Store) ZRangeByScore(ctx context.Context, key string, r store.ScoreRange) ([]string, error) {
	opt := &redis.ZRangeBy{
		Min:    r.MinArg(),
		Max:    r.MaxArg(),
		Offset: r.Offset,
		Count:  r.Count,
	}
	// LIMIT offset 0 would return nothing; a negative count means "all".
	if opt.Offset > 0 && opt.Count <= 0 {
		opt.Count = -1
	}
	ms, err := s.client.ZRangeByScore(ctx, key, opt).Result()
	if err != nil {
		return nil, store.Unavailable("zrangebyscore", err)
	}
	return ms, nil
}

func (s *Store) ZScore(ctx context.Context, key, member string) (float64, bool, error) {
	score, err := s.client.ZScore(ctx, key, member).Result()
	if isNil(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, store.Unavailable("zscore", err)
	}
	return score, true, nil
}
