// Package store defines the backing-store capabilities the repositories are
// written against: string keys, hash maps and sorted sets with Redis
// semantics, plus a write batch.
//
// Implementations live in sub-packages (redisstore, memstore) so the
// repositories never depend on a particular client.
//
// Conventions shared by every implementation:
//
//   - An absent key, field or member is not an error. Single lookups report
//     it with a false flag; multi-lookups return a nil entry in its slot.
//   - Any failure to talk to the backend is wrapped with ErrUnavailable.
//   - Rank arguments follow Redis: 0-based, inclusive, negative values count
//     from the end (-1 is the last member).
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable wraps every backend or transport failure.
var ErrUnavailable = errors.New("store unavailable")

// Unavailable wraps err with ErrUnavailable, keeping err in the chain.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// Strings are plain key/value operations.
type Strings interface {
	// Set stores value under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	MGet(ctx context.Context, keys ...string) ([][]byte, error)
	// Del removes keys and returns how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Keys returns every key matching a glob pattern (*, ?, [...], \ escapes).
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// Hashes are field operations on a single hash key.
type Hashes interface {
	HSet(ctx context.Context, key, field string, value []byte) error
	HGet(ctx context.Context, key, field string) ([]byte, bool, error)
	HMGet(ctx context.Context, key string, fields ...string) ([][]byte, error)
	HDel(ctx context.Context, key string, fields ...string) (int64, error)
	HExists(ctx context.Context, key, field string) (bool, error)
}

// SortedSets are ordered-index operations on a single sorted set key.
// Members are ordered by score ascending, ties by member bytes.
type SortedSets interface {
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRem(ctx context.Context, key string, members ...string) (int64, error)
	ZCard(ctx context.Context, key string) (int64, error)
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZRangeByScore(ctx context.Context, key string, r ScoreRange) ([]string, error)
	ZScore(ctx context.Context, key, member string) (float64, bool, error)
}

// Batcher starts write batches.
type Batcher interface {
	Batch() Batch
}

// Batch queues writes and sends them together on Exec. A batch is NOT a
// transaction: each command is applied and acknowledged on its own, so a
// failure part way leaves the earlier commands in effect.
type Batch interface {
	HSet(key, field string, value []byte)
	HDel(key string, fields ...string)
	ZAdd(key string, score float64, member string)
	ZRem(key string, members ...string)
	Del(keys ...string)
	// Len returns the number of queued commands.
	Len() int
	Exec(ctx context.Context) error
}

// Store is the full capability set.
type Store interface {
	Strings
	Hashes
	SortedSets
	Batcher
}

// WithBatch starts a batch, lets fn queue writes, and executes it. If fn
// returns an error nothing is sent. Empty batches are not sent either.
//
// Typical use:
//
//	err := store.WithBatch(ctx, s, func(b store.Batch) error {
//	    b.ZRem(index, id)
//	    b.HDel(hash, id)
//	    return nil
//	})
func WithBatch(ctx context.Context, s Batcher, fn func(b Batch) error) error {
	b := s.Batch()
	if err := fn(b); err != nil {
		return err
	}
	if b.Len() == 0 {
		return nil
	}
	return b.Exec(ctx)
}
