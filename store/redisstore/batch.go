package redisstore

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/itemstore/store"
)

// batch records commands and replays them into a pipeline on Exec, so the
// pipeline runs under the Exec context. A pipeline is not MULTI/EXEC: each
// command succeeds or fails on its own.
type batch struct {
	client redis.UniversalClient
	ops    []func(ctx context.Context, p redis.Pipeliner)
}

// Batch returns a pipelined write batch.
func (s *Store) Batch() store.Batch {
	return &batch{client: s.client}
}

func (b *batch) add(op func(ctx context.Context, p redis.Pipeliner)) {
	b.ops = append(b.ops, op)
}

func (b *batch) HSet(key, field string, value []byte) {
	b.add(func(ctx context.Context, p redis.Pipeliner) { p.HSet(ctx, key, field, value) })
}

func (b *batch) HDel(key string, fields ...string) {
	if len(fields) == 0 {
		return
	}
	b.add(func(ctx context.Context, p redis.Pipeliner) { p.HDel(ctx, key, fields...) })
}

func (b *batch) ZAdd(key string, score float64, member string) {
	b.add(func(ctx context.Context, p redis.Pipeliner) {
		p.ZAdd(ctx, key, redis.Z{Score: score, Member: member})
	})
}

func (b *batch) ZRem(key string, ms ...string) {
	if len(ms) == 0 {
		return
	}
	b.add(func(ctx context.Context, p redis.Pipeliner) { p.ZRem(ctx, key, members(ms)...) })
}

// Del queues one DEL per key so a batch never spans cluster slots in a
// single command.
func (b *batch) Del(keys ...string) {
	for _, k := range keys {
		b.add(func(ctx context.Context, p redis.Pipeliner) { p.Del(ctx, k) })
	}
}

func (b *batch) Len() int {
	return len(b.ops)
}

func (b *batch) Exec(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	pipe := b.client.Pipeline()
	for _, op := range b.ops {
		op(ctx, pipe)
	}
	b.ops = nil
	if _, err := pipe.Exec(ctx); err != nil {
		return store.Unavailable("exec", err)
	}
	return nil
}
