package memstore

import (
	"context"

	"github.com/dmitrijs2005/itemstore/store"
)

type batch struct {
	s   *Store
	ops []func(*Store)
}

// Batch returns a write batch that applies all queued commands under a single
// lock on Exec.
func (s *Store) Batch() store.Batch {
	return &batch{s: s}
}

func (b *batch) HSet(key, field string, value []byte) {
	v := clone(value)
	b.ops = append(b.ops, func(s *Store) { s.hset(key, field, v) })
}

func (b *batch) HDel(key string, fields ...string) {
	b.ops = append(b.ops, func(s *Store) { s.hdel(key, fields...) })
}

func (b *batch) ZAdd(key string, score float64, name string) {
	b.ops = append(b.ops, func(s *Store) { s.zadd(key, score, name) })
}

func (b *batch) ZRem(key string, names ...string) {
	b.ops = append(b.ops, func(s *Store) { s.zrem(key, names...) })
}

func (b *batch) Del(keys ...string) {
	b.ops = append(b.ops, func(s *Store) { s.del(keys...) })
}

func (b *batch) Len() int {
	return len(b.ops)
}

func (b *batch) Exec(ctx context.Context) error {
	if err := checkCtx(ctx, "exec"); err != nil {
		return err
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	for _, op := range b.ops {
		op(b.s)
	}
	b.ops = nil
	return nil
}
