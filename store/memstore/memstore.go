// Package memstore is an in-process implementation of store.Store.
//
// It mirrors the Redis semantics the repositories rely on (absent values,
// negative ranks, score ordering, glob key patterns, TTL) and is used for
// embedding and for hermetic tests. Data lives only as long as the Store.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/itemstore/store"
)

type stringEntry struct {
	value   []byte
	expires time.Time
}

// Store keeps strings, hashes and sorted sets in maps guarded by one RWMutex.
type Store struct {
	mu      sync.RWMutex
	now     func() time.Time
	strings map[string]stringEntry
	hashes  map[string]map[string][]byte
	zsets   map[string]map[string]float64
}

var _ store.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for key expiration.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		now:     time.Now,
		strings: make(map[string]stringEntry),
		hashes:  make(map[string]map[string][]byte),
		zsets:   make(map[string]map[string]float64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func checkCtx(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return store.Unavailable(op, err)
	}
	return nil
}

// live reports whether a string entry exists and has not expired.
// Callers hold at least the read lock.
func (s *Store) live(key string) (stringEntry, bool) {
	e, ok := s.strings[key]
	if !ok {
		return stringEntry{}, false
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		return stringEntry{}, false
	}
	return e, true
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := checkCtx(ctx, "set"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e := stringEntry{value: clone(value)}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	delete(s.hashes, key)
	delete(s.zsets, key)
	s.strings[key] = e
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := checkCtx(ctx, "get"); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.live(key)
	if !ok {
		return nil, false, nil
	}
	return clone(e.value), true, nil
}

func (s *Store) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	if err := checkCtx(ctx, "mget"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if e, ok := s.live(k); ok {
			out[i] = clone(e.value)
		}
	}
	return out, nil
}

func (s *Store) Del(ctx context.Context, keys ...string) (int64, error) {
	if err := checkCtx(ctx, "del"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.del(keys...), nil
}

func (s *Store) del(keys ...string) int64 {
	var n int64
	for _, k := range keys {
		if _, ok := s.live(k); ok {
			n++
		}
		if _, ok := s.hashes[k]; ok {
			n++
		}
		if _, ok := s.zsets[k]; ok {
			n++
		}
		delete(s.strings, k)
		delete(s.hashes, k)
		delete(s.zsets, k)
	}
	return n
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := checkCtx(ctx, "exists"); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.live(key); ok {
		return true, nil
	}
	_, h := s.hashes[key]
	_, z := s.zsets[key]
	return h || z, nil
}

func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	if err := checkCtx(ctx, "keys"); err != nil {
		return nil, err
	}
	re, err := compileGlob(pattern)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for k := range s.strings {
		if _, ok := s.live(k); ok && re.MatchString(k) {
			out = append(out, k)
		}
	}
	for k := range s.hashes {
		if re.MatchString(k) {
			out = append(out, k)
		}
	}
	for k := range s.zsets {
		if re.MatchString(k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) HSet(ctx context.Context, key, field string, value []byte) error {
	if err := checkCtx(ctx, "hset"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hset(key, field, value)
	return nil
}

func (s *Store) hset(key, field string, value []byte) {
	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string][]byte)
		s.hashes[key] = h
	}
	h[field] = clone(value)
}

func (s *Store) HGet(ctx context.Context, key, field string) ([]byte, bool, error) {
	if err := checkCtx(ctx, "hget"); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.hashes[key][field]
	if !ok {
		return nil, false, nil
	}
	return clone(v), true, nil
}

func (s *Store) HMGet(ctx context.Context, key string, fields ...string) ([][]byte, error) {
	if err := checkCtx(ctx, "hmget"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.hashes[key]
	out := make([][]byte, len(fields))
	for i, f := range fields {
		if v, ok := h[f]; ok {
			out[i] = clone(v)
		}
	}
	return out, nil
}

func (s *Store) HDel(ctx context.Context, key string, fields ...string) (int64, error) {
	if err := checkCtx(ctx, "hdel"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hdel(key, fields...), nil
}

func (s *Store) hdel(key string, fields ...string) int64 {
	h, ok := s.hashes[key]
	if !ok {
		return 0
	}
	var n int64
	for _, f := range fields {
		if _, ok := h[f]; ok {
			delete(h, f)
			n++
		}
	}
	if len(h) == 0 {
		delete(s.hashes, key)
	}
	return n
}

func (s *Store) HExists(ctx context.Context, key, field string) (bool, error) {
	if err := checkCtx(ctx, "hexists"); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hashes[key][field]
	return ok, nil
}
