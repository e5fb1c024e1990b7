package memstore

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/itemstore/store"
)

type member struct {
	name  string
	score float64
}

// sorted returns the members of key ordered by score, ties by name.
// Callers hold at least the read lock.
func (s *Store) sorted(key string) []member {
	z := s.zsets[key]
	out := make([]member, 0, len(z))
	for name, score := range z {
		out = append(out, member{name: name, score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score < out[j].score
		}
		return out[i].name < out[j].name
	})
	return out
}

func (s *Store) ZAdd(ctx context.Context, key string, score float64, name string) error {
	if err := checkCtx(ctx, "zadd"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zadd(key, score, name)
	return nil
}

func (s *Store) zadd(key string, score float64, name string) {
	z, ok := s.zsets[key]
	if !ok {
		z = make(map[string]float64)
		s.zsets[key] = z
	}
	z[name] = score
}

func (s *Store) ZRem(ctx context.Context, key string, names ...string) (int64, error) {
	if err := checkCtx(ctx, "zrem"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zrem(key, names...), nil
}

func (s *Store) zrem(key string, names ...string) int64 {
	z, ok := s.zsets[key]
	if !ok {
		return 0
	}
	var n int64
	for _, name := range names {
		if _, ok := z[name]; ok {
			delete(z, name)
			n++
		}
	}
	if len(z) == 0 {
		delete(s.zsets, key)
	}
	return n
}

func (s *Store) ZCard(ctx context.Context, key string) (int64, error) {
	if err := checkCtx(ctx, "zcard"); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.zsets[key])), nil
}

// ZRange follows Redis rank semantics: inclusive bounds, negative ranks count
// from the end, out-of-range bounds are clamped.
func (s *Store) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if err := checkCtx(ctx, "zrange"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := s.sorted(key)
	lo, hi, ok := clampRanks(start, stop, int64(len(members)))
	if !ok {
		return []string{}, nil
	}
	out := make([]string, 0, hi-lo+1)
	for _, m := range members[lo : hi+1] {
		out = append(out, m.name)
	}
	return out, nil
}

func clampRanks(start, stop, n int64) (int64, int64, bool) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop, true
}

func (s *Store) ZRangeByScore(ctx context.Context, key string, r store.ScoreRange) ([]string, error) {
	if err := checkCtx(ctx, "zrangebyscore"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []string{}
	skipped := int64(0)
	for _, m := range s.sorted(key) {
		if !r.Contains(m.score) {
			continue
		}
		if skipped < r.Offset {
			skipped++
			continue
		}
		out = append(out, m.name)
		if r.Count > 0 && int64(len(out)) == r.Count {
			break
		}
	}
	return out, nil
}

func (s *Store) ZScore(ctx context.Context, key, name string) (float64, bool, error) {
	if err := checkCtx(ctx, "zscore"); err != nil {
		return 0, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.zsets[key][name]
	return score, ok, nil
}
