package score

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_StrictlyIncreasing(t *testing.T) {
	g := New()

	prev, err := g.Next()
	require.NoError(t, err)
	for i := 0; i < 10000; i++ {
		s, err := g.Next()
		require.NoError(t, err)
		require.Greater(t, s, prev, "iteration %d", i)
		prev = s
	}
	assert.Equal(t, prev, g.Last())
}

func TestNext_FrozenClockBumpsByOne(t *testing.T) {
	frozen := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	g := New(WithClock(func() time.Time { return frozen }))

	s1, err := g.Next()
	require.NoError(t, err)
	s2, err := g.Next()
	require.NoError(t, err)
	s3, err := g.Next()
	require.NoError(t, err)

	assert.Equal(t, frozen.UnixMicro(), s1)
	assert.Equal(t, s1+1, s2)
	assert.Equal(t, s2+1, s3)
}

func TestNext_ClockGoingBackwards(t *testing.T) {
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	readings := []time.Time{
		base,
		base.Add(10 * time.Millisecond),
		base.Add(-time.Second),
		base.Add(-2 * time.Second),
		base.Add(20 * time.Millisecond),
	}
	var mu sync.Mutex
	i := 0
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		r := readings[i]
		if i < len(readings)-1 {
			i++
		}
		return r
	}

	g := New(WithClock(clock))

	var got []int64
	for range 4 {
		s, err := g.Next()
		require.NoError(t, err)
		got = append(got, s)
	}

	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i], got[i-1])
	}
	assert.Equal(t, base.Add(20*time.Millisecond).UnixMicro(), got[3])
}

func TestNext_ConcurrentCallersGetUniqueScores(t *testing.T) {
	g := New()

	const workers = 8
	const perWorker = 2000

	var wg sync.WaitGroup
	results := make([][]int64, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s, err := g.Next()
				if err != nil {
					t.Errorf("Next() error = %v", err)
					return
				}
				results[w] = append(results[w], s)
			}
		}(w)
	}
	wg.Wait()

	seen := make(map[int64]struct{}, workers*perWorker)
	for _, series := range results {
		for i, s := range series {
			if i > 0 {
				require.Greater(t, s, series[i-1])
			}
			_, dup := seen[s]
			require.False(t, dup, "duplicate score %d", s)
			seen[s] = struct{}{}
		}
	}
	assert.Len(t, seen, workers*perWorker)
}

func TestNext_ClockBeforeEpoch(t *testing.T) {
	g := New(WithClock(func() time.Time { return time.Unix(-10, 0) }))
	_, err := g.Next()
	assert.True(t, errors.Is(err, ErrClock))
}

func TestNext_Overflow(t *testing.T) {
	g := New(WithClock(func() time.Time { return time.Date(2260, 1, 1, 0, 0, 0, 0, time.UTC) }))
	_, err := g.Next()
	assert.True(t, errors.Is(err, ErrOverflow))
}

func TestApproxTime_MatchesWallClock(t *testing.T) {
	before := time.Now()
	s, err := New().Next()
	require.NoError(t, err)
	after := time.Now()

	at := ApproxTime(s)
	assert.WithinDuration(t, before, at, time.Second)
	assert.False(t, at.After(after.Add(time.Millisecond)))
}

func TestBounds(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(5 * time.Millisecond)

	min, max := Bounds(from, to)
	assert.Equal(t, from.UnixMicro(), min)
	assert.Equal(t, min+5000, max)
	assert.Equal(t, from, ApproxTime(min).UTC())
}

func TestScoresAreExactAsFloat64(t *testing.T) {
	s, err := New().Next()
	require.NoError(t, err)
	assert.Equal(t, s, int64(float64(s)))
	assert.Equal(t, MaxScore, int64(float64(MaxScore)))
}
