package score

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// MaxScore is the largest score that survives a round trip through float64.
const MaxScore int64 = 1<<53 - 1

var (
	ErrOverflow = errors.New("score: clock reading beyond the exact float64 range")
	ErrClock    = errors.New("score: clock reading precedes the unix epoch")
)

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces time.Now as the generator's time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// Generator issues strictly increasing scores. It is safe for concurrent use.
type Generator struct {
	now func() time.Time

	// start carries the monotonic clock reading taken at construction, so
	// later samples are measured against it and never see wall clock steps.
	start       time.Time
	startOffset time.Duration

	// last is the most recently issued score.
	last atomic.Int64
}

func New(opts ...Option) *Generator {
	g := &Generator{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	g.start = g.now()
	g.startOffset = g.start.Sub(time.Unix(0, 0))
	return g
}

// Next returns a score greater than every score previously returned by g.
func (g *Generator) Next() (int64, error) {
	for {
		now := g.micros()
		if now < 0 {
			return 0, fmt.Errorf("%d: %w", now, ErrClock)
		}

		last := g.last.Load()
		next := now
		if next <= last {
			next = last + 1
		}
		if next > MaxScore {
			return 0, fmt.Errorf("%d: %w", next, ErrOverflow)
		}

		// Losing the swap means another caller issued a score in between;
		// re-read and try again.
		if g.last.CompareAndSwap(last, next) {
			return next, nil
		}
	}
}

// Last returns the most recently issued score, or 0 if none was issued.
func (g *Generator) Last() int64 {
	return g.last.Load()
}

func (g *Generator) micros() int64 {
	elapsed := g.now().Sub(g.start)
	return int64((g.startOffset + elapsed) / time.Microsecond)
}

// ApproxTime returns the wall clock time embedded in score.
func ApproxTime(score int64) time.Time {
	return time.UnixMicro(score)
}

// Bounds converts a time interval into the inclusive score interval that
// covers items stored within it.
func Bounds(from, to time.Time) (int64, int64) {
	return from.UnixMicro(), to.UnixMicro()
}
