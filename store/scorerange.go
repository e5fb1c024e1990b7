package store

import (
	"math"
	"strconv"
)

// ScoreRange selects sorted set members by score.
type ScoreRange struct {
	Min, Max float64
	// ExclusiveMin and ExclusiveMax turn the bounds into strict inequalities.
	ExclusiveMin bool
	ExclusiveMax bool
	// Offset skips that many matches; Count limits the result (0 = no limit).
	Offset int64
	Count  int64
}

// Between returns the inclusive range [min, max].
func Between(min, max float64) ScoreRange {
	return ScoreRange{Min: min, Max: max}
}

// Above returns the range (min, +inf) limited to count members.
func Above(min float64, count int64) ScoreRange {
	return ScoreRange{Min: min, Max: math.Inf(1), ExclusiveMin: true, Count: count}
}

// Contains reports whether score falls inside the bounds of r.
func (r ScoreRange) Contains(score float64) bool {
	if score < r.Min || (r.ExclusiveMin && score == r.Min) {
		return false
	}
	if score > r.Max || (r.ExclusiveMax && score == r.Max) {
		return false
	}
	return true
}

// MinArg and MaxArg render the bounds in Redis ZRANGEBYSCORE syntax.
func (r ScoreRange) MinArg() string {
	return boundArg(r.Min, r.ExclusiveMin)
}

func (r ScoreRange) MaxArg() string {
	return boundArg(r.Max, r.ExclusiveMax)
}

func boundArg(v float64, exclusive bool) string {
	var s string
	switch {
	case math.IsInf(v, 1):
		s = "+inf"
	case math.IsInf(v, -1):
		s = "-inf"
	default:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	}
	if exclusive {
		return "(" + s
	}
	return s
}
