// Package score generates the ordering scores of the sorted repository.
//
// A score is the number of microseconds since the Unix epoch at which an item
// was stored. The generator guarantees that every score it returns is
// strictly greater than the previous one, even when several calls land in
// the same microsecond or the wall clock is stepped backwards: in that case
// the previous score is bumped by one.
//
// Scores are kept below 2^53 so the backing store can hold them as float64
// values without losing precision. That bound is reached in the year 2255.
//
// Because scores are timestamps, they double as an approximate insertion
// time; ApproxTime and Bounds convert in both directions at microsecond
// resolution.
package score
