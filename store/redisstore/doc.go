// Package redisstore implements store.Store on top of a go-redis
// UniversalClient, so the same repositories run against a single Redis node
// or a Redis Cluster.
//
// Absent keys and fields (redis.Nil) are reported as "not found" values; any
// other client error is wrapped with store.ErrUnavailable.
//
// On a cluster, multi-key Del and MGet are split into single-key commands
// sent through one pipeline, since the keys may live in different slots.
package redisstore
