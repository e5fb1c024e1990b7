// Package models defines the item types stored by the repositories.
package models

import "github.com/google/uuid"

// Item is a caller-defined payload addressed by ID. The payload is opaque to
// the repositories beyond encoding and decoding.
type Item[T any] struct {
	ID   string `json:"id" cbor:"id" msgpack:"id"`
	Data T      `json:"data" cbor:"data" msgpack:"data"`
}

// NewItem wraps data in an Item with a fresh UUIDv7 identifier.
func NewItem[T any](data T) Item[T] {
	return Item[T]{
		ID:   uuid.Must(uuid.NewV7()).String(),
		Data: data,
	}
}

// SortedItem is an Item together with the score the sorted repository
// assigned to it when it was stored.
type SortedItem[T any] struct {
	Item[T]
	Score int64
}

// Page is one page of items plus the total number of items in the collection.
type Page[T any] struct {
	Items []Item[T]
	Count int64
}
