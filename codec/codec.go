// Package codec converts items to and from the bytes kept in the backing
// store.
//
// Every codec encodes the whole Item (identifier and payload) so a stored
// value is self-describing. Decoding a nil or empty byte slice yields a nil
// item and a nil error: callers use that to tell an absent value from a
// malformed one, which fails with ErrDecode.
package codec

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/itemstore/models"
)

// ErrDecode indicates that stored bytes do not match the codec's format.
var ErrDecode = errors.New("codec: malformed item data")

// Codec serializes items for storage.
type Codec[T any] interface {
	Marshal(item models.Item[T]) ([]byte, error)
	// Unmarshal returns (nil, nil) for empty input.
	Unmarshal(data []byte) (*models.Item[T], error)
}

// Default returns the codec repositories use when none is configured.
func Default[T any]() Codec[T] {
	return CBOR[T]{}
}

func decodeErr(err error) error {
	return fmt.Errorf("%w: %w", ErrDecode, err)
}
