package codec

import (
	"fmt"

	"github.com/dmitrijs2005/itemstore/internal/cryptox"
	"github.com/dmitrijs2005/itemstore/models"
)

// Sealed encrypts the output of another codec at rest. Data that was
// tampered with or sealed under a different key fails with ErrDecode.
type Sealed[T any] struct {
	inner Codec[T]
	key   []byte
}

// NewSealed wraps inner so that stored bytes are authenticated and
// encrypted with key, which must be KeySize bytes long.
func NewSealed[T any](inner Codec[T], key []byte) (*Sealed[T], error) {
	if inner == nil {
		return nil, fmt.Errorf("codec: inner codec cannot be nil")
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("codec: sealing key must be %d bytes, got %d", KeySize, len(key))
	}
	return &Sealed[T]{inner: inner, key: append([]byte(nil), key...)}, nil
}

// KeySize is the key length NewSealed expects.
const KeySize = cryptox.KeySize

// DeriveKey turns a passphrase and salt into a key suitable for NewSealed.
func DeriveKey(passphrase, salt []byte) []byte {
	return cryptox.DeriveKey(passphrase, salt)
}

func (s *Sealed[T]) Marshal(item models.Item[T]) ([]byte, error) {
	plain, err := s.inner.Marshal(item)
	if err != nil {
		return nil, err
	}
	return cryptox.Seal(s.key, plain)
}

func (s *Sealed[T]) Unmarshal(data []byte) (*models.Item[T], error) {
	if len(data) == 0 {
		return nil, nil
	}
	plain, err := cryptox.Open(s.key, data)
	if err != nil {
		return nil, decodeErr(err)
	}
	return s.inner.Unmarshal(plain)
}
