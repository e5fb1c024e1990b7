// Package cryptox derives keys and seals opaque byte payloads with an AEAD.
package cryptox

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the length of keys accepted by Seal and Open.
const KeySize = chacha20poly1305.KeySize

var ErrShortCiphertext = errors.New("sealed data shorter than nonce")

// DeriveKey stretches a passphrase into a KeySize key with Argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// Seal encrypts plaintext with XChaCha20-Poly1305 under key.
//
// A fresh random 24-byte nonce is generated for each call and prepended to
// the ciphertext, so the result is self-contained:
//
//	nonce (24 bytes) || ciphertext || tag (16 bytes)
func Seal(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal. It fails if key is wrong or sealed was modified.
func Open(key, sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}

	if len(sealed) < aead.NonceSize() {
		return nil, ErrShortCiphertext
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open sealed data: %w", err)
	}
	return plaintext, nil
}
