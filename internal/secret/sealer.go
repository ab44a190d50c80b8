// Package secret seals connection credentials at rest.
//
// A Sealer derives an AES-256 key from a passphrase with argon2id and
// encrypts values with AES-GCM. Sealed values are self-describing strings
// ("sealed:v1:<base64 nonce||ciphertext>") so they can sit in the same JSON
// field a plain value would.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const sealedPrefix = "sealed:v1:"

// The salt is fixed so the same passphrase always opens the same state.
var keySalt = []byte("launchpad/credentials/v1")

// Errors returned by Open.
var (
	ErrMalformed = errors.New("malformed sealed value")
	ErrWrongKey  = errors.New("sealed value does not open with this key")
)

// Sealer encrypts and decrypts short secrets.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a key from passphrase.
func NewSealer(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase is required")
	}

	key := argon2.IDKey([]byte(passphrase), keySalt, 1, 64*1024, 4, 32)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// IsSealed reports whether v was produced by Seal.
func IsSealed(v string) bool {
	return strings.HasPrefix(v, sealedPrefix)
}

// Seal encrypts plaintext. The empty string is returned unchanged.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal. Values without the sealed prefix
// are returned as they are, so state written before a key was configured
// still loads.
func (s *Sealer) Open(v string) (string, error) {
	if !IsSealed(v) {
		return v, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(v, sealedPrefix))
	if err != nil {
		return "", ErrMalformed
	}
	ns := s.aead.NonceSize()
	if len(raw) < ns {
		return "", ErrMalformed
	}

	plaintext, err := s.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", ErrWrongKey
	}
	return string(plaintext), nil
}
