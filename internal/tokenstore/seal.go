// ABOUTME: Authenticated encryption for values the token store persists
// ABOUTME: XChaCha20-Poly1305 with a key derived from the session secret via HKDF-SHA256

package tokenstore

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// ErrSealed is returned when a stored value cannot be opened, either because
// it was tampered with or because the secret changed.
var ErrSealed = errors.New("sealed value could not be opened")

const sealInfo = "jobsforce-admin token store v1"

// Sealer encrypts and authenticates stored values. The storage key is bound
// as additional data so a value copied to another key fails to open.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives an encryption key from secret.
func NewSealer(secret []byte) (*Sealer, error) {
	if len(secret) == 0 {
		return nil, errors.New("sealer secret is empty")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(sealInfo)), key); err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// Seal returns nonce || ciphertext for plaintext stored under key.
func (s *Sealer) Seal(key string, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, []byte(key)), nil
}

// Open reverses Seal.
func (s *Sealer) Open(key string, sealed []byte) ([]byte, error) {
	if len(sealed) < s.aead.NonceSize() {
		return nil, ErrSealed
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return nil, ErrSealed
	}
	return plaintext, nil
}
