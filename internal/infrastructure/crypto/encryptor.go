// Package crypto protects account numbers at rest.
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// MinSecretLength is the shortest accepted ENCRYPTION_KEY.
const MinSecretLength = 32

const keyInfo = "achledger/account-number/v1"

var (
	// ErrInvalidKey is returned for secrets shorter than MinSecretLength.
	ErrInvalidKey = errors.New("encryption key must be at least 32 bytes")
	// ErrMalformedCiphertext is returned when Decrypt gets something
	// Encrypt never produced, or the secret changed.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
)

// Encryptor seals values with XChaCha20-Poly1305 under a key derived from
// the configured secret with HKDF-SHA256. Output is base64(nonce|sealed).
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor derives the data key from secret.
func NewEncryptor(secret string) (*Encryptor, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrInvalidKey
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	return &Encryptor{aead: aead}, nil
}

// Encrypt seals plaintext with a fresh random nonce.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(plaintext)+e.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func (e *Encryptor) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrMalformedCiphertext
	}
	if len(raw) < e.aead.NonceSize()+e.aead.Overhead() {
		return "", ErrMalformedCiphertext
	}

	nonce, sealed := raw[:e.aead.NonceSize()], raw[e.aead.NonceSize():]
	plaintext, err := e.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrMalformedCiphertext
	}

	return string(plaintext), nil
}
