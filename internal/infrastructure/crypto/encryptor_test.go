package crypto

import (
	"errors"
	"strings"
	"testing"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewEncryptor_InvalidKey(t *testing.T) {
	for _, secret := range []string{"", "too-short", testSecret[:31]} {
		if _, err := NewEncryptor(secret); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("NewEncryptor(%q) error = %v, want %v", secret, err, ErrInvalidKey)
		}
	}
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	enc, err := NewEncryptor(testSecret)
	if err != nil {
		t.Fatalf("NewEncryptor() failed: %v", err)
	}

	ciphertext, err := enc.Encrypt("123456789")
	if err != nil {
		t.Fatalf("Encrypt() failed: %v", err)
	}
	if strings.Contains(ciphertext, "123456789") {
		t.Fatalf("ciphertext leaks the account number: %q", ciphertext)
	}

	plaintext, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt() failed: %v", err)
	}
	if plaintext != "123456789" {
		t.Errorf("Decrypt() = %q, want %q", plaintext, "123456789")
	}
}

func TestEncrypt_UsesFreshNonce(t *testing.T) {
	enc, _ := NewEncryptor(testSecret)

	a, _ := enc.Encrypt("987654321")
	b, _ := enc.Encrypt("987654321")
	if a == b {
		t.Error("two encryptions of the same value produced identical ciphertext")
	}
}

func TestEncryptDecrypt_EmptyString(t *testing.T) {
	enc, _ := NewEncryptor(testSecret)

	if c, err := enc.Encrypt(""); err != nil || c != "" {
		t.Errorf("Encrypt(\"\") = %q, %v; want empty", c, err)
	}
	if p, err := enc.Decrypt(""); err != nil || p != "" {
		t.Errorf("Decrypt(\"\") = %q, %v; want empty", p, err)
	}
}

func TestDecrypt_Rejects(t *testing.T) {
	enc, _ := NewEncryptor(testSecret)
	other, _ := NewEncryptor(strings.Repeat("x", 40))
	foreign, _ := other.Encrypt("123456789")

	tests := []struct {
		name       string
		ciphertext string
	}{
		{name: "not base64", ciphertext: "%%%"},
		{name: "too short", ciphertext: "YWJj"},
		{name: "other key", ciphertext: foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := enc.Decrypt(tt.ciphertext); !errors.Is(err, ErrMalformedCiphertext) {
				t.Errorf("Decrypt() error = %v, want %v", err, ErrMalformedCiphertext)
			}
		})
	}
}

func TestDecrypt_DetectsTampering(t *testing.T) {
	enc, _ := NewEncryptor(testSecret)
	ciphertext, _ := enc.Encrypt("123456789")

	b := []byte(ciphertext)
	mid := len(b) / 2
	if b[mid] == 'A' {
		b[mid] = 'B'
	} else {
		b[mid] = 'A'
	}

	if _, err := enc.Decrypt(string(b)); !errors.Is(err, ErrMalformedCiphertext) {
		t.Errorf("Decrypt() error = %v, want %v", err, ErrMalformedCiphertext)
	}
}
