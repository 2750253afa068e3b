// Package syncer implements the encrypted sync protocol: the Document is
// AES-256-GCM encrypted with a key derived from a locally held secret and
// mirrored to a remote object store as a single well-known blob,
// last-write-wins.
package syncer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Wire format constants. The payload is base64(salt || nonce || ciphertext)
// with fixed offsets, so both sides split the decoded buffer at 16 and 28.
const (
	saltSize   = 16
	nonceSize  = 12
	keySize    = 32 // AES-256
	kdfRounds  = 100000
	secretSize = 16 // raw bytes of the locally held secret
)

// NewSecret generates a fresh sync secret: 16 cryptographically random
// bytes, hex-encoded (32 characters). The secret is persisted locally and
// never transmitted.
func NewSecret() (string, error) {
	raw := make([]byte, secretSize)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate sync secret: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// Encrypt seals plaintext with a key derived from secret. Every call uses a
// fresh random salt and nonce, so identical plaintexts produce distinct
// payloads.
func Encrypt(plaintext []byte, secret string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	aead, err := newAEAD(secret, salt)
	if err != nil {
		return "", err
	}

	sealed := aead.Seal(nil, nonce, plaintext, nil)

	payload := make([]byte, 0, saltSize+nonceSize+len(sealed))
	payload = append(payload, salt...)
	payload = append(payload, nonce...)
	payload = append(payload, sealed...)
	return base64.StdEncoding.EncodeToString(payload), nil
}

// Decrypt opens a payload produced by Encrypt (or an interoperable
// implementation of the same format).
func Decrypt(payload string, secret string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	if len(raw) < saltSize+nonceSize {
		return nil, fmt.Errorf("payload too short: %d bytes", len(raw))
	}

	salt := raw[:saltSize]
	nonce := raw[saltSize : saltSize+nonceSize]
	sealed := raw[saltSize+nonceSize:]

	aead, err := newAEAD(secret, salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt payload: %w", err)
	}
	return plaintext, nil
}

// newAEAD derives an AES-256-GCM cipher from the secret via
// PBKDF2-SHA256.
func newAEAD(secret string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(secret), salt, kdfRounds, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}
