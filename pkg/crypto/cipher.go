package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Cipher seals access and refresh tokens with AES-GCM before they reach the
// database. The key is process-wide and read-only after startup, so a Cipher
// is safe for concurrent use.
type Cipher struct {
	key []byte
}

// New validates the key eagerly so a misconfigured process fails at startup
// instead of running with a broken or default key.
func New(key []byte) (*Cipher, error) {
	if len(key) == 0 {
		return nil, errors.New("encryption key is empty")
	}
	if _, err := aes.NewCipher(key); err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	return &Cipher{key: key}, nil
}

// Encrypt seals plaintext with a random nonce and returns base64 for
// storage. Empty input returns the empty string untouched, so "no token was
// supplied" stays distinguishable from an encrypted empty token.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	nonce := make([]byte, aesGCM.NonceSize())
	_, err = io.ReadFull(rand.Reader, nonce)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	ciphertext := aesGCM.Seal(nil, nonce, []byte(plaintext), nil)

	// Nonce travels with the ciphertext
	finalData := append(nonce, ciphertext...)

	return base64.StdEncoding.EncodeToString(finalData), nil
}

// Decrypt reverses Encrypt. The empty sentinel decrypts to the empty string.
func (c *Cipher) Decrypt(encryptedData string) (string, error) {
	if encryptedData == "" {
		return "", nil
	}

	data, err := base64.StdEncoding.DecodeString(encryptedData)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	nonceSize := aesGCM.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return string(plaintext), nil
}
