package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/domrec/pkg/ports"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// envelope keeps encrypted values valid JSON so any KeyValueStore can hold them.
type envelope struct {
	Encrypted []byte `json:"encrypted"`
}

type encryptionMiddleware struct {
	next   ports.KeyValueStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts values using AES-GCM.
func NewEncryptionMiddleware(config EncryptionConfig) (ValueMiddleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.KeyValueStore) ports.KeyValueStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Put(ctx context.Context, key string, value []byte) error {
	ciphertext, err := encrypt(value, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt value: %w", err)
	}

	wrapped, err := json.Marshal(envelope{Encrypted: ciphertext})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return m.next.Put(ctx, key, wrapped)
}

func (m *encryptionMiddleware) Get(ctx context.Context, key string) ([]byte, error) {
	wrapped, err := m.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(wrapped, &env); err != nil || len(env.Encrypted) == 0 {
		// Fail secure: plain values are not accepted once encryption is configured.
		return nil, errors.New("value is missing encrypted data envelope")
	}

	plainText, err := decryptWithRotation(env.Encrypted, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt value: %w", err)
	}
	return plainText, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *encryptionMiddleware) Keys(ctx context.Context) ([]string, error) {
	return m.next.Keys(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
