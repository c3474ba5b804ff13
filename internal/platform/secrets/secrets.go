package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// Values are stored as "gcm1:" + base64(nonce || ciphertext). Rows written
// before encryption was introduced hold raw plaintext; DecryptString passes
// those through unchanged instead of failing.
const envelopePrefix = "gcm1:"

type Cipher struct {
	key []byte
}

func NewCipher(key string) (*Cipher, error) {
	k := []byte(key)
	if len(k) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(k))
	}
	buf := make([]byte, 32)
	copy(buf, k)
	return &Cipher{key: buf}, nil
}

func (c *Cipher) EncryptString(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("new gcm: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return envelopePrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptString opens an envelope produced by EncryptString. Input without
// the envelope prefix, or input that fails to open, is returned as-is so
// that legacy plaintext credentials keep working.
func (c *Cipher) DecryptString(stored string) string {
	if !strings.HasPrefix(stored, envelopePrefix) {
		return stored
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, envelopePrefix))
	if err != nil {
		return stored
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return stored
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return stored
	}
	if len(raw) < aead.NonceSize() {
		return stored
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return stored
	}
	return string(plaintext)
}
