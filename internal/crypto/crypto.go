package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
)

// KeySize is the AES-256 key length.
const KeySize = 32

var ErrKeySize = errors.New("crypto: key must be 32 bytes")

// Cipher seals column values with AES-GCM under a single key.
type Cipher struct {
	aead cipher.AEAD
}

// DeriveKey stretches an arbitrary secret into a 32 byte key.
func DeriveKey(secret string) []byte {
	sum := sha256.Sum256([]byte("firm-management/column-key:" + secret))
	return sum[:]
}

func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aesgcm}, nil
}

// Encrypt encrypts data using AES-GCM and returns the ciphertext and nonce
func (c *Cipher) Encrypt(plaintext string) ([]byte, []byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, err
	}
	return c.aead.Seal(nil, nonce, []byte(plaintext), nil), nonce, nil
}

// Decrypt decrypts AES-GCM encrypted data
func (c *Cipher) Decrypt(ciphertext, nonce []byte) (string, error) {
	if len(nonce) != c.aead.NonceSize() {
		return "", errors.New("crypto: bad nonce length")
	}
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// EncryptOptional encrypts a nullable column. A nil value stays nil.
func (c *Cipher) EncryptOptional(v *string) ([]byte, []byte, error) {
	if v == nil {
		return nil, nil, nil
	}
	return c.Encrypt(*v)
}

// DecryptOptional is the inverse of EncryptOptional.
func (c *Cipher) DecryptOptional(ciphertext, nonce []byte) (*string, error) {
	if ciphertext == nil {
		return nil, nil
	}
	s, err := c.Decrypt(ciphertext, nonce)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
