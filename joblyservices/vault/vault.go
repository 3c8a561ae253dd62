package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

var ErrInvalidCipherText = errors.New("invalid cipher text")

// New returns a Vault sealing with AES-GCM. The key must be 16, 24 or 32
// bytes long.
func New(key []byte) (Vault, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return Vault{}, err
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return Vault{}, err
	}

	return Vault{
		aead: aead,
	}, nil
}

type Vault struct {
	aead cipher.AEAD
}

// Encrypt seals text and returns it URL safe base64 encoded, nonce first.
func (v Vault) Encrypt(text []byte) ([]byte, error) {
	nonce := make([]byte, v.aead.NonceSize(), v.aead.NonceSize()+len(text)+v.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	sealed := v.aead.Seal(nonce, nonce, text, nil)

	encoded := make([]byte, base64.RawURLEncoding.EncodedLen(len(sealed)))
	base64.RawURLEncoding.Encode(encoded, sealed)

	return encoded, nil
}

// Decrypt opens what Encrypt produced. Anything altered or sealed with
// another key fails with ErrInvalidCipherText.
func (v Vault) Decrypt(raw []byte) ([]byte, error) {
	sealed := make([]byte, base64.RawURLEncoding.DecodedLen(len(raw)))
	n, err := base64.RawURLEncoding.Decode(sealed, raw)
	if err != nil {
		return nil, ErrInvalidCipherText
	}
	sealed = sealed[:n]

	if len(sealed) < v.aead.NonceSize() {
		return nil, ErrInvalidCipherText
	}

	nonce, cipherText := sealed[:v.aead.NonceSize()], sealed[v.aead.NonceSize():]
	text, err := v.aead.Open(nil, nonce, cipherText, nil)
	if err != nil {
		return nil, ErrInvalidCipherText
	}

	return text, nil
}
