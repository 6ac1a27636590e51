// Package encryption implements the symmetric codec used to keep task
// summaries encrypted at rest.
//
// Summaries are encrypted with AES-256-CBC under a pre-shared key and IV,
// PKCS#7 padded and hex encoded. The scheme is deterministic: the same
// plaintext always yields the same ciphertext, which keeps existing rows
// readable by other services sharing the key material.
package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/config"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// IVSize is the CBC initialization vector length in bytes.
	IVSize = aes.BlockSize
)

// ErrInvalidKeyMaterial is returned by NewCodec for a key or IV of the wrong size.
var ErrInvalidKeyMaterial = errors.New("invalid encryption key material")

// DecryptionError reports stored ciphertext that cannot be turned back into
// plaintext. Corrupted data does not heal, so callers must not retry.
type DecryptionError struct {
	Reason string
	Err    error
}

func (e *DecryptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decryption failed: %s: %v", e.Reason, e.Err)
	}
	return "decryption failed: " + e.Reason
}

func (e *DecryptionError) Unwrap() error {
	return e.Err
}

// Fatal reports that the failure is permanent.
func (e *DecryptionError) Fatal() bool {
	return true
}

// Name identifies the error kind in API error envelopes.
func (e *DecryptionError) Name() string {
	return "DecryptionError"
}

// Codec encrypts and decrypts task summaries.
type Codec struct {
	block cipher.Block
	iv    []byte
}

// NewCodec creates a Codec from raw key and IV bytes.
func NewCodec(key, iv []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", ErrInvalidKeyMaterial, KeySize, len(key))
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", ErrInvalidKeyMaterial, IVSize, len(iv))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyMaterial, err)
	}

	return &Codec{
		block: block,
		iv:    bytes.Clone(iv),
	}, nil
}

// NewCodecFromConfig creates a Codec from the configured key and IV strings.
func NewCodecFromConfig(cfg config.EncryptionConfig) (*Codec, error) {
	return NewCodec([]byte(cfg.Key), []byte(cfg.IV))
}

// Encrypt returns the hex-encoded AES-256-CBC ciphertext of plaintext.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	padded := pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, padded)
	return hex.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Any malformed input yields a *DecryptionError.
func (c *Codec) Decrypt(ciphertext string) (string, error) {
	raw, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", &DecryptionError{Reason: "ciphertext is not valid hex", Err: err}
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", &DecryptionError{
			Reason: fmt.Sprintf("ciphertext length %d is not a multiple of the block size", len(raw)),
		}
	}

	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, raw)

	plain, err := unpad(out, aes.BlockSize)
	if err != nil {
		return "", &DecryptionError{Reason: "bad padding", Err: err}
	}
	return string(plain), nil
}

// pad applies PKCS#7 padding. A full block is added when data is already aligned.
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(n)}, n)...)
}

var errBadPadding = errors.New("invalid PKCS#7 padding")

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errBadPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errBadPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errBadPadding
		}
	}
	return data[:len(data)-n], nil
}
