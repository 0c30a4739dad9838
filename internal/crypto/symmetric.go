package crypto

import (
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/navicore/zim-hide/internal/util"
)

// Argon2id parameters. t=3, m=64MB (65536 KiB), p=4.
const (
	argonTime    = 3
	argonMemory  = 65536
	argonThreads = 4

	symKeySize  = chacha20poly1305.KeySize
	symSaltSize = 16
)

// EncryptSymmetric derives a key from the passphrase with Argon2id and seals
// the plaintext with ChaCha20-Poly1305.
//
// Output framing: salt_len(1) | salt (ASCII PHC string) | nonce(12) | ct+tag.
func EncryptSymmetric(rng io.Reader, plaintext []byte, passphrase []byte) ([]byte, error) {
	rawSalt := make([]byte, symSaltSize)
	if _, err := io.ReadFull(rng, rawSalt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	saltStr := base64.RawStdEncoding.EncodeToString(rawSalt)
	if len(saltStr) > 255 {
		return nil, fmt.Errorf("salt string too long: %d bytes", len(saltStr))
	}

	key := argon2.IDKey(passphrase, rawSalt, argonTime, argonMemory, argonThreads, symKeySize)
	defer Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := io.ReadFull(rng, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, 1+len(saltStr)+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, byte(len(saltStr)))
	out = append(out, saltStr...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, plaintext, nil)

	return out, nil
}

// DecryptSymmetric re-derives the key from the stored salt and opens the
// ciphertext. A tag mismatch is reported as ErrBadPassphrase.
func DecryptSymmetric(data []byte, passphrase []byte) ([]byte, error) {
	if len(data) < 1 {
		return nil, util.ErrTruncated
	}
	saltLen := int(data[0])
	if len(data) < 1+saltLen+chacha20poly1305.NonceSize+chacha20poly1305.Overhead {
		return nil, util.ErrTruncated
	}

	saltStr := data[1 : 1+saltLen]
	rawSalt, err := base64.RawStdEncoding.DecodeString(string(saltStr))
	if err != nil {
		return nil, fmt.Errorf("invalid salt: %w", err)
	}

	nonce := data[1+saltLen : 1+saltLen+chacha20poly1305.NonceSize]
	ciphertext := data[1+saltLen+chacha20poly1305.NonceSize:]

	key := argon2.IDKey(passphrase, rawSalt, argonTime, argonMemory, argonThreads, symKeySize)
	defer Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, util.ErrBadPassphrase
	}
	return plaintext, nil
}
