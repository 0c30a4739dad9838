package crypto

import (
	"crypto/ecdh"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/navicore/zim-hide/internal/util"
)

const (
	dataKeySize       = chacha20poly1305.KeySize
	ephemeralPubSize  = 32
	wrappedKeySize    = dataKeySize + chacha20poly1305.Overhead
	perRecipientSize  = ephemeralPubSize + chacha20poly1305.NonceSizeX + wrappedKeySize
	// MaxRecipients is bounded by the one-byte recipient count.
	MaxRecipients = 255
)

// EncryptAsymmetric seals the plaintext under a fresh data key and wraps that
// key once per recipient with an ephemeral X25519 exchange.
//
// Output framing:
//
//	n(1) | { eph_pub(32) | key_nonce(24) | wrapped_key(48) } x n
//	| payload_nonce(24) | ct+tag
func EncryptAsymmetric(rng io.Reader, plaintext []byte, recipients []*PublicKey) ([]byte, error) {
	if len(recipients) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}
	if len(recipients) > MaxRecipients {
		return nil, fmt.Errorf("too many recipients: %d (max %d)", len(recipients), MaxRecipients)
	}

	dataKey := make([]byte, dataKeySize)
	if _, err := io.ReadFull(rng, dataKey); err != nil {
		return nil, fmt.Errorf("generate data key: %w", err)
	}
	defer Zero(dataKey)

	out := make([]byte, 0, 1+len(recipients)*perRecipientSize+chacha20poly1305.NonceSizeX+len(plaintext)+chacha20poly1305.Overhead)
	out = append(out, byte(len(recipients)))

	curve := ecdh.X25519()
	for _, recipient := range recipients {
		recipientPub, err := curve.NewPublicKey(recipient.X)
		if err != nil {
			return nil, fmt.Errorf("recipient public key: %w", err)
		}

		ephPriv, err := curve.GenerateKey(rng)
		if err != nil {
			return nil, fmt.Errorf("generate ephemeral key: %w", err)
		}

		shared, err := ephPriv.ECDH(recipientPub)
		if err != nil {
			return nil, fmt.Errorf("key exchange: %w", err)
		}

		kek := deriveKEK(shared)
		Zero(shared)

		keyAEAD, err := chacha20poly1305.NewX(kek)
		Zero(kek)
		if err != nil {
			return nil, fmt.Errorf("create key cipher: %w", err)
		}

		keyNonce := make([]byte, chacha20poly1305.NonceSizeX)
		if _, err := io.ReadFull(rng, keyNonce); err != nil {
			return nil, fmt.Errorf("generate key nonce: %w", err)
		}

		out = append(out, ephPriv.PublicKey().Bytes()...)
		out = append(out, keyNonce...)
		out = keyAEAD.Seal(out, keyNonce, dataKey, nil)
	}

	payloadNonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := io.ReadFull(rng, payloadNonce); err != nil {
		return nil, fmt.Errorf("generate payload nonce: %w", err)
	}

	aead, err := chacha20poly1305.NewX(dataKey)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	out = append(out, payloadNonce...)
	out = aead.Seal(out, payloadNonce, plaintext, nil)

	return out, nil
}

// DecryptAsymmetric walks the per-recipient blocks, attempting to unwrap the
// data key with the holder's X25519 private key. The first successful unwrap
// wins. When no block matches, the failure is ErrNoRecipientMatch regardless
// of why each attempt failed.
func DecryptAsymmetric(data []byte, priv *PrivateKey) ([]byte, error) {
	if len(data) < 1 {
		return nil, util.ErrTruncated
	}
	n := int(data[0])
	if n == 0 {
		return nil, util.ErrTruncated
	}

	headerSize := 1 + n*perRecipientSize
	if len(data) < headerSize+chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return nil, util.ErrTruncated
	}

	curve := ecdh.X25519()
	xPriv, err := curve.NewPrivateKey(priv.X)
	if err != nil {
		return nil, fmt.Errorf("x25519 private key: %w", err)
	}

	var dataKey []byte
	for i := 0; i < n; i++ {
		block := data[1+i*perRecipientSize : 1+(i+1)*perRecipientSize]
		ephPubBytes := block[:ephemeralPubSize]
		keyNonce := block[ephemeralPubSize : ephemeralPubSize+chacha20poly1305.NonceSizeX]
		wrapped := block[ephemeralPubSize+chacha20poly1305.NonceSizeX:]

		ephPub, err := curve.NewPublicKey(ephPubBytes)
		if err != nil {
			continue
		}
		shared, err := xPriv.ECDH(ephPub)
		if err != nil {
			continue
		}

		kek := deriveKEK(shared)
		Zero(shared)

		keyAEAD, err := chacha20poly1305.NewX(kek)
		Zero(kek)
		if err != nil {
			continue
		}

		if key, err := keyAEAD.Open(nil, keyNonce, wrapped, nil); err == nil {
			dataKey = key
			break
		}
	}
	if dataKey == nil {
		return nil, util.ErrNoRecipientMatch
	}
	defer Zero(dataKey)

	payloadNonce := data[headerSize : headerSize+chacha20poly1305.NonceSizeX]
	ciphertext := data[headerSize+chacha20poly1305.NonceSizeX:]

	aead, err := chacha20poly1305.NewX(dataKey)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	plaintext, err := aead.Open(nil, payloadNonce, ciphertext, nil)
	if err != nil {
		return nil, util.ErrNoRecipientMatch
	}
	return plaintext, nil
}

// RecipientCount reads the recipient count byte of an asymmetric ciphertext.
func RecipientCount(data []byte) (int, bool) {
	if len(data) == 0 {
		return 0, false
	}
	return int(data[0]), true
}
