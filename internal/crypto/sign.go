package crypto

import (
	"crypto/ed25519"

	"github.com/navicore/zim-hide/internal/util"
)

// SignatureSize is the length of a detached Ed25519 signature.
const SignatureSize = ed25519.SignatureSize

// Sign computes a detached Ed25519 signature. The message is always the
// envelope payload as written to the carrier: when encryption is in use this
// is the ciphertext, so anyone can verify without the decryption key.
func Sign(priv *PrivateKey, message []byte) []byte {
	return ed25519.Sign(priv.Signing, message)
}

// VerifySignature checks a detached Ed25519 signature.
func VerifySignature(pub *PublicKey, message, sig []byte) error {
	if len(sig) != SignatureSize || !ed25519.Verify(pub.Verify, message, sig) {
		return util.ErrBadSignature
	}
	return nil
}
