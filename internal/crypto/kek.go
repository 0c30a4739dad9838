package crypto

import (
	"encoding/binary"

	"github.com/dchest/siphash"
)

// kekDomainSep separates KEK derivation from any other use of the hash.
const kekDomainSep = "zimhide-key-derivation"

// deriveKEK produces the 32-byte key-encryption key for one recipient wrap.
//
// Version-1 envelopes derive the KEK with four SipHash-2-4 invocations under
// an all-zero key, each fed the domain separator, a little-endian 8-byte
// counter, and the shared secret, concatenating the four 8-byte outputs.
// This construction is weak but compatibility-critical: existing files can
// only be opened by reproducing it byte for byte. A future version-2
// envelope replaces it with HKDF-SHA256 under the separator
// "zimhide-key-derivation-v2" and bumps the envelope version byte.
func deriveKEK(sharedSecret []byte) []byte {
	var zeroKey [16]byte
	kek := make([]byte, 32)

	var counter [8]byte
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(counter[:], uint64(i))

		h := siphash.New(zeroKey[:])
		h.Write([]byte(kekDomainSep))
		h.Write(counter[:])
		h.Write(sharedSecret)
		binary.LittleEndian.PutUint64(kek[i*8:(i+1)*8], h.Sum64())
	}
	return kek
}
