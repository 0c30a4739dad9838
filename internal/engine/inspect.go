package engine

import (
	"encoding/hex"
	"os"

	"lukechampine.com/blake3"

	"github.com/navicore/zim-hide/internal/crypto"
	"github.com/navicore/zim-hide/internal/envelope"
	"github.com/navicore/zim-hide/internal/stego"
	"github.com/navicore/zim-hide/internal/wavio"
)

// InspectResult summarizes an envelope without opening it. Nothing here
// requires a passphrase or key.
type InspectResult struct {
	Method        envelope.Method `json:"method"`
	HasText       bool            `json:"has_text"`
	HasAudio      bool            `json:"has_audio"`
	Signed        bool            `json:"signed"`
	Encryption    string          `json:"encryption"`
	Recipients    int             `json:"recipients,omitempty"`
	PayloadBytes  int             `json:"payload_bytes"`
	PayloadDigest string          `json:"payload_digest"`

	// SignaturePrefix is the first bytes of the detached signature, hex
	// encoded, when one is present.
	SignaturePrefix string `json:"signature_prefix,omitempty"`
	// Capacity is the carrier's LSB capacity under the request options,
	// when the carrier is readable as PCM.
	Capacity int `json:"capacity,omitempty"`
	// AlsoLSB flags a metadata carrier whose samples hold a second
	// plausible envelope.
	AlsoLSB bool `json:"also_lsb,omitempty"`
	// Chunks is the carrier's RIFF chunk inventory in file order.
	Chunks []wavio.Chunk `json:"chunks,omitempty"`
}

// Inspect recovers the envelope and reports its header facts plus a BLAKE3
// digest of the payload as embedded.
func Inspect(req *ExtractRequest) (*InspectResult, error) {
	blob, method, err := recoverBlob(req)
	if err != nil {
		return nil, err
	}
	env, err := envelope.Parse(blob)
	if err != nil {
		return nil, err
	}

	digest := blake3.Sum256(env.Payload)
	result := &InspectResult{
		Method:        method,
		HasText:       env.Header.Flags.Has(envelope.FlagText),
		HasAudio:      env.Header.Flags.Has(envelope.FlagAudio),
		Signed:        env.Header.Flags.Has(envelope.FlagSigned),
		Encryption:    "none",
		PayloadBytes:  len(env.Payload),
		PayloadDigest: hex.EncodeToString(digest[:]),
	}

	switch {
	case env.Header.Flags.Has(envelope.FlagSymmetric):
		result.Encryption = "passphrase"
	case env.Header.Flags.Has(envelope.FlagAsymmetric):
		result.Encryption = "recipients"
		if n, ok := crypto.RecipientCount(env.Payload); ok {
			result.Recipients = n
		}
	}
	if env.Signature != nil {
		result.SignaturePrefix = hex.EncodeToString(env.Signature[:8])
	}

	if raw, rerr := os.ReadFile(req.CarrierPath); rerr == nil {
		if chunks, lerr := wavio.ListChunks(raw); lerr == nil {
			result.Chunks = chunks
		}
	}

	if req.Options.Validate() == nil {
		if clip, cerr := wavio.LoadClip(req.CarrierPath); cerr == nil {
			result.Capacity = stego.Capacity(clip, req.Options)
			if method == envelope.MethodMetadata {
				if lsbBlob, lerr := stego.ExtractLSB(clip, req.Options); lerr == nil {
					if _, perr := envelope.Parse(lsbBlob); perr == nil {
						result.AlsoLSB = true
					}
				}
			}
		}
	}
	return result, nil
}
