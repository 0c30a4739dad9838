package engine

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/navicore/zim-hide/internal/audioenc"
	"github.com/navicore/zim-hide/internal/crypto"
	"github.com/navicore/zim-hide/internal/envelope"
	"github.com/navicore/zim-hide/internal/stego"
	"github.com/navicore/zim-hide/internal/util"
	"github.com/navicore/zim-hide/internal/wavio"
)

// ExtractRequest describes one reveal operation.
type ExtractRequest struct {
	CarrierPath string

	// Method pins extraction to one codec. Nil tries the metadata chunk
	// first and falls back to LSB when no chunk is present.
	Method  *envelope.Method
	Options stego.Options

	// Passphrase opens symmetric envelopes, PrivateKey asymmetric ones.
	Passphrase []byte
	PrivateKey *crypto.PrivateKey

	// VerifyKey demands a valid signature. Extraction fails before any
	// decryption when the envelope is unsigned or the signature is bad.
	VerifyKey *crypto.PublicKey

	// AudioOutPath receives the decompressed audio clip when present.
	AudioOutPath string
}

// ExtractResult is the recovered content plus envelope facts.
type ExtractResult struct {
	Method            envelope.Method
	Flags             envelope.Flags
	Text              string
	AudioWritten      string
	SignaturePresent  bool
	SignatureVerified bool
}

// Extract recovers and opens a hidden envelope.
func Extract(req *ExtractRequest) (*ExtractResult, error) {
	blob, method, err := recoverBlob(req)
	if err != nil {
		return nil, err
	}

	env, err := envelope.Parse(blob)
	if err != nil {
		return nil, err
	}

	result := &ExtractResult{
		Method:           method,
		Flags:            env.Header.Flags,
		SignaturePresent: env.Signature != nil,
	}

	if req.VerifyKey != nil {
		if env.Signature == nil {
			return nil, fmt.Errorf("%w: envelope is not signed", util.ErrBadSignature)
		}
		if err := crypto.VerifySignature(req.VerifyKey, env.Payload, env.Signature); err != nil {
			return nil, err
		}
		result.SignatureVerified = true
		log.Debug().Str("signer", req.VerifyKey.Fingerprint()).Msg("signature verified")
	}

	payload := env.Payload
	switch {
	case env.Header.Flags.Has(envelope.FlagSymmetric):
		if len(req.Passphrase) == 0 {
			return nil, fmt.Errorf("%w: passphrase required", util.ErrMissingInput)
		}
		payload, err = crypto.DecryptSymmetric(payload, req.Passphrase)
		if err != nil {
			return nil, err
		}
	case env.Header.Flags.Has(envelope.FlagAsymmetric):
		if req.PrivateKey == nil {
			return nil, fmt.Errorf("%w: private key required", util.ErrMissingInput)
		}
		payload, err = crypto.DecryptAsymmetric(payload, req.PrivateKey)
		if err != nil {
			return nil, err
		}
	}

	content, err := envelope.ParseContent(payload)
	if err != nil {
		return nil, err
	}
	result.Text = content.Text

	if len(content.Audio) > 0 && req.AudioOutPath != "" {
		if err := audioenc.Decompress(content.Audio, req.AudioOutPath); err != nil {
			return nil, fmt.Errorf("decompress audio: %w", err)
		}
		result.AudioWritten = req.AudioOutPath
	}

	log.Info().
		Str("method", method.String()).
		Bool("verified", result.SignatureVerified).
		Msg("payload extracted")
	return result, nil
}

// recoverBlob pulls the raw envelope bytes out of the carrier.
func recoverBlob(req *ExtractRequest) ([]byte, envelope.Method, error) {
	tryMetadata := req.Method == nil || *req.Method == envelope.MethodMetadata
	tryLSB := req.Method == nil || *req.Method == envelope.MethodLSB

	if req.Method != nil {
		if err := req.Method.Validate(); err != nil {
			return nil, 0, err
		}
	}

	if tryMetadata {
		carrier, err := os.ReadFile(req.CarrierPath)
		if err != nil {
			return nil, 0, fmt.Errorf("read carrier: %w", err)
		}
		blob, err := stego.ExtractMetadata(carrier)
		if err == nil {
			return blob, envelope.MethodMetadata, nil
		}
		if !tryLSB || !errors.Is(err, util.ErrChunkNotFound) {
			return nil, 0, err
		}
		log.Debug().Msg("no metadata chunk, trying lsb")
	}

	clip, err := wavio.LoadClip(req.CarrierPath)
	if err != nil {
		return nil, 0, err
	}
	blob, err := stego.ExtractLSB(clip, req.Options)
	if err != nil {
		return nil, 0, err
	}
	return blob, envelope.MethodLSB, nil
}
