// Package engine wires the full hide/reveal pipelines: compose the payload,
// encrypt, sign, frame the envelope, and push it through a stego codec into
// the carrier.
package engine

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/navicore/zim-hide/internal/audioenc"
	"github.com/navicore/zim-hide/internal/crypto"
	"github.com/navicore/zim-hide/internal/envelope"
	"github.com/navicore/zim-hide/internal/stego"
	"github.com/navicore/zim-hide/internal/util"
	"github.com/navicore/zim-hide/internal/wavio"
)

// EmbedRequest describes one hide operation.
type EmbedRequest struct {
	CarrierPath string
	OutputPath  string

	// Text is the hidden message. AudioPath, when set, names a WAV clip to
	// compress and hide alongside it. At least one must be present.
	Text      string
	AudioPath string

	Method  envelope.Method
	Options stego.Options

	// Passphrase and Recipients are mutually exclusive. Leaving both empty
	// embeds the payload in the clear.
	Passphrase []byte
	Recipients []*crypto.PublicKey

	// SigningKey, when set, adds a detached signature over the payload as
	// written, so verification never needs the decryption secret.
	SigningKey *crypto.PrivateKey

	RNG io.Reader
}

// EmbedResult reports what was written.
type EmbedResult struct {
	OutputPath   string
	Method       envelope.Method
	Flags        envelope.Flags
	PayloadBytes int
	Capacity     int
}

// Embed runs the full hide pipeline and writes the stego carrier.
func Embed(req *EmbedRequest) (*EmbedResult, error) {
	if req.Text == "" && req.AudioPath == "" {
		return nil, fmt.Errorf("%w: nothing to hide", util.ErrMissingInput)
	}
	if len(req.Passphrase) > 0 && len(req.Recipients) > 0 {
		return nil, fmt.Errorf("%w: passphrase and recipients", util.ErrMutuallyExclusiveOptions)
	}
	if err := req.Method.Validate(); err != nil {
		return nil, err
	}

	content := &envelope.Content{Text: req.Text}
	if req.AudioPath != "" {
		audio, err := audioenc.Compress(req.AudioPath)
		if err != nil {
			return nil, fmt.Errorf("compress audio: %w", err)
		}
		content.Audio = audio
		log.Debug().Int("bytes", len(audio)).Msg("audio compressed")
	}

	payload, err := envelope.MarshalContent(content)
	if err != nil {
		return nil, err
	}
	flags := content.Flags()

	switch {
	case len(req.Passphrase) > 0:
		payload, err = crypto.EncryptSymmetric(req.RNG, payload, req.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("encrypt: %w", err)
		}
		flags |= envelope.FlagSymmetric
	case len(req.Recipients) > 0:
		payload, err = crypto.EncryptAsymmetric(req.RNG, payload, req.Recipients)
		if err != nil {
			return nil, fmt.Errorf("encrypt: %w", err)
		}
		flags |= envelope.FlagAsymmetric
	}

	env := &envelope.Envelope{
		Header:  envelope.Header{Flags: flags, Method: req.Method},
		Payload: payload,
	}
	if req.SigningKey != nil {
		env.Signature = crypto.Sign(req.SigningKey, payload)
		env.Header.Flags |= envelope.FlagSigned
	}
	blob := env.Marshal()

	result := &EmbedResult{
		OutputPath:   req.OutputPath,
		Method:       req.Method,
		Flags:        env.Header.Flags,
		PayloadBytes: len(blob),
	}

	switch req.Method {
	case envelope.MethodLSB:
		clip, err := wavio.LoadClip(req.CarrierPath)
		if err != nil {
			return nil, err
		}
		result.Capacity = stego.Capacity(clip, req.Options)
		if err := stego.EmbedLSB(clip, blob, req.Options); err != nil {
			return nil, err
		}
		if err := clip.SaveClip(req.OutputPath); err != nil {
			return nil, err
		}
	case envelope.MethodMetadata:
		carrier, err := os.ReadFile(req.CarrierPath)
		if err != nil {
			return nil, fmt.Errorf("read carrier: %w", err)
		}
		embedded, err := stego.EmbedMetadata(carrier, blob)
		if err != nil {
			return nil, err
		}
		if err := wavio.WriteFileAtomic(req.OutputPath, embedded); err != nil {
			return nil, err
		}
	}

	log.Info().
		Str("method", req.Method.String()).
		Int("payload_bytes", len(blob)).
		Str("output", req.OutputPath).
		Msg("payload embedded")
	return result, nil
}
