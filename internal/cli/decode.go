package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/navicore/zim-hide/internal/audit"
	"github.com/navicore/zim-hide/internal/config"
	"github.com/navicore/zim-hide/internal/crypto"
	"github.com/navicore/zim-hide/internal/engine"
	"github.com/navicore/zim-hide/internal/envelope"
)

func newDecodeCmd() *cobra.Command {
	var (
		inFile        string
		method        string
		bits          int
		channel       string
		passphrase    string
		askPass       bool
		keyFile       string
		verifyKeyFile string
		audioOut      string
		textOut       string
	)

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Recover a hidden message from a WAV carrier",
		Long:  "Extract, verify, and decrypt a hidden envelope from a WAV file, printing the text and optionally writing the hidden audio clip.",
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := newPrinter()

			if inFile == "" {
				return fmt.Errorf("--in is required")
			}

			methodName, opts, err := resolveStego(method, bits, channel)
			if err != nil {
				return err
			}
			var pinned *envelope.Method
			if method != "" {
				m, err := parseMethod(methodName)
				if err != nil {
					return err
				}
				pinned = &m
			}

			var pass []byte
			if askPass && passphrase == "" {
				pass, err = promptPassphrase(false)
				if err != nil {
					return err
				}
			} else if passphrase != "" {
				pass = []byte(passphrase)
			}

			if keyFile == "" {
				if cfg := config.Active(); cfg != nil {
					keyFile = cfg.KeyFile
				}
			}
			var priv *crypto.PrivateKey
			if keyFile != "" {
				priv, err = crypto.LoadPrivateKey(keyFile)
				if err != nil {
					return fmt.Errorf("load key: %w", err)
				}
				defer priv.Zero()
			}

			var verifyKey *crypto.PublicKey
			if verifyKeyFile != "" {
				verifyKey, err = crypto.LoadPublicKey(verifyKeyFile)
				if err != nil {
					return fmt.Errorf("load verify key: %w", err)
				}
			}

			req := &engine.ExtractRequest{
				CarrierPath:  inFile,
				Method:       pinned,
				Options:      opts,
				Passphrase:   pass,
				PrivateKey:   priv,
				VerifyKey:    verifyKey,
				AudioOutPath: audioOut,
			}
			result, err := engine.Extract(req)
			if err != nil && passphraseWanted(err, pass) {
				req.Passphrase, err = promptPassphrase(false)
				if err == nil {
					result, err = engine.Extract(req)
				}
			}

			entry := &audit.Entry{
				Operation:     audit.OpDecode,
				Carrier:       inFile,
				CarrierDigest: carrierDigest(inFile),
				Success:       err == nil,
			}
			if verifyKey != nil {
				entry.KeyFingerprint = verifyKey.Fingerprint()
			}
			if err != nil {
				entry.Error = err.Error()
				auditLog(entry)
				log.Error().Err(err).Msg("decode failed")
				return err
			}
			entry.Method = result.Method.String()
			entry.Output = result.AudioWritten
			auditLog(entry)

			if textOut != "" {
				if err := os.WriteFile(textOut, []byte(result.Text), 0o600); err != nil {
					return fmt.Errorf("write text output: %w", err)
				}
			}

			if printer.jsonMode() {
				return printer.emit(map[string]any{
					"carrier":            inFile,
					"method":             result.Method.String(),
					"text":               result.Text,
					"audio_written":      result.AudioWritten,
					"signature_present":  result.SignaturePresent,
					"signature_verified": result.SignatureVerified,
				})
			}
			if result.Text != "" && textOut == "" {
				printer.raw(result.Text + "\n")
			}
			if result.AudioWritten != "" {
				printer.linef("Audio written: %s", result.AudioWritten)
			}
			if result.SignatureVerified {
				printer.linef("Signature: verified")
			} else if result.SignaturePresent {
				printer.linef("Signature: present, not verified (pass --verify-key)")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inFile, "in", "", "stego WAV file (required)")
	cmd.Flags().StringVar(&method, "method", "", "pin extraction to one method: lsb or metadata")
	cmd.Flags().IntVar(&bits, "bits", 0, "low bits per sample for lsb (1-4)")
	cmd.Flags().StringVar(&channel, "channel", "", "carrier channel: both, left, or right")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "passphrase for symmetric envelopes")
	cmd.Flags().BoolVar(&askPass, "ask-passphrase", false, "prompt for the passphrase interactively")
	cmd.Flags().StringVar(&keyFile, "key", "", "private key for recipient envelopes")
	cmd.Flags().StringVar(&verifyKeyFile, "verify-key", "", "require a valid signature from this public key")
	cmd.Flags().StringVar(&audioOut, "audio-out", "", "write the hidden audio clip to this WAV path")
	cmd.Flags().StringVar(&textOut, "text-out", "", "write the hidden text to this file instead of stdout")

	return cmd
}
