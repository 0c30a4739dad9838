package cli

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/navicore/zim-hide/internal/audit"
	"github.com/navicore/zim-hide/internal/config"
	"github.com/navicore/zim-hide/internal/crypto"
	"github.com/navicore/zim-hide/internal/engine"
)

func newEncodeCmd() *cobra.Command {
	var (
		inFile      string
		outFile     string
		message     string
		messageFile string
		audioFile   string
		method      string
		bits        int
		channel     string
		passphrase  string
		askPass     bool
		recipients  []string
		signKeyFile string
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Hide a message inside a WAV carrier",
		Long:  "Embed text and optionally a compressed audio clip inside a WAV file, with optional encryption and a detached signature.",
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := newPrinter()

			if inFile == "" {
				return fmt.Errorf("--in is required")
			}
			if outFile == "" {
				return fmt.Errorf("--out is required")
			}
			if message != "" && messageFile != "" {
				return fmt.Errorf("--message and --message-file are mutually exclusive")
			}
			if messageFile != "" {
				data, err := os.ReadFile(messageFile)
				if err != nil {
					return fmt.Errorf("read message file: %w", err)
				}
				message = string(data)
			}

			methodName, opts, err := resolveStego(method, bits, channel)
			if err != nil {
				return err
			}
			m, err := parseMethod(methodName)
			if err != nil {
				return err
			}

			var pass []byte
			if askPass && passphrase == "" {
				pass, err = promptPassphrase(true)
				if err != nil {
					return err
				}
			} else if passphrase != "" {
				pass = []byte(passphrase)
			}

			if len(recipients) == 0 {
				if cfg := config.Active(); cfg != nil && len(pass) == 0 && len(cfg.Recipients) > 0 {
					recipients = cfg.Recipients
				}
			}
			pubs := make([]*crypto.PublicKey, 0, len(recipients))
			for _, path := range recipients {
				pub, err := crypto.LoadPublicKey(path)
				if err != nil {
					return fmt.Errorf("load recipient %s: %w", path, err)
				}
				pubs = append(pubs, pub)
			}

			var signKey *crypto.PrivateKey
			if signKeyFile != "" {
				signKey, err = crypto.LoadPrivateKey(signKeyFile)
				if err != nil {
					return fmt.Errorf("load signing key: %w", err)
				}
				defer signKey.Zero()
			}

			result, err := engine.Embed(&engine.EmbedRequest{
				CarrierPath: inFile,
				OutputPath:  outFile,
				Text:        message,
				AudioPath:   audioFile,
				Method:      m,
				Options:     opts,
				Passphrase:  pass,
				Recipients:  pubs,
				SigningKey:  signKey,
				RNG:         rand.Reader,
			})

			entry := &audit.Entry{
				Operation: audit.OpEncode,
				Carrier:   inFile,
				Output:    outFile,
				Method:    methodName,
				Success:   err == nil,
			}
			if signKey != nil {
				if pub, perr := signKey.Public(); perr == nil {
					entry.KeyFingerprint = pub.Fingerprint()
				}
			}
			if err != nil {
				entry.Error = err.Error()
				auditLog(entry)
				return err
			}
			entry.CarrierDigest = carrierDigest(outFile)
			auditLog(entry)

			if printer.jsonMode() {
				return printer.emit(map[string]any{
					"carrier":       inFile,
					"output":        result.OutputPath,
					"method":        result.Method.String(),
					"payload_bytes": result.PayloadBytes,
					"capacity":      result.Capacity,
					"encrypted":     result.Flags.Encrypted(),
					"signed":        signKey != nil,
				})
			}
			printer.linef("Embedded: %s", result.OutputPath)
			printer.linef("Method:   %s", result.Method)
			printer.linef("Payload:  %d bytes", result.PayloadBytes)
			if result.Capacity > 0 {
				printer.linef("Capacity: %d bytes", result.Capacity)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inFile, "in", "", "carrier WAV file (required)")
	cmd.Flags().StringVar(&outFile, "out", "", "output WAV file (required)")
	cmd.Flags().StringVar(&message, "message", "", "text message to hide")
	cmd.Flags().StringVar(&messageFile, "message-file", "", "read the message from a file")
	cmd.Flags().StringVar(&audioFile, "audio", "", "WAV clip to compress and hide")
	cmd.Flags().StringVar(&method, "method", "", "steganography method: lsb or metadata")
	cmd.Flags().IntVar(&bits, "bits", 0, "low bits per sample for lsb (1-4)")
	cmd.Flags().StringVar(&channel, "channel", "", "carrier channel: both, left, or right")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "encrypt with a passphrase")
	cmd.Flags().BoolVar(&askPass, "ask-passphrase", false, "prompt for the passphrase interactively")
	cmd.Flags().StringArrayVar(&recipients, "recipient", nil, "encrypt to a recipient public key file (repeatable)")
	cmd.Flags().StringVar(&signKeyFile, "sign-key", "", "sign the payload with this private key")

	return cmd
}
