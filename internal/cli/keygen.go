package cli

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/navicore/zim-hide/internal/audit"
	"github.com/navicore/zim-hide/internal/crypto"
)

func newKeygenCmd() *cobra.Command {
	var outBase string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a zimhide key pair",
		Long:  "Generate a combined Ed25519 signing and X25519 encryption key pair, written as armored .priv and .pub files.",
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := newPrinter()

			outBase = strings.TrimSuffix(strings.TrimSuffix(outBase, ".priv"), ".pub")

			kp, err := crypto.GenerateKeypair(rand.Reader)
			if err != nil {
				return fmt.Errorf("generate key pair: %w", err)
			}
			defer kp.Private.Zero()

			if outBase == "" {
				// No output base: emit both armored blocks on stdout.
				fingerprint := kp.Public.Fingerprint()
				if printer.jsonMode() {
					return printer.emit(map[string]any{
						"private_key": string(kp.Private.MarshalPrivate()),
						"public_key":  string(kp.Public.MarshalPublic()),
						"fingerprint": fingerprint,
					})
				}
				printer.raw(string(kp.Private.MarshalPrivate()))
				printer.raw(string(kp.Public.MarshalPublic()))
				printer.linef("Fingerprint: %s", fingerprint)
				return nil
			}

			privPath, pubPath, err := kp.SaveKeypair(outBase)
			if err != nil {
				return fmt.Errorf("save key pair: %w", err)
			}
			fingerprint := kp.Public.Fingerprint()

			auditLog(&audit.Entry{
				Operation:      audit.OpKeygen,
				Output:         privPath,
				KeyFingerprint: fingerprint,
				Success:        true,
			})

			if printer.jsonMode() {
				return printer.emit(map[string]any{
					"private_key": privPath,
					"public_key":  pubPath,
					"fingerprint": fingerprint,
				})
			}
			printer.linef("Generated key pair:")
			printer.linef("  Private:     %s", privPath)
			printer.linef("  Public:      %s", pubPath)
			printer.linef("  Fingerprint: %s", fingerprint)
			return nil
		},
	}

	cmd.Flags().StringVar(&outBase, "out", "", "output path base (e.g. 'me' produces me.priv + me.pub); omit to print to stdout")

	return cmd
}
