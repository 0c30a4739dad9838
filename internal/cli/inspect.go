package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/navicore/zim-hide/internal/audit"
	"github.com/navicore/zim-hide/internal/engine"
	"github.com/navicore/zim-hide/internal/envelope"
)

func newInspectCmd() *cobra.Command {
	var (
		inFile  string
		method  string
		bits    int
		channel string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show envelope facts without decrypting",
		Long:  "Recover the hidden envelope from a WAV file and report its method, content flags, encryption mode, and payload digest. No key or passphrase is needed.",
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

			result, err := engine.Inspect(&engine.ExtractRequest{
				CarrierPath: inFile,
				Method:      pinned,
				Options:     opts,
			})

			entry := &audit.Entry{
				Operation: audit.OpInspect,
				Carrier:   inFile,
				Success:   err == nil,
			}
			if err != nil {
				entry.Error = err.Error()
				auditLog(entry)
				return err
			}
			entry.Method = result.Method.String()
			auditLog(entry)

			if printer.jsonMode() {
				return printer.emit(result)
			}
			printer.linef("Method:     %s", result.Method)
			printer.linef("Text:       %v", result.HasText)
			printer.linef("Audio:      %v", result.HasAudio)
			printer.linef("Signed:     %v", result.Signed)
			printer.linef("Encryption: %s", result.Encryption)
			if result.Recipients > 0 {
				printer.linef("Recipients: %d", result.Recipients)
			}
			if result.SignaturePrefix != "" {
				printer.linef("Sig prefix: %s", result.SignaturePrefix)
			}
			printer.linef("Payload:    %d bytes", result.PayloadBytes)
			if result.Capacity > 0 {
				printer.linef("Capacity:   %d bytes", result.Capacity)
			}
			printer.linef("Digest:     %s", result.PayloadDigest)
			for _, c := range result.Chunks {
				printer.linef("Chunk:      %s %d bytes", c.ID, c.Size)
			}
			if result.AlsoLSB {
				printer.linef("Note: carrier samples hold a second plausible envelope")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inFile, "in", "", "stego WAV file (required)")
	cmd.Flags().StringVar(&method, "method", "", "pin extraction to one method: lsb or metadata")
	cmd.Flags().IntVar(&bits, "bits", 0, "low bits per sample for lsb (1-4)")
	cmd.Flags().StringVar(&channel, "channel", "", "carrier channel: both, left, or right")

	return cmd
}
