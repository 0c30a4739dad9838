package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/navicore/zim-hide/internal/audit"
	"github.com/navicore/zim-hide/internal/config"
	"github.com/navicore/zim-hide/internal/crypto"
	"github.com/navicore/zim-hide/internal/engine"
)

// playerCandidates are tried in order when neither --player nor the config
// names one.
var playerCandidates = []string{"afplay", "aplay", "paplay", "ffplay"}

func newPlayCmd() *cobra.Command {
	var (
		inFile     string
		passphrase string
		askPass    bool
		keyFile    string
		player     string
		extractTo  string
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Extract and play a hidden audio clip",
		Long:  "Extract the hidden audio clip from a WAV carrier, decompress it, and hand it to a system audio player. With --extract-to the clip is written instead of played.",
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := newPrinter()

			if inFile == "" {
				return fmt.Errorf("--in is required")
			}

			outPath := extractTo
			if outPath == "" {
				tmp, err := os.CreateTemp("", "zimhide-*.wav")
				if err != nil {
					return fmt.Errorf("create temp file: %w", err)
				}
				tmp.Close()
				outPath = tmp.Name()
				defer os.Remove(outPath)
			}

			var pass []byte
			var err error
			if askPass && passphrase == "" {
				pass, err = promptPassphrase(false)
				if err != nil {
					return err
				}
			} else if passphrase != "" {
				pass = []byte(passphrase)
			}

			var priv *crypto.PrivateKey
			if keyFile != "" {
				priv, err = crypto.LoadPrivateKey(keyFile)
				if err != nil {
					return fmt.Errorf("load key: %w", err)
				}
				defer priv.Zero()
			}

			req := &engine.ExtractRequest{
				CarrierPath:  inFile,
				Passphrase:   pass,
				PrivateKey:   priv,
				AudioOutPath: outPath,
			}
			result, err := engine.Extract(req)
			if err != nil && passphraseWanted(err, pass) {
				req.Passphrase, err = promptPassphrase(false)
				if err == nil {
					result, err = engine.Extract(req)
				}
			}

			entry := &audit.Entry{
				Operation: audit.OpPlay,
				Carrier:   inFile,
				Success:   err == nil,
			}
			if err != nil {
				entry.Error = err.Error()
				auditLog(entry)
				return err
			}
			if result.AudioWritten == "" {
				err = fmt.Errorf("no hidden audio in %s", inFile)
				entry.Error = err.Error()
				entry.Success = false
				auditLog(entry)
				return err
			}
			entry.Output = result.AudioWritten
			auditLog(entry)

			if extractTo != "" {
				printer.linef("Audio written: %s", extractTo)
				return nil
			}

			bin, err := findPlayer(player)
			if err != nil {
				return err
			}
			printer.linef("Playing %s via %s", filepath.Base(result.AudioWritten), filepath.Base(bin))
			play := exec.Command(bin, result.AudioWritten)
			play.Stdout = os.Stdout
			play.Stderr = os.Stderr
			if err := play.Run(); err != nil {
				return fmt.Errorf("play audio: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inFile, "in", "", "stego WAV file (required)")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "passphrase for symmetric envelopes")
	cmd.Flags().BoolVar(&askPass, "ask-passphrase", false, "prompt for the passphrase interactively")
	cmd.Flags().StringVar(&keyFile, "key", "", "private key for recipient envelopes")
	cmd.Flags().StringVar(&player, "player", "", "audio player binary (default: config, then afplay, aplay, paplay, ffplay)")
	cmd.Flags().StringVar(&extractTo, "extract-to", "", "write the clip to this WAV path instead of playing it")

	return cmd
}

// findPlayer resolves the player binary: the explicit flag, then the config
// file, then the first candidate present on PATH.
func findPlayer(explicit string) (string, error) {
	if explicit != "" {
		return exec.LookPath(explicit)
	}
	if cfg := config.Active(); cfg != nil && cfg.Player != "" {
		return exec.LookPath(cfg.Player)
	}
	for _, c := range playerCandidates {
		if bin, err := exec.LookPath(c); err == nil {
			return bin, nil
		}
	}
	return "", fmt.Errorf("no audio player found on PATH (tried %v)", playerCandidates)
}
