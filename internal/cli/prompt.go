package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/navicore/zim-hide/internal/util"
)

// promptPassphrase asks for a passphrase interactively when none was given
// on the command line. confirm adds a second entry for new passphrases.
func promptPassphrase(confirm bool) ([]byte, error) {
	var pass string
	fields := []huh.Field{
		huh.NewInput().
			Title("Passphrase").
			EchoMode(huh.EchoModePassword).
			Value(&pass),
	}
	if confirm {
		var again string
		fields = append(fields, huh.NewInput().
			Title("Confirm passphrase").
			EchoMode(huh.EchoModePassword).
			Value(&again).
			Validate(func(s string) error {
				if s != pass {
					return fmt.Errorf("passphrases do not match")
				}
				return nil
			}))
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return nil, err
	}
	if pass == "" {
		return nil, fmt.Errorf("empty passphrase")
	}
	return []byte(pass), nil
}

// passphraseWanted reports whether extraction failed only because the
// symmetric passphrase was missing, and stdin is a terminal we can ask on.
func passphraseWanted(err error, pass []byte) bool {
	if len(pass) > 0 {
		return false
	}
	if !errors.Is(err, util.ErrMissingInput) || !strings.Contains(err.Error(), "passphrase") {
		return false
	}
	fi, statErr := os.Stdin.Stat()
	return statErr == nil && fi.Mode()&os.ModeCharDevice != 0
}
