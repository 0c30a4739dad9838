package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/navicore/zim-hide/internal/config"
	"github.com/navicore/zim-hide/internal/util"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Global flag values shared across all commands.
var (
	flagJSON     bool
	flagQuiet    bool
	flagVerbose  bool
	flagAuditLog string
	flagConfig   string
	flagProfile  string
)

// effectiveAuditLogPath is resolved in PersistentPreRun: CLI flag, then
// ZIMHIDE_AUDIT_LOG, then the config file.
var effectiveAuditLogPath string

// NewRootCmd creates the top-level cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "zimhide",
		Short:   "Hide and recover encrypted messages inside WAV audio",
		Long:    "Zimhide embeds text and compressed audio inside WAV carriers using LSB or metadata-chunk steganography, with optional encryption and signatures.",
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Configure zerolog level based on --verbose / --quiet.
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if flagVerbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			if flagQuiet {
				zerolog.SetGlobalLevel(zerolog.ErrorLevel)
			}

			cfg, err := config.Load(flagConfig, flagProfile)
			if err != nil {
				logger := zerolog.New(os.Stderr)
				logger.Error().Err(err).Msg("load config")
				cfg = config.Active()
			}

			effectiveAuditLogPath = flagAuditLog
			if effectiveAuditLogPath == "" {
				effectiveAuditLogPath = os.Getenv("ZIMHIDE_AUDIT_LOG")
			}
			if effectiveAuditLogPath == "" && cfg != nil {
				effectiveAuditLogPath = cfg.AuditLog
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags available to every subcommand.
	pf := root.PersistentFlags()
	pf.BoolVar(&flagJSON, "json", false, "output results as JSON")
	pf.BoolVar(&flagQuiet, "quiet", false, "minimal output (errors only)")
	pf.BoolVar(&flagVerbose, "verbose", false, "enable debug logging")
	pf.StringVar(&flagConfig, "config", "", "config file path (or ZIMHIDE_CONFIG env)")
	pf.StringVar(&flagProfile, "profile", "", "named config profile (or ZIMHIDE_PROFILE env)")

	// Audit trail.
	pf.StringVar(&flagAuditLog, "audit-log", "", "append-only audit log file (or ZIMHIDE_AUDIT_LOG env)")

	// Register subcommands.
	root.AddCommand(newEncodeCmd())
	root.AddCommand(newDecodeCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newKeygenCmd())
	root.AddCommand(newPlayCmd())
	root.AddCommand(newAuditCmd())
	root.AddCommand(newCompletionsCmd())

	return root
}

// Execute runs the root command and exits with the correct code.
func Execute() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(util.ExitCodeForError(err))
	}
}
