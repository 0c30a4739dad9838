package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/navicore/zim-hide/internal/audit"
)

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Work with the audit log",
	}
	cmd.AddCommand(newAuditExportCmd())
	return cmd
}

func newAuditExportCmd() *cobra.Command {
	var (
		logFile     string
		format      string
		outFile     string
		sinceStr    string
		untilStr    string
		opFilter    string
		fingerprint string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export audit log entries as JSON or CSV",
		Long:  "Read the JSON-lines audit log, apply optional time, operation, and key filters, and render the entries as a JSON array or CSV.",
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := newPrinter()

			if logFile == "" {
				logFile = effectiveAuditLogPath
			}
			if logFile == "" {
				return fmt.Errorf("--log is required (or set --audit-log)")
			}

			filter := &audit.ExportFilter{
				Operation:      opFilter,
				KeyFingerprint: fingerprint,
			}
			if sinceStr != "" {
				t, err := time.Parse(time.RFC3339, sinceStr)
				if err != nil {
					return fmt.Errorf("parse --since: %w", err)
				}
				filter.Since = &t
			}
			if untilStr != "" {
				t, err := time.Parse(time.RFC3339, untilStr)
				if err != nil {
					return fmt.Errorf("parse --until: %w", err)
				}
				filter.Until = &t
			}

			entries, err := audit.ReadAuditLog(logFile, filter)
			if err != nil {
				return fmt.Errorf("read audit log: %w", err)
			}

			var out []byte
			switch format {
			case "json":
				out, err = audit.ExportJSON(entries, "  ")
			case "csv":
				out, err = audit.ExportCSV(entries)
			default:
				return fmt.Errorf("unknown format %q (want json or csv)", format)
			}
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			if outFile != "" {
				if err := os.WriteFile(outFile, out, 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				printer.linef("Exported %d entries to %s", len(entries), outFile)
				return nil
			}
			printer.raw(string(out) + "\n")
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log", "", "audit log file (defaults to the effective --audit-log path)")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or csv")
	cmd.Flags().StringVar(&outFile, "out", "", "write to a file instead of stdout")
	cmd.Flags().StringVar(&sinceStr, "since", "", "include entries on or after this RFC3339 time")
	cmd.Flags().StringVar(&untilStr, "until", "", "include entries before this RFC3339 time")
	cmd.Flags().StringVar(&opFilter, "op", "", "include only this operation (encode, decode, inspect, keygen, play)")
	cmd.Flags().StringVar(&fingerprint, "key-fingerprint", "", "include only entries matching this key fingerprint")

	return cmd
}
