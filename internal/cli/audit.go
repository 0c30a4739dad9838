package cli

import (
	"sync"

	"github.com/navicore/zim-hide/internal/audit"
)

var (
	auditLogger     audit.Logger
	auditLoggerOnce sync.Once
)

// getAuditLogger returns the global audit logger (file or nop). Uses the
// effective path resolved in PersistentPreRun: CLI > env > config.
func getAuditLogger() audit.Logger {
	auditLoggerOnce.Do(func() {
		path := effectiveAuditLogPath
		if path == "" {
			auditLogger = audit.NopLogger{}
			return
		}
		l, err := audit.NewFileLogger(path)
		if err != nil {
			auditLogger = audit.NopLogger{}
			return
		}
		auditLogger = l
	})
	return auditLogger
}

// auditLog writes one audit entry. Log failures never fail the command.
func auditLog(e *audit.Entry) {
	_ = getAuditLogger().Log(e)
}

// carrierDigest hashes the carrier for the audit trail, or returns "" when
// the file cannot be read.
func carrierDigest(path string) string {
	d, err := audit.DigestFile(path)
	if err != nil {
		return ""
	}
	return d
}
