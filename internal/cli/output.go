package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// printer separates the three output channels every verb writes to: status
// lines for people, one JSON document for scripts, and raw payload bytes
// (decoded text, armored keys, exports) that must reach stdout in every
// mode, quiet included.
type printer struct {
	stdout io.Writer
	json   bool
	quiet  bool
}

func newPrinter() *printer {
	return &printer{stdout: os.Stdout, json: flagJSON, quiet: flagQuiet}
}

// jsonMode reports whether the verb should emit a single JSON document
// instead of status lines.
func (p *printer) jsonMode() bool { return p.json }

// emit writes v as the verb's JSON result.
func (p *printer) emit(v any) error {
	enc := json.NewEncoder(p.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// linef prints one status line. Silent in quiet and json modes.
func (p *printer) linef(format string, args ...any) {
	if p.quiet || p.json {
		return
	}
	fmt.Fprintf(p.stdout, format+"\n", args...)
}

// raw writes payload output verbatim, regardless of mode.
func (p *printer) raw(s string) {
	fmt.Fprint(p.stdout, s)
}
