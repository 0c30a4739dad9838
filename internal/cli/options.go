package cli

import (
	"fmt"

	"github.com/navicore/zim-hide/internal/config"
	"github.com/navicore/zim-hide/internal/envelope"
	"github.com/navicore/zim-hide/internal/stego"
	"github.com/navicore/zim-hide/internal/util"
)

// parseMethod maps a method name to the envelope constant.
func parseMethod(name string) (envelope.Method, error) {
	switch name {
	case "lsb":
		return envelope.MethodLSB, nil
	case "metadata":
		return envelope.MethodMetadata, nil
	case "spread":
		return envelope.MethodSpread, fmt.Errorf("%w: spread", util.ErrUnsupportedMethod)
	default:
		return 0, fmt.Errorf("%w: %q", util.ErrUnsupportedMethod, name)
	}
}

// resolveStego merges CLI flag values with the loaded config and built-in
// defaults. Empty or zero flag values mean "not set on the command line".
func resolveStego(method string, bits int, channel string) (string, stego.Options, error) {
	cfg := config.Active()
	if cfg == nil {
		def := config.Defaults()
		cfg = &def
	}

	if method == "" {
		method = cfg.Method
	}
	if bits == 0 {
		bits = cfg.BitsPerSample
	}
	if channel == "" {
		channel = cfg.Channel
	}

	opts := stego.Options{BitsPerSample: bits, Channel: stego.Channel(channel)}
	if err := opts.Validate(); err != nil {
		return "", stego.Options{}, err
	}
	return method, opts, nil
}
