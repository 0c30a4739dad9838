//go:build noopus

package audioenc

import (
	"fmt"
	"os"

	"github.com/navicore/zim-hide/internal/wavio"
)

// Compress reads the WAV bytes unchanged. Larger payloads, no libopus.
func Compress(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}
	return data, nil
}

// Decompress writes the WAV bytes unchanged.
func Decompress(data []byte, outPath string) error {
	return wavio.WriteFileAtomic(outPath, data)
}
