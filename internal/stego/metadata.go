package stego

import (
	"github.com/navicore/zim-hide/internal/wavio"
)

// EmbedMetadata hides message in a metadata chunk appended to the raw RIFF
// stream. The carrier samples are untouched, so this survives no audio
// processing but leaves the sound bit-identical.
func EmbedMetadata(wavData []byte, message []byte) ([]byte, error) {
	return wavio.AppendChunk(wavData, wavio.MetaChunkID, message)
}

// ExtractMetadata recovers a message hidden by EmbedMetadata. A carrier
// without the chunk yields ErrChunkNotFound so callers can fall back to the
// sample-level codec.
func ExtractMetadata(wavData []byte) ([]byte, error) {
	return wavio.ReadChunk(wavData, wavio.MetaChunkID)
}
