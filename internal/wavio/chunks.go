package wavio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"

	"github.com/navicore/zim-hide/internal/util"
)

// MetaChunkID is the RIFF chunk that carries hidden metadata payloads.
const MetaChunkID = "zimH"

var (
	riffTag = []byte("RIFF")
	waveTag = []byte("WAVE")
)

// Chunk names one RIFF chunk and its payload size in bytes.
type Chunk struct {
	ID   string `json:"id"`
	Size int    `json:"size"`
}

// ListChunks enumerates every top-level RIFF chunk in file order without
// reading the payloads.
func ListChunks(wavData []byte) ([]Chunk, error) {
	r := bytes.NewReader(wavData)
	parser := riff.New(r)
	if err := parser.ParseHeaders(); err != nil {
		return nil, fmt.Errorf("parse riff headers: %w", err)
	}

	var chunks []Chunk
	for {
		chunk, err := parser.NextChunk()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return chunks, nil
			}
			return nil, fmt.Errorf("walk riff chunks: %w", err)
		}
		// The riff parser rounds odd sizes up to cover the pad byte; the
		// declared size is in the header bytes it just consumed.
		size := chunk.Size
		if hdr := len(wavData) - r.Len(); hdr >= 8 && bytes.Equal(wavData[hdr-8:hdr-4], chunk.ID[:]) {
			size = int(binary.LittleEndian.Uint32(wavData[hdr-4 : hdr]))
		}
		chunks = append(chunks, Chunk{ID: string(chunk.ID[:]), Size: size})
		chunk.Done()
	}
}

// ReadChunk walks the RIFF chunk list and returns the payload of the first
// chunk matching id, or ErrChunkNotFound.
func ReadChunk(wavData []byte, id string) ([]byte, error) {
	r := bytes.NewReader(wavData)
	parser := riff.New(r)
	if err := parser.ParseHeaders(); err != nil {
		return nil, fmt.Errorf("parse riff headers: %w", err)
	}

	var target [4]byte
	copy(target[:], id)

	for {
		chunk, err := parser.NextChunk()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, util.ErrChunkNotFound
			}
			return nil, fmt.Errorf("walk riff chunks: %w", err)
		}
		if chunk.ID == target {
			// Read the declared size, not the parser's padded one, so an odd
			// payload comes back without its pad byte.
			size := chunk.Size
			if hdr := len(wavData) - r.Len(); hdr >= 8 && bytes.Equal(wavData[hdr-8:hdr-4], target[:]) {
				size = int(binary.LittleEndian.Uint32(wavData[hdr-4 : hdr]))
			}
			payload := make([]byte, size)
			if _, err := io.ReadFull(chunk, payload); err != nil {
				return nil, fmt.Errorf("read %s chunk: %w", id, err)
			}
			return payload, nil
		}
		chunk.Done()
	}
}

// AppendChunk returns a copy of wavData with a chunk of the given id holding
// payload appended at the end. Any pre-existing chunk with the same id is
// removed first so re-embedding never accumulates stale copies. Odd payloads
// get a pad byte per the RIFF word-alignment rule, and the outer RIFF size
// is rewritten to match.
func AppendChunk(wavData []byte, id string, payload []byte) ([]byte, error) {
	stripped, err := StripChunk(wavData, id)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(stripped)+8+len(payload)+1)
	out = append(out, stripped...)

	var header [8]byte
	copy(header[0:4], id)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(payload)))
	out = append(out, header[:]...)
	out = append(out, payload...)
	if len(payload)%2 == 1 {
		out = append(out, 0)
	}

	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)-8))
	return out, nil
}

// StripChunk returns a copy of wavData with every chunk matching id removed
// and the RIFF size fixed up. A carrier without the chunk comes back intact.
func StripChunk(wavData []byte, id string) ([]byte, error) {
	if len(wavData) < 12 || !bytes.Equal(wavData[0:4], riffTag) || !bytes.Equal(wavData[8:12], waveTag) {
		return nil, fmt.Errorf("%w: not a riff wave file", util.ErrUnsupportedSampleFormat)
	}

	out := make([]byte, 0, len(wavData))
	out = append(out, wavData[:12]...)

	off := 12
	for off+8 <= len(wavData) {
		size := int(binary.LittleEndian.Uint32(wavData[off+4 : off+8]))
		next := off + 8 + size + size%2
		if next > len(wavData) || next < off {
			next = len(wavData)
		}
		if string(wavData[off:off+4]) != id {
			out = append(out, wavData[off:next]...)
		}
		off = next
	}

	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)-8))
	return out, nil
}
