package stego

import (
	"encoding/binary"
	"fmt"

	"github.com/navicore/zim-hide/internal/util"
	"github.com/navicore/zim-hide/internal/wavio"
)

const (
	lengthPrefixSize = 4

	// maxExtractLen caps the length prefix read from a carrier so a noise
	// file cannot drive a multi-gigabyte allocation.
	maxExtractLen = 100 << 20
)

// EmbedLSB writes message into the low bits of the carrier samples, preceded
// by a 4-byte little-endian length. Bits are consumed LSB-first, one group of
// opts.BitsPerSample per usable sample.
func EmbedLSB(clip *wavio.Clip, message []byte, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if err := check16BitPCM(clip); err != nil {
		return err
	}
	if len(message) > Capacity(clip, opts) {
		return fmt.Errorf("%w: message %d bytes, capacity %d",
			util.ErrCapacityExceeded, len(message), Capacity(clip, opts))
	}

	framed := make([]byte, 0, lengthPrefixSize+len(message))
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(message)))
	framed = append(framed, lenBuf[:]...)
	framed = append(framed, message...)

	indices := usableIndices(clip, opts)
	b := opts.BitsPerSample
	mask := (1 << b) - 1
	totalBits := len(framed) * 8

	for i, bit := 0, 0; bit < totalBits; i++ {
		group := 0
		for j := 0; j < b && bit < totalBits; j++ {
			if framed[bit/8]&(1<<(bit%8)) != 0 {
				group |= 1 << j
			}
			bit++
		}
		sample := uint16(int16(clip.Samples[indices[i]]))
		sample = sample&^uint16(mask) | uint16(group)
		clip.Samples[indices[i]] = int(int16(sample))
	}
	return nil
}

// ExtractLSB reads the length prefix and then the message bytes back out of
// the carrier samples. A length beyond the carrier capacity or the global
// ceiling is reported as ErrTruncated.
func ExtractLSB(clip *wavio.Clip, opts Options) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := check16BitPCM(clip); err != nil {
		return nil, err
	}

	indices := usableIndices(clip, opts)
	b := opts.BitsPerSample
	availBits := len(indices) * b

	if availBits < lengthPrefixSize*8 {
		return nil, util.ErrTruncated
	}

	prefix := readBits(clip, indices, b, 0, lengthPrefixSize)
	msgLen := int(binary.LittleEndian.Uint32(prefix))
	if msgLen > maxExtractLen {
		return nil, fmt.Errorf("%w: implausible length %d", util.ErrTruncated, msgLen)
	}
	if (lengthPrefixSize+msgLen)*8 > availBits {
		return nil, util.ErrTruncated
	}

	return readBits(clip, indices, b, lengthPrefixSize*8, msgLen), nil
}

// check16BitPCM rejects carriers the LSB transform cannot operate on. Other
// depths decode fine but the bit arithmetic assumes 16-bit integer samples.
func check16BitPCM(clip *wavio.Clip) error {
	if clip.Float || (clip.BitDepth != 0 && clip.BitDepth != 16) {
		return fmt.Errorf("%w: lsb requires 16-bit integer pcm", util.ErrUnsupportedSampleFormat)
	}
	return nil
}

// readBits recovers count bytes starting at the given bit offset of the
// embedded stream.
func readBits(clip *wavio.Clip, indices []int, b, startBit, count int) []byte {
	out := make([]byte, count)
	for bit := 0; bit < count*8; bit++ {
		streamBit := startBit + bit
		sampleIdx := streamBit / b
		bitInSample := streamBit % b
		sample := uint16(int16(clip.Samples[indices[sampleIdx]]))
		if sample&(1<<bitInSample) != 0 {
			out[bit/8] |= 1 << (bit % 8)
		}
	}
	return out
}
