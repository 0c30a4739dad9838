// Package wavio reads and writes WAV carriers, both as decoded PCM sample
// buffers and as raw RIFF chunk streams.
package wavio

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/navicore/zim-hide/internal/util"
)

// Clip holds decoded PCM. Stereo samples are interleaved, left first.
type Clip struct {
	Samples    []int
	SampleRate int
	Channels   int
	// BitDepth is the source sample depth. Zero means 16.
	BitDepth int
	// Float marks 32-bit float sources. Float clips are load-only.
	Float bool
}

// LoadClip decodes a WAV file into memory. Integer PCM at 8, 16, 24, or 32
// bits and 32-bit float are accepted; anything else is
// ErrUnsupportedSampleFormat. Depth restrictions beyond that belong to the
// consumer.
func LoadClip(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open carrier: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid wav file", util.ErrUnsupportedSampleFormat)
	}
	isFloat := dec.WavAudioFormat == 3
	switch {
	case dec.WavAudioFormat == 1 &&
		(dec.BitDepth == 8 || dec.BitDepth == 16 || dec.BitDepth == 24 || dec.BitDepth == 32):
	case isFloat && dec.BitDepth == 32:
	default:
		return nil, fmt.Errorf("%w: format %d, %d-bit",
			util.ErrUnsupportedSampleFormat, dec.WavAudioFormat, dec.BitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode pcm: %w", err)
	}

	return &Clip{
		Samples:    buf.Data,
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Float:      isFloat,
	}, nil
}

// SaveClip encodes the clip as an integer PCM WAV file at its source depth
// (16-bit when unset). The write is atomic: the encoder targets a temp file
// in the destination directory which is renamed into place only after a
// clean close.
func (c *Clip) SaveClip(path string) error {
	if c.Float {
		return fmt.Errorf("%w: cannot encode float samples", util.ErrUnsupportedSampleFormat)
	}
	depth := c.BitDepth
	if depth == 0 {
		depth = 16
	}

	tmp, err := tempSibling(path)
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	enc := wav.NewEncoder(tmp, c.SampleRate, depth, c.Channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: c.SampleRate, NumChannels: c.Channels},
		Data:           c.Samples,
		SourceBitDepth: depth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finish wav: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("place wav: %w", err)
	}
	return nil
}
