// Package stego hides and recovers byte streams inside WAV carriers. Two
// methods are implemented: least-significant-bit embedding in the PCM
// samples, and a metadata chunk appended to the RIFF container.
package stego

import (
	"fmt"

	"github.com/navicore/zim-hide/internal/wavio"
)

// Channel selects which interleaved samples carry hidden bits.
type Channel string

const (
	ChannelBoth  Channel = "both"
	ChannelLeft  Channel = "left"
	ChannelRight Channel = "right"
)

// Options tunes the LSB codec.
type Options struct {
	// BitsPerSample is how many low bits of each carrier sample are
	// overwritten, 1 through 4.
	BitsPerSample int
	// Channel restricts embedding to one side of a stereo carrier. Mono
	// carriers always use every sample.
	Channel Channel
}

// DefaultOptions is one bit per sample across both channels.
var DefaultOptions = Options{BitsPerSample: 1, Channel: ChannelBoth}

// Validate rejects out-of-range settings.
func (o Options) Validate() error {
	if o.BitsPerSample < 1 || o.BitsPerSample > 4 {
		return fmt.Errorf("bits per sample must be 1-4, got %d", o.BitsPerSample)
	}
	switch o.Channel {
	case ChannelBoth, ChannelLeft, ChannelRight:
		return nil
	default:
		return fmt.Errorf("unknown channel %q", o.Channel)
	}
}

// usableIndices lists the sample positions the options allow writing to.
// Interleaved stereo puts the left channel at even positions.
func usableIndices(clip *wavio.Clip, opts Options) []int {
	if clip.Channels < 2 || opts.Channel == ChannelBoth {
		idx := make([]int, len(clip.Samples))
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	start := 0
	if opts.Channel == ChannelRight {
		start = 1
	}
	idx := make([]int, 0, len(clip.Samples)/2+1)
	for i := start; i < len(clip.Samples); i += 2 {
		idx = append(idx, i)
	}
	return idx
}

// Capacity reports how many payload bytes the carrier can hold under the
// given options, after the length prefix.
func Capacity(clip *wavio.Clip, opts Options) int {
	usable := len(usableIndices(clip, opts))
	capBytes := usable * opts.BitsPerSample / 8
	capBytes -= lengthPrefixSize
	if capBytes < 0 {
		return 0
	}
	return capBytes
}
