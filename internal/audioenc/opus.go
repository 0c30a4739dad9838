//go:build !noopus

package audioenc

import (
	"encoding/binary"
	"fmt"

	"gopkg.in/hraban/opus.v2"

	"github.com/navicore/zim-hide/internal/util"
	"github.com/navicore/zim-hide/internal/wavio"
)

// Compress reads a 48kHz 16-bit WAV file and encodes it to Opus frames.
//
// Output framing:
//
//	rate(4 LE) | channels(2 LE) | frame_count(2 LE)
//	| { frame_len(2 LE) | packet } x frame_count
func Compress(path string) ([]byte, error) {
	clip, err := wavio.LoadClip(path)
	if err != nil {
		return nil, err
	}
	if clip.SampleRate != CodecRate {
		return nil, fmt.Errorf("%w: %dHz (want %dHz; resample first)",
			util.ErrUnsupportedSampleFormat, clip.SampleRate, CodecRate)
	}
	if clip.Channels != 1 && clip.Channels != 2 {
		return nil, fmt.Errorf("%w: %d channels (want mono or stereo)",
			util.ErrUnsupportedSampleFormat, clip.Channels)
	}
	if clip.Float || (clip.BitDepth != 0 && clip.BitDepth != 16) {
		return nil, fmt.Errorf("%w: opus input must be 16-bit integer pcm",
			util.ErrUnsupportedSampleFormat)
	}

	enc, err := opus.NewEncoder(CodecRate, clip.Channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("create opus encoder: %w", err)
	}
	bitrate := 64000
	if clip.Channels == 2 {
		bitrate = 96000
	}
	if err := enc.SetBitrate(bitrate); err != nil {
		return nil, fmt.Errorf("set opus bitrate: %w", err)
	}

	samplesPerFrame := frameSamples * clip.Channels
	frameCount := (len(clip.Samples) + samplesPerFrame - 1) / samplesPerFrame
	if frameCount > maxFrames {
		return nil, fmt.Errorf("clip too long: %d frames (max %d)", frameCount, maxFrames)
	}

	out := make([]byte, headerSize, headerSize+frameCount*64)
	binary.LittleEndian.PutUint32(out[0:4], CodecRate)
	binary.LittleEndian.PutUint16(out[4:6], uint16(clip.Channels))
	binary.LittleEndian.PutUint16(out[6:8], uint16(frameCount))

	frame := make([]int16, samplesPerFrame)
	packet := make([]byte, maxPacketSize)

	for i := 0; i < frameCount; i++ {
		for j := range frame {
			frame[j] = 0
		}
		start := i * samplesPerFrame
		for j := 0; j < samplesPerFrame && start+j < len(clip.Samples); j++ {
			frame[j] = int16(clip.Samples[start+j])
		}

		n, err := enc.Encode(frame, packet)
		if err != nil {
			return nil, fmt.Errorf("encode opus frame %d: %w", i, err)
		}

		var lenBuf [2]byte
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(n))
		out = append(out, lenBuf[:]...)
		out = append(out, packet[:n]...)
	}
	return out, nil
}

// Decompress decodes Opus frames back into a 16-bit WAV file at outPath.
func Decompress(data []byte, outPath string) error {
	if len(data) < headerSize {
		return util.ErrTruncated
	}
	rate := int(binary.LittleEndian.Uint32(data[0:4]))
	channels := int(binary.LittleEndian.Uint16(data[4:6]))
	frameCount := int(binary.LittleEndian.Uint16(data[6:8]))

	if rate != CodecRate {
		return fmt.Errorf("%w: %dHz in header (want %dHz)", util.ErrUnsupportedSampleFormat, rate, CodecRate)
	}
	if channels != 1 && channels != 2 {
		return fmt.Errorf("%w: %d channels in header", util.ErrUnsupportedSampleFormat, channels)
	}

	dec, err := opus.NewDecoder(CodecRate, channels)
	if err != nil {
		return fmt.Errorf("create opus decoder: %w", err)
	}

	// Largest legal Opus frame is 120ms, 5760 samples per channel.
	pcm := make([]int16, 5760*channels)
	samples := make([]int, 0, frameCount*frameSamples*channels)

	off := headerSize
	for i := 0; i < frameCount; i++ {
		if off+2 > len(data) {
			return util.ErrTruncated
		}
		frameLen := int(binary.LittleEndian.Uint16(data[off : off+2]))
		off += 2
		if off+frameLen > len(data) {
			return util.ErrTruncated
		}

		n, err := dec.Decode(data[off:off+frameLen], pcm)
		if err != nil {
			return fmt.Errorf("decode opus frame %d: %w", i, err)
		}
		for _, s := range pcm[:n*channels] {
			samples = append(samples, int(s))
		}
		off += frameLen
	}

	clip := &wavio.Clip{Samples: samples, SampleRate: rate, Channels: channels}
	return clip.SaveClip(outPath)
}
