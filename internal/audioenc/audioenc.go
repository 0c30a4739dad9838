// Package audioenc turns WAV clips into the compact byte form carried inside
// hidden payloads. The default build compresses with Opus; the noopus build
// tag swaps in a raw passthrough for environments without libopus.
package audioenc

const (
	// CodecRate is the only sample rate the compressed form carries.
	CodecRate = 48000

	headerSize = 8

	// frameSamples is 20ms at 48kHz, per channel.
	frameSamples = 960

	maxPacketSize = 4000
	maxFrames     = 1<<16 - 1
)
