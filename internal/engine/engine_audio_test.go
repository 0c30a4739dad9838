//go:build !noopus

package engine

import (
	"crypto/rand"
	"math"
	"path/filepath"
	"testing"

	"github.com/navicore/zim-hide/internal/audioenc"
	"github.com/navicore/zim-hide/internal/envelope"
	"github.com/navicore/zim-hide/internal/stego"
	"github.com/navicore/zim-hide/internal/wavio"
)

// hiddenClipFixture writes a mono 48kHz sine tone sized to a whole number of
// codec frames, so the decoded clip comes back sample-for-sample.
func hiddenClipFixture(t *testing.T, samples int) string {
	t.Helper()
	data := make([]int, samples)
	for i := range data {
		data[i] = int(math.Sin(2*math.Pi*440*float64(i)/audioenc.CodecRate) * 12000)
	}
	clip := &wavio.Clip{Samples: data, SampleRate: audioenc.CodecRate, Channels: 1}
	path := filepath.Join(t.TempDir(), "hidden.wav")
	if err := clip.SaveClip(path); err != nil {
		t.Fatalf("save hidden clip fixture: %v", err)
	}
	return path
}

func TestEmbedExtractHiddenAudio(t *testing.T) {
	carrier := carrierFixture(t, 4096)
	out := filepath.Join(t.TempDir(), "out.wav")
	audioOut := filepath.Join(t.TempDir(), "recovered.wav")

	// 25 codec frames exactly, so no padding survives the round trip.
	const hiddenSamples = 24000
	hidden := hiddenClipFixture(t, hiddenSamples)

	res, err := Embed(&EmbedRequest{
		CarrierPath: carrier,
		OutputPath:  out,
		AudioPath:   hidden,
		Method:      envelope.MethodMetadata,
		Options:     stego.DefaultOptions,
		RNG:         rand.Reader,
	})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if res.Method != envelope.MethodMetadata {
		t.Errorf("method = %s", res.Method)
	}

	got, err := Extract(&ExtractRequest{
		CarrierPath:  out,
		Options:      stego.DefaultOptions,
		AudioOutPath: audioOut,
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.AudioWritten != audioOut {
		t.Fatalf("AudioWritten = %q, want %q", got.AudioWritten, audioOut)
	}

	clip, err := wavio.LoadClip(audioOut)
	if err != nil {
		t.Fatalf("load recovered clip: %v", err)
	}
	if clip.SampleRate != audioenc.CodecRate {
		t.Errorf("sample rate = %d, want %d", clip.SampleRate, audioenc.CodecRate)
	}
	if clip.Channels != 1 {
		t.Errorf("channels = %d, want 1", clip.Channels)
	}
	if len(clip.Samples) != hiddenSamples {
		t.Errorf("recovered %d samples, want %d", len(clip.Samples), hiddenSamples)
	}
}
