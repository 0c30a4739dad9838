package cli

import (
	"errors"
	"io"
	mathrand "math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/navicore/zim-hide/internal/config"
	"github.com/navicore/zim-hide/internal/util"
	"github.com/navicore/zim-hide/internal/wavio"
)

// carrierFixture writes a noisy stereo carrier and isolates the config env.
func carrierFixture(t *testing.T, samples int) string {
	t.Helper()
	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "no-config.yaml"))
	t.Setenv(config.EnvProfile, "")

	rng := mathrand.New(mathrand.NewSource(11))
	data := make([]int, samples)
	for i := range data {
		data[i] = int(int16(rng.Intn(65536) - 32768))
	}
	clip := &wavio.Clip{Samples: data, SampleRate: 44100, Channels: 2}
	path := filepath.Join(t.TempDir(), "carrier.wav")
	if err := clip.SaveClip(path); err != nil {
		t.Fatalf("save carrier fixture: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	root := NewRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	carrier := carrierFixture(t, 16384)
	dir := t.TempDir()
	out := filepath.Join(dir, "stego.wav")
	textOut := filepath.Join(dir, "message.txt")

	if err := run(t, "encode", "--in", carrier, "--out", out, "--message", "meet at dawn"); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := run(t, "decode", "--in", out, "--text-out", textOut); err != nil {
		t.Fatalf("decode: %v", err)
	}

	got, err := os.ReadFile(textOut)
	if err != nil {
		t.Fatalf("read text output: %v", err)
	}
	if string(got) != "meet at dawn" {
		t.Errorf("text = %q", got)
	}
}

func TestEncodeDecodeMetadataMethod(t *testing.T) {
	carrier := carrierFixture(t, 4096)
	dir := t.TempDir()
	out := filepath.Join(dir, "stego.wav")
	textOut := filepath.Join(dir, "message.txt")

	if err := run(t, "encode", "--in", carrier, "--out", out, "--method", "metadata", "--message", "chunked"); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := run(t, "decode", "--in", out, "--method", "metadata", "--text-out", textOut); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, _ := os.ReadFile(textOut)
	if string(got) != "chunked" {
		t.Errorf("text = %q", got)
	}
}

func TestEncodeDecodePassphrase(t *testing.T) {
	carrier := carrierFixture(t, 16384)
	dir := t.TempDir()
	out := filepath.Join(dir, "stego.wav")
	textOut := filepath.Join(dir, "message.txt")

	if err := run(t, "encode", "--in", carrier, "--out", out, "--message", "sealed", "--passphrase", "hunter2"); err != nil {
		t.Fatalf("encode: %v", err)
	}

	if err := run(t, "decode", "--in", out, "--passphrase", "wrong", "--text-out", textOut); err == nil {
		t.Fatal("expected error with wrong passphrase")
	} else if !errors.Is(err, util.ErrBadPassphrase) {
		t.Errorf("err = %v, want ErrBadPassphrase", err)
	}

	if err := run(t, "decode", "--in", out, "--passphrase", "hunter2", "--text-out", textOut); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, _ := os.ReadFile(textOut)
	if string(got) != "sealed" {
		t.Errorf("text = %q", got)
	}
}

func TestEncodeSignDecodeVerify(t *testing.T) {
	carrier := carrierFixture(t, 16384)
	dir := t.TempDir()
	keyBase := filepath.Join(dir, "signer")
	out := filepath.Join(dir, "stego.wav")
	textOut := filepath.Join(dir, "message.txt")

	if err := run(t, "keygen", "--out", keyBase); err != nil {
		t.Fatalf("keygen: %v", err)
	}
	if err := run(t, "encode", "--in", carrier, "--out", out, "--message", "attested", "--sign-key", keyBase+".priv"); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := run(t, "decode", "--in", out, "--verify-key", keyBase+".pub", "--text-out", textOut); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Verification with the wrong key must fail.
	otherBase := filepath.Join(dir, "other")
	if err := run(t, "keygen", "--out", otherBase); err != nil {
		t.Fatalf("keygen: %v", err)
	}
	err := run(t, "decode", "--in", out, "--verify-key", otherBase+".pub", "--text-out", textOut)
	if !errors.Is(err, util.ErrBadSignature) {
		t.Errorf("err = %v, want ErrBadSignature", err)
	}
}

func TestEncodeRecipientDecodeKey(t *testing.T) {
	carrier := carrierFixture(t, 16384)
	dir := t.TempDir()
	keyBase := filepath.Join(dir, "alice")
	out := filepath.Join(dir, "stego.wav")
	textOut := filepath.Join(dir, "message.txt")

	if err := run(t, "keygen", "--out", keyBase); err != nil {
		t.Fatalf("keygen: %v", err)
	}
	if err := run(t, "encode", "--in", carrier, "--out", out, "--message", "for alice", "--recipient", keyBase+".pub"); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := run(t, "decode", "--in", out, "--key", keyBase+".priv", "--text-out", textOut); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, _ := os.ReadFile(textOut)
	if string(got) != "for alice" {
		t.Errorf("text = %q", got)
	}
}

func TestEncodeMessageAndFileExclusive(t *testing.T) {
	carrier := carrierFixture(t, 4096)
	err := run(t, "encode", "--in", carrier, "--out", filepath.Join(t.TempDir(), "o.wav"),
		"--message", "a", "--message-file", "b.txt")
	if err == nil {
		t.Fatal("expected error for --message with --message-file")
	}
}

func TestEncodeMissingRequiredFlags(t *testing.T) {
	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "no-config.yaml"))
	if err := run(t, "encode", "--message", "x"); err == nil {
		t.Fatal("expected error when --in is missing")
	}
}

func TestInspectCmd(t *testing.T) {
	carrier := carrierFixture(t, 16384)
	out := filepath.Join(t.TempDir(), "stego.wav")

	if err := run(t, "encode", "--in", carrier, "--out", out, "--message", "peek", "--passphrase", "pw"); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := run(t, "inspect", "--in", out, "--quiet"); err != nil {
		t.Fatalf("inspect: %v", err)
	}
}

func TestDecodeUnknownMethodRejected(t *testing.T) {
	carrier := carrierFixture(t, 4096)
	err := run(t, "decode", "--in", carrier, "--method", "sideband")
	if !errors.Is(err, util.ErrUnsupportedMethod) {
		t.Errorf("err = %v, want ErrUnsupportedMethod", err)
	}
}

func TestCompletionsCmd(t *testing.T) {
	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "no-config.yaml"))
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		if err := run(t, "completions", shell); err != nil {
			t.Errorf("completions %s: %v", shell, err)
		}
	}
	if err := run(t, "completions", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestParseMethod(t *testing.T) {
	if _, err := parseMethod("lsb"); err != nil {
		t.Errorf("lsb: %v", err)
	}
	if _, err := parseMethod("metadata"); err != nil {
		t.Errorf("metadata: %v", err)
	}
	if _, err := parseMethod("spread"); !errors.Is(err, util.ErrUnsupportedMethod) {
		t.Errorf("spread err = %v", err)
	}
}

func TestResolveStegoRejectsBadChannel(t *testing.T) {
	config.SetActive(nil)
	if _, _, err := resolveStego("", 1, "middle"); err == nil {
		t.Fatal("expected error for unknown channel")
	}
	if _, opts, err := resolveStego("", 0, ""); err != nil {
		t.Fatalf("defaults: %v", err)
	} else if opts.BitsPerSample != 1 || string(opts.Channel) != "both" {
		t.Errorf("opts = %+v", opts)
	}
}

func TestKeygenStdout(t *testing.T) {
	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "no-config.yaml"))
	// Without --out the armored blocks go to stdout; just check it runs.
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	runErr := run(t, "keygen", "--quiet")
	w.Close()
	os.Stdout = old
	if runErr != nil {
		t.Fatalf("keygen: %v", runErr)
	}
	out, _ := io.ReadAll(r)
	if !strings.Contains(string(out), "ZIMHIDE PRIVATE KEY") {
		t.Error("expected armored private key on stdout")
	}
}
