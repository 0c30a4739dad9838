package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/navicore/zim-hide/internal/util"
)

func TestSymmetricRoundTrip(t *testing.T) {
	plaintext := []byte("secret message for the carrier")
	passphrase := []byte("correct horse battery staple")

	sealed, err := EncryptSymmetric(rand.Reader, plaintext, passphrase)
	if err != nil {
		t.Fatalf("EncryptSymmetric: %v", err)
	}
	if bytes.Contains(sealed, plaintext) {
		t.Error("ciphertext contains the plaintext")
	}

	opened, err := DecryptSymmetric(sealed, passphrase)
	if err != nil {
		t.Fatalf("DecryptSymmetric: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("round trip mismatch: got %q, want %q", opened, plaintext)
	}
}

func TestSymmetricEmptyPlaintext(t *testing.T) {
	sealed, err := EncryptSymmetric(rand.Reader, nil, []byte("pw"))
	if err != nil {
		t.Fatalf("EncryptSymmetric: %v", err)
	}
	opened, err := DecryptSymmetric(sealed, []byte("pw"))
	if err != nil {
		t.Fatalf("DecryptSymmetric: %v", err)
	}
	if len(opened) != 0 {
		t.Errorf("expected empty plaintext, got %d bytes", len(opened))
	}
}

func TestSymmetricWrongPassphrase(t *testing.T) {
	sealed, err := EncryptSymmetric(rand.Reader, []byte("data"), []byte("right"))
	if err != nil {
		t.Fatalf("EncryptSymmetric: %v", err)
	}
	if _, err := DecryptSymmetric(sealed, []byte("wrong")); !errors.Is(err, util.ErrBadPassphrase) {
		t.Errorf("wrong passphrase: got %v, want ErrBadPassphrase", err)
	}
}

func TestSymmetricTamperedCiphertext(t *testing.T) {
	sealed, err := EncryptSymmetric(rand.Reader, []byte("data"), []byte("pw"))
	if err != nil {
		t.Fatalf("EncryptSymmetric: %v", err)
	}
	sealed[len(sealed)-1] ^= 0x01
	if _, err := DecryptSymmetric(sealed, []byte("pw")); !errors.Is(err, util.ErrBadPassphrase) {
		t.Errorf("tampered ciphertext: got %v, want ErrBadPassphrase", err)
	}
}

func TestSymmetricTruncated(t *testing.T) {
	sealed, err := EncryptSymmetric(rand.Reader, []byte("data"), []byte("pw"))
	if err != nil {
		t.Fatalf("EncryptSymmetric: %v", err)
	}
	for _, n := range []int{0, 1, 5, 20} {
		if n >= len(sealed) {
			continue
		}
		if _, err := DecryptSymmetric(sealed[:n], []byte("pw")); !errors.Is(err, util.ErrTruncated) {
			t.Errorf("truncated to %d: got %v, want ErrTruncated", n, err)
		}
	}
}

func TestSymmetricFreshSaltPerCall(t *testing.T) {
	a, err := EncryptSymmetric(rand.Reader, []byte("data"), []byte("pw"))
	if err != nil {
		t.Fatalf("EncryptSymmetric: %v", err)
	}
	b, err := EncryptSymmetric(rand.Reader, []byte("data"), []byte("pw"))
	if err != nil {
		t.Fatalf("EncryptSymmetric: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same input produced identical output")
	}
}
