package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/navicore/zim-hide/internal/util"
)

func TestAsymmetricSingleRecipient(t *testing.T) {
	kp, err := GenerateKeypair(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}

	plaintext := []byte("for your eyes only")
	sealed, err := EncryptAsymmetric(rand.Reader, plaintext, []*PublicKey{kp.Public})
	if err != nil {
		t.Fatalf("EncryptAsymmetric: %v", err)
	}

	if n, ok := RecipientCount(sealed); !ok || n != 1 {
		t.Errorf("RecipientCount = %d, %v; want 1, true", n, ok)
	}

	opened, err := DecryptAsymmetric(sealed, kp.Private)
	if err != nil {
		t.Fatalf("DecryptAsymmetric: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("round trip mismatch: got %q, want %q", opened, plaintext)
	}
}

func TestAsymmetricMultipleRecipients(t *testing.T) {
	var pubs []*PublicKey
	var keypairs []*Keypair
	for i := 0; i < 3; i++ {
		kp, err := GenerateKeypair(rand.Reader)
		if err != nil {
			t.Fatalf("GenerateKeypair: %v", err)
		}
		keypairs = append(keypairs, kp)
		pubs = append(pubs, kp.Public)
	}

	plaintext := []byte("shared with three recipients")
	sealed, err := EncryptAsymmetric(rand.Reader, plaintext, pubs)
	if err != nil {
		t.Fatalf("EncryptAsymmetric: %v", err)
	}

	if n, ok := RecipientCount(sealed); !ok || n != 3 {
		t.Errorf("RecipientCount = %d, %v; want 3, true", n, ok)
	}

	for i, kp := range keypairs {
		opened, err := DecryptAsymmetric(sealed, kp.Private)
		if err != nil {
			t.Fatalf("recipient %d DecryptAsymmetric: %v", i, err)
		}
		if !bytes.Equal(opened, plaintext) {
			t.Errorf("recipient %d round trip mismatch", i)
		}
	}
}

func TestAsymmetricNonRecipient(t *testing.T) {
	recipient, err := GenerateKeypair(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	outsider, err := GenerateKeypair(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}

	sealed, err := EncryptAsymmetric(rand.Reader, []byte("not for you"), []*PublicKey{recipient.Public})
	if err != nil {
		t.Fatalf("EncryptAsymmetric: %v", err)
	}
	if _, err := DecryptAsymmetric(sealed, outsider.Private); !errors.Is(err, util.ErrNoRecipientMatch) {
		t.Errorf("non-recipient: got %v, want ErrNoRecipientMatch", err)
	}
}

func TestAsymmetricNoRecipients(t *testing.T) {
	if _, err := EncryptAsymmetric(rand.Reader, []byte("data"), nil); err == nil {
		t.Fatal("expected error with no recipients")
	}
}

func TestAsymmetricTooManyRecipients(t *testing.T) {
	kp, err := GenerateKeypair(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	pubs := make([]*PublicKey, MaxRecipients+1)
	for i := range pubs {
		pubs[i] = kp.Public
	}
	if _, err := EncryptAsymmetric(rand.Reader, []byte("data"), pubs); err == nil {
		t.Fatal("expected error above the recipient limit")
	}
}

func TestAsymmetricTamperedPayload(t *testing.T) {
	kp, err := GenerateKeypair(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	sealed, err := EncryptAsymmetric(rand.Reader, []byte("data"), []*PublicKey{kp.Public})
	if err != nil {
		t.Fatalf("EncryptAsymmetric: %v", err)
	}
	sealed[len(sealed)-1] ^= 0x01
	if _, err := DecryptAsymmetric(sealed, kp.Private); !errors.Is(err, util.ErrNoRecipientMatch) {
		t.Errorf("tampered payload: got %v, want ErrNoRecipientMatch", err)
	}
}

func TestAsymmetricTruncated(t *testing.T) {
	kp, err := GenerateKeypair(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	sealed, err := EncryptAsymmetric(rand.Reader, []byte("data"), []*PublicKey{kp.Public})
	if err != nil {
		t.Fatalf("EncryptAsymmetric: %v", err)
	}
	for _, n := range []int{0, 1, 50, 100} {
		if n >= len(sealed) {
			continue
		}
		if _, err := DecryptAsymmetric(sealed[:n], kp.Private); !errors.Is(err, util.ErrTruncated) {
			t.Errorf("truncated to %d: got %v, want ErrTruncated", n, err)
		}
	}
}

func TestAsymmetricEmptyPlaintext(t *testing.T) {
	kp, err := GenerateKeypair(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	sealed, err := EncryptAsymmetric(rand.Reader, nil, []*PublicKey{kp.Public})
	if err != nil {
		t.Fatalf("EncryptAsymmetric: %v", err)
	}
	opened, err := DecryptAsymmetric(sealed, kp.Private)
	if err != nil {
		t.Fatalf("DecryptAsymmetric: %v", err)
	}
	if len(opened) != 0 {
		t.Errorf("expected empty plaintext, got %d bytes", len(opened))
	}
}
