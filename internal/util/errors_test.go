package util

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{ErrBadSignature, ExitVerifyFailed},
		{ErrBadPassphrase, ExitDecryptFailed},
		{ErrNoRecipientMatch, ExitDecryptFailed},
		{ErrUnsupportedVersion, ExitUnsupportedFormat},
		{ErrUnsupportedMethod, ExitUnsupportedFormat},
		{ErrUnsupportedSampleFormat, ExitUnsupportedFormat},
		{ErrMutuallyExclusiveOptions, ExitInvalidArgs},
		{ErrMissingInput, ExitInvalidArgs},
		{ErrBadMagic, ExitGenericError},
		{errors.New("anything else"), ExitGenericError},
	}

	for _, c := range cases {
		if got := ExitCodeForError(c.err); got != c.want {
			t.Errorf("ExitCodeForError(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestExitCodeForWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("decode payload: %w", ErrBadSignature)
	if got := ExitCodeForError(wrapped); got != ExitVerifyFailed {
		t.Errorf("wrapped error exit code = %d, want %d", got, ExitVerifyFailed)
	}
}
