// Package envelope frames hidden payloads: a fixed header carrying magic,
// version, content flags, and stego method, followed by the payload bytes
// and an optional detached signature.
package envelope

import (
	"encoding/binary"
	"fmt"

	"github.com/navicore/zim-hide/internal/crypto"
	"github.com/navicore/zim-hide/internal/util"
)

// Magic opens every envelope.
const Magic = "ZIMH"

// Version is the only envelope version this build reads or writes.
const Version = 1

// HeaderSize is magic(4) + version(1) + flags(1) + method(1) + payload_len(4).
const HeaderSize = 11

// Flags records what the envelope carries and how it is protected.
type Flags byte

const (
	FlagText       Flags = 1 << 0
	FlagAudio      Flags = 1 << 1
	FlagSigned     Flags = 1 << 2
	FlagSymmetric  Flags = 1 << 3
	FlagAsymmetric Flags = 1 << 4

	flagsReserved Flags = 0xE0
)

// Has reports whether all bits of f are set.
func (f Flags) Has(bit Flags) bool { return f&bit == bit }

// Validate rejects reserved bits and impossible combinations.
func (f Flags) Validate() error {
	if f&flagsReserved != 0 {
		return fmt.Errorf("%w: reserved bits set (0x%02x)", util.ErrBadFlags, byte(f))
	}
	if f.Has(FlagSymmetric) && f.Has(FlagAsymmetric) {
		return fmt.Errorf("%w: both encryption modes set", util.ErrBadFlags)
	}
	if !f.Has(FlagText) && !f.Has(FlagAudio) {
		return fmt.Errorf("%w: no content bits set", util.ErrBadFlags)
	}
	return nil
}

// Encrypted reports whether either encryption flag is set.
func (f Flags) Encrypted() bool {
	return f.Has(FlagSymmetric) || f.Has(FlagAsymmetric)
}

// Method selects the embedding technique.
type Method byte

const (
	MethodLSB      Method = 0
	MethodMetadata Method = 1
	// MethodSpread is reserved. Envelopes naming it are rejected.
	MethodSpread Method = 2
)

// String names the method for display.
func (m Method) String() string {
	switch m {
	case MethodLSB:
		return "lsb"
	case MethodMetadata:
		return "metadata"
	case MethodSpread:
		return "spread"
	default:
		return fmt.Sprintf("method(%d)", byte(m))
	}
}

// Validate accepts only the methods this build can extract.
func (m Method) Validate() error {
	switch m {
	case MethodLSB, MethodMetadata:
		return nil
	default:
		return fmt.Errorf("%w: %s", util.ErrUnsupportedMethod, m)
	}
}

// Header is the fixed prefix of every envelope.
type Header struct {
	Flags      Flags
	Method     Method
	PayloadLen uint32
}

// Marshal renders the 11-byte header.
func (h *Header) Marshal() []byte {
	out := make([]byte, HeaderSize)
	copy(out[0:4], Magic)
	out[4] = Version
	out[5] = byte(h.Flags)
	out[6] = byte(h.Method)
	binary.LittleEndian.PutUint32(out[7:11], h.PayloadLen)
	return out
}

// ParseHeader reads and validates the fixed header. The magic is checked
// before anything else so foreign data fails fast with ErrBadMagic.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, util.ErrTruncated
	}
	if string(data[0:4]) != Magic {
		return nil, util.ErrBadMagic
	}
	if data[4] != Version {
		return nil, fmt.Errorf("%w: version %d", util.ErrUnsupportedVersion, data[4])
	}

	h := &Header{
		Flags:      Flags(data[5]),
		Method:     Method(data[6]),
		PayloadLen: binary.LittleEndian.Uint32(data[7:11]),
	}
	if err := h.Flags.Validate(); err != nil {
		return nil, err
	}
	if err := h.Method.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Envelope is a parsed header plus its payload and optional signature.
type Envelope struct {
	Header    Header
	Payload   []byte
	Signature []byte
}

// Marshal renders header | payload | signature.
func (e *Envelope) Marshal() []byte {
	e.Header.PayloadLen = uint32(len(e.Payload))
	out := make([]byte, 0, HeaderSize+len(e.Payload)+len(e.Signature))
	out = append(out, e.Header.Marshal()...)
	out = append(out, e.Payload...)
	out = append(out, e.Signature...)
	return out
}

// Parse splits an extracted byte stream into header, payload, and signature.
// Trailing bytes beyond the signature are tolerated; stego extraction may
// over-read the carrier.
func Parse(data []byte) (*Envelope, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	body := data[HeaderSize:]
	if uint64(len(body)) < uint64(h.PayloadLen) {
		return nil, util.ErrTruncated
	}
	payload := body[:h.PayloadLen]
	rest := body[h.PayloadLen:]

	e := &Envelope{Header: *h, Payload: payload}
	if h.Flags.Has(FlagSigned) {
		if len(rest) < crypto.SignatureSize {
			return nil, util.ErrTruncated
		}
		e.Signature = rest[:crypto.SignatureSize]
	}
	return e, nil
}
