package envelope

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/navicore/zim-hide/internal/util"
)

// Content is the cleartext interior of an envelope: an optional UTF-8 text
// message and an optional compressed audio clip.
type Content struct {
	Text  string
	Audio []byte
}

// Flags reports the content bits matching what is present.
func (c *Content) Flags() Flags {
	var f Flags
	if c.Text != "" {
		f |= FlagText
	}
	if len(c.Audio) > 0 {
		f |= FlagAudio
	}
	return f
}

// MarshalContent renders text_len(4) | text | audio_len(4) | audio. A zero
// length marks an absent section.
func MarshalContent(c *Content) ([]byte, error) {
	if !utf8.ValidString(c.Text) {
		return nil, util.ErrBadText
	}
	out := make([]byte, 0, 8+len(c.Text)+len(c.Audio))

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(c.Text)))
	out = append(out, lenBuf[:]...)
	out = append(out, c.Text...)

	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(c.Audio)))
	out = append(out, lenBuf[:]...)
	out = append(out, c.Audio...)

	return out, nil
}

// ParseContent splits a cleartext payload back into its sections. The text
// section must be valid UTF-8.
func ParseContent(data []byte) (*Content, error) {
	if len(data) < 4 {
		return nil, util.ErrTruncated
	}
	textLen := binary.LittleEndian.Uint32(data[0:4])
	if uint64(len(data)) < 4+uint64(textLen) {
		return nil, util.ErrTruncated
	}
	text := data[4 : 4+textLen]
	rest := data[4+textLen:]

	if len(rest) < 4 {
		return nil, util.ErrTruncated
	}
	audioLen := binary.LittleEndian.Uint32(rest[0:4])
	if uint64(len(rest)) < 4+uint64(audioLen) {
		return nil, util.ErrTruncated
	}
	audio := rest[4 : 4+audioLen]

	if !utf8.Valid(text) {
		return nil, util.ErrBadText
	}

	c := &Content{Text: string(text)}
	if audioLen > 0 {
		c.Audio = append([]byte(nil), audio...)
	}
	return c, nil
}
