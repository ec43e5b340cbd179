// Package cursor implements a positioned reader over an immutable byte
// buffer, the single mutation point used by every decoder in gboxfile.
package cursor

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/groove-tools/gboxfile/internal/gerr"
)

// Cursor is a positioned read over an immutable byte buffer. No component
// other than a Cursor's own methods may advance its position; decoders pass
// a single Cursor by reference through a call tree and never hold a second
// position index alongside it.
type Cursor struct {
	buf []byte
	pos int
}

// New wraps buf in a Cursor starting at position 0. buf is never copied or
// mutated.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current read position.
func (c *Cursor) Pos() int { return c.pos }

// SetPos moves the read position to n, without bounds checking against the
// buffer length; a subsequent read that runs past the end still fails with
// Truncated.
func (c *Cursor) SetPos(n int) { c.pos = n }

// StepBack rewinds the cursor by one byte. Used after a sentinel-terminated
// TLV loop reads one byte too many while probing for its terminator.
func (c *Cursor) StepBack() { c.pos-- }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// BufferLen returns the total length of the underlying buffer.
func (c *Cursor) BufferLen() int { return len(c.buf) }

func (c *Cursor) require(n int) error {
	if n < 0 || c.pos+n > len(c.buf) {
		return gerr.AtOffset(gerr.Truncated, c.pos)
	}
	return nil
}

// ReadU8 reads one byte and advances the cursor by one.
func (c *Cursor) ReadU8() (byte, error) {
	if err := c.require(1); err != nil {
		return 0, err
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// ReadBytes borrows the next n bytes and advances the cursor by n. The
// returned slice aliases the underlying buffer and must not be mutated.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if err := c.require(n); err != nil {
		return nil, err
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadString decodes the next n bytes as UTF-8 and advances the cursor by n.
func (c *Cursor) ReadString(n int) (string, error) {
	start := c.pos
	b, err := c.ReadBytes(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", gerr.AtOffset(gerr.InvalidUTF8, start)
	}
	return string(b), nil
}

// ReadF32LE reads a little-endian IEEE-754 32-bit float.
func (c *Cursor) ReadF32LE() (float32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// ReadU16LE reads a little-endian unsigned 16-bit integer.
func (c *Cursor) ReadU16LE() (uint16, error) {
	b, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadI16LE reads a little-endian signed 16-bit integer.
func (c *Cursor) ReadI16LE() (int16, error) {
	u, err := c.ReadU16LE()
	if err != nil {
		return 0, err
	}
	return int16(u), nil
}

// ReadVarint reads a base-128 little-endian varint, up to 4 bytes (28 bits).
// The continuation bit is the high bit of each byte.
func (c *Cursor) ReadVarint() (int, error) {
	start := c.pos
	var result int
	for i := 0; i < 4; i++ {
		b, err := c.ReadU8()
		if err != nil {
			return 0, err
		}
		result |= int(b&0x7F) << (7 * uint(i))
		if b&0x80 == 0 {
			return result, nil
		}
		if i == 3 {
			return 0, gerr.AtOffset(gerr.VarintTooLong, start)
		}
	}
	return result, nil
}
