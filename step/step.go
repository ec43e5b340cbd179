// Package step decodes the per-step parameter-lock block shared by audio and
// MIDI tracks: a TLV frame wrapping 44 fixed-width little-endian fields plus
// an opaque tail, reinterpreted differently for AudioStep and MidiStep.
package step

import (
	"bytes"

	"github.com/icza/bitio"

	"github.com/groove-tools/gboxfile/internal/cursor"
	"github.com/groove-tools/gboxfile/internal/gerr"
)

const numFields = 44

// frame is the shared outer shape of every step:
//
//	0x0A  varint(outer_len)
//	  0x0A  varint(inner_count=44)
//	  … 44 × u16 little-endian fields …
//	  opaque tail (outer_len − bytes_consumed bytes)
func readFrame(c *cursor.Cursor, number int) (fields [numFields]uint16, tail []byte, err error) {
	tag, err := c.ReadU8()
	if err != nil {
		return fields, nil, err
	}
	if tag != 0x0A {
		return fields, nil, gerr.AtOffsetf(gerr.StructuralViolation, c.Pos()-1, "step %d: expected outer tag 0x0A, got 0x%02X", number, tag)
	}
	outerLen, err := c.ReadVarint()
	if err != nil {
		return fields, nil, err
	}
	start := c.Pos()

	tag, err = c.ReadU8()
	if err != nil {
		return fields, nil, err
	}
	if tag != 0x0A {
		return fields, nil, gerr.AtOffsetf(gerr.StructuralViolation, c.Pos()-1, "step %d: expected inner tag 0x0A, got 0x%02X", number, tag)
	}
	n, err := c.ReadVarint()
	if err != nil {
		return fields, nil, err
	}
	if n != numFields {
		return fields, nil, gerr.AtOffsetf(gerr.StructuralViolation, c.Pos(), "step %d: expected %d inner elements, got %d", number, numFields, n)
	}

	for i := 0; i < numFields; i++ {
		v, err := c.ReadU16LE()
		if err != nil {
			return fields, nil, err
		}
		fields[i] = v
	}

	advanced := c.Pos() - start
	tailLen := outerLen - advanced
	if tailLen < 0 {
		return fields, nil, gerr.AtOffsetf(gerr.StructuralViolation, c.Pos(), "step %d: outer length %d shorter than fixed fields", number, outerLen)
	}
	tail, err = c.ReadBytes(tailLen)
	if err != nil {
		return fields, nil, err
	}
	return fields, append([]byte(nil), tail...), nil
}

// maskBits decomposes a single byte into its eight bit values, indexed so
// that bits[0] is the least-significant bit (weight 1) and bits[7] the
// most-significant (weight 128). It reads through a bitio.Reader bit by
// bit rather than hand-rolled shifts.
func maskBits(b byte) [8]bool {
	r := bitio.NewReader(bytes.NewReader([]byte{b}))
	var bits [8]bool
	for i := 7; i >= 0; i-- {
		bit, err := r.ReadBits(1)
		if err != nil {
			break
		}
		bits[i] = bit == 1
	}
	return bits
}
