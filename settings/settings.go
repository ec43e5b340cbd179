// Package settings decodes the project-level settings file: the project
// header (name, directory, bpm, four still-unreverse-engineered byte
// blobs) followed by 32 fixed CCMapping records.
package settings

import (
	"github.com/groove-tools/gboxfile/internal/cursor"
	"github.com/groove-tools/gboxfile/internal/gerr"
	"github.com/groove-tools/gboxfile/internal/tlv"
)

// sentinel is the tag byte that begins every CCMapping record and also
// terminates the settings body's tag-dispatch loop.
const sentinel = 0xC2

// Settings holds the decoded contents of a project's settings file.
type Settings struct {
	Name      string
	Directory string
	BPM       float32

	JackCCMapping [16]CCMapping
	USBCCMapping  [16]CCMapping

	// X20, X90, XA8, XB0 are opaque byte blobs from tags whose purpose is
	// not yet reverse-engineered. Preserved verbatim; part of the value for
	// equality and round-trip comparison.
	X20 []byte
	X90 []byte
	XA8 []byte
	XB0 []byte
}

// CCMapping assigns eight hardware parameters to MIDI CC numbers for one
// MIDI port (jack or usb).
type CCMapping struct {
	// Header holds four opaque bytes preceding the CC assignments.
	Header [4]byte

	Cutoff       uint8
	Resonance    uint8
	SampleAttack uint8
	SampleDecay  uint8
	ReverbSend   uint8
	DelaySend    uint8
	Overdrive    uint8
	BitDepth     uint8
}

// Decode parses a complete settings file.
func Decode(buf []byte) (*Settings, error) {
	c := cursor.New(buf)
	s := &Settings{}

	if err := tlv.UntilSentinel(c, sentinel, func(tag byte) error {
		return dispatchBodyTag(c, s, tag)
	}); err != nil {
		return nil, err
	}

	for i := range s.JackCCMapping {
		m, err := decodeCCMapping(c)
		if err != nil {
			return nil, err
		}
		s.JackCCMapping[i] = m
	}
	for i := range s.USBCCMapping {
		m, err := decodeCCMapping(c)
		if err != nil {
			return nil, err
		}
		s.USBCCMapping[i] = m
	}

	return s, nil
}

func dispatchBodyTag(c *cursor.Cursor, s *Settings, tag byte) error {
	switch tag {
	case 0x12: // name
		n, err := c.ReadU8()
		if err != nil {
			return err
		}
		name, err := c.ReadString(int(n))
		if err != nil {
			return err
		}
		s.Name = name
	case 0x62: // directory
		n, err := c.ReadU8()
		if err != nil {
			return err
		}
		dir, err := c.ReadString(int(n))
		if err != nil {
			return err
		}
		s.Directory = dir
	case 0x85: // bpm
		// One unknown byte (observed 0x01) precedes the bpm float and is
		// skipped without being preserved.
		if _, err := c.ReadU8(); err != nil {
			return err
		}
		bpm, err := c.ReadF32LE()
		if err != nil {
			return err
		}
		s.BPM = bpm
	case 0x20:
		b, err := c.ReadBytes(5)
		if err != nil {
			return err
		}
		s.X20 = append([]byte(nil), b...)
	case 0x90:
		b, err := c.ReadBytes(11)
		if err != nil {
			return err
		}
		s.X90 = append([]byte(nil), b...)
	case 0xA8:
		b, err := c.ReadBytes(2)
		if err != nil {
			return err
		}
		s.XA8 = append([]byte(nil), b...)
	case 0xB0:
		b, err := c.ReadBytes(2)
		if err != nil {
			return err
		}
		s.XB0 = append([]byte(nil), b...)
	default:
		// The settings body is sentinel-terminated, not bounded: there is no
		// tolerated soft failure here, unlike track attributes.
		return gerr.AtOffsetf(gerr.UnknownTag, c.Pos()-1, "unknown settings tag 0x%02X", tag)
	}
	return nil
}

func decodeCCMapping(c *cursor.Cursor) (CCMapping, error) {
	var m CCMapping
	tag, err := c.ReadU8()
	if err != nil {
		return m, err
	}
	if tag != sentinel {
		return m, gerr.AtOffsetf(gerr.StructuralViolation, c.Pos()-1, "expected CCMapping tag 0x%02X, got 0x%02X", sentinel, tag)
	}
	hdr, err := c.ReadBytes(4)
	if err != nil {
		return m, err
	}
	copy(m.Header[:], hdr)

	fields := []*uint8{
		&m.Cutoff, &m.Resonance, &m.SampleAttack, &m.SampleDecay,
		&m.ReverbSend, &m.DelaySend, &m.Overdrive, &m.BitDepth,
	}
	for _, f := range fields {
		b, err := c.ReadU8()
		if err != nil {
			return m, err
		}
		*f = b
	}
	return m, nil
}
