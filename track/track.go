// Package track decodes audio and MIDI tracks: 64 fixed step slots followed
// by a bounded attribute TLV tail, truncated to num_steps.
package track

import (
	"fmt"

	"github.com/mewkiz/pkg/dbg"

	"github.com/groove-tools/gboxfile/internal/cursor"
	"github.com/groove-tools/gboxfile/internal/gerr"
	"github.com/groove-tools/gboxfile/internal/tlv"
	"github.com/groove-tools/gboxfile/step"
)

const numStepSlots = 64

// Attrs holds the attribute-tail fields shared by audio and MIDI tracks,
// decoded from the 0x10/0x38/0x40/0x20/0x28/0x30/0x4A/0x18 tags.
type Attrs struct {
	NumSteps   uint8
	Swing      uint8
	PlayMode   uint8
	Speed      Speed
	Variation  uint8
	Variations [16]bool
	// UX18 is an opaque byte from tag 0x18, not yet reverse-engineered.
	UX18 uint8
}

// AudioTrack is one audio track: up to 64 AudioStep cells truncated to
// NumSteps, plus its attributes.
type AudioTrack struct {
	Number    int
	Variation uint8
	Steps     []step.AudioStep
	Swing     uint8
	PlayMode  uint8
	Speed     Speed
	IsDefault bool
}

// MidiTrack is one MIDI track: up to 64 MidiStep cells truncated to
// NumSteps, plus its attributes.
type MidiTrack struct {
	Number    int
	Variation uint8
	Steps     []step.MidiStep
	Swing     uint8
	PlayMode  uint8
	Speed     Speed
	IsDefault bool
}

// DecodeAudioInline decodes an audio track inlined in a pattern file: the
// outer 0x0A/varint(track_len) frame is present. strict, when true, makes an
// unknown track-attribute tag fatal instead of a recorded warning (see
// WithStrictTrackAttrs).
func DecodeAudioInline(c *cursor.Cursor, number int, strict bool) (*AudioTrack, error) {
	steps, attrs, err := decodeFramed(c, number, strict, step.DecodeAudioStep)
	if err != nil {
		return nil, err
	}
	return &AudioTrack{
		Number:    number,
		Variation: attrs.Variation,
		Steps:     steps,
		Swing:     attrs.Swing,
		PlayMode:  attrs.PlayMode,
		Speed:     attrs.Speed,
		IsDefault: true,
	}, nil
}

// DecodeMidiInline decodes a MIDI track inlined in a pattern file.
func DecodeMidiInline(c *cursor.Cursor, number int, strict bool) (*MidiTrack, error) {
	steps, attrs, err := decodeFramedMidi(c, number, strict)
	if err != nil {
		return nil, err
	}
	return &MidiTrack{
		Number:    number,
		Variation: attrs.Variation,
		Steps:     steps,
		Swing:     attrs.Swing,
		PlayMode:  attrs.PlayMode,
		Speed:     attrs.Speed,
		IsDefault: true,
	}, nil
}

// DecodeAudioFile decodes a standalone `<p>-<t>-<v>.track` file: there is no
// outer 0x0A frame, and track_len is the whole buffer length.
func DecodeAudioFile(buf []byte, number int, strict bool) (*AudioTrack, error) {
	c := cursor.New(buf)
	steps, attrs, err := decodeUnframed(c, number, len(buf), strict, step.DecodeAudioStep)
	if err != nil {
		return nil, err
	}
	return &AudioTrack{
		Number:    number,
		Variation: attrs.Variation,
		Steps:     steps,
		Swing:     attrs.Swing,
		PlayMode:  attrs.PlayMode,
		Speed:     attrs.Speed,
		IsDefault: false,
	}, nil
}

// DecodeMidiFile decodes a standalone `<p>-<t>-<v>.track` MIDI file.
func DecodeMidiFile(buf []byte, number int, strict bool) (*MidiTrack, error) {
	c := cursor.New(buf)
	steps, attrs, err := decodeUnframedMidi(c, number, len(buf), strict)
	if err != nil {
		return nil, err
	}
	return &MidiTrack{
		Number:    number,
		Variation: attrs.Variation,
		Steps:     steps,
		Swing:     attrs.Swing,
		PlayMode:  attrs.PlayMode,
		Speed:     attrs.Speed,
		IsDefault: false,
	}, nil
}

func decodeFramed(c *cursor.Cursor, number int, strict bool, decodeStep func(*cursor.Cursor, int) (*step.AudioStep, error)) ([]step.AudioStep, Attrs, error) {
	tag, err := c.ReadU8()
	if err != nil {
		return nil, Attrs{}, err
	}
	if tag != 0x0A {
		return nil, Attrs{}, gerr.AtOffsetf(gerr.StructuralViolation, c.Pos()-1, "track %d: expected outer tag 0x0A, got 0x%02X", number, tag)
	}
	trackLen, err := c.ReadVarint()
	if err != nil {
		return nil, Attrs{}, err
	}
	return decodeUnframed(c, number, trackLen, strict, decodeStep)
}

func decodeUnframed(c *cursor.Cursor, number int, trackLen int, strict bool, decodeStep func(*cursor.Cursor, int) (*step.AudioStep, error)) ([]step.AudioStep, Attrs, error) {
	start := c.Pos()
	all := make([]step.AudioStep, numStepSlots)
	for i := 0; i < numStepSlots; i++ {
		s, err := decodeStep(c, i)
		if err != nil {
			return nil, Attrs{}, err
		}
		all[i] = *s
	}
	attrs, err := decodeAttrs(c, start+trackLen, strict)
	if err != nil {
		return nil, Attrs{}, err
	}
	if attrs.NumSteps < 1 || int(attrs.NumSteps) > numStepSlots {
		return nil, Attrs{}, gerr.AtOffsetf(gerr.StructuralViolation, c.Pos(), "track %d: num_steps %d out of range", number, attrs.NumSteps)
	}
	return all[:attrs.NumSteps], attrs, nil
}

func decodeFramedMidi(c *cursor.Cursor, number int, strict bool) ([]step.MidiStep, Attrs, error) {
	tag, err := c.ReadU8()
	if err != nil {
		return nil, Attrs{}, err
	}
	if tag != 0x0A {
		return nil, Attrs{}, gerr.AtOffsetf(gerr.StructuralViolation, c.Pos()-1, "track %d: expected outer tag 0x0A, got 0x%02X", number, tag)
	}
	trackLen, err := c.ReadVarint()
	if err != nil {
		return nil, Attrs{}, err
	}
	return decodeUnframedMidi(c, number, trackLen, strict)
}

func decodeUnframedMidi(c *cursor.Cursor, number int, trackLen int, strict bool) ([]step.MidiStep, Attrs, error) {
	start := c.Pos()
	all := make([]step.MidiStep, numStepSlots)
	for i := 0; i < numStepSlots; i++ {
		s, err := step.DecodeMidiStep(c, i)
		if err != nil {
			return nil, Attrs{}, err
		}
		all[i] = *s
	}
	attrs, err := decodeAttrs(c, start+trackLen, strict)
	if err != nil {
		return nil, Attrs{}, err
	}
	if attrs.NumSteps < 1 || int(attrs.NumSteps) > numStepSlots {
		return nil, Attrs{}, gerr.AtOffsetf(gerr.StructuralViolation, c.Pos(), "track %d: num_steps %d out of range", number, attrs.NumSteps)
	}
	return all[:attrs.NumSteps], attrs, nil
}

// decodeAttrs runs the bounded attribute TLV loop and logs any unknown-tag
// warning via dbg, a best-effort-continue diagnostic for soft failures. If
// strict is true, any such warning is escalated to a fatal UnknownTag error
// instead.
func decodeAttrs(c *cursor.Cursor, end int, strict bool) (Attrs, error) {
	var a Attrs
	sb := newSpeedBuilder()
	var sawNumSteps bool

	warnings, err := tlv.Bounded(c, end, func(tag byte) error {
		switch tag {
		case 0x10:
			n, err := c.ReadU8()
			if err != nil {
				return err
			}
			a.NumSteps = n
			sawNumSteps = true
		case 0x38:
			n, err := c.ReadU8()
			if err != nil {
				return err
			}
			a.Swing = n
		case 0x40:
			n, err := c.ReadU8()
			if err != nil {
				return err
			}
			a.PlayMode = n
		case 0x20:
			n, err := c.ReadU8()
			if err != nil {
				return err
			}
			sb.setNum(n)
		case 0x28:
			n, err := c.ReadU8()
			if err != nil {
				return err
			}
			sb.setDen(n)
		case 0x30:
			n, err := c.ReadU8()
			if err != nil {
				return err
			}
			a.Variation = n
		case 0x4A:
			n, err := c.ReadU8()
			if err != nil {
				return err
			}
			bs, err := c.ReadBytes(int(n))
			if err != nil {
				return err
			}
			for i, b := range bs {
				if i >= len(a.Variations) {
					break
				}
				a.Variations[i] = b != 0
			}
		case 0x18:
			n, err := c.ReadU8()
			if err != nil {
				return err
			}
			a.UX18 = n
		default:
			return gerr.AtOffset(gerr.UnknownTag, c.Pos()-1)
		}
		return nil
	})
	if err != nil {
		return Attrs{}, err
	}
	if strict && len(warnings) > 0 {
		return Attrs{}, gerr.AtOffset(gerr.UnknownTag, warnings[0].Offset)
	}
	for _, w := range warnings {
		dbg.Println(fmt.Sprintf("track attribute: unknown tag 0x%02X at offset %d, skipping one byte", w.Tag, w.Offset))
	}
	if !sawNumSteps {
		return Attrs{}, gerr.AtOffset(gerr.StructuralViolation, c.Pos())
	}
	a.Speed = sb.build()
	return a, nil
}
