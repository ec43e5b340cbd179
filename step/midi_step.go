package step

import "github.com/groove-tools/gboxfile/internal/cursor"

// MidiChannelKind distinguishes which MIDI port a channel number belongs to.
type MidiChannelKind uint8

const (
	// MidiChannelJack is the "jack" MIDI port.
	MidiChannelJack MidiChannelKind = iota
	// MidiChannelUSB is the "usb" MIDI port.
	MidiChannelUSB
)

// MidiChannel is the tagged {Jack(1..16), Usb(1..16)} channel variant,
// represented as a discriminant plus a 1-indexed channel number rather
// than a raw sentinel integer.
type MidiChannel struct {
	Kind MidiChannelKind
	// Number is 1-indexed (1..16) regardless of Kind.
	Number uint8
}

// Jack builds a jack-port MIDI channel (n is 1-indexed, 1..16).
func Jack(n uint8) MidiChannel { return MidiChannel{Kind: MidiChannelJack, Number: n} }

// Usb builds a usb-port MIDI channel (n is 1-indexed, 1..16).
func Usb(n uint8) MidiChannel { return MidiChannel{Kind: MidiChannelUSB, Number: n} }

// decodeChannel maps a raw 0..31 slot value to its tagged MidiChannel: 0..15
// is Jack(raw+1), 16..31 is Usb(raw-15).
func decodeChannel(raw uint16) MidiChannel {
	if raw < 16 {
		return Jack(uint8(raw) + 1)
	}
	return Usb(uint8(raw) - 15)
}

// MidiStep is one cell of a MIDI track. Ten of its parameters are only
// present when the corresponding bit of the tail's optional-field bitmask is
// set; absent fields decode to a nil pointer.
type MidiStep struct {
	Number int

	// Velocity is 0..127.
	Velocity uint8
	// NoteLength is in 60ths of a quarter note.
	NoteLength uint16
	CC74       *uint16
	CC71       *uint16
	CC13       *uint16
	CC12       *uint16
	// Note is a MIDI note number, 0..127.
	Note    uint8
	CC19    *uint16
	CC17    *uint16
	Channel MidiChannel
	Chord   int16
	// PitchBend: -10000 is -100 cents, 10000 is +100 cents; 100 = 1 cent.
	PitchBend *int16
	CC22      *uint16
	CC75      *uint16
	// Program is 0..127.
	Program *uint8
	// RepeatType and RepeatGrid are never optional: their "bit clear" state
	// is the integer 0, not absence.
	RepeatType   uint16
	RepeatGrid   uint16
	ChanceType   uint16
	ChanceAction uint16
	// MicroMove: -10000 is -11/24 step, 10000 is +11/24 step.
	MicroMove int16

	Rest []byte
}

// midi step slot order within the 44 fixed fields. Slots 21..43 are
// currently unassigned; they are still consumed by readFrame but not named
// here.
const (
	midiVelocity = iota
	midiNoteLength
	midiCC74
	midiCC71
	midiCC13
	midiCC12
	midiNote
	midiCC19
	midiCC17
	midiChannel
	midiChord
	midiUnused11
	midiPitchBend
	midiCC22
	midiCC75
	midiProgram
	midiRepeatType
	midiRepeatGrid
	midiChanceType
	midiChanceAction
	midiMicroMove
)

// DecodeMidiStep decodes one MIDI step, applying the tail's optional-field
// bitmask to null out absent parameters.
func DecodeMidiStep(c *cursor.Cursor, number int) (*MidiStep, error) {
	fields, tail, err := readFrame(c, number)
	if err != nil {
		return nil, err
	}
	u16 := func(i int) uint16 { return fields[i] }
	s16 := func(i int) int16 { return int16(fields[i]) }

	cc74 := u16(midiCC74)
	cc71 := u16(midiCC71)
	cc13 := u16(midiCC13)
	cc12 := u16(midiCC12)
	cc19 := u16(midiCC19)
	cc17 := u16(midiCC17)
	pitchBend := s16(midiPitchBend)
	cc22 := u16(midiCC22)
	cc75 := u16(midiCC75)
	program := uint8(u16(midiProgram))

	m := &MidiStep{
		Number:       number,
		Velocity:     uint8(u16(midiVelocity)),
		NoteLength:   u16(midiNoteLength),
		CC74:         &cc74,
		CC71:         &cc71,
		CC13:         &cc13,
		CC12:         &cc12,
		Note:         uint8(u16(midiNote)),
		CC19:         &cc19,
		CC17:         &cc17,
		Channel:      decodeChannel(u16(midiChannel)),
		Chord:        s16(midiChord),
		PitchBend:    &pitchBend,
		CC22:         &cc22,
		CC75:         &cc75,
		Program:      &program,
		RepeatType:   u16(midiRepeatType),
		RepeatGrid:   u16(midiRepeatGrid),
		ChanceType:   u16(midiChanceType),
		ChanceAction: u16(midiChanceAction),
		MicroMove:    s16(midiMicroMove),
		Rest:         tail,
	}
	applyOptionalMask(m, tail)
	return m, nil
}

// applyOptionalMask reads the bitmask bytes at tail positions 5, 6 and 7
// (m1, m2, m3) and nils out any parameter whose bit is clear. A tail shorter
// than 3 bytes leaves every optional field absent. On the device's typical
// 8-byte tail, positions 5, 6 and 7 are its last three bytes, so m1/m2/m3
// are read from the end of the tail rather than a fixed offset.
func applyOptionalMask(m *MidiStep, tail []byte) {
	if len(tail) < 3 {
		m.CC74, m.CC71, m.CC13, m.CC12 = nil, nil, nil, nil
		m.CC22, m.PitchBend, m.CC17, m.CC19 = nil, nil, nil, nil
		m.Program, m.CC75 = nil, nil
		return
	}
	n := len(tail)
	m1 := maskBits(tail[n-3])
	m2 := maskBits(tail[n-2])
	m3 := maskBits(tail[n-1])

	if !m1[5] {
		m.CC12 = nil
	}
	if !m1[4] {
		m.CC13 = nil
	}
	if !m1[3] {
		m.CC71 = nil
	}
	if !m1[2] {
		m.CC74 = nil
	}
	if !m2[6] {
		m.CC22 = nil
	}
	if !m2[5] {
		m.PitchBend = nil
	}
	if !m2[1] {
		m.CC17 = nil
	}
	if !m2[0] {
		m.CC19 = nil
	}
	if !m3[1] {
		m.Program = nil
	}
	if !m3[0] {
		m.CC75 = nil
	}
	// m3 bit 3 and bit 2 gate RepeatGrid/RepeatType to zero rather than to
	// absence.
	if !m3[3] {
		m.RepeatGrid = 0
	}
	if !m3[2] {
		m.RepeatType = 0
	}
}
