package step_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/groove-tools/gboxfile/internal/cursor"
	"github.com/groove-tools/gboxfile/internal/gerr"
	"github.com/groove-tools/gboxfile/step"
)

// buildStepFrame assembles the outer/inner TLV frame around 44 u16 fields
// plus an arbitrary tail.
func buildStepFrame(fields [44]uint16, tail []byte) []byte {
	var inner bytes.Buffer
	inner.WriteByte(0x0A)
	inner.WriteByte(44) // varint(44), fits in one byte
	for _, f := range fields {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], f)
		inner.Write(b[:])
	}
	inner.Write(tail)

	var out bytes.Buffer
	out.WriteByte(0x0A)
	out.WriteByte(byte(inner.Len())) // outer_len fits in one byte for these tests
	out.Write(inner.Bytes())
	return out.Bytes()
}

func TestDecodeAudioStep(t *testing.T) {
	var fields [44]uint16
	fields[0] = 7600          // volume
	fields[6] = 60            // note
	fields[9] = 0             // sample
	fields[10] = 0            // sample_start
	fields[11] = 0x7FFF       // sample_end
	fields[4] = 16            // bit_depth
	buf := buildStepFrame(fields, []byte{0xAA, 0xBB})

	c := cursor.New(buf)
	s, err := step.DecodeAudioStep(c, 0)
	if err != nil {
		t.Fatalf("DecodeAudioStep() error = %v", err)
	}
	if s.Note != 60 || s.Sample != 0 || s.SampleStart != 0 || s.SampleEnd != 0x7FFF || s.Volume != 7600 || s.Pan != 0 || s.BitDepth != 16 {
		t.Fatalf("decoded step = %+v; unexpected values", s)
	}
	if !bytes.Equal(s.Rest, []byte{0xAA, 0xBB}) {
		t.Fatalf("Rest = %v; want [0xAA 0xBB]", s.Rest)
	}
}

func TestDecodeStepWrongInnerCount(t *testing.T) {
	var inner bytes.Buffer
	inner.WriteByte(0x0A)
	inner.WriteByte(10) // wrong inner count
	inner.Write(make([]byte, 20))

	var out bytes.Buffer
	out.WriteByte(0x0A)
	out.WriteByte(byte(inner.Len()))
	out.Write(inner.Bytes())

	c := cursor.New(out.Bytes())
	_, err := step.DecodeAudioStep(c, 0)
	if !gerr.Is(err, gerr.StructuralViolation) {
		t.Fatalf("DecodeAudioStep() = %v; want StructuralViolation", err)
	}
}

func midiChannelField(jack bool, n uint8) uint16 {
	if jack {
		return uint16(n - 1)
	}
	return uint16(n) + 15
}

func TestDecodeMidiStepShortTailAllOptionalAbsent(t *testing.T) {
	var fields [44]uint16
	fields[0] = 100 // velocity
	fields[6] = 60  // note
	fields[9] = midiChannelField(true, 1)
	buf := buildStepFrame(fields, []byte{0x00, 0x00}) // tail shorter than 3 bytes

	c := cursor.New(buf)
	m, err := step.DecodeMidiStep(c, 0)
	if err != nil {
		t.Fatalf("DecodeMidiStep() error = %v", err)
	}
	if m.CC12 != nil || m.CC74 != nil || m.PitchBend != nil || m.Program != nil {
		t.Fatalf("optional fields should be absent on short tail: %+v", m)
	}
	if m.Channel != step.Jack(1) {
		t.Fatalf("Channel = %+v; want Jack(1)", m.Channel)
	}
}

func TestDecodeMidiStepBitmask(t *testing.T) {
	var fields [44]uint16
	fields[0] = 100                      // velocity
	fields[1] = 60                       // note_length
	fields[5] = 12                       // cc12
	fields[9] = midiChannelField(true, 1) // channel
	fields[12] = uint16(int16(-100))      // pitch_bend
	fields[15] = 0                        // program

	// m1 bit5 (cc12) set, m2 bit5 (pitch_bend) set, m3 bit1 (program) set.
	m1 := byte(1 << 5)
	m2 := byte(1 << 5)
	m3 := byte(1 << 1)
	buf := buildStepFrame(fields, []byte{0, 0, 0, 0, 0, m1, m2, m3})

	c := cursor.New(buf)
	m, err := step.DecodeMidiStep(c, 1)
	if err != nil {
		t.Fatalf("DecodeMidiStep() error = %v", err)
	}
	if m.CC12 == nil || *m.CC12 != 12 {
		t.Fatalf("CC12 = %v; want Some(12)", m.CC12)
	}
	if m.PitchBend == nil || *m.PitchBend != -100 {
		t.Fatalf("PitchBend = %v; want Some(-100)", m.PitchBend)
	}
	if m.Program == nil || *m.Program != 0 {
		t.Fatalf("Program = %v; want Some(0)", m.Program)
	}
	if m.CC74 != nil {
		t.Fatalf("CC74 = %v; want None (bit clear)", m.CC74)
	}
}

func TestDecodeMidiStepRepeatTypeNeverAbsent(t *testing.T) {
	var fields [44]uint16
	fields[9] = midiChannelField(true, 1)
	fields[16] = 3 // repeat_type

	m3 := byte(0) // bit 2 (repeat_type) clear
	buf := buildStepFrame(fields, []byte{0, 0, 0, 0, 0, 0, 0, m3})

	c := cursor.New(buf)
	m, err := step.DecodeMidiStep(c, 0)
	if err != nil {
		t.Fatalf("DecodeMidiStep() error = %v", err)
	}
	if m.RepeatType != 0 {
		t.Fatalf("RepeatType = %d; want 0 (cleared, not absent)", m.RepeatType)
	}
}

func TestDecodeUsbChannel(t *testing.T) {
	var fields [44]uint16
	fields[9] = midiChannelField(false, 1) // Usb(1)
	buf := buildStepFrame(fields, nil)

	c := cursor.New(buf)
	m, err := step.DecodeMidiStep(c, 0)
	if err != nil {
		t.Fatalf("DecodeMidiStep() error = %v", err)
	}
	if m.Channel != step.Usb(1) {
		t.Fatalf("Channel = %+v; want Usb(1)", m.Channel)
	}
}
