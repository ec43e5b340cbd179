package step

import "github.com/groove-tools/gboxfile/internal/cursor"

// AudioStep is one cell of an audio track: 21 named numeric parameters plus
// an opaque tail. Field doc comments carry the device-specific unit
// semantics.
type AudioStep struct {
	// Number is the 0-indexed step position within its track (0..63).
	Number int

	// Volume: 0dB at 7600; 200 = 1dB.
	Volume uint16
	// Pan: -10000 is hard left, 10000 is hard right; 100 = 1%.
	Pan int16
	// FilterCutoff: -10000 is LP100, 10000 is HP100; 100 = 1%.
	FilterCutoff int16
	// FilterResonance: 10000 is 100%; 100 = 1%.
	FilterResonance uint16
	// BitDepth ranges 4..16.
	BitDepth uint8
	// Overdrive: 10000 is 100%; 100 = 1%.
	Overdrive uint16
	// Note is a MIDI note number, 0..127.
	Note uint8
	// Delay: 10000 is 100%; 100 = 1%.
	Delay int16
	// Reverb: 10000 is 100%; 100 = 1%.
	Reverb int16
	// Sample is the sample slot index.
	Sample uint16
	// SampleStart: 0 is start of sample, 32767 is end of sample.
	SampleStart int16
	SampleEnd   int16
	// MicroTune: -10000 is -100 cents, 10000 is +100 cents; 100 = 1 cent.
	MicroTune int16
	// SampleAttack: 10000 is 100%; 100 = 1%.
	SampleAttack uint16
	SampleDecay  uint16
	// SampleFolder: 0xFFFF means "All".
	SampleFolder uint16
	// RepeatType: 0 is Off.
	RepeatType uint16
	RepeatGrid uint16
	// ChanceType: 0 is Always.
	ChanceType uint16
	// ChanceAction: 0 is Play Step.
	ChanceAction uint16
	// MicroMove: -10000 is -11/24 step, 10000 is +11/24 step.
	MicroMove int16

	// Rest is the opaque tail not yet reverse-engineered.
	Rest []byte
}

// audio step slot order within the 44 fixed fields.
const (
	audioVolume = iota
	audioPan
	audioFilterCutoff
	audioFilterResonance
	audioBitDepth
	audioOverdrive
	audioNote
	audioDelay
	audioReverb
	audioSample
	audioSampleStart
	audioSampleEnd
	audioMicroTune
	audioSampleAttack
	audioSampleDecay
	audioSampleFolder
	audioRepeatType
	audioRepeatGrid
	audioChanceType
	audioChanceAction
	audioMicroMove
)

// DecodeAudioStep decodes one audio step.
func DecodeAudioStep(c *cursor.Cursor, number int) (*AudioStep, error) {
	fields, tail, err := readFrame(c, number)
	if err != nil {
		return nil, err
	}
	s16 := func(i int) int16 { return int16(fields[i]) }

	return &AudioStep{
		Number:          number,
		Volume:          fields[audioVolume],
		Pan:             s16(audioPan),
		FilterCutoff:    s16(audioFilterCutoff),
		FilterResonance: fields[audioFilterResonance],
		BitDepth:        uint8(fields[audioBitDepth]),
		Overdrive:       fields[audioOverdrive],
		Note:            uint8(fields[audioNote]),
		Delay:           s16(audioDelay),
		Reverb:          s16(audioReverb),
		Sample:          fields[audioSample],
		SampleStart:     s16(audioSampleStart),
		SampleEnd:       s16(audioSampleEnd),
		MicroTune:       s16(audioMicroTune),
		SampleAttack:    fields[audioSampleAttack],
		SampleDecay:     fields[audioSampleDecay],
		SampleFolder:    fields[audioSampleFolder],
		RepeatType:      fields[audioRepeatType],
		RepeatGrid:      fields[audioRepeatGrid],
		ChanceType:      fields[audioChanceType],
		ChanceAction:    fields[audioChanceAction],
		MicroMove:       s16(audioMicroMove),
		Rest:            tail,
	}, nil
}
