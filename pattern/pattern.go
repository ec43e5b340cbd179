// Package pattern decodes a `<n>.pattern` file: eight inline audio tracks
// followed by eight inline MIDI tracks, each placed at its own saved
// variation slot.
package pattern

import (
	"github.com/groove-tools/gboxfile/internal/cursor"
	"github.com/groove-tools/gboxfile/internal/gerr"
	"github.com/groove-tools/gboxfile/track"
)

const (
	tracksPerKind = 8
	variations    = 16
)

// Pattern is one pattern file's decoded contents: two 8x16 sparse matrices
// of optional tracks, indexed [track][variation].
type Pattern struct {
	Number      int
	AudioTracks [tracksPerKind][variations]*track.AudioTrack
	MidiTracks  [tracksPerKind][variations]*track.MidiTrack

	// Rest holds whatever bytes remain after the 16 inline track blocks.
	Rest []byte
}

// AudioTrack returns the default (first recorded) variation of audio track
// n, or nil if that track has never been saved.
func (p *Pattern) AudioTrack(n int) *track.AudioTrack {
	return firstPresent(p.AudioTracks[n])
}

// MidiTrack returns the default variation of MIDI track n, or nil.
func (p *Pattern) MidiTrack(n int) *track.MidiTrack {
	return firstPresent(p.MidiTracks[n])
}

func firstPresent[T any](row [variations]*T) *T {
	for _, v := range row {
		if v != nil {
			return v
		}
	}
	return nil
}

// DecodeFile decodes a complete pattern file. strict controls whether an
// unknown track-attribute tag is fatal (see gboxfile.WithStrictTrackAttrs).
func DecodeFile(buf []byte, number int, strict bool) (*Pattern, error) {
	c := cursor.New(buf)
	p := &Pattern{Number: number}

	for t := 0; t < tracksPerKind; t++ {
		at, err := track.DecodeAudioInline(c, t, strict)
		if err != nil {
			return nil, err
		}
		p.AudioTracks[t][at.Variation] = at
	}
	for t := 0; t < tracksPerKind; t++ {
		mt, err := track.DecodeMidiInline(c, t, strict)
		if err != nil {
			return nil, err
		}
		p.MidiTracks[t][mt.Variation] = mt
	}

	rest, err := c.ReadBytes(c.Remaining())
	if err != nil {
		return nil, err
	}
	p.Rest = append([]byte(nil), rest...)
	return p, nil
}

// PlaceAudioVariation inserts a `.track` override into its variation slot,
// only if that slot is still empty: the pattern file's inlined copy always
// wins over an on-disk variation file. tr.Variation, which normally comes
// from a `<p>-<t>-<v>.track` filename, must be in range 0..15.
func (p *Pattern) PlaceAudioVariation(t int, tr *track.AudioTrack) error {
	if int(tr.Variation) >= variations {
		return gerr.AtOffsetf(gerr.StructuralViolation, 0, "audio track %d: variation %d out of range", t, tr.Variation)
	}
	if p.AudioTracks[t][tr.Variation] == nil {
		p.AudioTracks[t][tr.Variation] = tr
	}
	return nil
}

// PlaceMidiVariation inserts a `.track` override into its variation slot,
// only if that slot is still empty. tr.Variation must be in range 0..15.
func (p *Pattern) PlaceMidiVariation(t int, tr *track.MidiTrack) error {
	if int(tr.Variation) >= variations {
		return gerr.AtOffsetf(gerr.StructuralViolation, 0, "midi track %d: variation %d out of range", t, tr.Variation)
	}
	if p.MidiTracks[t][tr.Variation] == nil {
		p.MidiTracks[t][tr.Variation] = tr
	}
	return nil
}
