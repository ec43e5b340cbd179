// Package tlv implements the generic tag-dispatch loop shared by the
// settings body and the track attribute tail: read a tag byte, hand it to a
// dispatch function, repeat until a termination condition is met.
package tlv

import (
	"github.com/groove-tools/gboxfile/internal/cursor"
	"github.com/groove-tools/gboxfile/internal/gerr"
)

// Dispatch handles one tag read from the stream. It must consume exactly the
// payload belonging to tag before returning.
type Dispatch func(tag byte) error

// UntilSentinel reads tags via dispatch until the next tag equals sentinel,
// then rewinds one byte so the caller can re-read the sentinel as the first
// byte of whatever follows. Any tag not recognized by dispatch must return an
// UnknownTag error: there is no soft-failure path for a sentinel-terminated
// loop (used by the settings body).
func UntilSentinel(c *cursor.Cursor, sentinel byte, dispatch Dispatch) error {
	for {
		tag, err := c.ReadU8()
		if err != nil {
			return err
		}
		if tag == sentinel {
			c.StepBack()
			return nil
		}
		if err := dispatch(tag); err != nil {
			return err
		}
	}
}

// UnknownTagWarning is appended by Bounded whenever dispatch reports an
// unrecognized tag; the loop recovers by consuming one payload byte and
// continuing. This is the only tolerated soft failure in the decoder.
type UnknownTagWarning struct {
	Offset int
	Tag    byte
}

// Bounded reads tags via dispatch while c.Pos() < end (the position computed
// as start_pos + track_len before the loop began). dispatch should return
// gerr with Kind UnknownTag (via gerr.AtOffset(gerr.UnknownTag, ...)) for a
// tag it does not recognize; Bounded treats that specific error as
// recoverable, consumes one byte of payload, records a warning and
// continues. Any other error aborts the loop.
func Bounded(c *cursor.Cursor, end int, dispatch Dispatch) ([]UnknownTagWarning, error) {
	var warnings []UnknownTagWarning
	for c.Pos() < end {
		start := c.Pos()
		tag, err := c.ReadU8()
		if err != nil {
			return warnings, err
		}
		err = dispatch(tag)
		if err == nil {
			continue
		}
		if !gerr.Is(err, gerr.UnknownTag) {
			return warnings, err
		}
		// Best-effort recovery: the payload byte was never consumed by
		// dispatch, so discard exactly one byte and keep going.
		if _, rerr := c.ReadU8(); rerr != nil {
			return warnings, rerr
		}
		warnings = append(warnings, UnknownTagWarning{Offset: start, Tag: tag})
	}
	return warnings, nil
}
