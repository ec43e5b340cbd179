package gboxfile

import (
	"io"

	"github.com/mewkiz/pkg/readerutil"
)

// Samples is the opaque payload of samples/samplesMetadata: its internal
// format is not yet reverse-engineered, so it is retained verbatim.
type Samples struct {
	Rest []byte
}

// readSamples loads samplesMetadata from r. It sniffs the leading byte via
// readerutil.ReadByte ahead of a bulk read, so that a genuinely empty file
// is distinguished from a read error rather than treated the same way.
func readSamples(r io.Reader) (*Samples, error) {
	first, err := readerutil.ReadByte(r)
	if err == io.EOF {
		return &Samples{}, nil
	}
	if err != nil {
		return nil, err
	}
	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &Samples{Rest: append([]byte{first}, rest...)}, nil
}
