package gboxfile_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	gboxfile "github.com/groove-tools/gboxfile"
)

func buildSettingsFile(name, dir string, bpm float32) []byte {
	var buf bytes.Buffer
	buf.WriteByte(0x12)
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
	buf.WriteByte(0x62)
	buf.WriteByte(byte(len(dir)))
	buf.WriteString(dir)
	buf.WriteByte(0x85)
	buf.WriteByte(0x01)
	var f [4]byte
	binary.LittleEndian.PutUint32(f[:], math.Float32bits(bpm))
	buf.Write(f[:])
	buf.WriteByte(0x20)
	buf.Write(make([]byte, 5))
	buf.WriteByte(0x90)
	buf.Write(make([]byte, 11))
	buf.WriteByte(0xA8)
	buf.Write(make([]byte, 2))
	buf.WriteByte(0xB0)
	buf.Write(make([]byte, 2))
	for i := 0; i < 32; i++ {
		buf.WriteByte(0xC2)
		buf.Write(make([]byte, 4))
		buf.Write(make([]byte, 8))
	}
	return buf.Bytes()
}

func encodeVarint(n int) []byte {
	var out []byte
	for {
		b := byte(n & 0x7F)
		n >>= 7
		if n != 0 {
			out = append(out, b|0x80)
		} else {
			out = append(out, b)
			break
		}
	}
	return out
}

func buildStepFixture(note uint16) []byte {
	var inner bytes.Buffer
	inner.WriteByte(0x0A)
	inner.WriteByte(44)
	var fields [44]uint16
	fields[6] = note
	for _, f := range fields {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], f)
		inner.Write(b[:])
	}
	var out bytes.Buffer
	out.WriteByte(0x0A)
	out.WriteByte(byte(inner.Len()))
	out.Write(inner.Bytes())
	return out.Bytes()
}

func buildInlineTrackFixture(variation uint8) []byte {
	var body bytes.Buffer
	for i := 0; i < 64; i++ {
		body.Write(buildStepFixture(60))
	}
	body.WriteByte(0x10)
	body.WriteByte(16)
	body.WriteByte(0x30)
	body.WriteByte(variation)

	var out bytes.Buffer
	out.WriteByte(0x0A)
	out.Write(encodeVarint(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func buildPatternFixture() []byte {
	var buf bytes.Buffer
	for t := 0; t < 16; t++ {
		buf.Write(buildInlineTrackFixture(0))
	}
	return buf.Bytes()
}

// buildProject writes a minimal valid project directory to dir.
func buildProject(t *testing.T, dir, name string, bpm float32) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "settings"), buildSettingsFile(name, "/Projects", bpm), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "samples"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "samples", "samplesMetadata"), []byte{0xDE, 0xAD}, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "patterns"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "patterns", "0.pattern"), buildPatternFixture(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadBlankProject(t *testing.T) {
	dir := t.TempDir()
	buildProject(t, dir, "blank", 120.0)

	proj, err := gboxfile.Read(dir)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if proj.Settings().Name != "blank" {
		t.Errorf("Settings().Name = %q; want %q", proj.Settings().Name, "blank")
	}
	if proj.Settings().BPM != 120.0 {
		t.Errorf("Settings().BPM = %v; want 120.0", proj.Settings().BPM)
	}
	if len(proj.Patterns()) != 1 {
		t.Fatalf("len(Patterns()) = %d; want 1", len(proj.Patterns()))
	}
	if proj.Patterns()[0].AudioTrack(0) == nil {
		t.Fatalf("Patterns()[0].AudioTrack(0) should be populated")
	}
	if !bytes.Equal(proj.Samples().Rest, []byte{0xDE, 0xAD}) {
		t.Fatalf("Samples().Rest = %v; want [0xDE 0xAD]", proj.Samples().Rest)
	}
}

func TestReadMissingProjectRoot(t *testing.T) {
	_, err := gboxfile.Read(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("Read() on missing directory should fail")
	}
}

func TestReadNotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := gboxfile.Read(file)
	if err == nil {
		t.Fatal("Read() on a file path should fail")
	}
}

func TestReadBadPatternName(t *testing.T) {
	dir := t.TempDir()
	buildProject(t, dir, "blank", 120.0)
	if err := os.WriteFile(filepath.Join(dir, "patterns", "x.pattern"), buildPatternFixture(), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := gboxfile.Read(dir)
	if err == nil {
		t.Fatal("Read() with a malformed pattern filename should fail")
	}
}

func TestReadVariationOverrideFromTrackFile(t *testing.T) {
	dir := t.TempDir()
	buildProject(t, dir, "blank", 120.0)

	var body bytes.Buffer
	for i := 0; i < 64; i++ {
		body.Write(buildStepFixture(72))
	}
	body.WriteByte(0x10)
	body.WriteByte(16)
	body.WriteByte(0x30)
	body.WriteByte(5)
	if err := os.WriteFile(filepath.Join(dir, "patterns", "0-0-5.track"), body.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	proj, err := gboxfile.Read(dir)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	pat := proj.Patterns()[0]
	if pat.AudioTracks[0][5] == nil {
		t.Fatalf("AudioTracks[0][5] should be populated from the .track override")
	}
	if pat.AudioTracks[0][5].Steps[0].Note != 72 {
		t.Fatalf("override note = %d; want 72", pat.AudioTracks[0][5].Steps[0].Note)
	}
	// the inlined default variation must remain untouched
	if pat.AudioTracks[0][0].Steps[0].Note != 60 {
		t.Fatalf("inline default note = %d; want 60 (unaffected by variation override)", pat.AudioTracks[0][0].Steps[0].Note)
	}
}
