// Package gboxfile decodes a groovebox/sampler project directory into a
// structured, read-only, in-memory model.
package gboxfile

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/groove-tools/gboxfile/internal/gerr"
	"github.com/groove-tools/gboxfile/pattern"
	"github.com/groove-tools/gboxfile/settings"
	"github.com/groove-tools/gboxfile/track"
)

var patternNameRe = regexp.MustCompile(`^(\d+)\.pattern$`)
var trackNameRe = regexp.MustCompile(`^(\d+)-(\d+)-(\d+)\.track$`)

// Project is the root of the decoded tree: one Settings, one Samples blob,
// and an ordered list of Pattern in filesystem enumeration order.
type Project struct {
	settings *settings.Settings
	samples  *Samples
	patterns []*pattern.Pattern
}

// Settings returns the decoded project settings.
func (p *Project) Settings() *settings.Settings { return p.settings }

// Samples returns the opaque sample-metadata payload.
func (p *Project) Samples() *Samples { return p.samples }

// Patterns returns every decoded pattern, in the order Read enumerated them.
func (p *Project) Patterns() []*pattern.Pattern { return p.patterns }

// Read decodes the project rooted at path.
func Read(path string, opts ...Option) (*Project, error) {
	cfg := newConfig(opts)

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, gerr.AtPath(gerr.NotADirectory, path)
	}

	settingsPath := filepath.Join(path, "settings")
	settingsBuf, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, gerr.Wrap(gerr.FileMissing, settingsPath, err)
	}
	decodedSettings, err := settings.Decode(settingsBuf)
	if err != nil {
		return nil, err
	}

	samplesPath := filepath.Join(path, "samples", "samplesMetadata")
	samplesFile, err := os.Open(samplesPath)
	if err != nil {
		return nil, gerr.Wrap(gerr.FileMissing, samplesPath, err)
	}
	decodedSamples, err := readSamples(samplesFile)
	samplesFile.Close()
	if err != nil {
		return nil, gerr.Wrap(gerr.FileMissing, samplesPath, err)
	}

	patternsDir := filepath.Join(path, "patterns")
	patternEntries, err := os.ReadDir(patternsDir)
	if err != nil {
		return nil, gerr.Wrap(gerr.NotADirectory, patternsDir, err)
	}

	var patternNames []string
	for _, e := range patternEntries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(e.Name(), ".pattern") {
			continue
		}
		if !patternNameRe.MatchString(e.Name()) {
			return nil, gerr.AtPath(gerr.BadPatternName, e.Name())
		}
		patternNames = append(patternNames, e.Name())
	}
	sort.Strings(patternNames)

	var patterns []*pattern.Pattern
	for _, name := range patternNames {
		m := patternNameRe.FindStringSubmatch(name)
		number, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, gerr.AtPathf(gerr.BadPatternName, name, "%v", err)
		}
		buf, err := os.ReadFile(filepath.Join(patternsDir, name))
		if err != nil {
			return nil, gerr.Wrap(gerr.FileMissing, name, err)
		}
		pat, err := pattern.DecodeFile(buf, number, cfg.strictTrackAttrs)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, pat)
	}

	for _, pat := range patterns {
		if err := loadTrackVariations(patternsDir, patternEntries, pat, cfg); err != nil {
			return nil, err
		}
	}

	return &Project{settings: decodedSettings, samples: decodedSamples, patterns: patterns}, nil
}

// loadTrackVariations enumerates <p>-<t>-<v>.track siblings for one pattern
// and fills in any variation slot still empty after the inline decode.
func loadTrackVariations(patternsDir string, entries []os.DirEntry, pat *pattern.Pattern, cfg config) error {
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := trackNameRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		p, _ := strconv.Atoi(m[1])
		t, _ := strconv.Atoi(m[2])
		v, _ := strconv.Atoi(m[3])
		if p != pat.Number {
			continue
		}

		buf, err := os.ReadFile(filepath.Join(patternsDir, e.Name()))
		if err != nil {
			return gerr.Wrap(gerr.FileMissing, e.Name(), err)
		}

		if t < 8 {
			tr, err := track.DecodeAudioFile(buf, t, cfg.strictTrackAttrs)
			if err != nil {
				return err
			}
			tr.Variation = uint8(v)
			if err := pat.PlaceAudioVariation(t, tr); err != nil {
				return err
			}
			continue
		}
		tr, err := track.DecodeMidiFile(buf, t-8, cfg.strictTrackAttrs)
		if err != nil {
			return err
		}
		tr.Variation = uint8(v)
		if err := pat.PlaceMidiVariation(t-8, tr); err != nil {
			return err
		}
	}
	return nil
}
