// Package testutil provides helpers shared by tests across packages.
package testutil

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/wav"
)

// ToneRate is the sample rate of files written by WriteTone.
const ToneRate = beep.SampleRate(44100)

// WriteTone writes a stereo 16-bit WAV file holding a 440 Hz sine of length d,
// creating parent directories as needed.
func WriteTone(t testing.TB, path string, d time.Duration) {
	t.Helper()
	tone, err := generators.SineTone(ToneRate, 440)
	if err != nil {
		t.Fatalf("sine tone: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	format := beep.Format{SampleRate: ToneRate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Take(ToneRate.N(d), tone), format); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

var spaceRe = regexp.MustCompile(`\s+`)

// NormalizeWhitespace replaces multiple consecutive whitespace characters
// with a single space and trims leading/trailing whitespace.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// ContainsLine checks if any line in the output contains the given substring.
func ContainsLine(output, substr string) bool {
	for line := range strings.SplitSeq(output, "\n") {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// Lines returns the non-blank lines of output with surrounding space trimmed.
func Lines(output string) []string {
	var lines []string
	for line := range strings.SplitSeq(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
