package engine

import (
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Output is the audio device the graph plays into. Play hands over the root
// streamer; Lock excludes the device callback while the engine swaps sources.
type Output interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Close()
}

// Loader opens a playback resource locator as a seekable stream.
type Loader interface {
	Open(locator string) (beep.StreamSeekCloser, beep.Format, error)
}

// Speaker is the system audio device through beep's speaker package.
type Speaker struct{}

func (Speaker) Init(sr beep.SampleRate, bufferSize int) error {
	return speaker.Init(sr, bufferSize)
}

func (Speaker) Play(s beep.Streamer) { speaker.Play(s) }
func (Speaker) Lock()                { speaker.Lock() }
func (Speaker) Unlock()              { speaker.Unlock() }
func (Speaker) Close()               { speaker.Close() }
