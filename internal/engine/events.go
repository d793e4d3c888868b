package engine

import "github.com/llehouerou/tides/internal/catalog"

// EventKind identifies an engine event.
type EventKind int

const (
	// EventNearEnd fires once per track when the remaining time on the
	// active channel drops to the crossfade duration.
	EventNearEnd EventKind = iota
	// EventEnded fires when the active channel runs out of audio.
	EventEnded
)

func (k EventKind) String() string {
	switch k {
	case EventNearEnd:
		return "near-end"
	case EventEnded:
		return "ended"
	}
	return "unknown"
}

// Event is emitted from the audio callback. Err is set when the track ended
// because its decoder failed.
type Event struct {
	Kind  EventKind
	Entry catalog.Entry
	Err   error
}

// State is the transport state of the engine.
type State int

const (
	Stopped State = iota
	Playing
	Paused
	Suspended
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Suspended:
		return "suspended"
	}
	return "unknown"
}
