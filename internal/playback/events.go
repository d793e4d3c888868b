package playback

import (
	"time"

	"github.com/llehouerou/tides/internal/catalog"
)

// TrackChange is emitted when playback starts on an entry.
//
// Emitted by PlayIndex, PlayEntry, Next, Previous, TogglePause from a
// stopped state, and by auto-advance when a track runs out. Not emitted
// when a load fails; an ErrorEvent is sent instead.
type TrackChange struct {
	Previous *catalog.Entry
	Current  catalog.Entry
	Index    int
	Auto     bool // started by auto-advance
}

// ErrorEvent is emitted when an error occurs during playback.
type ErrorEvent struct {
	Operation string // e.g., "play", "advance"
	Path      string // entry path if applicable
	Err       error
}

// PositionChange is emitted when a seek occurs.
type PositionChange struct {
	Position time.Duration
}
