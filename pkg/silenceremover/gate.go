package silenceremover

import (
	"fmt"

	"github.com/kpcee/deadbeef-silence-remover/pkg/host"
)

const (
	// IntroEndPercent is where the intro part of a track ends.
	IntroEndPercent = 10.0
	// OutroStartPercent is where the outro part of a track begins.
	OutroStartPercent = 90.0

	IntroSeekStep  = 0.05
	MiddleSeekStep = 0.1
)

type Action uint

const (
	ActionNone = Action(iota)
	ActionSkipIntro
	ActionNextTrack
	ActionReplayTrack
	ActionSkipMiddle
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionSkipIntro:
		return "skip_intro"
	case ActionNextTrack:
		return "next_track"
	case ActionReplayTrack:
		return "replay_track"
	case ActionSkipMiddle:
		return "skip_middle"
	}
	return fmt.Sprintf("unknown_%d", uint(a))
}

// SessionState is the per-track state of the gate.
type SessionState struct {
	// StartPassed latches once the loudness exceeded the start threshold.
	StartPassed bool
	// EndFired latches once the end action was issued.
	EndFired bool
}

// Reset is applied when a track starts.
func (s *SessionState) Reset() {
	s.StartPassed = false
	s.EndFired = false
}

// Suppress is applied when the host switches tracks by itself: nothing
// else is done for the track that just ended.
func (s *SessionState) Suppress() {
	s.StartPassed = true
	s.EndFired = true
}

// Decide updates the session with a single loudness measurement taken at
// the given position and returns the action to take, if any.
func (s *SessionState) Decide(cfg Config, loudness float64, percent float64) Action {
	if cfg.StartEnabled() && loudness > float64(cfg.StartThreshold) {
		s.StartPassed = true
	}

	switch {
	case cfg.StartEnabled() && !s.StartPassed && percent < IntroEndPercent:
		return ActionSkipIntro
	case cfg.EndEnabled() && !s.EndFired && loudness <= float64(cfg.EndThreshold) && percent > OutroStartPercent:
		s.EndFired = true
		if cfg.LoopMode == host.LoopModeSingle {
			return ActionReplayTrack
		}
		return ActionNextTrack
	case cfg.MiddleEnabled() && loudness <= float64(cfg.MiddleThreshold) && percent >= IntroEndPercent && percent <= OutroStartPercent:
		return ActionSkipMiddle
	}
	return ActionNone
}
