package host

import (
	"fmt"
)

type Event uint

const (
	EventUndefined = Event(iota)
	EventTrackStarted
	EventTrackChanged
	EventTrackFinished
	EventConfigChanged
)

func (ev Event) String() string {
	switch ev {
	case EventUndefined:
		return "undefined"
	case EventTrackStarted:
		return "track_started"
	case EventTrackChanged:
		return "track_changed"
	case EventTrackFinished:
		return "track_finished"
	case EventConfigChanged:
		return "config_changed"
	}
	return fmt.Sprintf("unknown_%d", uint(ev))
}

// LoopMode is the host's repeat setting.
type LoopMode int

const (
	LoopModeAll    = LoopMode(0)
	LoopModeOff    = LoopMode(1)
	LoopModeSingle = LoopMode(2)
)

// ConfigKeyLoopMode is the host configuration key holding the LoopMode.
const ConfigKeyLoopMode = "playback.loop"

func (m LoopMode) String() string {
	switch m {
	case LoopModeAll:
		return "all"
	case LoopModeOff:
		return "off"
	case LoopModeSingle:
		return "single"
	}
	return fmt.Sprintf("unknown_%d", int(m))
}

// Set implements pflag.Value.
func (m *LoopMode) Set(s string) error {
	for _, c := range []LoopMode{LoopModeAll, LoopModeOff, LoopModeSingle} {
		if c.String() == s {
			*m = c
			return nil
		}
	}
	return fmt.Errorf("unknown loop mode '%s'", s)
}

// Type implements pflag.Value.
func (*LoopMode) Type() string {
	return "loop-mode"
}
