package host

import (
	"context"
	"sync"
)

// Dummy is a host that does nothing: playback is always at the very
// beginning and every config value is the default.
type Dummy struct{}

var _ Host = Dummy{}

func (Dummy) PlaybackPercent(context.Context) float64 {
	return 0
}

func (Dummy) SeekToPercent(context.Context, float64) {}

func (Dummy) NextTrack(context.Context) {}

func (Dummy) ReplayCurrentTrack(context.Context) {}

func (Dummy) ConfigInt(_ context.Context, _ string, defaultValue int) int {
	return defaultValue
}

func (Dummy) NewMutex() sync.Locker {
	return &sync.Mutex{}
}

func (Dummy) SubscribeBufferTicks(context.Context, BufferTickHandler) {}

func (Dummy) UnsubscribeBufferTicks(context.Context, BufferTickHandler) {}
