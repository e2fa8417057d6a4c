// Package host describes the contract between a player (the host) and the
// plugins it drives.
package host

import (
	"context"
	"sync"

	"github.com/kpcee/deadbeef-silence-remover/pkg/audio"
)

// BufferTickHandler receives freshly decoded audio on every playback buffer
// tick. The frames are only valid for the duration of the call.
//
// Hosts identify subscriptions by comparing handlers, so implementations
// must be comparable (usually a pointer).
type BufferTickHandler interface {
	OnBuffer(ctx context.Context, frames *audio.Frames)
}

// ConfigReader gives access to the host-managed persistent configuration.
type ConfigReader interface {
	ConfigInt(ctx context.Context, key string, defaultValue int) int
}

// Playback is the transport control surface. Every command is a
// fire-and-forget request: the host may apply it later or ignore it.
type Playback interface {
	// PlaybackPercent returns the position within the current track in
	// the range [0, 100].
	PlaybackPercent(ctx context.Context) float64

	SeekToPercent(ctx context.Context, percent float64)
	NextTrack(ctx context.Context)
	ReplayCurrentTrack(ctx context.Context)
}

type Host interface {
	Playback
	ConfigReader

	// NewMutex returns a lock plugins use to serialize their callbacks.
	NewMutex() sync.Locker

	SubscribeBufferTicks(ctx context.Context, handler BufferTickHandler)
	UnsubscribeBufferTicks(ctx context.Context, handler BufferTickHandler)
}

/* for easier copy&paste:

func () PlaybackPercent(ctx context.Context) float64 {
}

func () SeekToPercent(ctx context.Context, percent float64) {
}

func () NextTrack(ctx context.Context) {
}

func () ReplayCurrentTrack(ctx context.Context) {
}

func () ConfigInt(ctx context.Context, key string, defaultValue int) int {
}

func () NewMutex() sync.Locker {
}

func () SubscribeBufferTicks(ctx context.Context, handler host.BufferTickHandler) {
}

func () UnsubscribeBufferTicks(ctx context.Context, handler host.BufferTickHandler) {
}

*/
