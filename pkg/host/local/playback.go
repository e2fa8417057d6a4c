package local

import (
	"context"
	"fmt"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/kpcee/deadbeef-silence-remover/pkg/audio"
	"github.com/kpcee/deadbeef-silence-remover/pkg/host"
)

type ActionKind uint

const (
	ActionKindUndefined = ActionKind(iota)
	ActionKindSeek
	ActionKindNext
	ActionKindReplay
)

func (k ActionKind) String() string {
	switch k {
	case ActionKindUndefined:
		return "undefined"
	case ActionKindSeek:
		return "seek"
	case ActionKindNext:
		return "next"
	case ActionKindReplay:
		return "replay"
	}
	return fmt.Sprintf("unknown_%d", uint(k))
}

// Action is a plugin command the host has applied.
type Action struct {
	Kind        ActionKind
	Track       string
	TrackIndex  int
	FromPercent float64
	ToPercent   float64
	From        time.Duration
	To          time.Duration
}

func (a Action) String() string {
	switch a.Kind {
	case ActionKindSeek:
		return fmt.Sprintf("%s: seek %v -> %v (%.2f%% -> %.2f%%)", a.Track, a.From, a.To, a.FromPercent, a.ToPercent)
	default:
		return fmt.Sprintf("%s: %s at %v (%.2f%%)", a.Track, a.Kind, a.From, a.FromPercent)
	}
}

type command struct {
	Kind    ActionKind
	Percent float64
}

func (h *Host) currentTrack() *Track {
	if h.current < 0 || h.current >= len(h.playlist) {
		return nil
	}
	return h.playlist[h.current]
}

func (h *Host) percentNoLock() float64 {
	track := h.currentTrack()
	if track == nil {
		return 0
	}
	total := track.Frames.FrameCount()
	if total == 0 {
		return 0
	}
	return float64(h.position) * 100 / float64(total)
}

func (h *Host) PlaybackPercent(context.Context) float64 {
	h.locker.Lock()
	defer h.locker.Unlock()
	return h.percentNoLock()
}

func (h *Host) SeekToPercent(ctx context.Context, percent float64) {
	h.enqueue(ctx, command{Kind: ActionKindSeek, Percent: percent})
}

func (h *Host) NextTrack(ctx context.Context) {
	h.enqueue(ctx, command{Kind: ActionKindNext})
}

func (h *Host) ReplayCurrentTrack(ctx context.Context) {
	h.enqueue(ctx, command{Kind: ActionKindReplay})
}

func (h *Host) enqueue(ctx context.Context, cmd command) {
	logger.Tracef(ctx, "enqueue(%#+v)", cmd)
	h.locker.Lock()
	defer h.locker.Unlock()
	h.pending = append(h.pending, cmd)
}

// Actions returns every applied plugin command so far.
func (h *Host) Actions() []Action {
	h.locker.Lock()
	defer h.locker.Unlock()
	return append([]Action{}, h.actions...)
}

// Run plays the playlist from the first track until it is over, the
// MaxTrackStarts limit is hit or ctx is cancelled.
func (h *Host) Run(ctx context.Context) (_err error) {
	logger.Tracef(ctx, "Run")
	defer func() { logger.Tracef(ctx, "/Run: %v", _err) }()

	h.locker.Lock()
	h.current = 0
	h.locker.Unlock()

	emptyStreak := 0
	for trackStarts := 0; ; {
		if h.options.MaxTrackStarts > 0 && trackStarts >= h.options.MaxTrackStarts {
			return nil
		}

		track := h.startTrack()
		if track == nil {
			return nil
		}

		var next int
		if track.Frames.FrameCount() == 0 {
			logger.Warnf(ctx, "skipping '%s': no audio", track.Name)
			emptyStreak++
			if emptyStreak >= h.playlistLength() {
				return nil
			}
			next = h.followingTrack(ctx, false)
		} else {
			emptyStreak = 0
			trackStarts++
			logger.Debugf(ctx, "playing '%s' (%v)", track.Name, track.Frames.Duration())
			h.sendEvent(ctx, host.EventTrackStarted)

			var err error
			next, err = h.playTrack(ctx)
			if err != nil {
				return err
			}
		}
		if next < 0 {
			return nil
		}

		h.locker.Lock()
		h.current = next
		h.locker.Unlock()
	}
}

func (h *Host) currentIndex() int {
	h.locker.Lock()
	defer h.locker.Unlock()
	return h.current
}

func (h *Host) playlistLength() int {
	h.locker.Lock()
	defer h.locker.Unlock()
	return len(h.playlist)
}

func (h *Host) startTrack() *Track {
	h.locker.Lock()
	defer h.locker.Unlock()
	h.position = 0
	h.pending = nil
	return h.currentTrack()
}

func (h *Host) playTrack(ctx context.Context) (int, error) {
	for {
		select {
		case <-ctx.Done():
			return -1, ctx.Err()
		default:
		}

		frames, handlers := h.nextChunk()
		if frames.FrameCount() == 0 {
			h.sendEvent(ctx, host.EventTrackFinished)
			h.sendEvent(ctx, host.EventTrackChanged)
			return h.followingTrack(ctx, true), nil
		}

		for _, handler := range handlers {
			handler.OnBuffer(ctx, frames)
		}

		if h.options.Output != nil {
			if err := h.writeOutput(frames); err != nil {
				return -1, err
			}
		}

		if h.options.Realtime {
			if err := sleep(ctx, frames.Duration()); err != nil {
				return -1, err
			}
		}

		for _, cmd := range h.takePending() {
			switch cmd.Kind {
			case ActionKindSeek:
				h.applySeek(ctx, cmd.Percent)
			case ActionKindNext:
				h.recordAction(ctx, ActionKindNext, -1)
				h.sendEvent(ctx, host.EventTrackChanged)
				return h.followingTrack(ctx, false), nil
			case ActionKindReplay:
				h.recordAction(ctx, ActionKindReplay, -1)
				h.sendEvent(ctx, host.EventTrackChanged)
				return h.currentIndex(), nil
			}
		}
	}
}

func (h *Host) nextChunk() (*audio.Frames, []host.BufferTickHandler) {
	h.locker.Lock()
	defer h.locker.Unlock()
	track := h.currentTrack()
	frames := track.Frames.Slice(h.position, h.position+h.options.ChunkFrames)
	h.position += frames.FrameCount()
	return frames, h.handlers
}

func (h *Host) writeOutput(frames *audio.Frames) error {
	raw, err := audio.EncodePCM(h.options.OutputFormat, frames)
	if err != nil {
		return fmt.Errorf("unable to encode the output: %w", err)
	}
	if _, err := h.options.Output.Write(raw); err != nil {
		return fmt.Errorf("unable to write the output: %w", err)
	}
	return nil
}

func (h *Host) takePending() []command {
	h.locker.Lock()
	defer h.locker.Unlock()
	pending := h.pending
	h.pending = nil
	return pending
}

func (h *Host) applySeek(ctx context.Context, percent float64) {
	h.locker.Lock()
	defer h.locker.Unlock()
	total := h.currentTrack().Frames.FrameCount()
	position := int(percent * float64(total) / 100)
	if position < 0 {
		position = 0
	}
	if position > total {
		position = total
	}
	h.recordActionNoLock(ctx, ActionKindSeek, position)
	h.position = position
}

func (h *Host) recordAction(ctx context.Context, kind ActionKind, to int) {
	h.locker.Lock()
	defer h.locker.Unlock()
	h.recordActionNoLock(ctx, kind, to)
}

func (h *Host) recordActionNoLock(ctx context.Context, kind ActionKind, to int) {
	track := h.currentTrack()
	frames := track.Frames
	action := Action{
		Kind:        kind,
		Track:       track.Name,
		TrackIndex:  h.current,
		FromPercent: h.percentNoLock(),
		From:        frames.Slice(0, h.position).Duration(),
	}
	if to >= 0 {
		action.To = frames.Slice(0, to).Duration()
		action.ToPercent = float64(to) * 100 / float64(max(frames.FrameCount(), 1))
	}
	logger.Debugf(ctx, "%s", action)
	h.actions = append(h.actions, action)
}

// followingTrack returns the index of the track to play after the current
// one, or -1 if the playback is over.
func (h *Host) followingTrack(ctx context.Context, finished bool) int {
	loopMode := host.LoopMode(h.Config.ConfigInt(ctx, host.ConfigKeyLoopMode, int(host.LoopModeAll)))

	h.locker.Lock()
	defer h.locker.Unlock()
	if finished && loopMode == host.LoopModeSingle {
		return h.current
	}
	next := h.current + 1
	if next < len(h.playlist) {
		return next
	}
	if loopMode == host.LoopModeAll {
		return 0
	}
	return -1
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
