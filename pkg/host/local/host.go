// Package local is an in-process player used to drive plugins without a
// real audio player: tracks are decoded into memory and "played" tick by
// tick, without any audio output.
package local

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/kpcee/deadbeef-silence-remover/pkg/audio"
	"github.com/kpcee/deadbeef-silence-remover/pkg/host"
	"github.com/kpcee/deadbeef-silence-remover/pkg/plugin/registry"
)

const (
	DefaultChunkFrames = 1024
)

type Options struct {
	// ChunkFrames is the amount of frames delivered per buffer tick.
	ChunkFrames int

	// Realtime paces the ticks to the duration of the delivered audio.
	Realtime bool

	// MaxTrackStarts stops Run after that many track starts, zero means
	// no limit.
	MaxTrackStarts int

	// Output receives the played audio as raw PCM of OutputFormat
	// (float32le by default), so skipped parts are absent from it.
	Output       io.Writer
	OutputFormat audio.PCMFormat
}

type Host struct {
	Config *ConfigStore

	options Options

	locker   sync.Mutex
	playlist []*Track
	current  int
	position int
	pending  []command
	handlers []host.BufferTickHandler
	plugins  []host.Plugin
	actions  []Action
}

var _ host.Host = (*Host)(nil)

func New(options Options, config map[string]int) *Host {
	if options.ChunkFrames <= 0 {
		options.ChunkFrames = DefaultChunkFrames
	}
	if options.OutputFormat == audio.PCMFormatUndefined {
		options.OutputFormat = audio.PCMFormatFloat32LE
	}
	return &Host{
		Config:  NewConfigStore(config),
		options: options,
	}
}

func (h *Host) AddTrack(track *Track) {
	h.locker.Lock()
	defer h.locker.Unlock()
	h.playlist = append(h.playlist, track)
}

// AddPlugin connects and starts the plugin.
func (h *Host) AddPlugin(ctx context.Context, p host.Plugin) error {
	desc := p.Descriptor()
	if err := p.Connect(ctx); err != nil {
		return fmt.Errorf("unable to connect plugin '%s': %w", desc.ID, err)
	}
	if err := p.Start(ctx); err != nil {
		return fmt.Errorf("unable to start plugin '%s': %w", desc.ID, err)
	}

	h.locker.Lock()
	defer h.locker.Unlock()
	h.plugins = append(h.plugins, p)
	logger.Debugf(ctx, "plugin '%s' %s (%s) is loaded", desc.ID, desc.Version, desc.Name)
	return nil
}

// LoadPlugins instantiates and adds a plugin from every registered factory.
func (h *Host) LoadPlugins(ctx context.Context) error {
	var mErr *multierror.Error
	for _, factory := range registry.PluginFactories() {
		p, err := factory.NewPlugin(h)
		logger.Debugf(ctx, "initializing plugin %T result is %v", p, err)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to initialize a plugin using %T: %w", factory, err))
			continue
		}
		if err := h.AddPlugin(ctx, p); err != nil {
			mErr = multierror.Append(mErr, err)
		}
	}
	return mErr.ErrorOrNil()
}

func (h *Host) Plugins() []host.Plugin {
	h.locker.Lock()
	defer h.locker.Unlock()
	return append([]host.Plugin{}, h.plugins...)
}

// Close stops and disconnects every plugin.
func (h *Host) Close(ctx context.Context) error {
	h.locker.Lock()
	plugins := h.plugins
	h.plugins = nil
	h.locker.Unlock()

	var mErr *multierror.Error
	for _, p := range plugins {
		id := p.Descriptor().ID
		if err := p.Stop(ctx); err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to stop plugin '%s': %w", id, err))
		}
		if err := p.Disconnect(ctx); err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to disconnect plugin '%s': %w", id, err))
		}
	}
	return mErr.ErrorOrNil()
}

func (h *Host) ConfigInt(ctx context.Context, key string, defaultValue int) int {
	return h.Config.ConfigInt(ctx, key, defaultValue)
}

// SetConfigInt changes a single value and notifies the plugins.
func (h *Host) SetConfigInt(ctx context.Context, key string, value int) {
	h.Config.Set(key, value)
	h.sendEvent(ctx, host.EventConfigChanged)
}

// ReplaceConfig swaps the whole configuration and notifies the plugins.
func (h *Host) ReplaceConfig(ctx context.Context, values map[string]int) {
	h.Config.Replace(values)
	h.sendEvent(ctx, host.EventConfigChanged)
}

// WatchConfigFile keeps the configuration in sync with a YAML file until
// ctx is cancelled.
func (h *Host) WatchConfigFile(ctx context.Context, path string, interval time.Duration) error {
	return NewConfigWatcher(path, interval, h.ReplaceConfig).Serve(ctx)
}

func (h *Host) NewMutex() sync.Locker {
	return &sync.Mutex{}
}

func (h *Host) SubscribeBufferTicks(_ context.Context, handler host.BufferTickHandler) {
	h.locker.Lock()
	defer h.locker.Unlock()
	h.handlers = append(h.handlers, handler)
}

func (h *Host) UnsubscribeBufferTicks(_ context.Context, handler host.BufferTickHandler) {
	h.locker.Lock()
	defer h.locker.Unlock()
	for idx, cur := range h.handlers {
		if cur == handler {
			h.handlers = append(h.handlers[:idx:idx], h.handlers[idx+1:]...)
			return
		}
	}
}

func (h *Host) sendEvent(ctx context.Context, ev host.Event) {
	logger.Tracef(ctx, "sendEvent(%s)", ev)
	for _, p := range h.Plugins() {
		if err := p.Message(ctx, ev); err != nil {
			logger.Errorf(ctx, "plugin '%s' failed to handle event %s: %v", p.Descriptor().ID, ev, err)
		}
	}
}
