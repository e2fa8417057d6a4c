// Package silenceremover is a player plugin skipping silent and quiet
// passages: quiet intros are fast-forwarded, a track trailing into
// silence is skipped, quiet parts in the middle are fast-forwarded.
package silenceremover

import (
	"context"
	"fmt"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/kpcee/deadbeef-silence-remover/pkg/audio"
	"github.com/kpcee/deadbeef-silence-remover/pkg/host"
	"github.com/kpcee/deadbeef-silence-remover/pkg/loudness"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	PluginID = "silenceremover"
)

var descriptor = host.Descriptor{
	Type:        host.PluginTypeMisc,
	APIVersion:  host.Version{Major: 1, Minor: 5},
	Version:     host.Version{Major: 1, Minor: 0},
	ID:          PluginID,
	Name:        "Silence Remover",
	Description: "The plugin automatically skips quiet areas of a song for gapless playback.",
	Copyright: "Copyright (C) 2019 kpcee\n" +
		"\n" +
		"This program is free software; you can redistribute it and/or\n" +
		"modify it under the terms of the GNU General Public License\n" +
		"as published by the Free Software Foundation; either version 2\n" +
		"of the License, or (at your option) any later version.\n",
	Website: "https://github.com/kpcee/deadbeef-silence_remover",
}

type Plugin struct {
	host      host.Host
	locker    sync.Locker
	estimator *loudness.Estimator
	metrics   *Metrics

	// everything below is guarded by locker
	config    Config
	session   SessionState
	connected bool
}

var _ host.Plugin = (*Plugin)(nil)
var _ host.BufferTickHandler = (*Plugin)(nil)

type Option interface {
	apply(*options)
}

type options struct {
	meterProvider metric.MeterProvider
}

type optionMeterProvider struct {
	metric.MeterProvider
}

func (opt optionMeterProvider) apply(opts *options) {
	opts.meterProvider = opt.MeterProvider
}

// WithMeterProvider sets where the metrics go, the global OpenTelemetry
// provider is used by default.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return optionMeterProvider{MeterProvider: mp}
}

func New(h host.Host, opts ...Option) (*Plugin, error) {
	cfg := options{
		meterProvider: otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	metrics, err := NewMetrics(cfg.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize metrics: %w", err)
	}

	return &Plugin{
		host:      h,
		locker:    h.NewMutex(),
		estimator: loudness.NewEstimator(),
		metrics:   metrics,
		config:    DefaultConfig(),
	}, nil
}

func (p *Plugin) Descriptor() host.Descriptor {
	return descriptor
}

func (p *Plugin) ConfigDialog() host.ConfigDialog {
	return configDialog()
}

func (p *Plugin) Connect(ctx context.Context) error {
	logger.Tracef(ctx, "Connect")
	defer logger.Tracef(ctx, "/Connect")

	if err := func() error {
		p.locker.Lock()
		defer p.locker.Unlock()
		if p.connected {
			return fmt.Errorf("already connected")
		}
		p.reloadConfig(ctx)
		p.connected = true
		return nil
	}(); err != nil {
		return err
	}

	p.host.SubscribeBufferTicks(ctx, p)
	return nil
}

func (p *Plugin) Disconnect(ctx context.Context) error {
	logger.Tracef(ctx, "Disconnect")
	defer logger.Tracef(ctx, "/Disconnect")

	p.locker.Lock()
	wasConnected := p.connected
	p.connected = false
	p.locker.Unlock()

	if wasConnected {
		p.host.UnsubscribeBufferTicks(ctx, p)
	}
	return nil
}

func (p *Plugin) Start(ctx context.Context) error {
	logger.Debugf(ctx, "%s started", PluginID)
	return nil
}

func (p *Plugin) Stop(ctx context.Context) error {
	logger.Debugf(ctx, "%s stopped", PluginID)
	return nil
}

func (p *Plugin) Message(ctx context.Context, ev host.Event) error {
	p.locker.Lock()
	defer p.locker.Unlock()

	switch ev {
	case host.EventTrackStarted:
		p.session.Reset()
	case host.EventTrackChanged, host.EventTrackFinished:
		p.session.Suppress()
	case host.EventConfigChanged:
		p.reloadConfig(ctx)
	default:
		return nil
	}
	logger.Tracef(ctx, "%s: session is now %+v", ev, p.session)
	return nil
}

// reloadConfig must be called with the locker held.
func (p *Plugin) reloadConfig(ctx context.Context) {
	p.config = LoadConfig(ctx, p.host)
	logger.Debugf(ctx, "%s config: %+v (enabled: %v)", PluginID, p.config, p.config.Enabled())
}

// OnBuffer implements host.BufferTickHandler.
func (p *Plugin) OnBuffer(ctx context.Context, frames *audio.Frames) {
	p.locker.Lock()
	defer p.locker.Unlock()

	if !p.config.Enabled() {
		return
	}

	percent := p.host.PlaybackPercent(ctx)
	if percent <= 0 {
		return
	}

	l := p.estimator.Estimate(frames)
	action := p.session.Decide(p.config, l, percent)
	p.metrics.recordTick(ctx, l, action)

	switch action {
	case ActionNone:
		return
	case ActionSkipIntro:
		p.host.SeekToPercent(ctx, percent+IntroSeekStep)
	case ActionSkipMiddle:
		p.host.SeekToPercent(ctx, percent+MiddleSeekStep)
	case ActionNextTrack:
		p.host.NextTrack(ctx)
	case ActionReplayTrack:
		p.host.ReplayCurrentTrack(ctx)
	}
	logger.Debugf(ctx, "%s at %.2f%% (loudness %.1f)", action, percent, l)
}

// Config returns the thresholds in use.
func (p *Plugin) Config() Config {
	p.locker.Lock()
	defer p.locker.Unlock()
	return p.config
}

// SessionState returns a snapshot of the state of the current track.
func (p *Plugin) SessionState() SessionState {
	p.locker.Lock()
	defer p.locker.Unlock()
	return p.session
}
