package silenceremover

import (
	"context"

	"github.com/kpcee/deadbeef-silence-remover/pkg/host"
)

const (
	ConfigKeyStartThreshold  = PluginID + ".start_threshold"
	ConfigKeyMiddleThreshold = PluginID + ".middle_threshold"
	ConfigKeyEndThreshold    = PluginID + ".end_threshold"
)

const (
	DefaultStartThreshold  = 10
	DefaultMiddleThreshold = 0
	DefaultEndThreshold    = 35

	// Disabled turns off the rule it is set for.
	Disabled = -1
)

// Config is the set of thresholds, on the loudness scale of package
// loudness, plus the host loop mode.
type Config struct {
	StartThreshold  int
	MiddleThreshold int
	EndThreshold    int
	LoopMode        host.LoopMode
}

func DefaultConfig() Config {
	return Config{
		StartThreshold:  DefaultStartThreshold,
		MiddleThreshold: DefaultMiddleThreshold,
		EndThreshold:    DefaultEndThreshold,
		LoopMode:        host.LoopModeAll,
	}
}

// LoadConfig reads a complete Config from the host. Values are taken as is,
// out of range values are not corrected.
func LoadConfig(ctx context.Context, cfg host.ConfigReader) Config {
	return Config{
		StartThreshold:  cfg.ConfigInt(ctx, ConfigKeyStartThreshold, DefaultStartThreshold),
		MiddleThreshold: cfg.ConfigInt(ctx, ConfigKeyMiddleThreshold, DefaultMiddleThreshold),
		EndThreshold:    cfg.ConfigInt(ctx, ConfigKeyEndThreshold, DefaultEndThreshold),
		LoopMode:        host.LoopMode(cfg.ConfigInt(ctx, host.ConfigKeyLoopMode, int(host.LoopModeAll))),
	}
}

func (cfg Config) StartEnabled() bool {
	return cfg.StartThreshold >= 0
}

func (cfg Config) MiddleEnabled() bool {
	return cfg.MiddleThreshold >= 0
}

func (cfg Config) EndEnabled() bool {
	return cfg.EndThreshold >= 0
}

// Enabled is false only when every rule is disabled.
func (cfg Config) Enabled() bool {
	return cfg.StartThreshold != Disabled ||
		cfg.MiddleThreshold != Disabled ||
		cfg.EndThreshold != Disabled
}

func configDialog() host.ConfigDialog {
	spin := func(label, key string, def int) host.SpinControl {
		return host.SpinControl{
			Label:   label,
			Key:     key,
			Min:     Disabled,
			Max:     100,
			Step:    1,
			Default: def,
		}
	}
	return host.ConfigDialog{
		spin("Start threshold (-1 to disable)", ConfigKeyStartThreshold, DefaultStartThreshold),
		spin("Middle threshold (-1 to disable)", ConfigKeyMiddleThreshold, DefaultMiddleThreshold),
		spin("End threshold (-1 to disable)", ConfigKeyEndThreshold, DefaultEndThreshold),
	}
}
