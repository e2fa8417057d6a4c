package silenceremover

import (
	"github.com/kpcee/deadbeef-silence-remover/pkg/host"
	"github.com/kpcee/deadbeef-silence-remover/pkg/plugin/registry"
)

const (
	Priority = 100
)

func init() {
	registry.RegisterPluginFactory(Priority, PluginFactory{})
}

type PluginFactory struct{}

func (PluginFactory) NewPlugin(h host.Host) (host.Plugin, error) {
	p, err := New(h)
	if err != nil {
		return nil, err
	}
	return p, nil
}
