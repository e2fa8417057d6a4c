package registry

import (
	"context"
	"reflect"
	"testing"

	"github.com/kpcee/deadbeef-silence-remover/pkg/host"
	"github.com/stretchr/testify/require"
)

type testPlugin struct {
	id string
}

func (p testPlugin) Descriptor() host.Descriptor { return host.Descriptor{ID: p.id} }
func (testPlugin) ConfigDialog() host.ConfigDialog { return nil }
func (testPlugin) Connect(context.Context) error { return nil }
func (testPlugin) Disconnect(context.Context) error { return nil }
func (testPlugin) Start(context.Context) error { return nil }
func (testPlugin) Stop(context.Context) error { return nil }
func (testPlugin) Message(context.Context, host.Event) error { return nil }

type lowFactory struct{}

func (lowFactory) NewPlugin(host.Host) (host.Plugin, error) { return testPlugin{id: "low"}, nil }

type highFactory struct{}

func (*highFactory) NewPlugin(host.Host) (host.Plugin, error) { return testPlugin{id: "high"}, nil }

func withCleanRegistry(t *testing.T) {
	pluginFactoryRegistryLocker.Lock()
	saved := pluginFactoryRegistry
	pluginFactoryRegistry = map[reflect.Type]pluginFactoryWithPriority{}
	pluginFactoryRegistryLocker.Unlock()
	t.Cleanup(func() {
		pluginFactoryRegistryLocker.Lock()
		pluginFactoryRegistry = saved
		pluginFactoryRegistryLocker.Unlock()
	})
}

func TestPluginFactories(t *testing.T) {
	withCleanRegistry(t)

	RegisterPluginFactory(10, lowFactory{})
	RegisterPluginFactory(100, &highFactory{})

	factories := PluginFactories()
	require.Len(t, factories, 2)

	var ids []string
	for _, factory := range factories {
		p, err := factory.NewPlugin(host.Dummy{})
		require.NoError(t, err)
		ids = append(ids, p.Descriptor().ID)
	}
	require.Equal(t, []string{"high", "low"}, ids)
}

func TestRegisterPluginFactoryDuplicate(t *testing.T) {
	withCleanRegistry(t)

	RegisterPluginFactory(1, &highFactory{})
	require.Panics(t, func() {
		RegisterPluginFactory(2, new(highFactory))
	})
}
