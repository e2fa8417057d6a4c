package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/kpcee/deadbeef-silence-remover/pkg/host"
)

type PluginFactory interface {
	NewPlugin(h host.Host) (host.Plugin, error)
}

type pluginFactoryWithPriority struct {
	Priority int
	PluginFactory
}

var (
	pluginFactoryRegistry       = map[reflect.Type]pluginFactoryWithPriority{}
	pluginFactoryRegistryLocker sync.Mutex
)

func RegisterPluginFactory(
	priority int,
	pluginFactory PluginFactory,
) {
	t := reflect.ValueOf(pluginFactory).Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	pluginFactoryRegistryLocker.Lock()
	defer pluginFactoryRegistryLocker.Unlock()
	if _, ok := pluginFactoryRegistry[t]; ok {
		panic(fmt.Errorf("there is already registered a factory of Plugin of type %v", t))
	}
	pluginFactoryRegistry[t] = pluginFactoryWithPriority{
		Priority:      priority,
		PluginFactory: pluginFactory,
	}
}

// PluginFactories returns the registered factories, the highest priority
// first.
func PluginFactories() []PluginFactory {
	pluginFactoryRegistryLocker.Lock()
	var factoriesWithPriorities []pluginFactoryWithPriority
	for _, factory := range pluginFactoryRegistry {
		factoriesWithPriorities = append(factoriesWithPriorities, factory)
	}
	pluginFactoryRegistryLocker.Unlock()

	sort.SliceStable(factoriesWithPriorities, func(i, j int) bool {
		return factoriesWithPriorities[i].Priority > factoriesWithPriorities[j].Priority
	})

	var factories []PluginFactory
	for _, factory := range factoriesWithPriorities {
		factories = append(factories, factory.PluginFactory)
	}

	return factories
}
