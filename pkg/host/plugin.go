package host

import (
	"context"
	"fmt"
	"strings"
)

type PluginType uint

const (
	PluginTypeUndefined = PluginType(iota)
	PluginTypeMisc
)

type Version struct {
	Major uint
	Minor uint
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Descriptor is what a plugin tells the host about itself.
type Descriptor struct {
	Type        PluginType
	APIVersion  Version
	Version     Version
	ID          string
	Name        string
	Description string
	Copyright   string
	Website     string
}

// ConfigControl is a single widget of a plugin configuration dialog.
type ConfigControl interface {
	ConfigKey() string
	DialogLine() string
}

// SpinControl is an integer spin button.
type SpinControl struct {
	Label   string
	Key     string
	Min     int
	Max     int
	Step    int
	Default int
}

var _ ConfigControl = SpinControl{}

func (c SpinControl) ConfigKey() string {
	return c.Key
}

func (c SpinControl) DialogLine() string {
	return fmt.Sprintf("property %q spinbtn[%d,%d,%d] %s %d;", c.Label, c.Min, c.Max, c.Step, c.Key, c.Default)
}

// ConfigDialog is a declarative description of a plugin settings dialog;
// rendering it is up to the host UI.
type ConfigDialog []ConfigControl

func (d ConfigDialog) String() string {
	var result strings.Builder
	for _, control := range d {
		result.WriteString(control.DialogLine())
		result.WriteString("\n")
	}
	return result.String()
}

// Plugin is the capability surface a host holds and drives.
type Plugin interface {
	Descriptor() Descriptor
	ConfigDialog() ConfigDialog

	// Connect is called once every plugin is loaded, this is where the
	// plugin subscribes to host callbacks.
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// Message is the generic event entry point.
	Message(ctx context.Context, ev Event) error
}
