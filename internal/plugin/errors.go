package plugin

import "fmt"

// ErrPluginNotFound is returned when an operation references a plugin
// name that is not registered.
type ErrPluginNotFound struct {
	Name string
}

func (e ErrPluginNotFound) Error() string {
	return fmt.Sprintf("plugin '%s' not found in registry", e.Name)
}

// ErrDuplicatePlugin is returned when a registration collides with an
// existing plugin name.
type ErrDuplicatePlugin struct {
	Name string
}

func (e ErrDuplicatePlugin) Error() string {
	return fmt.Sprintf("plugin '%s' already registered", e.Name)
}

// ErrInvalidTransition is returned when a lifecycle operation is
// invoked from a status it is not valid in.
type ErrInvalidTransition struct {
	Plugin string
	From   Status
	Op     string
}

func (e ErrInvalidTransition) Error() string {
	return fmt.Sprintf("plugin '%s': cannot %s while %s", e.Plugin, e.Op, e.From)
}

// ErrCapabilityUnavailable is returned from Execute when the requested
// capability is undeclared, disabled, or has no bound behavior.
type ErrCapabilityUnavailable struct {
	Plugin     string
	Capability string
	Reason     string
}

func (e ErrCapabilityUnavailable) Error() string {
	return fmt.Sprintf("plugin '%s': capability '%s' unavailable: %s", e.Plugin, e.Capability, e.Reason)
}
