package config

// PluginType identifies the category a plugin belongs to. The type
// determines which capabilities a configuration must declare.
type PluginType string

const (
	TypeAPI         PluginType = "api"
	TypeDatabase    PluginType = "database"
	TypeEnvironment PluginType = "environment"
	TypeSecurity    PluginType = "security"
)

// Lifecycle event names a plugin configuration may bind hooks to.
const (
	EventPreInit     = "PRE_INIT"
	EventPostInit    = "POST_INIT"
	EventPreExecute  = "PRE_EXECUTE"
	EventPostExecute = "POST_EXECUTE"
)

var lifecycleEvents = map[string]struct{}{
	EventPreInit:     {},
	EventPostInit:    {},
	EventPreExecute:  {},
	EventPostExecute: {},
}

// LifecycleEvents returns the recognized lifecycle event names in
// execution order.
func LifecycleEvents() []string {
	return []string{EventPreInit, EventPostInit, EventPreExecute, EventPostExecute}
}

// IsLifecycleEvent reports whether name is one of the four lifecycle
// event names.
func IsLifecycleEvent(name string) bool {
	_, ok := lifecycleEvents[name]
	return ok
}

// Hook binds a handler slot to a lifecycle event in a plugin
// configuration. The handler itself is registered at runtime; the
// configuration only declares intent.
type Hook struct {
	Event       string `yaml:"event" validate:"required"`
	Description string `yaml:"description" validate:"required,min=10"`
}

// PluginConfig is a raw plugin configuration as parsed from a manifest
// or assembled by a caller. Capabilities values are deliberately typed
// as any: the validator performs an explicit runtime boolean check and
// rejects anything else rather than coercing.
type PluginConfig struct {
	Name         string         `yaml:"name" validate:"required,plugin_name"`
	Version      string         `yaml:"version" validate:"required,semver"`
	Type         PluginType     `yaml:"type" validate:"required,oneof=api database environment security"`
	Description  string         `yaml:"description" validate:"required,min=10"`
	Capabilities map[string]any `yaml:"capabilities" validate:"required,min=1"`
	Hooks        []Hook         `yaml:"hooks,omitempty" validate:"omitempty,dive"`
}

// NormalizedConfig is the validator's output: a structurally and
// semantically valid configuration with capability values narrowed to
// booleans. It is immutable once a plugin instance owns it.
type NormalizedConfig struct {
	Name         string
	Version      string
	Type         PluginType
	Description  string
	Capabilities map[string]bool
	Hooks        []Hook
}

// CapabilityEnabled reports whether the named capability is declared
// and switched on.
func (c *NormalizedConfig) CapabilityEnabled(name string) bool {
	if c == nil {
		return false
	}
	return c.Capabilities[name]
}

// CapabilityDeclared reports whether the named capability appears in
// the configuration at all, regardless of its value.
func (c *NormalizedConfig) CapabilityDeclared(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.Capabilities[name]
	return ok
}

// Manifest is the YAML document the CLI loads: a versioned list of
// plugin configurations.
type Manifest struct {
	Version string         `yaml:"version" validate:"required,semver"`
	Plugins []PluginConfig `yaml:"plugins" validate:"required,min=1"`
}
