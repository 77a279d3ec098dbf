package config

// requiredCapabilities maps each plugin type to the capability names a
// configuration of that type must declare. The table is static;
// registration never mutates it.
var requiredCapabilities = map[PluginType][]string{
	TypeAPI:         {"design", "mock", "test", "document", "monitor"},
	TypeDatabase:    {"schema", "migrate", "seed", "backup", "monitor"},
	TypeEnvironment: {"detect", "provision", "sync", "validate"},
	TypeSecurity:    {"scan", "audit", "harden", "report"},
}

// RequiredCapabilities returns the capability names a plugin of the
// given type must declare. The returned slice is a copy.
func RequiredCapabilities(t PluginType) []string {
	required, ok := requiredCapabilities[t]
	if !ok {
		return nil
	}
	out := make([]string, len(required))
	copy(out, required)
	return out
}
