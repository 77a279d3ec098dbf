package config

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	manifolderrors "github.com/alexisbeaulieu97/manifold/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	pluginNamePattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	semverPattern     = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("plugin_name", func(fl validator.FieldLevel) bool {
			return pluginNamePattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// PluginValidator checks raw plugin configurations against the
// structural schema and the semantic rules (required capabilities per
// type, lifecycle hook events, boolean capability values) and produces
// normalized configurations.
type PluginValidator struct{}

// NewValidator returns a PluginValidator ready for use.
func NewValidator() *PluginValidator {
	return &PluginValidator{}
}

// Validate checks cfg and returns its normalized form. The returned
// error is always a *errors.ValidationError naming the violated rule.
func (pv *PluginValidator) Validate(cfg *PluginConfig) (*NormalizedConfig, error) {
	if cfg == nil {
		return nil, manifolderrors.NewValidationError("config", "plugin configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(cfg); err != nil {
		return nil, convertValidationError(err)
	}

	for i, hook := range cfg.Hooks {
		if !IsLifecycleEvent(hook.Event) {
			field := fmt.Sprintf("hooks[%d].event", i)
			return nil, manifolderrors.NewValidationError(field, fmt.Sprintf("unknown lifecycle event %q", hook.Event), nil)
		}
	}

	capabilities := make(map[string]bool, len(cfg.Capabilities))
	for name, value := range cfg.Capabilities {
		enabled, ok := value.(bool)
		if !ok {
			field := fmt.Sprintf("capabilities.%s", name)
			return nil, manifolderrors.NewValidationError(field, fmt.Sprintf("capability value must be a boolean, got %T", value), nil)
		}
		capabilities[name] = enabled
	}

	var missing []string
	for _, required := range RequiredCapabilities(cfg.Type) {
		if _, declared := capabilities[required]; !declared {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, manifolderrors.NewMissingCapabilitiesError(string(cfg.Type), missing)
	}

	hooks := make([]Hook, len(cfg.Hooks))
	copy(hooks, cfg.Hooks)

	return &NormalizedConfig{
		Name:         cfg.Name,
		Version:      cfg.Version,
		Type:         cfg.Type,
		Description:  cfg.Description,
		Capabilities: capabilities,
		Hooks:        hooks,
	}, nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok && len(ves) > 0 {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return manifolderrors.NewValidationError(field, msg, err)
	}

	return manifolderrors.NewValidationError("config", err.Error(), err)
}

// yamlishFieldName rewrites the validator's struct namespace into the
// lower-case dotted form manifests use.
func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	lowered := make([]string, 0, len(parts))
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}
