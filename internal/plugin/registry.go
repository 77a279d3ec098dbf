// Package plugin implements the plugin registry: registration with
// validation, per-plugin private state, lifecycle management, and hook
// dispatch scoped to registered plugins.
package plugin

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/alexisbeaulieu97/manifold/internal/config"
	"github.com/alexisbeaulieu97/manifold/internal/hooks"
	"github.com/alexisbeaulieu97/manifold/internal/logger"
	"github.com/alexisbeaulieu97/manifold/internal/observability"
	manifolderrors "github.com/alexisbeaulieu97/manifold/pkg/errors"
)

// Validator checks a raw plugin configuration and returns its
// normalized form. The default implementation lives in internal/config;
// hosts may supply their own.
type Validator interface {
	Validate(cfg *config.PluginConfig) (*config.NormalizedConfig, error)
}

// Hook event names admit the four lifecycle events plus custom
// uppercase identifiers registered at runtime.
var hookEventPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// Registry maps plugin names to instances. It owns registration,
// lookup, per-plugin state access, and the hook dispatcher.
type Registry struct {
	mu         sync.RWMutex
	plugins    map[string]*Instance
	validator  Validator
	dispatcher *hooks.Dispatcher
	log        *logger.Logger
	spans      observability.SpanManager
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithSpanManager attaches a span manager to trace registrations and
// hook dispatch.
func WithSpanManager(sm observability.SpanManager) Option {
	return func(r *Registry) {
		if sm != nil {
			r.spans = sm
		}
	}
}

// NewRegistry returns an empty registry using the supplied validator.
// A nil validator falls back to the default configuration validator.
func NewRegistry(v Validator, log *logger.Logger, opts ...Option) *Registry {
	if v == nil {
		v = config.NewValidator()
	}

	r := &Registry{
		plugins:    make(map[string]*Instance),
		validator:  v,
		dispatcher: hooks.NewDispatcher(log),
		log:        log,
		spans:      observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dispatcher exposes the registry's hook dispatcher so external code
// can compose it with the event bus.
func (r *Registry) Dispatcher() *hooks.Dispatcher {
	return r.dispatcher
}

// Register validates cfg and, on success, stores a new UNINITIALIZED
// instance under its name. The existence check and insert happen in a
// single critical section, so two racing registrations of the same name
// cannot both succeed.
func (r *Registry) Register(ctx context.Context, cfg *config.PluginConfig) (inst *Instance, err error) {
	name := ""
	if cfg != nil {
		name = cfg.Name
	}
	_, span := r.spans.StartRegisterSpan(ctx, name)
	defer func() { r.spans.EndSpan(span, err) }()

	normalized, err := r.validator.Validate(cfg)
	if err != nil {
		return nil, err
	}

	inst = newInstance(normalized, r.log.WithPlugin(normalized.Name))

	r.mu.Lock()
	if _, exists := r.plugins[normalized.Name]; exists {
		r.mu.Unlock()
		return nil, ErrDuplicatePlugin{Name: normalized.Name}
	}
	r.plugins[normalized.Name] = inst
	r.mu.Unlock()

	r.log.WithPlugin(normalized.Name).Info(fmt.Sprintf("registered %s plugin %s", normalized.Type, normalized.Version))
	return inst, nil
}

// Get retrieves a registered plugin instance by name.
func (r *Registry) Get(name string) (*Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.plugins[name]
	if !ok {
		return nil, ErrPluginNotFound{Name: name}
	}
	return inst, nil
}

// List returns the registered plugin names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Deregister removes a plugin and every hook it registered. The
// instance itself is left in whatever lifecycle state it was in;
// callers that want an orderly shutdown run Cleanup first.
func (r *Registry) Deregister(name string) error {
	r.mu.Lock()
	if _, ok := r.plugins[name]; !ok {
		r.mu.Unlock()
		return ErrPluginNotFound{Name: name}
	}
	delete(r.plugins, name)
	r.mu.Unlock()

	r.dispatcher.RemovePlugin(name)
	r.log.WithPlugin(name).Info("deregistered plugin")
	return nil
}

// RegisterHook binds a handler to an event on behalf of a registered
// plugin. The plugin must exist and the event name must be a lifecycle
// event or a custom uppercase identifier.
func (r *Registry) RegisterHook(pluginName, event string, h hooks.Handler) error {
	if !hookEventPattern.MatchString(event) {
		return manifolderrors.NewValidationError("event", fmt.Sprintf("invalid hook event name %q", event), nil)
	}

	r.mu.RLock()
	_, ok := r.plugins[pluginName]
	r.mu.RUnlock()
	if !ok {
		return ErrPluginNotFound{Name: pluginName}
	}

	r.dispatcher.Register(pluginName, event, h)
	return nil
}

// ExecuteHooks runs every handler registered for event in registration
// order, isolating each handler's failure. An event with no handlers
// yields an empty result list, not an error.
func (r *Registry) ExecuteHooks(ctx context.Context, event string, payload any) []hooks.Result {
	ctx, span := r.spans.StartHookSpan(ctx, event)
	defer r.spans.EndSpan(span, nil)

	return r.dispatcher.Execute(ctx, event, payload)
}

// SetState writes a key in the named plugin's private store.
func (r *Registry) SetState(pluginName, key string, value any) error {
	inst, err := r.Get(pluginName)
	if err != nil {
		return err
	}
	inst.setState(key, value)
	return nil
}

// GetState reads a key from the named plugin's private store. A missing
// key is reported through the boolean, not an error; an unregistered
// plugin is always an error, never a default value.
func (r *Registry) GetState(pluginName, key string) (any, bool, error) {
	inst, err := r.Get(pluginName)
	if err != nil {
		return nil, false, err
	}
	value, ok := inst.getState(key)
	return value, ok, nil
}
