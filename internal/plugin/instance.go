package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexisbeaulieu97/manifold/internal/config"
	"github.com/alexisbeaulieu97/manifold/internal/logger"
)

// Status is a plugin instance's lifecycle state.
type Status string

const (
	StatusUninitialized Status = "UNINITIALIZED"
	StatusInitializing  Status = "INITIALIZING"
	StatusInitialized   Status = "INITIALIZED"
	StatusExecuting     Status = "EXECUTING"
	StatusCleaningUp    Status = "CLEANING_UP"
	StatusTerminated    Status = "TERMINATED"
)

// CapabilityFunc is the behavior bound to one capability name. Behavior
// is selected by lookup on the instance's capability table rather than
// virtual dispatch; a plugin is composed of its configuration plus the
// functions bound to its enabled capabilities.
type CapabilityFunc func(ctx context.Context, payload any) (any, error)

// Instance holds one registered plugin: its normalized configuration
// (exclusive), a private key/value state store, a lifecycle status, and
// the capability behavior table.
//
// The state store is reachable only through the Registry's accessors;
// no other component may read or write another plugin's state.
type Instance struct {
	cfg *config.NormalizedConfig
	log *logger.Logger

	mu        sync.RWMutex
	status    Status
	state     map[string]any
	behaviors map[string]CapabilityFunc
}

func newInstance(cfg *config.NormalizedConfig, log *logger.Logger) *Instance {
	return &Instance{
		cfg:       cfg,
		log:       log,
		status:    StatusUninitialized,
		state:     make(map[string]any),
		behaviors: make(map[string]CapabilityFunc),
	}
}

// Name returns the name the plugin was registered under.
func (i *Instance) Name() string {
	return i.cfg.Name
}

// Config returns the plugin's normalized configuration. The
// configuration is immutable for the lifetime of the instance.
func (i *Instance) Config() *config.NormalizedConfig {
	return i.cfg
}

// Status returns the current lifecycle status.
func (i *Instance) Status() Status {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.status
}

// IsInitialized reports whether the instance is currently in a state
// that permits execution.
func (i *Instance) IsInitialized() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.status == StatusInitialized
}

// BindCapability attaches a behavior to one of the plugin's declared,
// enabled capabilities. Binding an undeclared or disabled capability is
// rejected so a configuration stays the single source of truth for what
// the plugin may do.
func (i *Instance) BindCapability(name string, fn CapabilityFunc) error {
	if fn == nil {
		return fmt.Errorf("plugin '%s': capability '%s': behavior is nil", i.cfg.Name, name)
	}
	if !i.cfg.CapabilityDeclared(name) {
		return ErrCapabilityUnavailable{Plugin: i.cfg.Name, Capability: name, Reason: "not declared"}
	}
	if !i.cfg.CapabilityEnabled(name) {
		return ErrCapabilityUnavailable{Plugin: i.cfg.Name, Capability: name, Reason: "disabled"}
	}

	i.mu.Lock()
	i.behaviors[name] = fn
	i.mu.Unlock()
	return nil
}

// Initialize transitions the instance from UNINITIALIZED to
// INITIALIZED. Re-initializing an already initialized instance is an
// error, as is initializing after Cleanup: termination is permanent.
func (i *Instance) Initialize(ctx context.Context) error {
	i.mu.Lock()
	if i.status != StatusUninitialized {
		from := i.status
		i.mu.Unlock()
		return ErrInvalidTransition{Plugin: i.cfg.Name, From: from, Op: "initialize"}
	}
	i.status = StatusInitializing
	i.mu.Unlock()

	if err := ctx.Err(); err != nil {
		i.mu.Lock()
		i.status = StatusUninitialized
		i.mu.Unlock()
		return err
	}

	i.mu.Lock()
	i.status = StatusInitialized
	i.mu.Unlock()

	i.log.Debug("plugin initialized")
	return nil
}

// Execute runs the behavior bound to the named capability. Execution is
// re-entrant with respect to the lifecycle: the instance moves to
// EXECUTING for the duration of the call and returns to INITIALIZED
// afterward, whether or not the behavior succeeded.
func (i *Instance) Execute(ctx context.Context, capability string, payload any) (any, error) {
	i.mu.Lock()
	if i.status != StatusInitialized {
		from := i.status
		i.mu.Unlock()
		return nil, ErrInvalidTransition{Plugin: i.cfg.Name, From: from, Op: "execute"}
	}

	fn, err := i.lookupBehaviorLocked(capability)
	if err != nil {
		i.mu.Unlock()
		return nil, err
	}

	i.status = StatusExecuting
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.status = StatusInitialized
		i.mu.Unlock()
	}()

	return fn(ctx, payload)
}

func (i *Instance) lookupBehaviorLocked(capability string) (CapabilityFunc, error) {
	if !i.cfg.CapabilityDeclared(capability) {
		return nil, ErrCapabilityUnavailable{Plugin: i.cfg.Name, Capability: capability, Reason: "not declared"}
	}
	if !i.cfg.CapabilityEnabled(capability) {
		return nil, ErrCapabilityUnavailable{Plugin: i.cfg.Name, Capability: capability, Reason: "disabled"}
	}
	fn, ok := i.behaviors[capability]
	if !ok {
		return nil, ErrCapabilityUnavailable{Plugin: i.cfg.Name, Capability: capability, Reason: "no behavior bound"}
	}
	return fn, nil
}

// Cleanup transitions the instance from INITIALIZED to TERMINATED and
// drops its private state. A terminated instance cannot be initialized
// again.
func (i *Instance) Cleanup(ctx context.Context) error {
	i.mu.Lock()
	if i.status != StatusInitialized {
		from := i.status
		i.mu.Unlock()
		return ErrInvalidTransition{Plugin: i.cfg.Name, From: from, Op: "cleanup"}
	}
	i.status = StatusCleaningUp
	i.state = make(map[string]any)
	i.status = StatusTerminated
	i.mu.Unlock()

	i.log.Debug("plugin terminated")
	return nil
}

// setState and getState are reachable only through the Registry's
// accessors, keeping each plugin's store private to its own name.

func (i *Instance) setState(key string, value any) {
	i.mu.Lock()
	i.state[key] = value
	i.mu.Unlock()
}

func (i *Instance) getState(key string) (any, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	value, ok := i.state[key]
	return value, ok
}
