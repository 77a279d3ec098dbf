// Package hooks implements ordered, failure-isolated hook dispatch.
// Handlers are bound to event names per plugin; executing an event runs
// every handler in registration order and captures each outcome
// independently, so one failing handler never aborts its siblings.
package hooks

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexisbeaulieu97/manifold/internal/logger"
)

// Handler processes a hook event payload and returns an optional
// result. Returned errors and panics are captured in the dispatch
// results; they never propagate to the caller of Execute.
type Handler func(ctx context.Context, payload any) (any, error)

// Result records the outcome of a single handler invocation.
type Result struct {
	Plugin  string
	Success bool
	Result  any
	Error   string
}

type registration struct {
	plugin  string
	handler Handler
}

// Dispatcher maps event names to ordered handler lists.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]registration
	log      *logger.Logger
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher(log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]registration),
		log:      log,
	}
}

// Register appends a handler for the given event on behalf of the named
// plugin. Handlers run in the order they were registered.
func (d *Dispatcher) Register(plugin, event string, h Handler) {
	if h == nil {
		return
	}

	d.mu.Lock()
	d.handlers[event] = append(d.handlers[event], registration{plugin: plugin, handler: h})
	d.mu.Unlock()
}

// RemovePlugin drops every handler the named plugin registered, across
// all events. Remaining handlers keep their relative order.
func (d *Dispatcher) RemovePlugin(plugin string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for event, regs := range d.handlers {
		kept := regs[:0]
		for _, reg := range regs {
			if reg.plugin != plugin {
				kept = append(kept, reg)
			}
		}
		if len(kept) == 0 {
			delete(d.handlers, event)
			continue
		}
		d.handlers[event] = kept
	}
}

// Execute invokes every handler registered for event, in registration
// order, passing payload. Each handler's outcome is captured in its own
// Result; an event with no handlers yields an empty slice.
//
// Handlers run on a snapshot taken outside the lock, so a slow handler
// blocks only its caller, never registration.
func (d *Dispatcher) Execute(ctx context.Context, event string, payload any) []Result {
	d.mu.RLock()
	snapshot := make([]registration, len(d.handlers[event]))
	copy(snapshot, d.handlers[event])
	d.mu.RUnlock()

	results := make([]Result, 0, len(snapshot))
	for _, reg := range snapshot {
		result := d.invoke(ctx, reg, payload)
		if !result.Success {
			d.log.WithPlugin(reg.plugin).Warn(fmt.Sprintf("hook handler for %q failed: %s", event, result.Error))
		}
		results = append(results, result)
	}

	return results
}

func (d *Dispatcher) invoke(ctx context.Context, reg registration, payload any) (result Result) {
	result.Plugin = reg.plugin

	defer func() {
		if rec := recover(); rec != nil {
			result.Success = false
			result.Result = nil
			result.Error = fmt.Sprintf("%v", rec)
		}
	}()

	value, err := reg.handler(ctx, payload)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Result = value
	return result
}
