// Package events implements the runtime's event bus: pattern-matched
// middleware gates, per-event transformer chains, an append-only
// history log, and exact-name subscriber delivery.
package events

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexisbeaulieu97/manifold/internal/logger"
	"github.com/alexisbeaulieu97/manifold/internal/observability"
)

// Handler receives an event after the transformer chain has run.
// Handler errors are logged and do not affect delivery to other
// subscribers.
type Handler func(ctx context.Context, evt Event) error

// Middleware gates an emission. Returning false vetoes the event:
// no further middleware, transformers, or delivery occur. A returned
// error aborts the emission and surfaces as a *PipelineError.
type Middleware func(ctx context.Context, evt *Event) (bool, error)

// Transformer maps an event payload to a new payload. Transformers for
// an event name chain in registration order, each fed the previous
// output.
type Transformer func(ctx context.Context, payload any) (any, error)

// Subscription represents a registered handler. Unsubscribe stops
// delivery; it is safe to call more than once.
type Subscription interface {
	Unsubscribe()
}

type middlewareEntry struct {
	pattern string
	re      *regexp.Regexp
	fn      Middleware
}

// matches applies the registered pattern to an event name: regular
// expression match when the pattern compiles, substring match otherwise.
func (m middlewareEntry) matches(name string) bool {
	if m.re != nil {
		return m.re.MatchString(name)
	}
	return strings.Contains(name, m.pattern)
}

type subscriberEntry struct {
	id      int
	handler Handler
}

// Bus is the runtime's publish mechanism. A Bus value is created per
// runtime and passed explicitly; it is never exposed as an embeddable
// base type.
type Bus struct {
	mu           sync.RWMutex
	subscribers  map[string][]subscriberEntry
	nextSubID    int
	middleware   []middlewareEntry
	transformers map[string][]Transformer

	histMu  sync.Mutex
	history []*Record

	log   *logger.Logger
	spans observability.SpanManager
}

// Option configures a Bus at construction time.
type Option func(*Bus)

// WithSpanManager attaches a span manager to trace emissions.
func WithSpanManager(sm observability.SpanManager) Option {
	return func(b *Bus) {
		if sm != nil {
			b.spans = sm
		}
	}
}

// NewBus returns an empty Bus.
func NewBus(log *logger.Logger, opts ...Option) *Bus {
	b := &Bus{
		subscribers:  make(map[string][]subscriberEntry),
		transformers: make(map[string][]Transformer),
		log:          log,
		spans:        observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Use registers a middleware gate for every event whose name matches
// pattern. Registration order is preserved globally across patterns,
// and duplicate registrations all run.
func (b *Bus) Use(pattern string, fn Middleware) {
	if fn == nil {
		return
	}

	entry := middlewareEntry{pattern: pattern, fn: fn}
	if re, err := regexp.Compile(pattern); err == nil {
		entry.re = re
	}

	b.mu.Lock()
	b.middleware = append(b.middleware, entry)
	b.mu.Unlock()
}

// Transform registers a payload transformer for the exact event name.
// Multiple transformers chain in insertion order; registering the same
// function twice applies it twice.
func (b *Bus) Transform(event string, fn Transformer) {
	if fn == nil {
		return
	}

	b.mu.Lock()
	b.transformers[event] = append(b.transformers[event], fn)
	b.mu.Unlock()
}

// Subscribe registers a handler for the exact event name and returns a
// Subscription that removes it.
func (b *Bus) Subscribe(event string, h Handler) Subscription {
	if h == nil {
		return noopSubscription{}
	}

	b.mu.Lock()
	b.nextSubID++
	id := b.nextSubID
	b.subscribers[event] = append(b.subscribers[event], subscriberEntry{id: id, handler: h})
	b.mu.Unlock()

	return subscription{cancel: func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		entries := b.subscribers[event]
		for i, entry := range entries {
			if entry.id == id {
				b.subscribers[event] = append(entries[:i], entries[i+1:]...)
				break
			}
		}
	}}
}

// Emit runs the full pipeline for one emission attempt: middleware
// gates in global registration order, then the transformer chain for
// the exact event name, then history completion, then delivery.
//
// The boolean result reports delivery: true when the pipeline completed
// and at least one subscriber existed. A middleware veto returns
// (false, nil); a middleware or transformer failure returns a
// *PipelineError and leaves the history record incomplete.
func (b *Bus) Emit(ctx context.Context, name string, payload any) (delivered bool, err error) {
	evt := Event{
		ID:        uuid.NewString(),
		Name:      name,
		Timestamp: time.Now(),
		Payload:   payload,
	}

	ctx, span := b.spans.StartEmitSpan(ctx, name, evt.ID)
	defer func() { b.spans.EndSpan(span, err) }()

	record := &Record{
		ID:        evt.ID,
		Name:      evt.Name,
		Timestamp: evt.Timestamp,
		Payload:   payload,
	}
	b.histMu.Lock()
	b.history = append(b.history, record)
	b.histMu.Unlock()

	b.mu.RLock()
	gates := make([]middlewareEntry, 0, len(b.middleware))
	for _, entry := range b.middleware {
		if entry.matches(name) {
			gates = append(gates, entry)
		}
	}
	chain := make([]Transformer, len(b.transformers[name]))
	copy(chain, b.transformers[name])
	b.mu.RUnlock()

	for _, gate := range gates {
		ok, mwErr := gate.fn(ctx, &evt)
		if mwErr != nil {
			return false, &PipelineError{Event: name, Stage: StageMiddleware, Err: mwErr}
		}
		if !ok {
			b.log.Debug(fmt.Sprintf("event %q vetoed by middleware pattern %q", name, gate.pattern))
			return false, nil
		}
	}

	transformed := evt.Payload
	for _, transform := range chain {
		next, tErr := transform(ctx, transformed)
		if tErr != nil {
			return false, &PipelineError{Event: name, Stage: StageTransformer, Err: tErr}
		}
		transformed = next
	}

	b.histMu.Lock()
	record.TransformedPayload = transformed
	record.CompletedAt = time.Now()
	b.histMu.Unlock()

	b.mu.RLock()
	handlers := make([]subscriberEntry, len(b.subscribers[name]))
	copy(handlers, b.subscribers[name])
	b.mu.RUnlock()

	out := Event{ID: evt.ID, Name: evt.Name, Timestamp: evt.Timestamp, Payload: transformed}
	for _, entry := range handlers {
		if hErr := entry.handler(ctx, out); hErr != nil {
			b.log.Warn(fmt.Sprintf("subscriber for event %q failed: %v", name, hErr))
		}
	}

	return len(handlers) > 0, nil
}

// History returns every recorded emission attempt in recording order.
func (b *Bus) History() []Record {
	b.histMu.Lock()
	defer b.histMu.Unlock()

	out := make([]Record, 0, len(b.history))
	for _, record := range b.history {
		out = append(out, *record)
	}
	return out
}

// HistoryFor returns the recorded emission attempts for one event name,
// in recording order.
func (b *Bus) HistoryFor(name string) []Record {
	b.histMu.Lock()
	defer b.histMu.Unlock()

	var out []Record
	for _, record := range b.history {
		if record.Name == name {
			out = append(out, *record)
		}
	}
	return out
}

// ClearHistory empties the history log. Registered middleware,
// transformers, and subscribers are untouched.
func (b *Bus) ClearHistory() {
	b.histMu.Lock()
	b.history = nil
	b.histMu.Unlock()
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}

type subscription struct {
	cancel func()
}

func (s subscription) Unsubscribe() {
	if s.cancel != nil {
		s.cancel()
	}
}
