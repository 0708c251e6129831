package offline

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"
)

// EventKind identifies a lifecycle or functional event.
type EventKind string

const (
	EventInstall  EventKind = "install"
	EventActivate EventKind = "activate"
	EventFetch    EventKind = "fetch"
	EventMessage  EventKind = "message"
)

// Scope is the worker-global surface visible to handlers.
type Scope interface {
	SkipWaiting(ctx context.Context) error
	ClaimClients(ctx context.Context) error
}

// Event is dispatched to exactly one Handler.
type Event interface {
	Kind() EventKind
	Scope() Scope
}

// Handler reacts to one kind of event.
type Handler interface {
	Handle(ctx context.Context, event Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event)

func (f HandlerFunc) Handle(ctx context.Context, event Event) { f(ctx, event) }

// ExtendableEvent lets handlers extend the event's lifetime with background tasks.
type ExtendableEvent struct {
	kind  EventKind
	scope Scope

	once  sync.Once
	group *errgroup.Group
	gctx  context.Context
}

func newExtendableEvent(ctx context.Context, kind EventKind, scope Scope) *ExtendableEvent {
	e := &ExtendableEvent{kind: kind, scope: scope}
	e.group, e.gctx = errgroup.WithContext(ctx)
	return e
}

func (e *ExtendableEvent) Kind() EventKind { return e.kind }
func (e *ExtendableEvent) Scope() Scope    { return e.scope }

// WaitUntil starts task immediately; the event completes once every task has returned.
func (e *ExtendableEvent) WaitUntil(task func(ctx context.Context) error) {
	e.group.Go(func() error { return task(e.gctx) })
}

// wait blocks until all tasks finish and returns the first task error.
func (e *ExtendableEvent) wait() error {
	var err error
	e.once.Do(func() { err = e.group.Wait() })
	return err
}

// InstallEvent is dispatched once while the worker is installing.
type InstallEvent struct{ *ExtendableEvent }

// ActivateEvent is dispatched once while the worker is activating.
type ActivateEvent struct{ *ExtendableEvent }

// MessageEvent carries a message posted to the worker.
type MessageEvent struct {
	*ExtendableEvent
	Data any
}

// Responder produces the response for an intercepted request.
type Responder func(ctx context.Context) (*Response, error)

// FetchEvent is dispatched for every intercepted request.
type FetchEvent struct {
	Request *http.Request

	scope     Scope
	mu        sync.Mutex
	responder Responder
}

func (e *FetchEvent) Kind() EventKind { return EventFetch }
func (e *FetchEvent) Scope() Scope    { return e.scope }

// RespondWith takes over the request. Only the first call counts.
func (e *FetchEvent) RespondWith(r Responder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.responder == nil {
		e.responder = r
	}
}

func (e *FetchEvent) takeResponder() Responder {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.responder
}
