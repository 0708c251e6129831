package offline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
)

// State is the lifecycle state of the worker.
type State string

const (
	StateParsed     State = "parsed"
	StateInstalling State = "installing"
	StateInstalled  State = "installed"
	StateActivating State = "activating"
	StateActivated  State = "activated"
	StateRedundant  State = "redundant"
)

// ErrInvalidState is returned when a lifecycle step is requested from the wrong state.
var ErrInvalidState = errors.New("invalid worker state")

// Status is a point-in-time view of the controller.
type Status struct {
	State       State `json:"state"`
	Controlling bool  `json:"controlling"`
}

// Controller drives the worker lifecycle and dispatches events to its handlers.
type Controller struct {
	handlers Handlers
	logger   *zap.Logger

	mu          sync.Mutex
	state       State
	skipWaiting bool
	controlling bool
}

// NewController creates a controller in the parsed state.
func NewController(handlers Handlers, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{handlers: handlers, logger: logger, state: StateParsed}
	logger.Info("Worker initialized")
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status returns the current state and whether the worker controls clients.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{State: c.state, Controlling: c.controlling}
}

// Install runs the install event. When skip-waiting was requested during install,
// the worker activates right away.
func (c *Controller) Install(ctx context.Context) error {
	if err := c.transition(StateParsed, StateInstalling); err != nil {
		return err
	}

	ev := &InstallEvent{newExtendableEvent(ctx, EventInstall, c)}
	c.dispatch(ctx, c.handlers.Install, ev)
	if err := ev.wait(); err != nil {
		c.setState(StateRedundant)
		return fmt.Errorf("install failed: %w", err)
	}

	c.mu.Lock()
	c.state = StateInstalled
	skip := c.skipWaiting
	c.mu.Unlock()

	if skip {
		return c.activateIfInstalled(ctx)
	}
	return nil
}

// Activate runs the activate event. It is only valid from the installed state.
func (c *Controller) Activate(ctx context.Context) error {
	if err := c.transition(StateInstalled, StateActivating); err != nil {
		return err
	}

	ev := &ActivateEvent{newExtendableEvent(ctx, EventActivate, c)}
	c.dispatch(ctx, c.handlers.Activate, ev)
	if err := ev.wait(); err != nil {
		c.setState(StateRedundant)
		return fmt.Errorf("activate failed: %w", err)
	}

	c.setState(StateActivated)
	return nil
}

// activateIfInstalled activates unless another caller already did.
func (c *Controller) activateIfInstalled(ctx context.Context) error {
	if err := c.Activate(ctx); err != nil && !errors.Is(err, ErrInvalidState) {
		return err
	}
	return nil
}

// SkipWaiting requests activation without waiting for older workers.
// During install the request is remembered; once installed it activates immediately.
func (c *Controller) SkipWaiting(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateParsed, StateInstalling:
		c.skipWaiting = true
		c.mu.Unlock()
		return nil
	case StateInstalled:
		c.skipWaiting = true
		c.mu.Unlock()
		return c.activateIfInstalled(ctx)
	default:
		c.mu.Unlock()
		return nil
	}
}

// ClaimClients makes the worker control requests. It is valid while activating or activated.
func (c *Controller) ClaimClients(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActivating && c.state != StateActivated {
		return fmt.Errorf("%w: cannot claim clients while %s", ErrInvalidState, c.state)
	}
	c.controlling = true
	return nil
}

// HandleFetch offers req to the fetch handler. The boolean is false when the worker
// is not controlling or no handler took over the request.
func (c *Controller) HandleFetch(ctx context.Context, req *http.Request) (*Response, bool, error) {
	c.mu.Lock()
	active := c.state == StateActivated && c.controlling
	c.mu.Unlock()
	if !active {
		return nil, false, nil
	}

	ev := &FetchEvent{Request: req, scope: c}
	c.dispatch(ctx, c.handlers.Fetch, ev)

	responder := ev.takeResponder()
	if responder == nil {
		return nil, false, nil
	}
	resp, err := responder(ctx)
	if err != nil {
		return nil, true, err
	}
	return resp, true, nil
}

// PostMessage delivers data to the message handler and waits for it to finish.
func (c *Controller) PostMessage(ctx context.Context, data any) error {
	if c.State() == StateRedundant {
		return fmt.Errorf("%w: worker is redundant", ErrInvalidState)
	}
	ev := &MessageEvent{ExtendableEvent: newExtendableEvent(ctx, EventMessage, c), Data: data}
	c.dispatch(ctx, c.handlers.Message, ev)
	return ev.wait()
}

// Stop retires the worker.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateRedundant
	c.controlling = false
}

func (c *Controller) dispatch(ctx context.Context, h Handler, ev Event) {
	if h == nil {
		return
	}
	h.Handle(ctx, ev)
}

func (c *Controller) transition(from, to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != from {
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidState, from, c.state)
	}
	c.state = to
	c.logger.Debug("state changed", zap.String("from", string(from)), zap.String("to", string(to)))
	return nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	c.logger.Debug("state changed", zap.String("to", string(s)))
}
