package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tritonsoft/leadboard/internal/models"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Channel is the process-wide push connection to the notification server.
// One instance is shared by every view; it is constructed explicitly and
// injected, with its Start/Close lifecycle owned by whoever owns the session.
//
// Reconnection is automatic and invisible to subscribers: connection failures
// are never surfaced per-event, only through Connected. Delivery is
// at-least-once; consumers are expected to merge idempotently.
type Channel struct {
	endpoint  string
	transport transport
	log       *slog.Logger

	newContact    listenerSet[models.Contact]
	newDemo       listenerSet[models.Demo]
	contactStatus listenerSet[models.Contact]
	demoStatus    listenerSet[models.Demo]

	connected  atomic.Bool
	everOnline atomic.Bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	closed  bool
}

// NewChannel creates a channel for the given endpoint. An empty endpoint
// means live events are disabled: Start is a no-op and Connected stays false.
func NewChannel(endpoint string) (*Channel, error) {
	c := &Channel{
		endpoint: endpoint,
		log:      slog.Default().With("component", "live"),
	}
	if endpoint == "" {
		return c, nil
	}
	t, err := newTransport(endpoint)
	if err != nil {
		return nil, err
	}
	c.transport = t
	return c, nil
}

// Start opens the connection and keeps it open until Close. Calling Start on
// a disabled or already started channel does nothing.
func (c *Channel) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transport == nil || c.started || c.closed {
		return
	}
	c.started = true

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.runLoop(runCtx)
}

func (c *Channel) runLoop(ctx context.Context) {
	defer close(c.done)

	backoff := initialBackoff
	for {
		c.everOnline.Store(false)
		err := c.transport.run(ctx, c)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.log.Warn("event channel disconnected", "error", err)
		}

		// A session that actually connected resets the backoff.
		if c.everOnline.Load() {
			backoff = initialBackoff
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// Close tears the connection down and removes every listener. It blocks until
// the run loop has exited, so no callback fires after Close returns. Safe to
// call more than once.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	c.newContact.clear()
	c.newDemo.clear()
	c.contactStatus.clear()
	c.demoStatus.clear()
	c.connected.Store(false)
}

// Connected reports whether the transport currently holds a live connection.
func (c *Channel) Connected() bool {
	return c.connected.Load()
}

// OnNewContact registers a callback for new contact submissions and returns
// its unsubscribe func.
func (c *Channel) OnNewContact(fn func(models.Contact)) func() {
	return c.newContact.add(fn)
}

// OnNewDemo registers a callback for new demo requests.
func (c *Channel) OnNewDemo(fn func(models.Demo)) func() {
	return c.newDemo.add(fn)
}

// OnContactStatusUpdated registers a callback for contact status changes.
func (c *Channel) OnContactStatusUpdated(fn func(models.Contact)) func() {
	return c.contactStatus.add(fn)
}

// OnDemoStatusUpdated registers a callback for demo status changes.
func (c *Channel) OnDemoStatusUpdated(fn func(models.Demo)) func() {
	return c.demoStatus.add(fn)
}

// handleEvent decodes one pushed event and fans it out to the listeners for
// its kind. Unknown kinds and undecodable payloads are dropped.
func (c *Channel) handleEvent(kind string, payload []byte) {
	switch kind {
	case models.EventNewContact:
		var rec models.Contact
		if err := json.Unmarshal(payload, &rec); err != nil {
			c.log.Debug("dropping undecodable event", "kind", kind, "error", err)
			return
		}
		c.newContact.dispatch(rec)
	case models.EventNewDemo:
		var rec models.Demo
		if err := json.Unmarshal(payload, &rec); err != nil {
			c.log.Debug("dropping undecodable event", "kind", kind, "error", err)
			return
		}
		c.newDemo.dispatch(rec)
	case models.EventContactStatusUpdated:
		var rec models.Contact
		if err := json.Unmarshal(payload, &rec); err != nil {
			c.log.Debug("dropping undecodable event", "kind", kind, "error", err)
			return
		}
		c.contactStatus.dispatch(rec)
	case models.EventDemoStatusUpdated:
		var rec models.Demo
		if err := json.Unmarshal(payload, &rec); err != nil {
			c.log.Debug("dropping undecodable event", "kind", kind, "error", err)
			return
		}
		c.demoStatus.dispatch(rec)
	}
}

func (c *Channel) setConnected(connected bool) {
	c.connected.Store(connected)
	if connected {
		c.everOnline.Store(true)
		c.log.Info("event channel connected", "endpoint", c.endpoint)
	}
}
