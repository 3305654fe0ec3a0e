package node

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/nodemesh/core"
)

// MessageHandler consumes a raw message delivered to a subscription.
type MessageHandler func(data []byte)

// ServiceHandler answers a raw service request.
type ServiceHandler func(request []byte) ([]byte, error)

// entityBase carries the identity, middleware handle and liveness state shared
// by all dispatchable entities. It satisfies core.Entity.
type entityBase struct {
	id     string
	kind   core.EntityKind
	handle core.Handle
	closed atomic.Bool
}

func newEntityBase(kind core.EntityKind, handle core.Handle) entityBase {
	return entityBase{id: uuid.NewString(), kind: kind, handle: handle}
}

// ID returns the stable unique identifier of the entity.
func (e *entityBase) ID() string { return e.id }

// Kind returns the entity variant.
func (e *entityBase) Kind() core.EntityKind { return e.kind }

// Alive reports whether the entity has not been closed.
func (e *entityBase) Alive() bool { return !e.closed.Load() }

// Handle returns the opaque middleware handle of the entity.
func (e *entityBase) Handle() core.Handle { return e.handle }

// Close marks the entity dead. Callback groups holding it will skip it from
// then on. Closing never decrements node counters and is idempotent.
func (e *entityBase) Close() { e.closed.Store(true) }

// Publisher is a handle to a middleware-created publisher. Publishers are
// never dispatched: they join no callback group and move no node counter.
type Publisher struct {
	id     string
	topic  string
	handle core.Handle
}

func newPublisher(topic string, handle core.Handle) *Publisher {
	return &Publisher{id: uuid.NewString(), topic: topic, handle: handle}
}

// ID returns the stable unique identifier of the publisher.
func (p *Publisher) ID() string { return p.id }

// Topic returns the topic the publisher writes to.
func (p *Publisher) Topic() string { return p.topic }

// Handle returns the opaque middleware handle of the publisher.
func (p *Publisher) Handle() core.Handle { return p.handle }

// Subscription is a dispatchable binding of a topic to a message handler.
type Subscription struct {
	entityBase
	topic      string
	queueDepth int
	handler    MessageHandler
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() string { return s.topic }

// QueueDepth returns the requested incoming queue depth.
func (s *Subscription) QueueDepth() int { return s.queueDepth }

// Handler returns the message handler to dispatch deliveries to.
func (s *Subscription) Handler() MessageHandler { return s.handler }

// WallTimer is a dispatchable periodic callback. Timers never touch the
// middleware; they exist only in the coordination layer.
type WallTimer struct {
	entityBase
	period   time.Duration
	callback func()
}

// Period returns the timer period at nanosecond resolution.
func (t *WallTimer) Period() time.Duration { return t.period }

// Callback returns the function to dispatch on each period.
func (t *WallTimer) Callback() func() { return t.callback }

// Client is a dispatchable service client.
type Client struct {
	entityBase
	serviceName string
}

// ServiceName returns the name of the remote service.
func (c *Client) ServiceName() string { return c.serviceName }

// Service is a dispatchable service server.
type Service struct {
	entityBase
	serviceName string
	handler     ServiceHandler
}

// ServiceName returns the advertised service name.
func (s *Service) ServiceName() string { return s.serviceName }

// Handler returns the request handler to dispatch calls to.
func (s *Service) Handler() ServiceHandler { return s.handler }
