package testutil

import (
	"fmt"

	"github.com/hupe1980/nodemesh/core"
)

// RecordingMiddleware is a core.Middleware that counts every create call and
// optionally fails the next one with a fixed error. It is not synchronized;
// binder calls are serialized by contract.
type RecordingMiddleware struct {
	// NextErr, when non-nil, fails the next create call and is consumed.
	NextErr error

	NodeCreates         int
	PublisherCreates    int
	SubscriptionCreates int
	ClientCreates       int
	ServiceCreates      int

	handles int
}

// NewRecordingMiddleware returns an empty recording middleware.
func NewRecordingMiddleware() *RecordingMiddleware {
	return &RecordingMiddleware{}
}

// EntityCreates returns the total number of entity (non-node) create calls.
func (m *RecordingMiddleware) EntityCreates() int {
	return m.PublisherCreates + m.SubscriptionCreates + m.ClientCreates + m.ServiceCreates
}

func (m *RecordingMiddleware) next(kind string) (core.Handle, error) {
	if err := m.NextErr; err != nil {
		m.NextErr = nil
		return "", err
	}
	m.handles++
	return core.Handle(fmt.Sprintf("%s-%d", kind, m.handles)), nil
}

// CreateNode records a node create call.
func (m *RecordingMiddleware) CreateNode(string) (core.Handle, error) {
	m.NodeCreates++
	return m.next("node")
}

// CreatePublisher records a publisher create call.
func (m *RecordingMiddleware) CreatePublisher(core.Handle, core.TypeSupport, string, int) (core.Handle, error) {
	m.PublisherCreates++
	return m.next("publisher")
}

// CreateSubscription records a subscription create call.
func (m *RecordingMiddleware) CreateSubscription(core.Handle, core.TypeSupport, string, int) (core.Handle, error) {
	m.SubscriptionCreates++
	return m.next("subscription")
}

// CreateClient records a client create call.
func (m *RecordingMiddleware) CreateClient(core.Handle, core.TypeSupport, string) (core.Handle, error) {
	m.ClientCreates++
	return m.next("client")
}

// CreateService records a service create call.
func (m *RecordingMiddleware) CreateService(core.Handle, core.TypeSupport, string) (core.Handle, error) {
	m.ServiceCreates++
	return m.next("service")
}
