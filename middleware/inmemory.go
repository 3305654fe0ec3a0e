package middleware

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hupe1980/nodemesh/core"
)

var (
	// ErrUnknownNode is returned when an entity is created against a node
	// handle this middleware never issued.
	ErrUnknownNode = errors.New("unknown node handle")
)

// EntityInfo describes one registration held by the in-process middleware.
type EntityInfo struct {
	Kind  string
	Node  core.Handle
	Name  string
	Type  core.TypeSupport
	Depth int
}

// InProcess is a trivial in-memory core.Middleware implementation. It keeps
// all registrations in maps guarded by an RWMutex and mints uuid handles.
// Data is copied on retrieval to avoid external mutation of internal state.
type InProcess struct {
	mu       sync.RWMutex
	nodes    map[core.Handle]string
	entities map[core.Handle]EntityInfo
}

// NewInProcess returns an empty in-process middleware.
func NewInProcess() *InProcess {
	return &InProcess{
		nodes:    make(map[core.Handle]string),
		entities: make(map[core.Handle]EntityInfo),
	}
}

// CreateNode registers a node and returns its handle.
func (m *InProcess) CreateNode(name string) (core.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	handle := core.Handle(uuid.NewString())
	m.nodes[handle] = name
	return handle, nil
}

// CreatePublisher registers a publisher on the given node.
func (m *InProcess) CreatePublisher(node core.Handle, ts core.TypeSupport, topic string, queueDepth int) (core.Handle, error) {
	return m.register(node, EntityInfo{Kind: "publisher", Name: topic, Type: ts, Depth: queueDepth})
}

// CreateSubscription registers a subscription on the given node.
func (m *InProcess) CreateSubscription(node core.Handle, ts core.TypeSupport, topic string, queueDepth int) (core.Handle, error) {
	return m.register(node, EntityInfo{Kind: "subscription", Name: topic, Type: ts, Depth: queueDepth})
}

// CreateClient registers a service client on the given node.
func (m *InProcess) CreateClient(node core.Handle, ts core.TypeSupport, service string) (core.Handle, error) {
	return m.register(node, EntityInfo{Kind: "client", Name: service, Type: ts})
}

// CreateService registers a service server on the given node.
func (m *InProcess) CreateService(node core.Handle, ts core.TypeSupport, service string) (core.Handle, error) {
	return m.register(node, EntityInfo{Kind: "service", Name: service, Type: ts})
}

func (m *InProcess) register(node core.Handle, info EntityInfo) (core.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.nodes[node]; !ok {
		return "", fmt.Errorf("register %s %q: %w", info.Kind, info.Name, ErrUnknownNode)
	}
	handle := core.Handle(uuid.NewString())
	info.Node = node
	m.entities[handle] = info
	return handle, nil
}

// Entities returns a snapshot of the registrations held for the given node.
func (m *InProcess) Entities(node core.Handle) []EntityInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []EntityInfo
	for _, info := range m.entities {
		if info.Node == node {
			out = append(out, info)
		}
	}
	return out
}

// NodeCount returns the number of registered nodes.
func (m *InProcess) NodeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}
