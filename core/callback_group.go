package core

import (
	"sync"

	"github.com/google/uuid"
)

// CallbackGroupType declares the dispatch-exclusivity policy of a callback
// group. The policy is a stored attribute consumed by an external executor;
// this layer only records and reports it.
type CallbackGroupType int

const (
	// CallbackGroupMutuallyExclusive guarantees that entities in the same
	// group are never dispatched concurrently with each other.
	CallbackGroupMutuallyExclusive CallbackGroupType = iota
	// CallbackGroupReentrant makes no concurrency guarantee between entities
	// of the group.
	CallbackGroupReentrant
)

// String returns the string representation of the group type.
func (t CallbackGroupType) String() string {
	switch t {
	case CallbackGroupMutuallyExclusive:
		return "mutually_exclusive"
	case CallbackGroupReentrant:
		return "reentrant"
	default:
		return "unknown"
	}
}

// CallbackGroup is a bucket of entities that should be dispatched together
// under one exclusivity policy. Groups hold entities non-owningly: the node
// (or whichever object created an entity) owns its lifetime, and the group
// silently skips entities that are no longer alive. A group must never be the
// deciding factor in entity destruction.
//
// Identity is by instance; two groups are the same group only if they are the
// same pointer. Create groups through Node.CreateCallbackGroup so the node
// can answer ownership queries about them.
type CallbackGroup struct {
	id  string
	typ CallbackGroupType

	mu      sync.RWMutex
	members map[EntityKind]map[string]Entity
}

// NewCallbackGroup constructs an empty callback group with the given policy.
func NewCallbackGroup(typ CallbackGroupType) *CallbackGroup {
	return &CallbackGroup{
		id:      uuid.NewString(),
		typ:     typ,
		members: make(map[EntityKind]map[string]Entity),
	}
}

// ID returns the stable unique identifier of the group.
func (g *CallbackGroup) ID() string { return g.id }

// Type returns the declared exclusivity policy.
func (g *CallbackGroup) Type() CallbackGroupType { return g.typ }

// Add registers an entity with the group, keyed by its kind and identity.
// Adding the same entity twice is a no-op.
func (g *CallbackGroup) Add(e Entity) {
	g.mu.Lock()
	defer g.mu.Unlock()
	kindSet, ok := g.members[e.Kind()]
	if !ok {
		kindSet = make(map[string]Entity)
		g.members[e.Kind()] = kindSet
	}
	kindSet[e.ID()] = e
}

// Subscriptions returns the live subscriptions of the group.
func (g *CallbackGroup) Subscriptions() []Entity { return g.collect(KindSubscription) }

// Timers returns the live timers of the group.
func (g *CallbackGroup) Timers() []Entity { return g.collect(KindTimer) }

// Clients returns the live clients of the group.
func (g *CallbackGroup) Clients() []Entity { return g.collect(KindClient) }

// Services returns the live services of the group.
func (g *CallbackGroup) Services() []Entity { return g.collect(KindService) }

// Size returns the number of live entities across all kinds.
func (g *CallbackGroup) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, kindSet := range g.members {
		for _, e := range kindSet {
			if e.Alive() {
				n++
			}
		}
	}
	return n
}

// collect snapshots the live entities of one kind. Dead references are
// skipped, never returned and never treated as an error.
func (g *CallbackGroup) collect(kind EntityKind) []Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	kindSet := g.members[kind]
	out := make([]Entity, 0, len(kindSet))
	for _, e := range kindSet {
		if !e.Alive() {
			continue
		}
		out = append(out, e)
	}
	return out
}
