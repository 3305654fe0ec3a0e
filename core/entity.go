package core

// EntityKind identifies the dispatchable entity variants a callback group can
// hold. The set is closed: publishers are intentionally absent because they
// are never dispatched and never join a group.
type EntityKind int

const (
	// KindSubscription identifies topic subscriptions.
	KindSubscription EntityKind = iota
	// KindTimer identifies wall timers.
	KindTimer
	// KindClient identifies service clients.
	KindClient
	// KindService identifies service servers.
	KindService
)

// String returns the string representation of the entity kind.
func (k EntityKind) String() string {
	switch k {
	case KindSubscription:
		return "subscription"
	case KindTimer:
		return "timer"
	case KindClient:
		return "client"
	case KindService:
		return "service"
	default:
		return "unknown"
	}
}

// Entity is the minimal capability a callback group needs from a dispatchable
// entity: stable identity, its kind, and a liveness check. Groups hold
// entities non-owningly; an entity that reports Alive() == false is skipped
// during iteration and must never be resurrected by the group.
//
// Concrete implementations live in the node package (Subscription, WallTimer,
// Client, Service). The closed EntityKind set replaces runtime downcasting.
type Entity interface {
	// ID returns the stable unique identifier of the entity.
	ID() string

	// Kind returns the entity variant.
	Kind() EntityKind

	// Alive reports whether the entity has not been closed. Groups consult
	// this before every use of a stored reference.
	Alive() bool
}
