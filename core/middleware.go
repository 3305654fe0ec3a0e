package core

// Handle is an opaque identifier minted by a Middleware implementation for a
// created primitive (node, publisher, subscription, client, service). The
// coordination layer stores handles without interpreting them.
type Handle string

// TypeSupport describes the message or service type of an entity to the
// middleware. Resolution of concrete type support (encoders, introspection)
// is entirely the middleware's concern.
type TypeSupport struct {
	// Name is the fully qualified type name, e.g. "std_msgs/String".
	Name string
}

// Middleware is the external collaborator responsible for transport-level
// entity creation. Every operation is synchronous, atomic and non-retrying:
// it either returns a usable handle or an allocation/registration error,
// which callers propagate upward unchanged.
//
// Wall timers never reach the middleware; they are a purely node-local
// construct.
type Middleware interface {
	// CreateNode registers a node and returns its handle.
	CreateNode(name string) (Handle, error)

	// CreatePublisher registers a publisher on the given node.
	CreatePublisher(node Handle, ts TypeSupport, topic string, queueDepth int) (Handle, error)

	// CreateSubscription registers a subscription on the given node.
	CreateSubscription(node Handle, ts TypeSupport, topic string, queueDepth int) (Handle, error)

	// CreateClient registers a service client on the given node.
	CreateClient(node Handle, ts TypeSupport, service string) (Handle, error)

	// CreateService registers a service server on the given node.
	CreateService(node Handle, ts TypeSupport, service string) (Handle, error)
}
