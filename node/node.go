package node

import (
	"fmt"
	"time"
	"weak"

	"github.com/hupe1980/nodemesh/core"
	"github.com/hupe1980/nodemesh/logging"
	"github.com/hupe1980/nodemesh/param"
)

// Options configures Node construction.
type Options struct {
	// Context is the execution/domain scope the node joins. Defaults to the
	// process-wide default context.
	Context *core.Context

	// Middleware is the external collaborator performing transport-level
	// creation. Required; the façade package supplies an in-process default.
	Middleware core.Middleware

	// Logger receives debug/warn events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Counters is a snapshot of the node's per-kind entity counts. Counts are
// monotonically increasing for the node's lifetime: closing an entity never
// decrements them, matching the absence of an entity removal operation.
type Counters struct {
	Subscriptions uint64
	Timers        uint64
	Clients       uint64
	Services      uint64
}

// Node composes the callback group registry, the parameter store and the
// entity counters, and exposes the creation operations that talk to the
// middleware collaborator.
//
// The parameter API is safe for concurrent use. CreateCallbackGroup and the
// entity creation operations are not internally synchronized: concurrent
// creation calls on the same node must be serialized by the caller.
type Node struct {
	name       string
	handle     core.Handle
	context    *core.Context
	middleware core.Middleware
	logger     logging.Logger

	// Caller-created groups are held weakly: if the caller drops its strong
	// handle the stored reference expires and is skipped wherever the
	// registry is consulted. The default group below keeps itself alive.
	callbackGroups       []weak.Pointer[core.CallbackGroup]
	defaultCallbackGroup *core.CallbackGroup

	store    *param.Store
	counters Counters
}

// New constructs a node registered with the middleware and owning a fresh
// default mutually exclusive callback group.
func New(name string, optFns ...func(o *Options)) (*Node, error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Context == nil {
		opts.Context = core.DefaultContext()
	}
	if opts.Middleware == nil {
		return nil, fmt.Errorf("node %q: middleware is required", name)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	handle, err := opts.Middleware.CreateNode(name)
	if err != nil {
		return nil, err
	}

	n := &Node{
		name:       name,
		handle:     handle,
		context:    opts.Context,
		middleware: opts.Middleware,
		logger:     opts.Logger,
		store:      param.NewStore(),
	}
	n.defaultCallbackGroup = n.CreateCallbackGroup(core.CallbackGroupMutuallyExclusive)
	n.logger.Debug("node created", "node", name, "domain_id", opts.Context.DomainID())
	return n, nil
}

// WithContext sets the execution context the node joins.
func WithContext(ctx *core.Context) func(o *Options) {
	return func(o *Options) { o.Context = ctx }
}

// WithMiddleware sets the middleware collaborator.
func WithMiddleware(mw core.Middleware) func(o *Options) {
	return func(o *Options) { o.Middleware = mw }
}

// WithLogger sets the node logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// Handle returns the opaque middleware handle of the node.
func (n *Node) Handle() core.Handle { return n.handle }

// Context returns the execution context the node joined.
func (n *Node) Context() *core.Context { return n.context }

// DefaultCallbackGroup returns the implicit group entities join when no
// target group is supplied. It exists for the node's whole lifetime.
func (n *Node) DefaultCallbackGroup() *core.CallbackGroup { return n.defaultCallbackGroup }

// Counters returns a snapshot of the per-kind entity counts.
func (n *Node) Counters() Counters { return n.counters }

// CreateCallbackGroup allocates a group of the given type, records a weak
// reference to it in the registry and returns the strong handle. The node
// does not keep the group alive on the caller's behalf.
func (n *Node) CreateCallbackGroup(typ core.CallbackGroupType) *core.CallbackGroup {
	group := core.NewCallbackGroup(typ)
	n.callbackGroups = append(n.callbackGroups, weak.Make(group))
	n.logger.Debug("callback group created", "node", n.name, "group", group.ID(), "type", typ.String())
	return group
}

// GroupInNode reports whether the candidate group was created on this node
// and is still live. Expired registry references are transparently skipped:
// they never match and never cause an error.
func (n *Node) GroupInNode(candidate *core.CallbackGroup) bool {
	for _, ref := range n.callbackGroups {
		if group := ref.Value(); group != nil && group == candidate {
			return true
		}
	}
	return false
}

// CallbackGroups returns the live groups of the registry, default group
// included, in creation order.
func (n *Node) CallbackGroups() []*core.CallbackGroup {
	groups := make([]*core.CallbackGroup, 0, len(n.callbackGroups))
	for _, ref := range n.callbackGroups {
		if group := ref.Value(); group != nil {
			groups = append(groups, group)
		}
	}
	return groups
}

// EntityOptions configures entity creation.
type EntityOptions struct {
	// CallbackGroup is the target group for the entity. It must have been
	// created on the same node; nil selects the default group.
	CallbackGroup *core.CallbackGroup
}

// WithCallbackGroup targets the entity at the given group.
func WithCallbackGroup(g *core.CallbackGroup) func(o *EntityOptions) {
	return func(o *EntityOptions) { o.CallbackGroup = g }
}

// resolveGroup validates a caller-supplied group against the registry before
// any middleware handle exists, so a rejected group never leaks one.
func (n *Node) resolveGroup(opts EntityOptions) (*core.CallbackGroup, error) {
	if opts.CallbackGroup == nil {
		return n.defaultCallbackGroup, nil
	}
	if !n.GroupInNode(opts.CallbackGroup) {
		return nil, core.ErrGroupNotOwned
	}
	return opts.CallbackGroup, nil
}

// attach registers the entity with the resolved group and moves the matching
// counter. This is the only place counters are mutated.
func (n *Node) attach(group *core.CallbackGroup, e core.Entity) {
	group.Add(e)
	switch e.Kind() {
	case core.KindSubscription:
		n.counters.Subscriptions++
	case core.KindTimer:
		n.counters.Timers++
	case core.KindClient:
		n.counters.Clients++
	case core.KindService:
		n.counters.Services++
	}
	n.logger.Debug("entity attached", "node", n.name, "kind", e.Kind().String(), "entity", e.ID(), "group", group.ID())
}

// CreatePublisher creates a transport publisher on the node. Publishers are
// exempt from group binding: they join no callback group and increment no
// counter.
func (n *Node) CreatePublisher(topic string, ts core.TypeSupport, queueDepth int) (*Publisher, error) {
	handle, err := n.middleware.CreatePublisher(n.handle, ts, topic, queueDepth)
	if err != nil {
		return nil, err
	}
	pub := newPublisher(topic, handle)
	n.logger.Debug("publisher created", "node", n.name, "topic", topic)
	return pub, nil
}

// CreateSubscription creates a subscription bound to the target (or default)
// callback group. A group not owned by this node fails with
// core.ErrGroupNotOwned before any middleware handle is created.
func (n *Node) CreateSubscription(topic string, ts core.TypeSupport, queueDepth int, handler MessageHandler, optFns ...func(o *EntityOptions)) (*Subscription, error) {
	opts := entityOptions(optFns)
	group, err := n.resolveGroup(opts)
	if err != nil {
		return nil, err
	}
	handle, err := n.middleware.CreateSubscription(n.handle, ts, topic, queueDepth)
	if err != nil {
		return nil, err
	}
	sub := &Subscription{
		entityBase: newEntityBase(core.KindSubscription, handle),
		topic:      topic,
		queueDepth: queueDepth,
		handler:    handler,
	}
	n.attach(group, sub)
	return sub, nil
}

// CreateWallTimer creates a periodic timer bound to the target (or default)
// callback group. The period is already at nanosecond resolution.
func (n *Node) CreateWallTimer(period time.Duration, callback func(), optFns ...func(o *EntityOptions)) (*WallTimer, error) {
	opts := entityOptions(optFns)
	group, err := n.resolveGroup(opts)
	if err != nil {
		return nil, err
	}
	timer := &WallTimer{
		entityBase: newEntityBase(core.KindTimer, ""),
		period:     period,
		callback:   callback,
	}
	n.attach(group, timer)
	return timer, nil
}

// CreateWallTimerSeconds is CreateWallTimer for fractional-second periods,
// truncated to nanosecond resolution.
func (n *Node) CreateWallTimerSeconds(seconds float64, callback func(), optFns ...func(o *EntityOptions)) (*WallTimer, error) {
	return n.CreateWallTimer(time.Duration(seconds*float64(time.Second)), callback, optFns...)
}

// CreateClient creates a service client bound to the target (or default)
// callback group.
func (n *Node) CreateClient(serviceName string, ts core.TypeSupport, optFns ...func(o *EntityOptions)) (*Client, error) {
	opts := entityOptions(optFns)
	group, err := n.resolveGroup(opts)
	if err != nil {
		return nil, err
	}
	handle, err := n.middleware.CreateClient(n.handle, ts, serviceName)
	if err != nil {
		return nil, err
	}
	cli := &Client{
		entityBase:  newEntityBase(core.KindClient, handle),
		serviceName: serviceName,
	}
	n.attach(group, cli)
	return cli, nil
}

// CreateService creates a service server bound to the target (or default)
// callback group.
func (n *Node) CreateService(serviceName string, ts core.TypeSupport, handler ServiceHandler, optFns ...func(o *EntityOptions)) (*Service, error) {
	opts := entityOptions(optFns)
	group, err := n.resolveGroup(opts)
	if err != nil {
		return nil, err
	}
	handle, err := n.middleware.CreateService(n.handle, ts, serviceName)
	if err != nil {
		return nil, err
	}
	srv := &Service{
		entityBase:  newEntityBase(core.KindService, handle),
		serviceName: serviceName,
		handler:     handler,
	}
	n.attach(group, srv)
	return srv, nil
}

func entityOptions(optFns []func(o *EntityOptions)) EntityOptions {
	var opts EntityOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// SetParameters applies each parameter independently, returning one result
// per input in input order.
func (n *Node) SetParameters(params ...param.Parameter) []param.SetResult {
	results := n.store.Set(params...)
	n.logger.Debug("parameters set", "node", n.name, "count", len(params))
	return results
}

// SetParametersAtomically applies the batch all-or-nothing.
func (n *Node) SetParametersAtomically(params ...param.Parameter) param.SetResult {
	result := n.store.SetAtomically(params...)
	n.logger.Debug("parameters set atomically", "node", n.name, "count", len(params))
	return result
}

// GetParameters returns the stored value of every requested name that is
// set; unknown names are silently omitted.
func (n *Node) GetParameters(names ...string) []param.Parameter {
	return n.store.Get(names...)
}

// GetParameterTypes returns one type per requested name, aligned with the
// request, with param.ParameterNotSet for unset names.
func (n *Node) GetParameterTypes(names ...string) []param.ParameterType {
	return n.store.GetTypes(names...)
}

// DescribeParameters returns a descriptor for every requested name that is
// set.
func (n *Node) DescribeParameters(names ...string) []param.Descriptor {
	return n.store.Describe(names...)
}

// ListParameters queries the dot-separated parameter namespace by prefix and
// relative depth.
func (n *Node) ListParameters(prefixes []string, depth uint64) []param.ListResult {
	return n.store.List(prefixes, depth)
}

// LoadParameterFile reads a YAML parameter file and applies it atomically.
func (n *Node) LoadParameterFile(path string) error {
	params, err := param.LoadFile(path)
	if err != nil {
		return err
	}
	n.store.SetAtomically(params...)
	n.logger.Debug("parameter file loaded", "node", n.name, "path", path, "count", len(params))
	return nil
}

// ParameterStore returns the node's parameter store, e.g. to hand it to a
// param.Watcher for hot reload.
func (n *Node) ParameterStore() *param.Store { return n.store }
