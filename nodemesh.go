// Package nodemesh provides a high-level façade over the node coordination
// core: callback group management, entity binding and the node-local
// hierarchical parameter store. Most applications interact with this package
// by:
//  1. Creating a node via New() (optionally overriding context, middleware or logger)
//  2. Creating entities (publishers, subscriptions, timers, clients, services),
//     grouping them into callback groups for an external executor
//  3. Reading, writing and listing parameters through the node's parameter API
//
// The façade delegates composition to node.Node while keeping setup
// ergonomics concise. All defaults are safe for local development and
// testing: an in-process middleware, the process default context and a no-op
// logger. Production deployments typically supply a transport-backed
// middleware and a structured logger.
package nodemesh

import (
	"github.com/hupe1980/nodemesh/core"
	"github.com/hupe1980/nodemesh/logging"
	"github.com/hupe1980/nodemesh/middleware"
	"github.com/hupe1980/nodemesh/node"
)

// Options configures node construction through the façade.
type Options struct {
	// Context is the execution/domain scope. Defaults to the process-wide
	// default context.
	Context *core.Context

	// Middleware performs transport-level entity creation. Defaults to an
	// in-process implementation.
	Middleware core.Middleware

	// Logger defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// New creates a node with optional overrides. Any unset collaborator is
// initialized with a local default.
func New(name string, optFns ...func(o *Options)) (*node.Node, error) {
	opts := Options{
		Middleware: middleware.NewInProcess(),
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Context == nil {
		opts.Context = core.DefaultContext()
	}

	return node.New(name, func(o *node.Options) {
		o.Context = opts.Context
		o.Middleware = opts.Middleware
		o.Logger = opts.Logger
	})
}
