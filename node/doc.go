// Package node implements the node-local coordination layer: it binds
// communication entities (publishers, subscriptions, timers, clients,
// services) to callback groups and composes the hierarchical parameter store.
//
// A Node owns its callback group registry (one strongly-held default group
// plus weakly-held caller-created groups), a per-kind entity counter set and
// a param.Store. Actual transport creation is delegated to the
// core.Middleware collaborator; wall timers are purely node-local.
//
// The parameter API is fully synchronized. Callback group creation and entity
// creation are not: callers that create groups or entities on the same node
// from multiple goroutines must serialize those calls themselves.
package node
