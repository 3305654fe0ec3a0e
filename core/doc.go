// Package core provides the foundational domain types and interfaces used by
// nodemesh. It defines the core abstractions for:
//
//   - Entities (the sealed capability callback groups need: identity, kind, liveness)
//   - Callback groups (dispatch-exclusivity buckets over entities)
//   - Execution contexts (domain scoping with an injectable process default)
//   - The Middleware collaborator interface for transport-level creation
//
// The package intentionally keeps implementation concerns (node composition,
// parameter storage, concrete middleware backends) out of scope, exposing
// small interfaces to enable custom backends and extensions.
package core
