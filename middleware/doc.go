// Package middleware provides an in-process implementation of the
// core.Middleware collaborator: a handle registry suitable for tests,
// examples and single-process prototypes. It performs no transport, wire
// encoding or discovery; it only mints handles and validates registration.
package middleware
