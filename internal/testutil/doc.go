// Package testutil provides internal test helpers: a recording middleware
// that counts create calls and can inject failures, used to verify binder
// contracts (lazy handle creation, verbatim error propagation) without a real
// transport.
package testutil
