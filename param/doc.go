// Package param implements the node-local hierarchical parameter store: a
// thread-safe, namespace-aware mapping from dotted string keys to typed
// values. It provides single-key and batch mutation (non-atomic and atomic),
// retrieval, type introspection, descriptor queries and hierarchical
// prefix/depth listing, plus YAML parameter file loading and hot reload.
//
// All store operations run inside one store-wide mutex; no operation can
// observe a partially applied concurrent mutation.
package param
