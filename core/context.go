package core

import (
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
)

// ContextConfig configures an execution context. Fields are sourced from the
// environment when the context is built via NewContextFromEnv.
type ContextConfig struct {
	// DomainID partitions nodes into isolated communication domains. Nodes
	// only discover peers sharing their domain.
	DomainID int `env:"NODEMESH_DOMAIN_ID" envDefault:"0"`
}

// Context is an opaque execution/domain scope shared by a set of nodes.
// Contexts are immutable after construction and safe for concurrent use.
type Context struct {
	id       string
	domainID int
}

// NewContext constructs a context with optional configuration overrides.
func NewContext(optFns ...func(c *ContextConfig)) *Context {
	cfg := ContextConfig{}
	for _, fn := range optFns {
		fn(&cfg)
	}
	return &Context{id: uuid.NewString(), domainID: cfg.DomainID}
}

// NewContextFromEnv constructs a context configured from environment
// variables (NODEMESH_* prefix).
func NewContextFromEnv() (*Context, error) {
	var cfg ContextConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse context env: %w", err)
	}
	return &Context{id: uuid.NewString(), domainID: cfg.DomainID}, nil
}

// ID returns the stable unique identifier of the context.
func (c *Context) ID() string { return c.id }

// DomainID returns the communication domain of the context.
func (c *Context) DomainID() int { return c.domainID }

var (
	defaultMu      sync.Mutex
	defaultContext *Context
)

// DefaultContext returns the process-wide default context, constructing it
// lazily from the environment on first use. A malformed environment falls
// back to zero-value configuration rather than failing; callers needing
// strict validation should build their context via NewContextFromEnv.
func DefaultContext() *Context {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultContext == nil {
		ctx, err := NewContextFromEnv()
		if err != nil {
			ctx = NewContext()
		}
		defaultContext = ctx
	}
	return defaultContext
}

// SetDefaultContext replaces the process-wide default context. Passing nil
// resets it so the next DefaultContext call constructs a fresh one; tests use
// this to substitute an isolated context per case.
func SetDefaultContext(ctx *Context) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultContext = ctx
}
