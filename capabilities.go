package edgebridge

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

// Environment exposes named variable reads against the process environment.
// It deliberately has no way to enumerate or snapshot the full set.
type Environment interface {
	Get(name string) (string, bool)
	Has(name string) bool
}

// EnvLookupFunc adapts a lookup function into an Environment.
type EnvLookupFunc func(name string) (string, bool)

func (fn EnvLookupFunc) Get(name string) (string, bool) { return fn(name) }

func (fn EnvLookupFunc) Has(name string) bool {
	_, ok := fn(name)
	return ok
}

// ProcessEnvironment returns an Environment backed directly by the real
// process environment. Each Get is a live lookup; nothing is materialized.
func ProcessEnvironment() Environment {
	return EnvLookupFunc(os.LookupEnv)
}

// EmptyEnvironment returns an Environment with no variables, used when no
// process environment is available.
func EmptyEnvironment() Environment {
	return EnvLookupFunc(func(string) (string, bool) { return "", false })
}

// ExecutionContext carries the hooks the application uses to schedule work
// that outlives its response.
type ExecutionContext struct {
	log   *zap.Logger
	wg    sync.WaitGroup
	props map[string]any
}

func newExecutionContext(log *zap.Logger) *ExecutionContext {
	return &ExecutionContext{log: log, props: map[string]any{}}
}

// WaitUntil runs op in the background. A failure is logged and never affects
// the response, which may already be on the wire.
func (c *ExecutionContext) WaitUntil(op func() error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := op(); err != nil {
			c.log.Error("background operation failed", zap.Error(err))
		}
	}()
}

// PassThroughOnException is a no-op; it exists because applications call it.
func (c *ExecutionContext) PassThroughOnException() {}

// Props returns the auxiliary property bag. It is always empty.
func (c *ExecutionContext) Props() map[string]any { return c.props }

// Wait blocks until every background operation has completed.
func (c *ExecutionContext) Wait() { c.wg.Wait() }

// Cache is the cache storage the capability bundle carries.
type Cache interface {
	// Match reports the cached response for key, if any.
	Match(key string) (*BridgeResponse, bool)
	// Put stores a response under key.
	Put(key string, resp *BridgeResponse) error
	// Delete removes key, reporting whether it existed.
	Delete(key string) bool
}

// NullCache returns the fallback cache used when the host process exposes no
// native cache: match never finds, put succeeds with no effect, delete never
// finds. Cache-dependent application code stays functional; caching is inert.
func NullCache() Cache {
	return nullCache{}
}

type nullCache struct{}

func (nullCache) Match(string) (*BridgeResponse, bool) { return nil, false }
func (nullCache) Put(string, *BridgeResponse) error    { return nil }
func (nullCache) Delete(string) bool                   { return false }

// CapabilityBundle is the set of services handed to the application alongside
// each bridge request. The execution context is fresh per request; the cache
// may be a process-wide instance.
type CapabilityBundle struct {
	Env   Environment
	Ctx   *ExecutionContext
	Cache Cache
}
