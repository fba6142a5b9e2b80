package edgebridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/bytecodealliance/wasmtime-go"
	"go.uber.org/zap"
)

// Handler is the request handler derived from the application build. The
// bridge invokes it once per request with the translated request and the
// capability bundle.
type Handler interface {
	Handle(ctx context.Context, req *BridgeRequest, caps *CapabilityBundle) (*BridgeResponse, error)
}

// HandlerFunc adapts a function into a Handler.
type HandlerFunc func(ctx context.Context, req *BridgeRequest, caps *CapabilityBundle) (*BridgeResponse, error)

// Handle implements Handler.
func (fn HandlerFunc) Handle(ctx context.Context, req *BridgeRequest, caps *CapabilityBundle) (*BridgeResponse, error) {
	return fn(ctx, req, caps)
}

// Loader loads the compiled application entry module and derives its request
// handler, each exactly once per process. Both results (including a load
// error) are memoized: concurrent first requests share a single load, and
// every later request observes the identical instances.
type Loader struct {
	path string
	mode string
	log  *zap.Logger

	loadOnce sync.Once
	build    *Build
	loadErr  error

	handlerOnce sync.Once
	handler     Handler

	// loadfn is replaced in tests to observe load behavior without a
	// compiled guest on disk.
	loadfn func(path string) (*Build, error)
}

func newLoader(path, mode string, log *zap.Logger) *Loader {
	return &Loader{path: path, mode: mode, log: log, loadfn: loadBuild}
}

// Load returns the compiled build, loading it on the first call.
func (l *Loader) Load() (*Build, error) {
	l.loadOnce.Do(func() {
		l.build, l.loadErr = l.loadfn(l.path)
	})
	return l.build, l.loadErr
}

// Handler returns the request handler derived from the build, parameterized
// by the runtime mode. Derivation happens once; later calls return the same
// instance.
func (l *Loader) Handler() (Handler, error) {
	build, err := l.Load()
	if err != nil {
		return nil, err
	}
	l.handlerOnce.Do(func() {
		l.handler = build.Handler(l.mode, l.log)
	})
	return l.handler, nil
}

// Build carries the compiled wasm module, store, and WASI instance, and is
// capable of creating fresh per-request instances. Never mutated after
// creation.
type Build struct {
	// Instantiation shares the store, so it is serialized.
	mu     sync.Mutex
	store  *wasmtime.Store
	wasi   *wasmtime.WasiInstance
	module *wasmtime.Module
}

func loadBuild(path string) (*Build, error) {
	config := wasmtime.NewConfig()
	config.SetWasmMultiValue(true)

	store := wasmtime.NewStore(wasmtime.NewEngineWithConfig(config))
	module, err := wasmtime.NewModuleFromFile(store, path)
	if err != nil {
		return nil, fmt.Errorf("loading application build %s: %w", path, err)
	}

	// These options ensure the application can write to stdout/stderr
	wasicfg := wasmtime.NewWasiConfig()
	wasicfg.InheritStdout()
	wasicfg.InheritStderr()
	wasi, err := wasmtime.NewWasiInstance(store, wasicfg, "wasi_snapshot_preview1")
	if err != nil {
		return nil, fmt.Errorf("configuring wasi: %w", err)
	}

	return &Build{store: store, wasi: wasi, module: module}, nil
}

// Handler derives the build's request handler for the given runtime mode.
func (b *Build) Handler(mode string, log *zap.Logger) Handler {
	return &wasmHandler{build: b, mode: mode, log: log}
}
