package edgebridge

import (
	"go.uber.org/zap"
)

// Option is a functional option applied to a Bridge at creation time
type Option func(*Bridge)

// WithBuildPath sets the path of the compiled application entry module.
func WithBuildPath(path string) Option {
	return func(b *Bridge) {
		b.buildPath = path
	}
}

// WithMode sets the runtime mode handed to the application, overriding the
// EDGEBRIDGE_MODE environment variable.
func WithMode(mode string) Option {
	return func(b *Bridge) {
		b.mode = mode
	}
}

// WithAssetDir sets the local directory static assets are read from.
func WithAssetDir(dir string) Option {
	return func(b *Bridge) {
		b.assetDir = dir
	}
}

// WithAssetPrefix sets the URL path prefix the asset interceptor engages on.
func WithAssetPrefix(prefix string) Option {
	return func(b *Bridge) {
		b.assetPrefix = prefix
	}
}

// WithEnvironment replaces the environment accessor in the capability bundle.
// The default reads the real process environment.
func WithEnvironment(env Environment) Option {
	return func(b *Bridge) {
		b.env = env
	}
}

// WithCache installs a native cache in the capability bundle. Without one, the
// inert fallback cache is used.
func WithCache(c Cache) Option {
	return func(b *Bridge) {
		b.cache = c
	}
}

// WithLogger sets the operator-facing logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(b *Bridge) {
		b.log = log
	}
}

// WithHandler installs a native Handler instead of the wasm build loader.
// Useful for applications compiled into the host process, and for tests.
func WithHandler(h Handler) Option {
	return func(b *Bridge) {
		b.handler = h
	}
}

// WithUserAgentParser replaces the parser used to annotate access logs.
func WithUserAgentParser(fn UserAgentParser) Option {
	return func(b *Bridge) {
		b.uaparser = fn
	}
}
