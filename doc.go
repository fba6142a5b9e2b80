// Package edgebridge runs a web application built against a fetch-style
// edge-runtime contract behind a classic Go HTTP server.
//
// It implements an http.Handler that translates each inbound request into the
// bridge request the application expects, supplies the capability bundle that
// request implicitly requires (environment accessor, execution context, cache),
// intercepts static asset requests before they reach the application, and
// copies the application's response back onto the host response.
//
// The main entry points are:
//   - New(): Creates a Bridge from functional options
//   - Bridge.ServeHTTP(): Dispatches an HTTP request through the bridge
//
// APPLICATION BUILDS
//
// The compiled application entry module is a WebAssembly program loaded from a
// fixed relative path (build/server/app.wasm by default) at most once per
// process. The load and the derived handler are both memoized behind
// once-semantics, so concurrent first requests share a single load and every
// later request observes the identical instances.
//
// Each request is handled by a fresh wasm instance, as the bridge ABI is
// designed around a single request/response pair per instance. The guest pulls
// the bridge request through req_* hostcalls, pushes its response through
// resp_* hostcalls, and reaches the capability bundle through env_*, cache_*,
// mode_get and log_write. All hostcalls use guest-provided buffers with
// nwritten-out parameters and intentionally follow C-style signatures
// (not idiomatic Go by design).
//
// A native Go Handler can be installed with WithHandler instead, in which case
// no wasm program is loaded. The dispatcher and capability bundle behave
// identically either way.
package edgebridge
