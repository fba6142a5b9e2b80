package edgebridge

import (
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// Defaults for the fixed paths the bridge reads from.
const (
	DefaultBuildPath   = "build/server/app.wasm"
	DefaultAssetPrefix = "/build/"
	DefaultAssetDir    = "public"
)

// Bridge is an http.Handler that dispatches host requests through the
// request/response bridge: static asset interception first, then translation
// into the bridge request the application expects, handler invocation, and
// translation of the result back onto the host response. Requests share no
// mutable state except the memoized build/handler and the cache.
type Bridge struct {
	buildPath   string
	mode        string
	assetPrefix string
	assetDir    string

	loader   *Loader
	handler  Handler
	assets   *AssetServer
	env      Environment
	cache    Cache
	log      *zap.Logger
	uaparser UserAgentParser
}

// New returns a Bridge ready to serve requests. The application build is not
// loaded here; the first request triggers it.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		buildPath:   DefaultBuildPath,
		mode:        defaultMode(),
		assetPrefix: DefaultAssetPrefix,
		assetDir:    DefaultAssetDir,
		env:         ProcessEnvironment(),
		cache:       NullCache(),
		log:         zap.NewNop(),
		uaparser:    defaultUserAgentParser(),
	}
	for _, o := range opts {
		o(b)
	}

	b.assets = newAssetServer(b.assetPrefix, b.assetDir, b.log)
	if b.handler == nil {
		b.loader = newLoader(b.buildPath, b.mode, b.log)
	}
	return b
}

// The runtime mode is selected by one environment variable.
func defaultMode() string {
	if mode := os.Getenv("EDGEBRIDGE_MODE"); mode != "" {
		return mode
	}
	return "production"
}

// ServeHTTP runs the full per-request sequence. Every failure inside it,
// panics included, becomes the fixed generic error response; no connection is
// left without a response, and no internal detail reaches the client.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		if v := recover(); v != nil {
			b.log.Error("request panicked",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Any("panic", v),
			)
			writeServerError(w)
		}
	}()

	u := requestURL(r)

	if resp, ok := b.assets.Resolve(r.Method, u.Path); ok {
		if err := writeResponse(w, resp); err != nil {
			b.log.Error("writing asset response", zap.Error(err))
		}
		b.access(r, resp.StatusCode, start)
		return
	}

	req, err := newBridgeRequest(r, u)
	if err != nil {
		b.fail(w, r, start, err)
		return
	}
	defer req.cancel()

	handler, err := b.requestHandler()
	if err != nil {
		b.fail(w, r, start, err)
		return
	}

	caps := &CapabilityBundle{
		Env:   b.env,
		Ctx:   newExecutionContext(b.log),
		Cache: b.cache,
	}

	resp, err := handler.Handle(req.Context(), req, caps)
	if err != nil {
		b.fail(w, r, start, err)
		return
	}

	// Buffer before touching the host response so a broken body stream can
	// still produce the generic error.
	if err := resp.buffer(); err != nil {
		b.fail(w, r, start, err)
		return
	}

	if err := writeResponse(w, resp); err != nil {
		// Headers may already be on the wire; log only.
		b.log.Error("writing response", zap.Error(err))
	}
	b.access(r, resp.StatusCode, start)
}

func (b *Bridge) requestHandler() (Handler, error) {
	if b.handler != nil {
		return b.handler, nil
	}
	return b.loader.Handler()
}

// fail converts any request-construction or application error into the fixed
// generic error response. Full detail goes to the operator log only.
func (b *Bridge) fail(w http.ResponseWriter, r *http.Request, start time.Time, err error) {
	b.log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeServerError(w)
	b.access(r, http.StatusInternalServerError, start)
}

func (b *Bridge) access(r *http.Request, status int, start time.Time) {
	ua := b.uaparser(r.Header.Get("User-Agent"))
	b.log.Info("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
		zap.String("ua_family", ua.Family),
	)
}
