package edgebridge

import (
	"context"
	"net/http"
	"net/url"
)

// BridgeRequest is the fetch-style request handed to the application. It is
// constructed fresh per host request and owned by the bridge until the handler
// receives it.
type BridgeRequest struct {
	Method string
	URL    *url.URL
	Header *Headers

	// Body holds the fully drained request body, or nil when the request
	// carries none. GET and HEAD requests never carry a body.
	Body []byte

	ctx    context.Context
	cancel context.CancelFunc
}

// Context returns the request's cancellation context. It derives from the host
// request context, so it is canceled when the client connection closes.
func (r *BridgeRequest) Context() context.Context {
	return r.ctx
}

// requestURL rebuilds the absolute URL the client addressed. Proxies in front
// of the host strip scheme and host from the request line, so they are
// recovered from the forwarded headers, falling back to the plain Host header
// and finally to https://localhost. It never fails: whatever arrives, the
// result is a syntactically valid absolute URL.
func requestURL(r *http.Request) *url.URL {
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		proto = "https"
	}

	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	if host == "" {
		host = "localhost"
	}

	return &url.URL{
		Scheme:   proto,
		Host:     host,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
	}
}

// newBridgeRequest translates a host request into the bridge representation:
// absolute URL, multi-value headers, drained body, and a dedicated
// cancellation signal derived from the host connection.
func newBridgeRequest(r *http.Request, u *url.URL) (*BridgeRequest, error) {
	body, err := readBody(r)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(r.Context())
	return &BridgeRequest{
		Method: r.Method,
		URL:    u,
		Header: headersFromHost(r.Header),
		Body:   body,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}
