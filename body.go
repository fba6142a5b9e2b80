package edgebridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type preparedBodyKey struct{}

// WithPreparedBody marks a request context as carrying a body already parsed
// by upstream middleware. The bridge serializes it instead of draining the raw
// stream: byte slices and strings pass through unchanged, anything else is
// JSON-encoded.
func WithPreparedBody(ctx context.Context, body any) context.Context {
	return context.WithValue(ctx, preparedBodyKey{}, body)
}

// PreparedBody reports the pre-parsed body stashed on ctx, if any.
func PreparedBody(ctx context.Context) (any, bool) {
	v := ctx.Value(preparedBodyKey{})
	return v, v != nil
}

// readBody produces the bridge request body for a host request. GET and HEAD
// never carry one, regardless of what the host supplies. Otherwise a prepared
// body takes precedence; failing that the raw stream is drained into a single
// buffer, chunks in arrival order, with the first read error aborting the
// drain. Zero bytes means no body.
func readBody(r *http.Request) ([]byte, error) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return nil, nil
	}

	if v, ok := PreparedBody(r.Context()); ok {
		return serializeBody(v)
	}

	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("draining request body: %w", err)
	}
	if len(body) == 0 {
		return nil, nil
	}
	return body, nil
}

func serializeBody(v any) ([]byte, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case json.RawMessage:
		return v, nil
	default:
		body, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding prepared body: %w", err)
		}
		return body, nil
	}
}
