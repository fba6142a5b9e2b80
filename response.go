package edgebridge

import (
	"fmt"
	"io"
	"net/http"
)

// BridgeResponse is the fetch-style response produced by the application. It
// is consumed exactly once by the response writer.
type BridgeResponse struct {
	StatusCode int
	Header     *Headers

	// Body holds a buffered body. BodyStream may be set instead, in which
	// case the writer buffers it fully before anything reaches the host
	// connection; there is no streaming passthrough.
	Body       []byte
	BodyStream io.Reader
}

// buffer materializes BodyStream into Body. It runs before anything reaches
// the host connection, so a failing stream can still become the generic error
// response.
func (r *BridgeResponse) buffer() error {
	if r.BodyStream == nil {
		return nil
	}
	body, err := io.ReadAll(r.BodyStream)
	if err != nil {
		return fmt.Errorf("buffering response body: %w", err)
	}
	r.Body = body
	r.BodyStream = nil
	return nil
}

// writeResponse copies a bridge response onto the host response: status
// verbatim, headers through the inverse translation, body fully buffered.
func writeResponse(w http.ResponseWriter, resp *BridgeResponse) error {
	if err := resp.buffer(); err != nil {
		return err
	}
	body := resp.Body

	if resp.Header != nil {
		resp.Header.writeToHost(w.Header())
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if len(body) > 0 {
		if _, err := w.Write(body); err != nil {
			return fmt.Errorf("writing response body: %w", err)
		}
	}
	return nil
}

// writeServerError writes the fixed generic error response. No internal
// detail ever reaches the client; the full error goes to the operator log.
func writeServerError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = io.WriteString(w, "Internal Server Error")
}
