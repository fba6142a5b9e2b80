package edgebridge_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Kwixotic/edgebridge"
)

// newTestBridge builds a bridge around a native handler and a temp asset dir.
func newTestBridge(t *testing.T, h edgebridge.Handler) (*edgebridge.Bridge, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "build"), 0o755); err != nil {
		t.Fatal(err)
	}
	b := edgebridge.New(
		edgebridge.WithHandler(h),
		edgebridge.WithAssetDir(dir),
	)
	return b, dir
}

func TestBridge_StaticAsset(t *testing.T) {
	b, dir := newTestBridge(t, failingHandler(t))

	content := []byte("0123456789")
	if err := os.WriteFile(filepath.Join(dir, "build", "app.js"), content, 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("get", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "http://localhost/build/app.js", nil)
		b.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d", w.Code)
		}
		if !bytes.Equal(w.Body.Bytes(), content) {
			t.Errorf("body = %q", w.Body.Bytes())
		}
		if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=31536000, immutable" {
			t.Errorf("cache-control = %q", cc)
		}
	})

	t.Run("head", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("HEAD", "http://localhost/build/app.js", nil)
		b.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d", w.Code)
		}
		if w.Body.Len() != 0 {
			t.Errorf("HEAD body = %q", w.Body.String())
		}
	})
}

func TestBridge_MissingAssetFallsThrough(t *testing.T) {
	handled := false
	b, _ := newTestBridge(t, edgebridge.HandlerFunc(func(_ context.Context, req *edgebridge.BridgeRequest, _ *edgebridge.CapabilityBundle) (*edgebridge.BridgeResponse, error) {
		handled = true
		return textResponse(404, "app says no"), nil
	}))

	w := httptest.NewRecorder()
	b.ServeHTTP(w, httptest.NewRequest("GET", "http://localhost/build/missing.js", nil))

	if !handled {
		t.Fatal("expected the application to receive the request")
	}
	if w.Code != 404 || w.Body.String() != "app says no" {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}

func TestBridge_PostSubmit(t *testing.T) {
	var got *edgebridge.BridgeRequest
	b, _ := newTestBridge(t, edgebridge.HandlerFunc(func(_ context.Context, req *edgebridge.BridgeRequest, _ *edgebridge.CapabilityBundle) (*edgebridge.BridgeResponse, error) {
		got = req
		return textResponse(201, "created"), nil
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://localhost/submit", strings.NewReader(`{"a":1}`))
	r.Header.Set("Content-Type", "application/json")
	b.ServeHTTP(w, r)

	if w.Code != 201 {
		t.Fatalf("status = %d", w.Code)
	}
	if string(got.Body) != `{"a":1}` {
		t.Errorf("application saw body %q", got.Body)
	}
	if entries := got.Header.Values("Content-Type"); len(entries) != 1 || entries[0] != "application/json" {
		t.Errorf("application saw content-type entries %v", entries)
	}
	if got.Method != "POST" {
		t.Errorf("application saw method %q", got.Method)
	}
}

func TestBridge_HandlerErrorBecomes500(t *testing.T) {
	b, _ := newTestBridge(t, edgebridge.HandlerFunc(func(context.Context, *edgebridge.BridgeRequest, *edgebridge.CapabilityBundle) (*edgebridge.BridgeResponse, error) {
		return nil, errors.New("database exploded: credentials=hunter2")
	}))

	w := httptest.NewRecorder()
	b.ServeHTTP(w, httptest.NewRequest("POST", "http://localhost/submit", strings.NewReader(`{"a":1}`)))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
	if w.Body.String() != "Internal Server Error" {
		t.Errorf("body = %q", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "hunter2") {
		t.Error("internal detail leaked to the client")
	}
}

func TestBridge_HandlerPanicBecomes500(t *testing.T) {
	b, _ := newTestBridge(t, edgebridge.HandlerFunc(func(context.Context, *edgebridge.BridgeRequest, *edgebridge.CapabilityBundle) (*edgebridge.BridgeResponse, error) {
		panic("unexpected")
	}))

	w := httptest.NewRecorder()
	b.ServeHTTP(w, httptest.NewRequest("GET", "http://localhost/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
	if w.Body.String() != "Internal Server Error" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestBridge_ResponseHeaderMultiplicity(t *testing.T) {
	b, _ := newTestBridge(t, edgebridge.HandlerFunc(func(context.Context, *edgebridge.BridgeRequest, *edgebridge.CapabilityBundle) (*edgebridge.BridgeResponse, error) {
		resp := textResponse(200, "ok")
		resp.Header.Append("Set-Cookie", "a=1")
		resp.Header.Append("Set-Cookie", "b=2")
		return resp, nil
	}))

	w := httptest.NewRecorder()
	b.ServeHTTP(w, httptest.NewRequest("GET", "http://localhost/", nil))

	cookies := w.Header().Values("Set-Cookie")
	if len(cookies) != 2 || cookies[0] != "a=1" || cookies[1] != "b=2" {
		t.Errorf("set-cookie = %v", cookies)
	}
}

func TestBridge_CapabilityBundle(t *testing.T) {
	t.Setenv("EDGEBRIDGE_BUNDLE_VAR", "present")

	b, _ := newTestBridge(t, edgebridge.HandlerFunc(func(_ context.Context, _ *edgebridge.BridgeRequest, caps *edgebridge.CapabilityBundle) (*edgebridge.BridgeResponse, error) {
		if v, ok := caps.Env.Get("EDGEBRIDGE_BUNDLE_VAR"); !ok || v != "present" {
			t.Errorf("env accessor returned %q, %v", v, ok)
		}
		if _, ok := caps.Cache.Match("anything"); ok {
			t.Error("fallback cache should report not found")
		}
		caps.Ctx.PassThroughOnException()
		return textResponse(204, ""), nil
	}))

	w := httptest.NewRecorder()
	b.ServeHTTP(w, httptest.NewRequest("GET", "http://localhost/", nil))
	if w.Code != 204 {
		t.Errorf("status = %d", w.Code)
	}
}

func failingHandler(t *testing.T) edgebridge.Handler {
	return edgebridge.HandlerFunc(func(context.Context, *edgebridge.BridgeRequest, *edgebridge.CapabilityBundle) (*edgebridge.BridgeResponse, error) {
		t.Error("the application should not have been invoked")
		return nil, errors.New("unexpected invocation")
	})
}

func textResponse(status int, body string) *edgebridge.BridgeResponse {
	resp := &edgebridge.BridgeResponse{StatusCode: status, Header: edgebridge.NewHeaders()}
	if body != "" {
		resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
		resp.Body = []byte(body)
	}
	return resp
}
