package edgebridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bytecodealliance/wasmtime-go"
	"go.uber.org/zap"
)

// wasmHandler is the Handler derived from a wasm build. Each request gets a
// fresh instance, as the bridge ABI is designed around a single
// request/response pair per instance.
type wasmHandler struct {
	build *Build
	mode  string
	log   *zap.Logger
}

func (h *wasmHandler) Handle(ctx context.Context, req *BridgeRequest, caps *CapabilityBundle) (*BridgeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i, err := h.build.instantiate(h.mode, h.log, req, caps)
	if err != nil {
		return nil, err
	}
	return i.run()
}

// instance is an implementation of the bridge ABI along with a
// wasmtime.Instance configured to use it. Not safe to reuse across requests.
type instance struct {
	wasm   *wasmtime.Instance
	memory *Memory

	mode string
	log  *zap.Logger

	req  *BridgeRequest
	caps *CapabilityBundle

	resp     *BridgeResponse
	respBody bytes.Buffer
	sent     bool
}

// instantiate returns a fresh instance bound to the supplied request and
// capability bundle. Linking is per-instance: the host methods need to find
// this request's state, and the linking step is cheap enough that sharing a
// linker is not worth the overhead.
func (b *Build) instantiate(mode string, log *zap.Logger, req *BridgeRequest, caps *CapabilityBundle) (*instance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := &instance{
		mode: mode,
		log:  log,
		req:  req,
		caps: caps,
		resp: &BridgeResponse{StatusCode: http.StatusOK, Header: NewHeaders()},
	}

	linker := wasmtime.NewLinker(b.store)
	check(linker.DefineWasi(b.wasi))

	check(linker.DefineFunc("bridge", "req_method_get", i.req_method_get))
	check(linker.DefineFunc("bridge", "req_uri_get", i.req_uri_get))
	check(linker.DefineFunc("bridge", "req_header_names_get", i.req_header_names_get))
	check(linker.DefineFunc("bridge", "req_header_values_get", i.req_header_values_get))
	check(linker.DefineFunc("bridge", "req_body_len", i.req_body_len))
	check(linker.DefineFunc("bridge", "req_body_get", i.req_body_get))

	check(linker.DefineFunc("bridge", "resp_status_set", i.resp_status_set))
	check(linker.DefineFunc("bridge", "resp_header_append", i.resp_header_append))
	check(linker.DefineFunc("bridge", "resp_body_write", i.resp_body_write))
	check(linker.DefineFunc("bridge", "resp_send", i.resp_send))

	check(linker.DefineFunc("bridge", "env_get", i.env_get))
	check(linker.DefineFunc("bridge", "env_has", i.env_has))
	check(linker.DefineFunc("bridge", "mode_get", i.mode_get))
	check(linker.DefineFunc("bridge", "cache_match", i.cache_match))
	check(linker.DefineFunc("bridge", "cache_put", i.cache_put))
	check(linker.DefineFunc("bridge", "cache_delete", i.cache_delete))
	check(linker.DefineFunc("bridge", "log_write", i.log_write))

	wasm, err := linker.Instantiate(b.module)
	if err != nil {
		return nil, fmt.Errorf("instantiating application: %w", err)
	}
	i.wasm = wasm

	mem := wasm.GetExport("memory")
	if mem == nil || mem.Memory() == nil {
		return nil, errors.New("application exports no memory")
	}
	i.memory = &Memory{&wasmMemory{mem: mem.Memory()}}

	return i, nil
}

// run invokes the application entry point and returns the response it sent.
// The entry point takes no arguments; the program pulls the bridge request
// through hostcalls and must call resp_send before returning.
func (i *instance) run() (*BridgeResponse, error) {
	entry := i.wasm.GetExport("_start")
	if entry == nil || entry.Func() == nil {
		return nil, errors.New("application exports no _start entry point")
	}

	if _, err := entry.Func().Call(); err != nil {
		return nil, fmt.Errorf("application failed: %w", err)
	}
	if !i.sent {
		return nil, errors.New("application completed without sending a response")
	}

	i.resp.Body = i.respBody.Bytes()
	return i.resp, nil
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}
