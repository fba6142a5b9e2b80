package edgebridge

import (
	"strings"

	"go.uber.org/zap"
)

// Bridge ABI status codes returned from host functions.
const (
	BridgeStatusOK              int32 = 0 // Success
	BridgeStatusError           int32 = 1 // Generic error
	BridgeStatusInvalidArgument int32 = 2 // Invalid argument passed
	BridgeStatusBufferTooSmall  int32 = 3 // Guest buffer too small
	BridgeStatusNotFound        int32 = 4 // No value for the given key
)

// Multi-value hostcalls join values with a NUL terminator after each element,
// so the guest can split on it regardless of trailing content.
const terminator = "\x00"

// writeGuestString copies s into the guest buffer at addr, recording the
// bytes written at nwritten_out. If the buffer cannot hold s, nothing is
// written and the guest is told to retry with a larger buffer.
func (i *instance) writeGuestString(s string, addr, maxlen, nwritten_out int32) int32 {
	if int32(len(s)) > maxlen {
		return BridgeStatusBufferTooSmall
	}
	n, err := i.memory.WriteAt([]byte(s), int64(addr))
	if err != nil {
		return BridgeStatusError
	}
	i.memory.PutUint32(uint32(n), int64(nwritten_out))
	return BridgeStatusOK
}

func (i *instance) readGuestString(addr, size int32) string {
	buf := make([]byte, size)
	_, _ = i.memory.ReadAt(buf, int64(addr))
	return string(buf)
}

func (i *instance) req_method_get(addr, maxlen, nwritten_out int32) int32 {
	return i.writeGuestString(i.req.Method, addr, maxlen, nwritten_out)
}

func (i *instance) req_uri_get(addr, maxlen, nwritten_out int32) int32 {
	return i.writeGuestString(i.req.URL.String(), addr, maxlen, nwritten_out)
}

func (i *instance) req_header_names_get(addr, maxlen, nwritten_out int32) int32 {
	names := i.req.Header.Names()
	if len(names) == 0 {
		i.memory.PutUint32(0, int64(nwritten_out))
		return BridgeStatusOK
	}
	joined := strings.Join(names, terminator) + terminator
	return i.writeGuestString(joined, addr, maxlen, nwritten_out)
}

func (i *instance) req_header_values_get(name_addr, name_size, addr, maxlen, nwritten_out int32) int32 {
	name := i.readGuestString(name_addr, name_size)
	values := i.req.Header.Values(name)
	if len(values) == 0 {
		return BridgeStatusNotFound
	}
	joined := strings.Join(values, terminator) + terminator
	return i.writeGuestString(joined, addr, maxlen, nwritten_out)
}

func (i *instance) req_body_len(len_out int32) int32 {
	i.memory.PutUint32(uint32(len(i.req.Body)), int64(len_out))
	return BridgeStatusOK
}

func (i *instance) req_body_get(addr, maxlen, nwritten_out int32) int32 {
	if len(i.req.Body) == 0 {
		i.memory.PutUint32(0, int64(nwritten_out))
		return BridgeStatusOK
	}
	return i.writeGuestString(string(i.req.Body), addr, maxlen, nwritten_out)
}

func (i *instance) resp_status_set(status int32) int32 {
	if status < 100 || status > 999 {
		return BridgeStatusInvalidArgument
	}
	i.resp.StatusCode = int(status)
	return BridgeStatusOK
}

func (i *instance) resp_header_append(name_addr, name_size, value_addr, value_size int32) int32 {
	name := i.readGuestString(name_addr, name_size)
	if name == "" {
		return BridgeStatusInvalidArgument
	}
	i.resp.Header.Append(name, i.readGuestString(value_addr, value_size))
	return BridgeStatusOK
}

func (i *instance) resp_body_write(addr, size, nwritten_out int32) int32 {
	buf := make([]byte, size)
	if _, err := i.memory.ReadAt(buf, int64(addr)); err != nil {
		return BridgeStatusError
	}
	n, err := i.respBody.Write(buf)
	if err != nil {
		return BridgeStatusError
	}
	i.memory.PutUint32(uint32(n), int64(nwritten_out))
	return BridgeStatusOK
}

func (i *instance) resp_send() int32 {
	i.sent = true
	return BridgeStatusOK
}

func (i *instance) env_get(name_addr, name_size, addr, maxlen, nwritten_out int32) int32 {
	value, ok := i.caps.Env.Get(i.readGuestString(name_addr, name_size))
	if !ok {
		return BridgeStatusNotFound
	}
	return i.writeGuestString(value, addr, maxlen, nwritten_out)
}

// env_has returns 1 or 0 rather than a status code.
func (i *instance) env_has(name_addr, name_size int32) int32 {
	if i.caps.Env.Has(i.readGuestString(name_addr, name_size)) {
		return 1
	}
	return 0
}

func (i *instance) mode_get(addr, maxlen, nwritten_out int32) int32 {
	return i.writeGuestString(i.mode, addr, maxlen, nwritten_out)
}

// cache_match surfaces the cached response body; status and headers of cached
// entries stay host-side.
func (i *instance) cache_match(key_addr, key_size, addr, maxlen, nwritten_out int32) int32 {
	resp, ok := i.caps.Cache.Match(i.readGuestString(key_addr, key_size))
	if !ok {
		return BridgeStatusNotFound
	}
	return i.writeGuestString(string(resp.Body), addr, maxlen, nwritten_out)
}

func (i *instance) cache_put(key_addr, key_size, value_addr, value_size int32) int32 {
	key := i.readGuestString(key_addr, key_size)
	body := make([]byte, value_size)
	if _, err := i.memory.ReadAt(body, int64(value_addr)); err != nil {
		return BridgeStatusError
	}
	resp := &BridgeResponse{StatusCode: 200, Header: NewHeaders(), Body: body}
	if err := i.caps.Cache.Put(key, resp); err != nil {
		return BridgeStatusError
	}
	return BridgeStatusOK
}

func (i *instance) cache_delete(key_addr, key_size int32) int32 {
	if !i.caps.Cache.Delete(i.readGuestString(key_addr, key_size)) {
		return BridgeStatusNotFound
	}
	return BridgeStatusOK
}

func (i *instance) log_write(addr, size, nwritten_out int32) int32 {
	msg := strings.TrimRight(i.readGuestString(addr, size), "\n")
	i.log.Info("application log", zap.String("message", msg))
	i.memory.PutUint32(uint32(size), int64(nwritten_out))
	return BridgeStatusOK
}
