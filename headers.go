package edgebridge

import (
	"net/http"
	"net/textproto"
	"sort"
)

// Headers is the multi-value header container carried by bridge requests and
// responses. Unlike http.Header it preserves entry order and multiplicity: a
// key appended N times holds exactly N entries, in append order. Names are
// canonicalized, so lookups are case-insensitive.
type Headers struct {
	entries []headerEntry
}

type headerEntry struct {
	name  string
	value string
}

// NewHeaders returns an empty header container.
func NewHeaders() *Headers {
	return &Headers{}
}

// Append adds a new entry for name, keeping any existing entries.
func (h *Headers) Append(name, value string) {
	h.entries = append(h.entries, headerEntry{canonical(name), value})
}

// Set replaces every existing entry for name with a single entry.
func (h *Headers) Set(name, value string) {
	name = canonical(name)
	kept := h.entries[:0]
	for _, e := range h.entries {
		if e.name != name {
			kept = append(kept, e)
		}
	}
	h.entries = append(kept, headerEntry{name, value})
}

// Get returns the first value for name, or the empty string.
func (h *Headers) Get(name string) string {
	name = canonical(name)
	for _, e := range h.entries {
		if e.name == name {
			return e.value
		}
	}
	return ""
}

// Values returns every value for name, in entry order.
func (h *Headers) Values(name string) []string {
	name = canonical(name)
	var values []string
	for _, e := range h.entries {
		if e.name == name {
			values = append(values, e.value)
		}
	}
	return values
}

// Names returns the distinct header names in first-seen order.
func (h *Headers) Names() []string {
	var names []string
	seen := map[string]bool{}
	for _, e := range h.entries {
		if !seen[e.name] {
			seen[e.name] = true
			names = append(names, e.name)
		}
	}
	return names
}

// Len returns the total number of entries.
func (h *Headers) Len() int {
	return len(h.entries)
}

// Each calls fn for every entry, in order.
func (h *Headers) Each(fn func(name, value string)) {
	for _, e := range h.entries {
		fn(e.name, e.value)
	}
}

// Clone returns a deep copy.
func (h *Headers) Clone() *Headers {
	c := &Headers{entries: make([]headerEntry, len(h.entries))}
	copy(c.entries, h.entries)
	return c
}

func canonical(name string) string {
	return textproto.CanonicalMIMEHeaderKey(name)
}

// headersFromHost translates the host's header mapping into a bridge header
// container. A key with multiple values appends one entry per value, in order,
// which matters for semantically multi-valued headers like cookies. A key with
// a single value sets it once. Empty values are skipped.
//
// The Go http implementation doesn't preserve the original header order, so we
// use sorted key order to keep the translation deterministic.
func headersFromHost(src http.Header) *Headers {
	names := make([]string, 0, len(src))
	for name := range src {
		names = append(names, name)
	}
	sort.Strings(names)

	h := NewHeaders()
	for _, name := range names {
		values := src[name]
		switch {
		case len(values) == 0:
			continue
		case len(values) == 1:
			if values[0] == "" {
				continue
			}
			h.Set(name, values[0])
		default:
			for _, v := range values {
				h.Append(name, v)
			}
		}
	}
	return h
}

// writeToHost copies the container onto a host header mapping. The first
// occurrence of a key replaces whatever the host already had; every later
// occurrence coalesces into the key's value list. This is the inverse of the
// request-direction transform.
func (h *Headers) writeToHost(dst http.Header) {
	seen := map[string]bool{}
	for _, e := range h.entries {
		if seen[e.name] {
			dst.Add(e.name, e.value)
		} else {
			seen[e.name] = true
			dst.Set(e.name, e.value)
		}
	}
}
