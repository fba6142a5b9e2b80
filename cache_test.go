package edgebridge

import (
	"testing"
	"time"
)

func cachedResponse(cacheControl, body string) *BridgeResponse {
	resp := &BridgeResponse{StatusCode: 200, Header: NewHeaders(), Body: []byte(body)}
	if cacheControl != "" {
		resp.Header.Set("Cache-Control", cacheControl)
	}
	return resp
}

func TestMemoryCache_PutAndMatch(t *testing.T) {
	c := NewMemoryCache()

	if err := c.Put("k", cachedResponse("", "hello")); err != nil {
		t.Fatal(err)
	}

	got, ok := c.Match("k")
	if !ok {
		t.Fatal("expected a hit")
	}
	if string(got.Body) != "hello" {
		t.Errorf("body = %q", got.Body)
	}

	// The cached copy is independent of what the caller mutates.
	got.Body[0] = 'X'
	again, _ := c.Match("k")
	if string(again.Body) != "hello" {
		t.Errorf("cache entry was mutated through a match result: %q", again.Body)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache()
	_ = c.Put("k", cachedResponse("", "v"))

	if !c.Delete("k") {
		t.Error("expected delete to report existing entry")
	}
	if c.Delete("k") {
		t.Error("expected second delete to report not found")
	}
	if _, ok := c.Match("k"); ok {
		t.Error("expected entry gone")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	_ = c.Put("k", cachedResponse("public, max-age=60", "v"))

	// Backdate the entry past its max-age.
	c.mu.Lock()
	c.entries["k"].inserted = time.Now().Add(-2 * time.Minute)
	c.mu.Unlock()

	if _, ok := c.Match("k"); ok {
		t.Error("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry dropped, len = %d", c.Len())
	}
}

func TestMaxAge(t *testing.T) {
	cases := []struct {
		cc   string
		want time.Duration
	}{
		{"", 0},
		{"no-store", 0},
		{"max-age=31536000", 31536000 * time.Second},
		{"public, max-age=60, immutable", 60 * time.Second},
		{"max-age=bogus", 0},
	}
	for _, tc := range cases {
		if got := maxAge(cachedResponse(tc.cc, "")); got != tc.want {
			t.Errorf("maxAge(%q) = %v, want %v", tc.cc, got, tc.want)
		}
	}
}
