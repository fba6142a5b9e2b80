package edgebridge

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLoader_Memoizes(t *testing.T) {
	var loads int32
	l := newLoader("build/server/app.wasm", "production", zap.NewNop())
	l.loadfn = func(string) (*Build, error) {
		atomic.AddInt32(&loads, 1)
		return &Build{}, nil
	}

	first, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Error("expected the identical build instance")
	}
	if loads != 1 {
		t.Errorf("expected 1 load, got %d", loads)
	}
}

func TestLoader_SingleFlight(t *testing.T) {
	var loads int32
	l := newLoader("build/server/app.wasm", "production", zap.NewNop())
	l.loadfn = func(string) (*Build, error) {
		atomic.AddInt32(&loads, 1)
		time.Sleep(10 * time.Millisecond)
		return &Build{}, nil
	}

	const callers = 16
	builds := make([]*Build, callers)
	var wg sync.WaitGroup
	for n := 0; n < callers; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			builds[n], _ = l.Load()
		}(n)
	}
	wg.Wait()

	if loads != 1 {
		t.Errorf("concurrent first loads triggered %d loads", loads)
	}
	for n := 1; n < callers; n++ {
		if builds[n] != builds[0] {
			t.Fatal("concurrent callers observed different build instances")
		}
	}
}

func TestLoader_MemoizesError(t *testing.T) {
	var loads int32
	l := newLoader("missing.wasm", "production", zap.NewNop())
	l.loadfn = func(string) (*Build, error) {
		atomic.AddInt32(&loads, 1)
		return nil, errors.New("no such build")
	}

	if _, err := l.Load(); err == nil {
		t.Fatal("expected load error")
	}
	if _, err := l.Load(); err == nil {
		t.Fatal("expected memoized load error")
	}
	if loads != 1 {
		t.Errorf("failed load retried, got %d loads", loads)
	}
	if _, err := l.Handler(); err == nil {
		t.Fatal("expected handler derivation to surface the load error")
	}
}

func TestLoader_HandlerIdentity(t *testing.T) {
	l := newLoader("build/server/app.wasm", "production", zap.NewNop())
	l.loadfn = func(string) (*Build, error) { return &Build{}, nil }

	first, err := l.Handler()
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.Handler()
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("expected the identical handler instance")
	}
}
