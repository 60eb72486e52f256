package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeBackend struct {
	loadFn func(ctx context.Context, key string) ([]byte, error)
	calls  int
}

func (f *fakeBackend) Load(ctx context.Context, key string) ([]byte, error) {
	f.calls++
	if f.loadFn != nil {
		return f.loadFn(ctx, key)
	}
	return nil, nil
}

func (f *fakeBackend) Save(ctx context.Context, key string, value []byte) error { return nil }

func (f *fakeBackend) Delete(ctx context.Context, key string) error { return nil }

func (f *fakeBackend) Ping(ctx context.Context) error { return nil }

func TestProtectedBackendOpensAndRecovers(t *testing.T) {
	down := errors.New("connection refused")
	healthy := false

	inner := &fakeBackend{loadFn: func(ctx context.Context, key string) ([]byte, error) {
		if healthy {
			return []byte("ok"), nil
		}
		return nil, down
	}}

	clock := time.Unix(0, 0)
	p := NewProtectedBackend(inner, ProtectedConfig{FailureThreshold: 2, Cooldown: time.Minute})
	p.now = func() time.Time { return clock }

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := p.Load(ctx, "k"); !errors.Is(err, down) {
			t.Fatalf("call %d: expected backend error, got %v", i, err)
		}
	}
	if p.State() != stateOpen {
		t.Fatalf("expected open after threshold, got %s", p.State())
	}

	if _, err := p.Load(ctx, "k"); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("open circuit must not reach the backend, calls=%d", inner.calls)
	}

	clock = clock.Add(time.Minute)
	healthy = true

	got, err := p.Load(ctx, "k")
	if err != nil || string(got) != "ok" {
		t.Fatalf("half-open trial failed: %q, %v", got, err)
	}
	if p.State() != stateClosed {
		t.Fatalf("expected closed after successful trial, got %s", p.State())
	}
}

func TestProtectedBackendHalfOpenFailureReopens(t *testing.T) {
	down := errors.New("timeout")
	inner := &fakeBackend{loadFn: func(ctx context.Context, key string) ([]byte, error) {
		return nil, down
	}}

	clock := time.Unix(0, 0)
	p := NewProtectedBackend(inner, ProtectedConfig{FailureThreshold: 1, Cooldown: time.Second})
	p.now = func() time.Time { return clock }

	p.Load(context.Background(), "k")
	clock = clock.Add(time.Second)

	if _, err := p.Load(context.Background(), "k"); !errors.Is(err, down) {
		t.Fatalf("expected trial call to reach backend, got %v", err)
	}
	if p.State() != stateOpen {
		t.Fatalf("expected reopen after failed trial, got %s", p.State())
	}
}

func TestProtectedBackendNotFoundIsNotAFailure(t *testing.T) {
	inner := &fakeBackend{loadFn: func(ctx context.Context, key string) ([]byte, error) {
		return nil, ErrNotFound
	}}
	p := NewProtectedBackend(inner, ProtectedConfig{FailureThreshold: 1})

	for i := 0; i < 3; i++ {
		if _, err := p.Load(context.Background(), "k"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
	if p.State() != stateClosed {
		t.Fatalf("missing keys must not open the circuit")
	}
}

func TestProtectedBackendIgnoresCallerCancellation(t *testing.T) {
	inner := &fakeBackend{loadFn: func(ctx context.Context, key string) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []byte("ok"), nil
	}}
	p := NewProtectedBackend(inner, ProtectedConfig{FailureThreshold: 3})

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 3; i++ {
		if _, err := p.Load(cancelled, "k"); !errors.Is(err, context.Canceled) {
			t.Fatalf("call %d: expected context.Canceled, got %v", i, err)
		}
	}
	if p.State() != stateClosed {
		t.Fatalf("caller cancellations must not open the circuit, got %s", p.State())
	}

	if got, err := p.Load(context.Background(), "other"); err != nil || string(got) != "ok" {
		t.Fatalf("healthy caller rejected: %q, %v", got, err)
	}
}

func TestProtectedBackendCountsOwnTimeout(t *testing.T) {
	inner := &fakeBackend{loadFn: func(ctx context.Context, key string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	p := NewProtectedBackend(inner, ProtectedConfig{FailureThreshold: 1, Timeout: time.Millisecond})

	if _, err := p.Load(context.Background(), "k"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if p.State() != stateOpen {
		t.Fatalf("a backend that outlives the call timeout is a failure, got %s", p.State())
	}
}

func TestProtectedBackendReportsStateChanges(t *testing.T) {
	healthy := false
	inner := &fakeBackend{loadFn: func(ctx context.Context, key string) ([]byte, error) {
		if healthy {
			return nil, nil
		}
		return nil, errors.New("connection refused")
	}}

	var states []string
	clock := time.Unix(0, 0)
	p := NewProtectedBackend(inner, ProtectedConfig{
		FailureThreshold: 1,
		Cooldown:         time.Second,
		OnStateChange:    func(state string) { states = append(states, state) },
	})
	p.now = func() time.Time { return clock }

	p.Load(context.Background(), "k")
	p.Load(context.Background(), "k")
	clock = clock.Add(time.Second)
	healthy = true
	p.Load(context.Background(), "k")

	want := []string{stateOpen, stateHalfOpen, stateClosed}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("states = %v, want %v", states, want)
		}
	}
}

type recordingObserver struct {
	ops []string
}

func (r *recordingObserver) ObserveSlot(backend, op string, fn func() error) error {
	r.ops = append(r.ops, backend+"."+op)
	return fn()
}

func TestInstrumentReportsOperations(t *testing.T) {
	obs := &recordingObserver{}
	b := Instrument(NewMemoryBackend(), "memory", obs)
	ctx := context.Background()

	b.Save(ctx, "k", []byte("v"))
	b.Load(ctx, "k")
	b.Delete(ctx, "k")

	want := []string{"memory.save", "memory.load", "memory.delete"}
	if len(obs.ops) != len(want) {
		t.Fatalf("got %v, want %v", obs.ops, want)
	}
	for i := range want {
		if obs.ops[i] != want[i] {
			t.Fatalf("got %v, want %v", obs.ops, want)
		}
	}

	if Instrument(NewMemoryBackend(), "memory", nil) == nil {
		t.Fatalf("nil observer should return the backend itself")
	}
}
