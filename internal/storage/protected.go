package storage

import (
	"context"
	"errors"
	"sync"
	"time"
)

type ProtectedConfig struct {
	Timeout          time.Duration // hard timeout per call
	FailureThreshold int           // consecutive failures to open circuit
	Cooldown         time.Duration // how long to stay open before half-open
	HalfOpenMaxCalls int           // allow N trial calls in half-open

	// OnStateChange, when set, receives every new breaker state. It is
	// called outside the breaker's lock.
	OnStateChange func(state string)
}

const (
	stateClosed   = "closed"
	stateOpen     = "open"
	stateHalfOpen = "half_open"
)

// ProtectedBackend fails fast once the wrapped backend keeps erroring,
// so a dead store costs callers nothing until the cooldown passes.
type ProtectedBackend struct {
	inner Backend
	cfg   ProtectedConfig
	now   func() time.Time

	mu                  sync.Mutex
	state               string
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
}

func NewProtectedBackend(inner Backend, cfg ProtectedConfig) *ProtectedBackend {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &ProtectedBackend{
		inner: inner,
		cfg:   cfg,
		now:   time.Now,
		state: stateClosed,
	}
}

func (p *ProtectedBackend) Load(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := p.call(ctx, func(ctx context.Context) error {
		v, err := p.inner.Load(ctx, key)
		out = v
		return err
	})
	return out, err
}

func (p *ProtectedBackend) Save(ctx context.Context, key string, value []byte) error {
	return p.call(ctx, func(ctx context.Context) error {
		return p.inner.Save(ctx, key, value)
	})
}

func (p *ProtectedBackend) Delete(ctx context.Context, key string) error {
	return p.call(ctx, func(ctx context.Context) error {
		return p.inner.Delete(ctx, key)
	})
}

// Ping bypasses the breaker so readiness reflects the real backend.
func (p *ProtectedBackend) Ping(ctx context.Context) error {
	return p.inner.Ping(ctx)
}

// State reports "closed", "open" or "half_open".
func (p *ProtectedBackend) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *ProtectedBackend) call(ctx context.Context, fn func(context.Context) error) error {
	allowed, changed := p.allowRequest()
	p.notify(changed)
	if !allowed {
		return ErrCircuitOpen
	}

	callCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	err := fn(callCtx)
	// the caller gave up; that says nothing about the backend
	p.notify(p.afterRequest(err, ctx.Err() != nil))
	return err
}

func (p *ProtectedBackend) notify(state string) {
	if state != "" && p.cfg.OnStateChange != nil {
		p.cfg.OnStateChange(state)
	}
}

// setState moves the breaker to state and returns it, or "" when nothing
// changed. Callers hold p.mu.
func (p *ProtectedBackend) setState(state string) string {
	if p.state == state {
		return ""
	}
	p.state = state
	return state
}

func (p *ProtectedBackend) allowRequest() (bool, string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case stateOpen:
		if p.now().Sub(p.openedAt) >= p.cfg.Cooldown {
			p.halfOpenInFlight = 1
			return true, p.setState(stateHalfOpen)
		}
		return false, ""
	case stateHalfOpen:
		if p.halfOpenInFlight >= p.cfg.HalfOpenMaxCalls {
			return false, ""
		}
		p.halfOpenInFlight++
		return true, ""
	default:
		return true, ""
	}
}

func (p *ProtectedBackend) afterRequest(err error, callerDone bool) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateHalfOpen && p.halfOpenInFlight > 0 {
		p.halfOpenInFlight--
	}

	if err != nil && callerDone {
		return ""
	}

	// a missing key is an answer, not an outage
	if err == nil || errors.Is(err, ErrNotFound) {
		p.consecutiveFailures = 0
		return p.setState(stateClosed)
	}

	p.consecutiveFailures++

	if p.state == stateHalfOpen || p.consecutiveFailures >= p.cfg.FailureThreshold {
		p.openedAt = p.now()
		return p.setState(stateOpen)
	}
	return ""
}
