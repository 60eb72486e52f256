package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/geocoder89/campushub/internal/auth"
	"github.com/geocoder89/campushub/internal/domain/identity"
	"github.com/geocoder89/campushub/internal/storage"
)

// Authenticator resolves a login to an identity. It returns
// ErrInvalidCredentials for an unknown email or wrong password.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (identity.Identity, error)
}

type ProviderLookup interface {
	Get(name string) (auth.ExternalProvider, error)
}

// Metrics receives one observation per store operation.
type Metrics interface {
	ObserveSessionOp(op, result string, elapsed time.Duration)
}

type Config struct {
	Slot          storage.Slot
	Authenticator Authenticator
	Providers     ProviderLookup

	// Delay is waited before every login, signup and external sign-in to
	// model a remote call. Zero disables it.
	Delay time.Duration
	Wait  func(ctx context.Context, d time.Duration) error
	Now   func() time.Time

	Logger  *slog.Logger
	Metrics Metrics
}

// Store is the single authority for who is signed in on one device. Every
// change is written through to its durable slot.
type Store struct {
	slot      storage.Slot
	authn     Authenticator
	providers ProviderLookup
	delay     time.Duration
	wait      func(ctx context.Context, d time.Duration) error
	now       func() time.Time
	log       *slog.Logger
	metrics   Metrics

	mu           sync.Mutex
	current      *identity.Identity
	initializing bool
	degraded     bool

	// restorePending is set while the slot could not be read and no
	// sign-in or logout has replaced what it holds.
	restorePending bool
}

// Snapshot is a consistent view of a store's state.
type Snapshot struct {
	User          *identity.Identity `json:"user"`
	Authenticated bool               `json:"authenticated"`
	Initializing  bool               `json:"initializing"`
	Degraded      bool               `json:"degraded"`
}

func NewStore(cfg Config) *Store {
	s := &Store{
		slot:         cfg.Slot,
		authn:        cfg.Authenticator,
		providers:    cfg.Providers,
		delay:        cfg.Delay,
		wait:         cfg.Wait,
		now:          cfg.Now,
		log:          cfg.Logger,
		metrics:      cfg.Metrics,
		initializing: true,
	}
	if s.slot == nil {
		s.slot = storage.Bind(storage.NewMemoryBackend(), "session")
	}
	if s.authn == nil {
		s.authn = auth.NewSeedDirectory("")
	}
	if s.providers == nil {
		s.providers = auth.NewRegistry(auth.NewDemoGoogleProvider())
	}
	if s.wait == nil {
		s.wait = Sleep
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Initialize restores the identity persisted in the slot. The first call
// reads storage. Later calls read it again only while an earlier read
// failed and nobody has signed in or out since; otherwise they return nil.
//
// An absent slot leaves the store anonymous. A slot that cannot be read
// marks the store degraded and returns ErrStorageUnavailable. A slot that
// does not hold a valid identity is cleared and ErrMalformedSessionData is
// returned. The store is usable, and anonymous, in both failure cases.
func (s *Store) Initialize(ctx context.Context) (err error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initializing && !s.restorePending {
		return nil
	}

	op := "initialize"
	if !s.initializing {
		op = "restore_retry"
	}
	defer func() {
		s.initializing = false
		s.observe(op, err, start)
	}()

	return s.restore(ctx)
}

// restore reads the slot into current. Callers hold s.mu.
func (s *Store) restore(ctx context.Context) error {
	raw, err := s.slot.Read(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.current = nil
		s.degraded = true
		s.restorePending = true
		s.log.WarnContext(ctx, "session restore failed, continuing in memory",
			"slot", s.slot.Key(), "err", err)
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	s.restorePending = false
	s.degraded = false

	if err != nil {
		s.current = nil
		return nil
	}

	id, err := decodeIdentity(raw)
	if err != nil {
		s.current = nil
		s.log.WarnContext(ctx, "discarding malformed session",
			"slot", s.slot.Key(), "err", err)
		if clearErr := s.slot.Clear(ctx); clearErr != nil {
			s.log.WarnContext(ctx, "clear malformed session failed", "slot", s.slot.Key(), "err", clearErr)
		}
		return fmt.Errorf("%w: %w", ErrMalformedSessionData, err)
	}

	s.current = &id
	return nil
}

func decodeIdentity(raw []byte) (identity.Identity, error) {
	var id identity.Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return identity.Identity{}, err
	}
	id.Role = identity.ParseRole(string(id.Role))
	if err := id.Validate(); err != nil {
		return identity.Identity{}, err
	}
	return id.Normalize(), nil
}

// Login checks the credentials after the simulated delay. A failed login
// leaves the current identity untouched.
func (s *Store) Login(ctx context.Context, email, password string) (id identity.Identity, err error) {
	start := time.Now()
	defer func() { s.observe("login", err, start) }()

	if err := s.wait(ctx, s.delay); err != nil {
		return identity.Identity{}, err
	}

	id, err = s.authn.Authenticate(ctx, email, password)
	if err != nil {
		return identity.Identity{}, err
	}

	return s.establish(ctx, id), nil
}

// Signup validates the profile, fabricates an id and avatar from the clock
// and signs the new identity in. Emails are not checked for uniqueness.
func (s *Store) Signup(ctx context.Context, p identity.Profile) (id identity.Identity, err error) {
	start := time.Now()
	defer func() { s.observe("signup", err, start) }()

	if err := p.Validate(); err != nil {
		return identity.Identity{}, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	if err := s.wait(ctx, s.delay); err != nil {
		return identity.Identity{}, err
	}

	now := s.now()
	id = p.Identity(strconv.FormatInt(now.UnixMilli(), 10), identity.DefaultAvatar(now))

	return s.establish(ctx, id), nil
}

// GoogleSignIn signs in the demo Google identity.
func (s *Store) GoogleSignIn(ctx context.Context) (identity.Identity, error) {
	return s.ExternalSignIn(ctx, auth.ProviderGoogle)
}

// ExternalSignIn signs in whatever identity the named provider resolves.
func (s *Store) ExternalSignIn(ctx context.Context, provider string) (id identity.Identity, err error) {
	start := time.Now()
	defer func() { s.observe("external_signin", err, start) }()

	p, err := s.providers.Get(provider)
	if err != nil {
		return identity.Identity{}, err
	}

	if err := s.wait(ctx, s.delay); err != nil {
		return identity.Identity{}, err
	}

	id, err = p.Resolve(ctx)
	if err != nil {
		return identity.Identity{}, err
	}
	if err := id.Validate(); err != nil {
		return identity.Identity{}, fmt.Errorf("provider %s: %w", provider, err)
	}

	return s.establish(ctx, id), nil
}

// Logout drops the current identity and its durable copy. It never fails;
// a slot that cannot be cleared is logged.
func (s *Store) Logout(ctx context.Context) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	s.restorePending = false

	err := s.slot.Clear(ctx)
	if err != nil {
		s.degraded = true
		s.log.WarnContext(ctx, "clear session slot failed", "slot", s.slot.Key(), "err", err)
	}
	s.observe("logout", err, start)
}

// establish makes id current and writes it through. A failed write
// leaves the session alive in memory only.
func (s *Store) establish(ctx context.Context, id identity.Identity) identity.Identity {
	id = id.Normalize().Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &id
	s.restorePending = false

	raw, err := json.Marshal(id)
	if err == nil {
		err = s.slot.Write(ctx, raw)
	}
	if err != nil {
		s.degraded = true
		s.log.WarnContext(ctx, "persist session failed, continuing in memory",
			"slot", s.slot.Key(), "user_id", id.ID, "err", err)
		return id.Clone()
	}
	s.degraded = false
	return id.Clone()
}

// Current returns the signed-in identity, if any.
func (s *Store) Current() (identity.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return identity.Identity{}, false
	}
	return s.current.Clone(), true
}

func (s *Store) Initializing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initializing
}

// Degraded reports whether the last storage interaction failed, meaning
// the current identity may not survive a restart.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Initializing: s.initializing,
		Degraded:     s.degraded,
	}
	if s.current != nil {
		u := s.current.Clone()
		snap.User = &u
		snap.Authenticated = true
	}
	return snap
}

func (s *Store) observe(op string, err error, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveSessionOp(op, resultOf(err), time.Since(start))
}
