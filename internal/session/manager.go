package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/campushub/internal/cache"
	"github.com/geocoder89/campushub/internal/storage"
)

// ManagerConfig describes how per-device stores are built. Template is
// copied for every device; its Slot is replaced by the device's own slot.
type ManagerConfig struct {
	Backend  storage.Backend
	SlotKey  string
	IdleTTL  time.Duration
	Template Config
	Logger   *slog.Logger
}

// Manager owns one Store per device. Stores that sit idle are dropped from
// memory; their durable slots are not touched, so the next request for the
// device restores the identity again.
type Manager struct {
	backend  storage.Backend
	slotKey  string
	template Config
	stores   *cache.Cache[*Store]
	log      *slog.Logger
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Backend == nil {
		cfg.Backend = storage.NewMemoryBackend()
	}
	if cfg.SlotKey == "" {
		cfg.SlotKey = DefaultSlotKey
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Template.Logger == nil {
		cfg.Template.Logger = cfg.Logger
	}

	return &Manager{
		backend:  cfg.Backend,
		slotKey:  cfg.SlotKey,
		template: cfg.Template,
		stores:   cache.New[*Store](cfg.IdleTTL),
		log:      cfg.Logger,
	}
}

// DefaultSlotKey names the durable slot a device's identity lives in.
const DefaultSlotKey = "dreambuild_user"

// SlotKey returns the durable key used for deviceID.
func (m *Manager) SlotKey(deviceID string) string {
	return m.slotKey + ":" + deviceID
}

// Store returns the initialized store for deviceID, restoring it from
// durable storage on first use. Restore failures are logged and leave the
// store anonymous.
func (m *Manager) Store(ctx context.Context, deviceID string) *Store {
	st, _ := m.stores.GetOrCreate(deviceID, func() *Store {
		cfg := m.template
		cfg.Slot = storage.Bind(m.backend, m.SlotKey(deviceID))
		return NewStore(cfg)
	})

	if err := st.Initialize(ctx); err != nil {
		level := slog.LevelWarn
		if errors.Is(err, ErrStorageUnavailable) {
			level = slog.LevelError
		}
		m.log.Log(ctx, level, "session restore", "slot", m.SlotKey(deviceID), "err", err)
	}
	return st
}

// Forget drops the live store for deviceID without touching its slot.
func (m *Manager) Forget(deviceID string) {
	m.stores.Delete(deviceID)
}

func (m *Manager) Live() int {
	return m.stores.Len()
}

// Ping checks the durable backend.
func (m *Manager) Ping(ctx context.Context) error {
	return m.backend.Ping(ctx)
}

// Run sweeps idle stores every interval until ctx is done. report, when
// set, receives the live store count after each sweep.
func (m *Manager) Run(ctx context.Context, interval time.Duration, report func(live int)) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := m.stores.Sweep()
			live := m.stores.Len()
			if n > 0 {
				m.log.Debug("idle session stores evicted", "count", n, "live", live)
			}
			if report != nil {
				report(live)
			}
		}
	}
}
