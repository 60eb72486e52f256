package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("storage: key not found")
	ErrCircuitOpen = errors.New("storage: circuit breaker open")
)

// Backend is a durable key-value store. Values are opaque bytes and are
// always replaced wholesale.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Slot is one named key of a Backend.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, value []byte) error
	Clear(ctx context.Context) error
	Key() string
}

type boundSlot struct {
	backend Backend
	key     string
}

// Bind returns the slot stored under key.
func Bind(b Backend, key string) Slot {
	return &boundSlot{backend: b, key: key}
}

func (s *boundSlot) Read(ctx context.Context) ([]byte, error) {
	return s.backend.Load(ctx, s.key)
}

func (s *boundSlot) Write(ctx context.Context, value []byte) error {
	return s.backend.Save(ctx, s.key, value)
}

// Clear succeeds when the key is already absent.
func (s *boundSlot) Clear(ctx context.Context) error {
	err := s.backend.Delete(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func (s *boundSlot) Key() string {
	return s.key
}
