package storage

import "context"

// Observer records the outcome and latency of one backend operation.
type Observer interface {
	ObserveSlot(backend, op string, fn func() error) error
}

type instrumented struct {
	inner Backend
	name  string
	obs   Observer
}

// Instrument reports every operation on b to obs under the given backend name.
func Instrument(b Backend, name string, obs Observer) Backend {
	if obs == nil {
		return b
	}
	return &instrumented{inner: b, name: name, obs: obs}
}

func (i *instrumented) Load(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := i.obs.ObserveSlot(i.name, "load", func() error {
		v, err := i.inner.Load(ctx, key)
		out = v
		return err
	})
	return out, err
}

func (i *instrumented) Save(ctx context.Context, key string, value []byte) error {
	return i.obs.ObserveSlot(i.name, "save", func() error {
		return i.inner.Save(ctx, key, value)
	})
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	return i.obs.ObserveSlot(i.name, "delete", func() error {
		return i.inner.Delete(ctx, key)
	})
}

func (i *instrumented) Ping(ctx context.Context) error {
	return i.inner.Ping(ctx)
}
