package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/geocoder89/campushub/internal/domain/identity"
)

// ExternalProvider stands in for a third-party sign-in. Implementations
// return identity facts only; the session layer decides what to do with them.
type ExternalProvider interface {
	Name() string
	Resolve(ctx context.Context) (identity.Identity, error)
}

var ErrUnknownProvider = errors.New("auth: unknown provider")

// Registry holds the configured external providers by name.
type Registry struct {
	providers map[string]ExternalProvider
}

func NewRegistry(list ...ExternalProvider) *Registry {
	m := make(map[string]ExternalProvider, len(list))
	for _, p := range list {
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

func (r *Registry) Get(name string) (ExternalProvider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownProvider, name)
	}
	return p, nil
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.providers))
	for name := range r.providers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
