package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/geocoder89/campushub/internal/domain/identity"
)

const ProviderGoogle = "google"

// DemoGoogleProvider fabricates the same demo student on every call.
// There is no OAuth handshake behind it.
type DemoGoogleProvider struct {
	Now func() time.Time
}

func NewDemoGoogleProvider() *DemoGoogleProvider {
	return &DemoGoogleProvider{Now: time.Now}
}

func (p *DemoGoogleProvider) Name() string { return ProviderGoogle }

func (p *DemoGoogleProvider) Resolve(ctx context.Context) (identity.Identity, error) {
	if err := ctx.Err(); err != nil {
		return identity.Identity{}, err
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	return identity.Identity{
		ID:     "google_" + strconv.FormatInt(now().UnixMilli(), 10),
		Email:  "demo@gmail.com",
		Name:   "Demo User",
		Role:   identity.RoleStudent,
		Avatar: identity.PhotoURL("1535713875002-d1d0cf377fde"),
		Course: "Engineering",
		Year:   "Third Year",
	}, nil
}
