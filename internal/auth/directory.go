package auth

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/geocoder89/campushub/internal/domain/identity"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// DefaultDemoPassword is the shared secret of every seeded demo account.
const DefaultDemoPassword = "demo123"

// SeedDirectory resolves logins against a fixed set of demo accounts that
// all share one secret.
type SeedDirectory struct {
	secret   string
	accounts map[string]identity.Identity
}

func NewSeedDirectory(secret string, accounts ...identity.Identity) *SeedDirectory {
	if secret == "" {
		secret = DefaultDemoPassword
	}
	if len(accounts) == 0 {
		accounts = DemoAccounts()
	}

	m := make(map[string]identity.Identity, len(accounts))
	for _, a := range accounts {
		m[normalizeEmail(a.Email)] = a.Clone()
	}

	return &SeedDirectory{secret: secret, accounts: m}
}

func (d *SeedDirectory) Authenticate(ctx context.Context, email, password string) (identity.Identity, error) {
	if err := ctx.Err(); err != nil {
		return identity.Identity{}, err
	}

	acct, ok := d.accounts[normalizeEmail(email)]
	if !ok || password != d.secret {
		return identity.Identity{}, ErrInvalidCredentials
	}

	return acct.Clone(), nil
}

// Emails lists the seeded login keys in order.
func (d *SeedDirectory) Emails() []string {
	out := make([]string, 0, len(d.accounts))
	for email := range d.accounts {
		out = append(out, email)
	}
	sort.Strings(out)
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DemoAccounts returns one account per role.
func DemoAccounts() []identity.Identity {
	return []identity.Identity{
		{
			ID:     "1",
			Email:  "student@demo.com",
			Name:   "Alex Johnson",
			Role:   identity.RoleStudent,
			Avatar: identity.PhotoURL("1472099645785-5658abf4ff4e"),
			Course: "Computer Science",
			Year:   "Final Year",
		},
		{
			ID:         "2",
			Email:      "mentor@demo.com",
			Name:       "Dr. Sarah Wilson",
			Role:       identity.RoleMentor,
			Avatar:     identity.PhotoURL("1494790108755-2616b612b786"),
			Expertise:  []string{"AI/ML", "Web Development", "Data Science"},
			Experience: "8 years",
		},
		{
			ID:     "3",
			Email:  "admin@demo.com",
			Name:   "John Admin",
			Role:   identity.RoleAdmin,
			Avatar: identity.PhotoURL("1507003211169-0a1dd7228f2d"),
		},
	}
}
