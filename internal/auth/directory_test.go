package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/campushub/internal/auth"
	"github.com/geocoder89/campushub/internal/domain/identity"
)

func TestSeedDirectoryAuthenticate(t *testing.T) {
	dir := auth.NewSeedDirectory("")

	tests := []struct {
		name     string
		email    string
		password string
		wantRole identity.Role
		wantErr  error
	}{
		{name: "student", email: "student@demo.com", password: "demo123", wantRole: identity.RoleStudent},
		{name: "mentor", email: "mentor@demo.com", password: "demo123", wantRole: identity.RoleMentor},
		{name: "admin", email: "admin@demo.com", password: "demo123", wantRole: identity.RoleAdmin},
		{name: "email is case insensitive", email: " Student@Demo.com ", password: "demo123", wantRole: identity.RoleStudent},
		{name: "wrong secret", email: "student@demo.com", password: "demo124", wantErr: auth.ErrInvalidCredentials},
		{name: "unknown email", email: "unknown@x.com", password: "demo123", wantErr: auth.ErrInvalidCredentials},
		{name: "empty password", email: "admin@demo.com", password: "", wantErr: auth.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := dir.Authenticate(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Role != tt.wantRole {
				t.Fatalf("got role %q, want %q", got.Role, tt.wantRole)
			}
			if got.Email != strings.ToLower(strings.TrimSpace(tt.email)) {
				t.Fatalf("got email %q for input %q", got.Email, tt.email)
			}
		})
	}
}

func TestSeedDirectoryEmails(t *testing.T) {
	dir := auth.NewSeedDirectory("", auth.DemoAccounts()...)

	got := strings.Join(dir.Emails(), ",")
	if got != "admin@demo.com,mentor@demo.com,student@demo.com" {
		t.Fatalf("unexpected emails %s", got)
	}
}

func TestSeedDirectoryCustomSecret(t *testing.T) {
	dir := auth.NewSeedDirectory("s3cret")

	if _, err := dir.Authenticate(context.Background(), "student@demo.com", "demo123"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("default secret should be rejected, got %v", err)
	}
	if _, err := dir.Authenticate(context.Background(), "student@demo.com", "s3cret"); err != nil {
		t.Fatalf("custom secret rejected: %v", err)
	}
}

func TestSeedDirectoryReturnsCopies(t *testing.T) {
	dir := auth.NewSeedDirectory("")

	first, _ := dir.Authenticate(context.Background(), "mentor@demo.com", "demo123")
	first.Expertise[0] = "Gardening"

	second, _ := dir.Authenticate(context.Background(), "mentor@demo.com", "demo123")
	if second.Expertise[0] != "AI/ML" {
		t.Fatalf("directory entry was mutated through a returned identity")
	}
}

func TestSeedDirectoryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := auth.NewSeedDirectory("").Authenticate(ctx, "student@demo.com", "demo123")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDemoAccountsAreValid(t *testing.T) {
	for _, a := range auth.DemoAccounts() {
		if err := a.Validate(); err != nil {
			t.Fatalf("%s: %v", a.Email, err)
		}
	}
}

func TestRegistryAndDemoGoogleProvider(t *testing.T) {
	fixed := time.UnixMilli(1700000000123)
	google := &auth.DemoGoogleProvider{Now: func() time.Time { return fixed }}
	reg := auth.NewRegistry(google)

	p, err := reg.Get(auth.ProviderGoogle)
	if err != nil {
		t.Fatalf("Get google: %v", err)
	}

	id, err := p.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id.ID != "google_1700000000123" {
		t.Fatalf("unexpected id %q", id.ID)
	}
	if id.Role != identity.RoleStudent || id.Email != "demo@gmail.com" || id.Course != "Engineering" {
		t.Fatalf("unexpected identity %+v", id)
	}

	if _, err := reg.Get("github"); !errors.Is(err, auth.ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
	if names := reg.Names(); len(names) != 1 || names[0] != "google" {
		t.Fatalf("unexpected names %v", names)
	}
}
