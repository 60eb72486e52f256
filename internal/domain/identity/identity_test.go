package identity_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/campushub/internal/domain/identity"
	"github.com/go-playground/validator/v10"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want identity.Role
	}{
		{"student", identity.RoleStudent},
		{"mentor", identity.RoleMentor},
		{"admin", identity.RoleAdmin},
		{" Admin ", identity.RoleAdmin},
		{"", identity.RoleStudent},
		{"superuser", identity.RoleStudent},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			if got := identity.ParseRole(tt.in); got != tt.want {
				t.Fatalf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIdentityJSONOmitsAbsentRoleFields(t *testing.T) {
	id := identity.Identity{ID: "3", Email: "admin@demo.com", Name: "John Admin", Role: identity.RoleAdmin}

	b, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	for _, field := range []string{"course", "year", "expertise", "experience", "avatar", "null"} {
		if strings.Contains(string(b), field) {
			t.Fatalf("expected %q to be absent, got %s", field, b)
		}
	}
}

func TestIdentityValidate(t *testing.T) {
	good := identity.Identity{ID: "1", Email: "a@b.c", Name: "A", Role: identity.RoleStudent}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected valid identity, got %v", err)
	}

	bad := []identity.Identity{
		{Email: "a@b.c", Name: "A", Role: identity.RoleStudent},
		{ID: "1", Name: "A", Role: identity.RoleStudent},
		{ID: "1", Email: "a@b.c", Role: identity.RoleStudent},
		{ID: "1", Email: "a@b.c", Name: "A", Role: "wizard"},
	}
	for i, id := range bad {
		if err := id.Validate(); !errors.Is(err, identity.ErrInvalidIdentity) {
			t.Fatalf("case %d: expected ErrInvalidIdentity, got %v", i, err)
		}
	}
}

func TestDefaultAvatarRotatesOverTenPhotos(t *testing.T) {
	at := time.UnixMilli(1700000000003)
	got := identity.DefaultAvatar(at)
	want := "https://images.unsplash.com/photo-1472099645788?w=150&h=150&fit=crop&crop=face"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func validStudent() identity.Profile {
	return identity.Profile{
		Name:     "Ada",
		Email:    "ada@campus.edu",
		Password: "secret1",
		Role:     identity.RoleStudent,
		Course:   "Computer Science",
		Year:     "First Year",
	}
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(p *identity.Profile)
		wantField string
		wantRule  string
	}{
		{name: "valid student", mutate: func(p *identity.Profile) {}},
		{
			name: "valid mentor",
			mutate: func(p *identity.Profile) {
				p.Role = identity.RoleMentor
				p.Course, p.Year = "", ""
				p.Expertise = []string{"AI/ML"}
				p.Experience = "5 years"
			},
		},
		{name: "short password", mutate: func(p *identity.Profile) { p.Password = "abc" }, wantField: "Password", wantRule: "min"},
		{name: "bad email", mutate: func(p *identity.Profile) { p.Email = "nope" }, wantField: "Email", wantRule: "email"},
		{name: "passwords differ", mutate: func(p *identity.Profile) { p.ConfirmPassword = "other1" }, wantField: "ConfirmPassword", wantRule: "eqfield"},
		{name: "admin self signup", mutate: func(p *identity.Profile) { p.Role = identity.RoleAdmin }, wantField: "Role", wantRule: "oneof"},
		{name: "student without course", mutate: func(p *identity.Profile) { p.Course = "" }, wantField: "Course", wantRule: "required"},
		{
			name: "mentor without expertise",
			mutate: func(p *identity.Profile) {
				p.Role = identity.RoleMentor
				p.Experience = "2 years"
			},
			wantField: "Expertise",
			wantRule:  "required",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			p := validStudent()
			tt.mutate(&p)

			err := p.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected validation errors, got %v", err)
			}
			for _, fe := range verrs {
				if fe.StructField() == tt.wantField && fe.Tag() == tt.wantRule {
					return
				}
			}
			t.Fatalf("expected %s/%s in %v", tt.wantField, tt.wantRule, verrs)
		})
	}
}

func TestProfileIdentityDropsForeignRoleFields(t *testing.T) {
	p := identity.Profile{
		Name:       "Sam",
		Email:      "sam@campus.edu",
		Password:   "secret1",
		Role:       identity.RoleMentor,
		Course:     "History",
		Expertise:  []string{"AI/ML"},
		Experience: "5 years",
	}

	id := p.Identity("42", "fallback")

	if id.Course != "" || id.Year != "" {
		t.Fatalf("student fields leaked into mentor identity: %+v", id)
	}
	if id.Avatar != "fallback" {
		t.Fatalf("expected fallback avatar, got %q", id.Avatar)
	}
	if len(id.Expertise) != 1 || id.Experience != "5 years" {
		t.Fatalf("mentor fields missing: %+v", id)
	}

	p.Expertise[0] = "changed"
	if id.Expertise[0] != "AI/ML" {
		t.Fatalf("identity shares expertise slice with profile")
	}
}
