package guard_test

import (
	"testing"

	"github.com/geocoder89/campushub/internal/domain/identity"
	"github.com/geocoder89/campushub/internal/guard"
)

func keys(items []guard.NavItem) map[string]guard.NavItem {
	out := make(map[string]guard.NavItem, len(items))
	for _, it := range items {
		out[it.Key] = it
	}
	return out
}

func TestNavItemsPerRole(t *testing.T) {
	tests := []struct {
		role    identity.Role
		include []string
		exclude []string
		count   int
	}{
		{
			role:    identity.RoleAdmin,
			include: []string{"user-management", "overdue-tracker", "mentor-approvals", "admin-dashboard"},
			exclude: []string{"mentors", "sessions", "chat", "dashboard", "borrowed"},
			count:   7,
		},
		{
			role:    identity.RoleStudent,
			include: []string{"dashboard", "chat", "sessions", "mentors", "profile"},
			exclude: []string{"user-management", "overdue-tracker"},
			count:   9,
		},
		{
			role:    identity.RoleMentor,
			include: []string{"dashboard", "chat", "sessions", "mentors", "settings"},
			exclude: []string{"user-management", "overdue-tracker"},
			count:   9,
		},
		{
			role:    "unknown",
			include: []string{"dashboard", "resources", "borrowed"},
			exclude: []string{"chat", "user-management"},
			count:   3,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.role), func(t *testing.T) {
			items := guard.NavItems(tt.role)
			if len(items) != tt.count {
				t.Fatalf("got %d items, want %d", len(items), tt.count)
			}
			k := keys(items)
			for _, want := range tt.include {
				if _, ok := k[want]; !ok {
					t.Fatalf("missing %s", want)
				}
			}
			for _, bad := range tt.exclude {
				if _, ok := k[bad]; ok {
					t.Fatalf("unexpected %s", bad)
				}
			}
		})
	}
}

func TestNavLabelsDifferByRole(t *testing.T) {
	student := keys(guard.NavItems(identity.RoleStudent))
	mentor := keys(guard.NavItems(identity.RoleMentor))

	if student["mentors"].Label != "Find Mentors" || mentor["mentors"].Label != "My Students" {
		t.Fatalf("unexpected labels %q / %q", student["mentors"].Label, mentor["mentors"].Label)
	}
}

func TestNavItemsReturnsCopies(t *testing.T) {
	items := guard.NavItems(identity.RoleAdmin)
	items[0].Label = "changed"

	if guard.NavItems(identity.RoleAdmin)[0].Label != "Admin Dashboard" {
		t.Fatalf("nav table mutated through returned slice")
	}
}

func TestNavPathsAreRenderable(t *testing.T) {
	for _, role := range []identity.Role{identity.RoleStudent, identity.RoleMentor, identity.RoleAdmin} {
		u := &identity.Identity{ID: "1", Email: "a@b.c", Name: "A", Role: role}
		for _, it := range guard.NavItems(role) {
			if d := guard.Decide(it.Path, u); d.Action != guard.Render {
				t.Fatalf("%s nav item %s redirects to %s", role, it.Path, d.Target)
			}
		}
	}
}

func TestNavFor(t *testing.T) {
	if items := guard.NavFor(nil, "/login"); len(items) != 0 {
		t.Fatalf("anonymous should have no menu, got %v", items)
	}

	u := &identity.Identity{ID: "1", Email: "a@b.c", Name: "A", Role: identity.RoleStudent}

	active := func(items []guard.NavItem) []string {
		var out []string
		for _, it := range items {
			if it.Active {
				out = append(out, it.Key)
			}
		}
		return out
	}

	if got := active(guard.NavFor(u, "/chat")); len(got) != 1 || got[0] != "chat" {
		t.Fatalf("got active %v", got)
	}
	if got := active(guard.NavFor(u, "/")); len(got) != 1 || got[0] != "dashboard" {
		t.Fatalf("index should highlight dashboard, got %v", got)
	}
	if got := active(guard.NavFor(u, "/mentors/7")); len(got) != 1 || got[0] != "mentors" {
		t.Fatalf("detail view should highlight its list, got %v", got)
	}
}
