package guard

import (
	"strings"

	"github.com/geocoder89/campushub/internal/domain/identity"
)

type NavItem struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Path   string `json:"path"`
	Active bool   `json:"active,omitempty"`
}

var baseNav = []NavItem{
	{Key: "dashboard", Label: "Dashboard", Path: "/dashboard"},
	{Key: "resources", Label: "Resources", Path: "/resources"},
	{Key: "borrowed", Label: "Borrowed Items", Path: "/borrowed"},
}

var roleNav = map[identity.Role][]NavItem{
	identity.RoleStudent: {
		{Key: "mentors", Label: "Find Mentors", Path: "/mentors"},
		{Key: "sessions", Label: "My Sessions", Path: "/sessions"},
		{Key: "chat", Label: "Chat", Path: "/chat"},
		{Key: "notifications", Label: "Notifications", Path: "/notifications"},
		{Key: "profile", Label: "Profile", Path: "/profile"},
		{Key: "settings", Label: "Settings", Path: "/settings"},
	},
	identity.RoleMentor: {
		{Key: "mentors", Label: "My Students", Path: "/mentors"},
		{Key: "sessions", Label: "Sessions", Path: "/sessions"},
		{Key: "chat", Label: "Chat", Path: "/chat"},
		{Key: "notifications", Label: "Notifications", Path: "/notifications"},
		{Key: "profile", Label: "Profile", Path: "/profile"},
		{Key: "settings", Label: "Settings", Path: "/settings"},
	},
}

// admins get their own menu instead of the shared base items
var adminNav = []NavItem{
	{Key: "admin-dashboard", Label: "Admin Dashboard", Path: "/admin-dashboard"},
	{Key: "resources", Label: "Manage Resources", Path: "/resources"},
	{Key: "user-management", Label: "User Management", Path: "/admin/users"},
	{Key: "mentor-approvals", Label: "Mentor Approvals", Path: "/admin/mentors"},
	{Key: "overdue-tracker", Label: "Overdue Tracker", Path: "/admin/overdue"},
	{Key: "notifications", Label: "Notifications", Path: "/notifications"},
	{Key: "settings", Label: "Settings", Path: "/settings"},
}

// NavItems returns a fresh copy of the menu for role. Roles outside the
// closed set get the base items only.
func NavItems(role identity.Role) []NavItem {
	if role == identity.RoleAdmin {
		return append([]NavItem(nil), adminNav...)
	}

	out := append([]NavItem(nil), baseNav...)
	return append(out, roleNav[role]...)
}

// NavFor returns the menu for user with the item for path marked active.
// Anonymous users have no menu.
func NavFor(user *identity.Identity, path string) []NavItem {
	if user == nil {
		return []NavItem{}
	}

	items := NavItems(user.Role)
	for i := range items {
		items[i].Active = isActive(items[i].Path, path)
	}
	return items
}

func isActive(itemPath, current string) bool {
	if itemPath == current || strings.HasPrefix(current, itemPath+"/") {
		return true
	}
	return itemPath == "/dashboard" && current == IndexPath
}
