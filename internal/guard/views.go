package guard

import "strings"

type Access int

const (
	Protected Access = iota
	Public
)

// View is one navigable page. Patterns may contain ":param" segments.
type View struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Access  Access `json:"-"`
}

const (
	LoginPath  = "/login"
	SignupPath = "/signup"
	IndexPath  = "/"
)

var views = []View{
	{Name: "login", Pattern: LoginPath, Access: Public},
	{Name: "signup", Pattern: SignupPath, Access: Public},
	{Name: "dashboard", Pattern: "/dashboard"},
	{Name: "mentor-dashboard", Pattern: "/mentor-dashboard"},
	{Name: "admin-dashboard", Pattern: "/admin-dashboard"},
	{Name: "resources", Pattern: "/resources"},
	{Name: "resource-detail", Pattern: "/resources/:id"},
	{Name: "borrowed", Pattern: "/borrowed"},
	{Name: "mentors", Pattern: "/mentors"},
	{Name: "mentor-profile", Pattern: "/mentors/:id"},
	{Name: "sessions", Pattern: "/sessions"},
	{Name: "chat", Pattern: "/chat"},
	{Name: "notifications", Pattern: "/notifications"},
	{Name: "profile", Pattern: "/profile"},
	{Name: "settings", Pattern: "/settings"},
	{Name: "user-management", Pattern: "/admin/users"},
	{Name: "mentor-approvals", Pattern: "/admin/mentors"},
	{Name: "overdue-tracker", Pattern: "/admin/overdue"},
}

// Views returns the view table.
func Views() []View {
	return append([]View(nil), views...)
}

// Lookup finds the view serving path. Trailing slashes are ignored.
func Lookup(path string) (View, bool) {
	segs := segments(path)
	for _, v := range views {
		if matches(segments(v.Pattern), segs) {
			return v, true
		}
	}
	return View{}, false
}

func matches(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if path[i] == "" {
				return false
			}
			continue
		}
		if p != path[i] {
			return false
		}
	}
	return true
}

func segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
