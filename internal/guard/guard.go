package guard

import "github.com/geocoder89/campushub/internal/domain/identity"

type Action string

const (
	Render   Action = "render"
	Redirect Action = "redirect"
)

// Decision says what to do with a navigation request. Target is set for
// redirects, View for renders.
type Decision struct {
	Action Action `json:"action"`
	Target string `json:"target,omitempty"`
	View   *View  `json:"view,omitempty"`
}

// Decide gates path for user, where a nil user means nobody is signed in.
//
// Anonymous users may only see public views and are sent to the login view
// from anywhere else. Signed-in users are sent to their dashboard from the
// public views, the index and unknown paths.
func Decide(path string, user *identity.Identity) Decision {
	view, ok := Lookup(path)

	if user == nil {
		if ok && view.Access == Public {
			return render(view)
		}
		return redirect(LoginPath)
	}

	if !ok || view.Access == Public {
		return redirect(DefaultDashboard(user.Role))
	}
	return render(view)
}

// DefaultDashboard is where a role lands after sign-in. Unknown roles get
// the student dashboard.
func DefaultDashboard(role identity.Role) string {
	switch role {
	case identity.RoleMentor:
		return "/mentor-dashboard"
	case identity.RoleAdmin:
		return "/admin-dashboard"
	default:
		return "/dashboard"
	}
}

func render(v View) Decision {
	return Decision{Action: Render, View: &v}
}

func redirect(target string) Decision {
	return Decision{Action: Redirect, Target: target}
}
