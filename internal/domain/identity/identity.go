package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidIdentity = errors.New("invalid identity")

// Identity is the authenticated user record held by a session.
// Role-conditional fields are omitted from JSON when empty.
type Identity struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	Role       Role     `json:"role"`
	Avatar     string   `json:"avatar,omitempty"`
	Course     string   `json:"course,omitempty"`
	Year       string   `json:"year,omitempty"`
	Expertise  []string `json:"expertise,omitempty"`
	Experience string   `json:"experience,omitempty"`
}

const avatarURLFormat = "https://images.unsplash.com/photo-%d?w=150&h=150&fit=crop&crop=face"

// avatar photo ids rotate over ten stock portraits starting here
const avatarPhotoBase = 1472099645785

// DefaultAvatar fabricates an avatar URL from a point in time.
func DefaultAvatar(at time.Time) string {
	return fmt.Sprintf(avatarURLFormat, at.UnixMilli()%10+avatarPhotoBase)
}

// PhotoURL builds an avatar URL for a known stock photo id.
func PhotoURL(photoID string) string {
	return "https://images.unsplash.com/photo-" + photoID + "?w=150&h=150&fit=crop&crop=face"
}

// Validate checks the fields every persisted identity must carry.
func (i Identity) Validate() error {
	var missing []string
	if strings.TrimSpace(i.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(i.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(i.Name) == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidIdentity, strings.Join(missing, ", "))
	}
	if !i.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidIdentity, i.Role)
	}
	return nil
}

// Normalize drops attributes that do not belong to the identity's role
// and folds an unrecognized role into the student default.
func (i Identity) Normalize() Identity {
	if !i.Role.Valid() {
		i.Role = ParseRole(string(i.Role))
	}

	switch i.Role {
	case RoleStudent:
		i.Expertise = nil
		i.Experience = ""
	case RoleMentor:
		i.Course = ""
		i.Year = ""
	case RoleAdmin:
		i.Course = ""
		i.Year = ""
		i.Expertise = nil
		i.Experience = ""
	}
	return i
}

// Clone returns a copy that shares no slices with the receiver.
func (i Identity) Clone() Identity {
	if i.Expertise != nil {
		i.Expertise = append([]string(nil), i.Expertise...)
	}
	return i
}
