package identity

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Profile is the self-service signup payload.
type Profile struct {
	Name            string   `json:"name" binding:"required,max=120"`
	Email           string   `json:"email" binding:"required,email"`
	Password        string   `json:"password" binding:"required,min=6"`
	ConfirmPassword string   `json:"confirmPassword,omitempty" binding:"omitempty,eqfield=Password"`
	Role            Role     `json:"role" binding:"required,oneof=student mentor"`
	Avatar          string   `json:"avatar,omitempty" binding:"omitempty,url"`
	Course          string   `json:"course,omitempty" binding:"omitempty,max=120"`
	Year            string   `json:"year,omitempty" binding:"omitempty,max=40"`
	Expertise       []string `json:"expertise,omitempty" binding:"omitempty,dive,required"`
	Experience      string   `json:"experience,omitempty" binding:"omitempty,max=80"`
}

var (
	validateOnce sync.Once
	profileRules *validator.Validate
)

func profileValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.SetTagName("binding")
		v.RegisterTagNameFunc(jsonName)
		v.RegisterStructValidation(roleConditionalFields, Profile{})
		profileRules = v
	})
	return profileRules
}

func jsonName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" {
		return sf.Name
	}
	if name == "-" {
		return ""
	}
	return name
}

// students need course and year, mentors need expertise and experience
func roleConditionalFields(sl validator.StructLevel) {
	p := sl.Current().Interface().(Profile)

	switch p.Role {
	case RoleStudent:
		if strings.TrimSpace(p.Course) == "" {
			sl.ReportError(p.Course, "course", "Course", "required", "")
		}
		if strings.TrimSpace(p.Year) == "" {
			sl.ReportError(p.Year, "year", "Year", "required", "")
		}
	case RoleMentor:
		if len(p.Expertise) == 0 {
			sl.ReportError(p.Expertise, "expertise", "Expertise", "required", "")
		}
		if strings.TrimSpace(p.Experience) == "" {
			sl.ReportError(p.Experience, "experience", "Experience", "required", "")
		}
	}
}

// Validate returns validator.ValidationErrors describing every rule the
// profile breaks, or nil.
func (p Profile) Validate() error {
	return profileValidator().Struct(p)
}

// Identity builds the identity a successful signup produces. The password
// never leaves the profile.
func (p Profile) Identity(id, fallbackAvatar string) Identity {
	avatar := strings.TrimSpace(p.Avatar)
	if avatar == "" {
		avatar = fallbackAvatar
	}

	out := Identity{
		ID:         id,
		Email:      strings.TrimSpace(p.Email),
		Name:       strings.TrimSpace(p.Name),
		Role:       p.Role,
		Avatar:     avatar,
		Course:     strings.TrimSpace(p.Course),
		Year:       strings.TrimSpace(p.Year),
		Experience: strings.TrimSpace(p.Experience),
	}
	if len(p.Expertise) > 0 {
		out.Expertise = append([]string(nil), p.Expertise...)
	}
	return out.Normalize()
}
