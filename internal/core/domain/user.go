package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrUsernameTaken      = fmt.Errorf("username already taken: %w", ErrUserExists)
	ErrEmailTaken         = fmt.Errorf("email already in use: %w", ErrUserExists)
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordMismatch   = errors.New("current password is incorrect")
)

const MinPasswordLength = 6

// Role is one of the fixed authorization roles.
type Role string

const (
	RoleUser      Role = "USER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

// AllRoles lists every role, lowest privilege first.
func AllRoles() []Role {
	return []Role{RoleUser, RoleModerator, RoleAdmin}
}

// ParseRole maps free-form input to a role. "admin" and "mod"/"moderator" are
// recognised case-insensitively, with or without a ROLE_ prefix; anything
// else resolves to USER.
func ParseRole(s string) Role {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "role_")
	switch v {
	case "admin":
		return RoleAdmin
	case "mod", "moderator":
		return RoleModerator
	default:
		return RoleUser
	}
}

// RoleSet is an unordered set of roles.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// ParseRoleSet parses every value with ParseRole. Blank values are skipped.
func ParseRoleSet(values []string) RoleSet {
	s := RoleSet{}
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		s[ParseRole(v)] = struct{}{}
	}
	return s
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// HasAny reports whether the set holds at least one of roles.
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Strings returns the roles in a stable order, for storage and tokens.
func (s RoleSet) Strings() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return out
}

func (s RoleSet) Clone() RoleSet {
	c := make(RoleSet, len(s))
	for r := range s {
		c[r] = struct{}{}
	}
	return c
}

// RoleSetFromStrings rebuilds a set from stored role names. Unknown names are
// dropped rather than mapped, so stored data never escalates privileges.
func RoleSetFromStrings(values []string) RoleSet {
	s := RoleSet{}
	for _, v := range values {
		switch r := Role(strings.ToUpper(strings.TrimSpace(v))); r {
		case RoleUser, RoleModerator, RoleAdmin:
			s[r] = struct{}{}
		}
	}
	return s
}

// User is an account able to sign in to the registry.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        RoleSet   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleNames is a template-friendly view of Roles.
func (u *User) RoleNames() []string {
	return u.Roles.Strings()
}

func (u *User) Clone() *User {
	c := *u
	c.Roles = u.Roles.Clone()
	return &c
}

// Registration is the input to account creation.
type Registration struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate checks the registration input and reports all violations.
func (r *Registration) Validate() error {
	ve := &ValidationError{}
	if strings.TrimSpace(r.Username) == "" {
		ve.Add("username", "is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		ve.Add("email", "is required")
	} else if !strings.Contains(r.Email, "@") {
		ve.Add("email", "must be a valid email address")
	}
	if len(r.Password) < MinPasswordLength {
		ve.Add("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if r.Password != r.ConfirmPassword {
		ve.Add("confirm_password", "does not match password")
	}
	return ve.OrNil()
}
