package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("user: user not found")
	ErrEmailTaken  = errors.New("user: email already registered")
	ErrInvalidUser = errors.New("user: invalid user")
)

type Role string

const (
	RoleRenter Role = "renter"
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	Roles        []Role
	CreatedAt    time.Time
	Version      int64
}

func New(id, email, passwordHash, displayName string, now time.Time) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if id == "" || email == "" || passwordHash == "" {
		return nil, ErrInvalidUser
	}
	return &User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		Roles:        []Role{RoleRenter},
		CreatedAt:    now,
	}, nil
}

func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GrantRole adds a role if not already present. Listing a first item grants
// the owner role this way.
func (u *User) GrantRole(role Role) {
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
	}
}

type Repository interface {
	ByID(ctx context.Context, id string) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, u *User) error
}
