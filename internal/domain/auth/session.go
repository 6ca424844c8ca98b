package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("auth: session not found")
	ErrSessionExpired  = errors.New("auth: session expired")
)

// Session is a bearer token issued at login.
type Session struct {
	Token     string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

type SessionStore interface {
	Put(ctx context.Context, session Session) error
	ByToken(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}
