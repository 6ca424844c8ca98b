package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"gearbook/internal/app/policies"
	"gearbook/internal/app/uow"
	domainauth "gearbook/internal/domain/auth"
	domainuser "gearbook/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// PasswordHasher abstracts the hash scheme so tests can swap bcrypt out.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// TokenGenerator mints opaque session tokens.
type TokenGenerator interface {
	Generate() (string, error)
}

const DefaultSessionTTL = 24 * time.Hour

// Service implements registration and session auth on top of the user
// repository and a session store.
type Service struct {
	UoWFactory uow.Factory
	Sessions   domainauth.SessionStore
	Hasher     PasswordHasher
	Tokens     TokenGenerator
	SessionTTL time.Duration
	Clock      func() time.Time
}

type Credentials struct {
	Email    string
	Password string
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*domainuser.User, error) {
	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	if _, err := unit.Users().ByEmail(ctx, in.Email); err == nil {
		return nil, domainuser.ErrEmailTaken
	} else if !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u, err := domainuser.New(uuid.NewString(), in.Email, hash, in.DisplayName, s.now())
	if err != nil {
		return nil, err
	}
	if err := unit.Users().Save(ctx, u); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true
	return u, nil
}

func (s *Service) Login(ctx context.Context, creds Credentials) (domainauth.Session, error) {
	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return domainauth.Session{}, err
	}
	defer func() { _ = unit.Rollback(ctx) }()

	u, err := unit.Users().ByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return domainauth.Session{}, ErrInvalidCredentials
		}
		return domainauth.Session{}, err
	}
	if err := s.Hasher.Compare(u.PasswordHash, creds.Password); err != nil {
		return domainauth.Session{}, ErrInvalidCredentials
	}
	return s.issueSession(ctx, u.ID)
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.Sessions.Delete(ctx, token)
}

// ResolveToken turns a bearer token into the caller's principal.
func (s *Service) ResolveToken(ctx context.Context, token string) (policies.Principal, error) {
	sess, err := s.Sessions.ByToken(ctx, token)
	if err != nil {
		return policies.Principal{}, err
	}
	if sess.Expired(s.now()) {
		_ = s.Sessions.Delete(ctx, token)
		return policies.Principal{}, domainauth.ErrSessionExpired
	}
	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return policies.Principal{}, err
	}
	defer func() { _ = unit.Rollback(ctx) }()

	u, err := unit.Users().ByID(ctx, sess.UserID)
	if err != nil {
		return policies.Principal{}, err
	}
	return policies.Principal{UserID: u.ID, Roles: u.Roles}, nil
}

func (s *Service) issueSession(ctx context.Context, userID string) (domainauth.Session, error) {
	token, err := s.Tokens.Generate()
	if err != nil {
		return domainauth.Session{}, err
	}
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	now := s.now()
	sess := domainauth.Session{
		Token:     token,
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.Sessions.Put(ctx, sess); err != nil {
		return domainauth.Session{}, err
	}
	return sess, nil
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}
