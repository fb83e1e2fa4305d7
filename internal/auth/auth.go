// Package auth validates login attempts against the store and manages the
// persisted session records.
//
// Passwords are stored and compared in plaintext, there is no rate limiting
// and sessions never expire. These are known weaknesses of the survey tool.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pavelanni/exitsurvey/internal/model"
)

var (
	ErrUnknownIdentity = errors.New("unknown identity")
	ErrBadCredential   = errors.New("bad credential")
	ErrUnknownRole     = errors.New("unknown role")
	ErrNoSession       = errors.New("no active session")
)

// Store is the persistence the gate needs.
type Store interface {
	StudentByRollNo(ctx context.Context, rollNo string) (*model.Student, error)
	Admin(ctx context.Context) (model.AdminCredential, error)
	CreateAuthSession(ctx context.Context, sess model.Session) (string, error)
	GetAuthSession(ctx context.Context, token string) (*model.AuthSession, error)
	DeleteAuthSession(ctx context.Context, token string) error
}

// Observer is notified about every authentication attempt.
type Observer interface {
	LoginAttempt(role model.Role, err error)
}

// Gate authenticates students and administrators.
type Gate struct {
	store    Store
	observer Observer
}

// NewGate creates a Gate. observer may be nil.
func NewGate(s Store, observer Observer) *Gate {
	return &Gate{store: s, observer: observer}
}

// Authenticate checks identity and password for the given role without
// persisting anything. For students identity is the roll number, matched
// case-insensitively; for admins it is the username, matched exactly.
func (g *Gate) Authenticate(ctx context.Context, role model.Role, identity, password string) (model.Session, error) {
	sess, err := g.authenticate(ctx, role, identity, password)
	if g.observer != nil {
		g.observer.LoginAttempt(role, err)
	}
	return sess, err
}

func (g *Gate) authenticate(ctx context.Context, role model.Role, identity, password string) (model.Session, error) {
	switch role {
	case model.RoleStudent:
		st, err := g.store.StudentByRollNo(ctx, identity)
		if err != nil {
			return nil, fmt.Errorf("look up student: %w", err)
		}
		if st == nil {
			return nil, ErrUnknownIdentity
		}
		if st.Password != password {
			return nil, ErrBadCredential
		}
		return model.StudentSession{
			RollNo:     st.RollNo,
			Name:       st.Name,
			Department: st.Department,
		}, nil

	case model.RoleAdmin:
		admin, err := g.store.Admin(ctx)
		if err != nil {
			return nil, fmt.Errorf("load admin credential: %w", err)
		}
		if admin.Username != identity || admin.Password != password {
			return nil, ErrBadCredential
		}
		return model.AdminSession{Username: admin.Username}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
}

// Login authenticates and persists the resulting session, returning its token.
func (g *Gate) Login(ctx context.Context, role model.Role, identity, password string) (string, model.Session, error) {
	sess, err := g.Authenticate(ctx, role, identity, password)
	if err != nil {
		slog.Info("login rejected", "role", role, "identity", identity, "error", err)
		return "", nil, err
	}
	token, err := g.store.CreateAuthSession(ctx, sess)
	if err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}
	slog.Info("login", "role", role, "identity", identity)
	return token, sess, nil
}

// Current resolves a session token.
func (g *Gate) Current(ctx context.Context, token string) (model.Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	as, err := g.store.GetAuthSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if as == nil {
		return nil, ErrNoSession
	}
	return as.Session, nil
}

// Logout clears the session. Logging out without an active session is not an error.
func (g *Gate) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return g.store.DeleteAuthSession(ctx, token)
}
