package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/exitsurvey/internal/model"
	"github.com/pavelanni/exitsurvey/internal/store"
)

type recordingObserver struct {
	attempts []error
}

func (r *recordingObserver) LoginAttempt(_ model.Role, err error) {
	r.attempts = append(r.attempts, err)
}

func newTestGate(t *testing.T) (*Gate, *store.Store, *recordingObserver) {
	t.Helper()
	s, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	obs := &recordingObserver{}
	return NewGate(s, obs), s, obs
}

func TestAuthenticateEverySeededStudent(t *testing.T) {
	g, s, _ := newTestGate(t)
	ctx := context.Background()

	students, err := s.Students(ctx)
	require.NoError(t, err)

	for _, st := range students {
		t.Run(st.RollNo, func(t *testing.T) {
			sess, err := g.Authenticate(ctx, model.RoleStudent, st.RollNo, st.Password)
			require.NoError(t, err)
			ss, ok := sess.(model.StudentSession)
			require.True(t, ok, "expected StudentSession, got %T", sess)
			assert.Equal(t, st.Department, ss.Department)
			assert.Equal(t, st.Name, ss.Name)
			assert.Equal(t, st.RollNo, ss.RollNo)

			_, err = g.Authenticate(ctx, model.RoleStudent, st.RollNo, st.Password+"x")
			assert.ErrorIs(t, err, ErrBadCredential)
		})
	}
}

func TestAuthenticateStudent(t *testing.T) {
	g, _, _ := newTestGate(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		identity string
		password string
		wantErr  error
		wantRoll string
	}{
		{"correct", "23CE01", "23CE01", nil, "23CE01"},
		{"lower case roll", "23ce01", "23CE01", nil, "23CE01"},
		{"password is case sensitive", "23CE01", "23ce01", ErrBadCredential, ""},
		{"empty password", "23CE01", "", ErrBadCredential, ""},
		{"absent roll", "24CE99", "24CE99", ErrUnknownIdentity, ""},
		{"empty roll", "", "", ErrUnknownIdentity, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := g.Authenticate(ctx, model.RoleStudent, tt.identity, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, sess)
				return
			}
			require.NoError(t, err)
			// The stored roll number is returned, not the typed one.
			assert.Equal(t, tt.wantRoll, sess.(model.StudentSession).RollNo)
		})
	}
}

func TestAuthenticateAdmin(t *testing.T) {
	g, _, _ := newTestGate(t)
	ctx := context.Background()

	sess, err := g.Authenticate(ctx, model.RoleAdmin, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, model.AdminSession{Username: "admin"}, sess)
	assert.Equal(t, model.RoleAdmin, sess.Role())

	for _, tc := range [][2]string{
		{"admin", "wrong"},
		{"Admin", "admin123"},
		{"root", "admin123"},
		{"", ""},
	} {
		_, err := g.Authenticate(ctx, model.RoleAdmin, tc[0], tc[1])
		assert.ErrorIs(t, err, ErrBadCredential, "username=%q password=%q", tc[0], tc[1])
	}
}

func TestAuthenticateUnknownRole(t *testing.T) {
	g, _, _ := newTestGate(t)

	_, err := g.Authenticate(context.Background(), model.Role("guest"), "x", "y")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestObserverSeesEveryAttempt(t *testing.T) {
	g, _, obs := newTestGate(t)
	ctx := context.Background()

	_, _ = g.Authenticate(ctx, model.RoleStudent, "23IT01", "23IT01")
	_, _ = g.Authenticate(ctx, model.RoleStudent, "23IT01", "nope")

	require.Len(t, obs.attempts, 2)
	assert.NoError(t, obs.attempts[0])
	assert.True(t, errors.Is(obs.attempts[1], ErrBadCredential))
}

func TestLoginCurrentLogout(t *testing.T) {
	g, _, _ := newTestGate(t)
	ctx := context.Background()

	token, sess, err := g.Login(ctx, model.RoleStudent, "23me02", "23ME02")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, model.RoleStudent, sess.Role())

	current, err := g.Current(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, sess, current)

	require.NoError(t, g.Logout(ctx, token))
	_, err = g.Current(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)

	// Idempotent.
	assert.NoError(t, g.Logout(ctx, token))
	assert.NoError(t, g.Logout(ctx, ""))
}

func TestLoginFailureCreatesNoSession(t *testing.T) {
	g, _, _ := newTestGate(t)

	token, sess, err := g.Login(context.Background(), model.RoleAdmin, "admin", "bad")
	assert.ErrorIs(t, err, ErrBadCredential)
	assert.Empty(t, token)
	assert.Nil(t, sess)
}

func TestCurrentWithoutToken(t *testing.T) {
	g, _, _ := newTestGate(t)

	_, err := g.Current(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = g.Current(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrNoSession)
}
