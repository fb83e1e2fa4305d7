package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pavelanni/exitsurvey/internal/model"
)

// CreateAuthSession persists a session and returns its token. Sessions do not expire.
func (s *Store) CreateAuthSession(ctx context.Context, sess model.Session) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO auth_sessions (id, role, data, created_at) VALUES (?, ?, ?, ?)`,
		token, string(sess.Role()), string(data), time.Now(),
	)
	if err != nil {
		return "", unavailable(err)
	}
	return token, nil
}

// GetAuthSession returns the session for the given token, or nil if not found.
func (s *Store) GetAuthSession(ctx context.Context, token string) (*model.AuthSession, error) {
	var role, data string
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT role, data, created_at FROM auth_sessions WHERE id = ?`, token,
	).Scan(&role, &data, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable(err)
	}
	sess, err := decodeSession(model.Role(role), []byte(data))
	if err != nil {
		return nil, err
	}
	return &model.AuthSession{Token: token, Session: sess, CreatedAt: createdAt}, nil
}

// DeleteAuthSession removes a session token. Deleting an unknown token is not an error.
func (s *Store) DeleteAuthSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE id = ?`, token)
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func decodeSession(role model.Role, data []byte) (model.Session, error) {
	switch role {
	case model.RoleStudent:
		var st model.StudentSession
		if err := json.Unmarshal(data, &st); err != nil {
			return nil, fmt.Errorf("decode student session: %w", err)
		}
		return st, nil
	case model.RoleAdmin:
		var ad model.AdminSession
		if err := json.Unmarshal(data, &ad); err != nil {
			return nil, fmt.Errorf("decode admin session: %w", err)
		}
		return ad, nil
	}
	return nil, fmt.Errorf("unknown session role %q", role)
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
