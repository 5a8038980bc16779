package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/pairtrack/pairtrack/internal/model"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Create(session *model.Session) error
	ByID(id string) (*model.Session, error)
	Revoke(id string, at time.Time) error
}

type sessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *model.Session) error {
	_, err := r.db.Exec(`
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, session.ID, session.UserID, session.ExpiresAt, session.CreatedAt)
	return err
}

func (r *sessionRepository) ByID(id string) (*model.Session, error) {
	var session model.Session
	err := r.db.Get(&session, `SELECT * FROM sessions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Revoke is idempotent: an already revoked session keeps its first timestamp.
func (r *sessionRepository) Revoke(id string, at time.Time) error {
	_, err := r.db.Exec(`UPDATE sessions SET revoked_at = $1 WHERE id = $2 AND revoked_at IS NULL`, at, id)
	return err
}
