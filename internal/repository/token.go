package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pairtrack/pairtrack/internal/model"
)

var ErrTokenNotFound = errors.New("token not found")

type TokenRepository interface {
	Create(token *model.Token) error
	ConsumeToken(token string, now time.Time) (*model.Token, error)
	DeleteByUserAndType(userID, tokenType string) error
}

type tokenRepository struct {
	db DBTX
}

func NewTokenRepository(db DBTX) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(token *model.Token) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO tokens (id, user_id, type, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(query,
		token.ID,
		token.UserID,
		token.Type,
		token.Token,
		token.ExpiresAt,
		token.CreatedAt,
	)
	return err
}

// ConsumeToken marks the token as used and returns it in one statement,
// so only the first of two concurrent requests succeeds.
func (r *tokenRepository) ConsumeToken(token string, now time.Time) (*model.Token, error) {
	var t model.Token

	query := `
		UPDATE tokens
		SET used_at = $1
		WHERE token = $2
		AND used_at IS NULL
		AND expires_at > $3
		RETURNING *
	`

	err := r.db.Get(&t, query, now, token, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *tokenRepository) DeleteByUserAndType(userID, tokenType string) error {
	_, err := r.db.Exec(`DELETE FROM tokens WHERE user_id = $1 AND type = $2 AND used_at IS NULL`, userID, tokenType)
	return err
}
