package repository

import (
	"github.com/pairtrack/pairtrack/internal/model"
)

type CommentRepository interface {
	Create(comment *model.Comment) error
	ByPair(pairID string) ([]*model.Comment, error)
}

type commentRepository struct {
	db DBTX
}

func NewCommentRepository(db DBTX) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(comment *model.Comment) error {
	_, err := r.db.Exec(`INSERT INTO comments (id, pair_id, user_id, body, created_at) VALUES ($1, $2, $3, $4, $5)`,
		comment.ID, comment.PairID, comment.UserID, comment.Body, comment.CreatedAt)
	return err
}

// ByPair lists comments oldest first.
func (r *commentRepository) ByPair(pairID string) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Select(&comments, `SELECT * FROM comments WHERE pair_id = $1 ORDER BY created_at ASC, id ASC`, pairID)
	if err != nil {
		return nil, err
	}
	return comments, nil
}
