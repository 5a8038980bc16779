package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/pairtrack/pairtrack/internal/model"
)

var ErrGoalNotFound = errors.New("goal not found")

type GoalRepository interface {
	Create(goal *model.Goal) error
	ByID(id string) (*model.Goal, error)
	ByPair(pairID string) ([]*model.Goal, error)
	Update(goal *model.Goal) error
	UpdateProgress(id string, progress int, at time.Time) error
}

type goalRepository struct {
	db DBTX
}

func NewGoalRepository(db DBTX) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(goal *model.Goal) error {
	query := `INSERT INTO goals (id, pair_id, owner_user_id, title, notes, status, progress, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		goal.ID,
		goal.PairID,
		goal.OwnerUserID,
		goal.Title,
		goal.Notes,
		goal.Status,
		goal.Progress,
		goal.CreatedAt,
		goal.UpdatedAt,
	)

	return err
}

func (r *goalRepository) ByID(id string) (*model.Goal, error) {
	goal := &model.Goal{}
	err := r.db.Get(goal, `SELECT * FROM goals WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// ByPair lists goals in creation order.
func (r *goalRepository) ByPair(pairID string) ([]*model.Goal, error) {
	var goals []*model.Goal
	err := r.db.Select(&goals, `SELECT * FROM goals WHERE pair_id = $1 ORDER BY created_at ASC, id ASC`, pairID)
	if err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *goalRepository) Update(goal *model.Goal) error {
	query := `UPDATE goals
	          SET title = $1, notes = $2, status = $3, progress = $4, updated_at = $5
	          WHERE id = $6`

	result, err := r.db.Exec(query,
		goal.Title,
		goal.Notes,
		goal.Status,
		goal.Progress,
		goal.UpdatedAt,
		goal.ID,
	)
	if err != nil {
		return err
	}
	return rowsAffected(result, ErrGoalNotFound)
}

func (r *goalRepository) UpdateProgress(id string, progress int, at time.Time) error {
	result, err := r.db.Exec(`UPDATE goals SET progress = $1, updated_at = $2 WHERE id = $3`, progress, at, id)
	if err != nil {
		return err
	}
	return rowsAffected(result, ErrGoalNotFound)
}
