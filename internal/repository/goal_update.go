package repository

import (
	"github.com/pairtrack/pairtrack/internal/model"
)

type GoalUpdateRepository interface {
	Create(update *model.GoalUpdate) error
	// RecentByPair returns the newest check-ins across the pair's goals.
	RecentByPair(pairID string, limit int) ([]*model.CheckIn, error)
	CountByGoal(goalID string) (int, error)
}

type goalUpdateRepository struct {
	db DBTX
}

func NewGoalUpdateRepository(db DBTX) GoalUpdateRepository {
	return &goalUpdateRepository{db: db}
}

func (r *goalUpdateRepository) Create(update *model.GoalUpdate) error {
	query := `INSERT INTO goal_updates (id, goal_id, user_id, progress, body, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		update.ID,
		update.GoalID,
		update.UserID,
		update.Progress,
		update.Body,
		update.CreatedAt,
	)
	return err
}

func (r *goalUpdateRepository) RecentByPair(pairID string, limit int) ([]*model.CheckIn, error) {
	var checkIns []*model.CheckIn
	query := `SELECT gu.id, gu.goal_id, gu.user_id, gu.progress, gu.body, gu.created_at,
		COALESCE(NULLIF(g.title, ''), '(goal)') AS goal_title
		FROM goal_updates gu
		JOIN goals g ON g.id = gu.goal_id
		WHERE g.pair_id = $1
		ORDER BY gu.created_at DESC, gu.id DESC
		LIMIT $2`
	err := r.db.Select(&checkIns, query, pairID, limit)
	if err != nil {
		return nil, err
	}
	return checkIns, nil
}

func (r *goalUpdateRepository) CountByGoal(goalID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM goal_updates WHERE goal_id = $1`, goalID).Scan(&count)
	return count, err
}
