package model

import (
	"time"
)

const (
	GoalStatusNotStarted = "not_started"
	GoalStatusInProgress = "in_progress"
	GoalStatusBlocked    = "blocked"
	GoalStatusDone       = "done"
)

var GoalStatuses = []string{
	GoalStatusNotStarted,
	GoalStatusInProgress,
	GoalStatusBlocked,
	GoalStatusDone,
}

type Goal struct {
	ID          string    `db:"id"`
	PairID      string    `db:"pair_id"`
	OwnerUserID string    `db:"owner_user_id"`
	Title       string    `db:"title"`
	Notes       *string   `db:"notes"`
	Status      string    `db:"status"`
	Progress    int       `db:"progress"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func ValidGoalStatus(status string) bool {
	for _, s := range GoalStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func ValidProgress(progress int) bool {
	return progress >= 0 && progress <= 100
}
