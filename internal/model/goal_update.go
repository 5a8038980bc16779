package model

import (
	"time"
)

// GoalUpdate is a check-in against a goal. Append-only.
type GoalUpdate struct {
	ID        string    `db:"id"`
	GoalID    string    `db:"goal_id"`
	UserID    string    `db:"user_id"`
	Progress  *int      `db:"progress"`
	Body      *string   `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

// CheckIn is a goal update joined with its goal's title for the room feed.
type CheckIn struct {
	GoalUpdate
	GoalTitle string `db:"goal_title"`
}
