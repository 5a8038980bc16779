package model

import "time"

type Comment struct {
	ID        string    `db:"id"`
	PairID    string    `db:"pair_id"`
	UserID    string    `db:"user_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}
