package model

import "time"

type Pair struct {
	ID            string    `db:"id"`
	WeeklyCycleID string    `db:"weekly_cycle_id"`
	CreatedAt     time.Time `db:"created_at"`
}

// PairMember is one of the two membership rows of a pair.
type PairMember struct {
	PairID        string `db:"pair_id"`
	UserID        string `db:"user_id"`
	WeeklyCycleID string `db:"weekly_cycle_id"`
}

// PairMemberProfile is what the membership-checked lookup returns.
type PairMemberProfile struct {
	PairID   string  `db:"pair_id"`
	UserID   string  `db:"user_id"`
	FullName *string `db:"full_name"`
	Email    *string `db:"email"`
}

func (m PairMemberProfile) DisplayName() string {
	p := Profile{FullName: m.FullName, Email: m.Email}
	return p.DisplayName()
}

// PairWithMembers is a pair joined with its member profiles.
type PairWithMembers struct {
	Pair
	Members []PairMemberProfile
}
