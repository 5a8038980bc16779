package repository

import (
	"database/sql"
	"errors"

	"github.com/pairtrack/pairtrack/internal/model"
)

var (
	ErrPairNotFound  = errors.New("pair not found")
	ErrAlreadyPaired = errors.New("user is already paired in this cycle")
)

const memberProfileColumns = `pm.pair_id, pm.user_id, p.full_name, p.email`

type PairRepository interface {
	Create(pair *model.Pair) error
	AddMember(member *model.PairMember) error
	ByID(id string) (*model.Pair, error)
	ByCycle(cycleID string) ([]*model.Pair, error)
	Delete(id string) error
	DeleteByCycle(cycleID string) (int64, error)
	MembersByCycle(cycleID string) ([]*model.PairMember, error)
	MemberProfilesByCycle(cycleID string) ([]model.PairMemberProfile, error)
	// MemberProfilesSecure returns the pair's members only when callerID is one of them.
	MemberProfilesSecure(pairID, callerID string) ([]model.PairMemberProfile, error)
	PairIDsForUser(cycleID, userID string) ([]string, error)
}

type pairRepository struct {
	db DBTX
}

func NewPairRepository(db DBTX) PairRepository {
	return &pairRepository{db: db}
}

func (r *pairRepository) Create(pair *model.Pair) error {
	_, err := r.db.Exec(`INSERT INTO pairs (id, weekly_cycle_id, created_at) VALUES ($1, $2, $3)`,
		pair.ID, pair.WeeklyCycleID, pair.CreatedAt)
	return err
}

func (r *pairRepository) AddMember(member *model.PairMember) error {
	_, err := r.db.Exec(`INSERT INTO pair_members (pair_id, user_id, weekly_cycle_id) VALUES ($1, $2, $3)`,
		member.PairID, member.UserID, member.WeeklyCycleID)
	if isUniqueViolation(err) {
		return ErrAlreadyPaired
	}
	return err
}

func (r *pairRepository) ByID(id string) (*model.Pair, error) {
	pair := &model.Pair{}
	err := r.db.Get(pair, `SELECT * FROM pairs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPairNotFound
	}
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (r *pairRepository) ByCycle(cycleID string) ([]*model.Pair, error) {
	var pairs []*model.Pair
	err := r.db.Select(&pairs, `SELECT * FROM pairs WHERE weekly_cycle_id = $1 ORDER BY created_at ASC, id ASC`, cycleID)
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// Delete removes a pair; memberships, goals, check-ins and comments cascade.
func (r *pairRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM pairs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(result, ErrPairNotFound)
}

func (r *pairRepository) DeleteByCycle(cycleID string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM pairs WHERE weekly_cycle_id = $1`, cycleID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *pairRepository) MembersByCycle(cycleID string) ([]*model.PairMember, error) {
	var members []*model.PairMember
	err := r.db.Select(&members, `SELECT * FROM pair_members WHERE weekly_cycle_id = $1`, cycleID)
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *pairRepository) MemberProfilesByCycle(cycleID string) ([]model.PairMemberProfile, error) {
	var members []model.PairMemberProfile
	query := `SELECT ` + memberProfileColumns + `
		FROM pair_members pm
		JOIN profiles p ON p.id = pm.user_id
		WHERE pm.weekly_cycle_id = $1
		ORDER BY p.created_at ASC, p.id ASC`
	err := r.db.Select(&members, query, cycleID)
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *pairRepository) MemberProfilesSecure(pairID, callerID string) ([]model.PairMemberProfile, error) {
	var members []model.PairMemberProfile
	query := `SELECT ` + memberProfileColumns + `
		FROM pair_members pm
		JOIN profiles p ON p.id = pm.user_id
		WHERE pm.pair_id = $1
		AND EXISTS (
			SELECT 1 FROM pair_members caller
			WHERE caller.pair_id = $1 AND caller.user_id = $2
		)
		ORDER BY p.created_at ASC, p.id ASC`
	err := r.db.Select(&members, query, pairID, callerID)
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *pairRepository) PairIDsForUser(cycleID, userID string) ([]string, error) {
	var ids []string
	err := r.db.Select(&ids, `SELECT pair_id FROM pair_members WHERE weekly_cycle_id = $1 AND user_id = $2`, cycleID, userID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
