package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/pairtrack/pairtrack/internal/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository interface {
	Create(profile *model.Profile) error
	ByID(id string) (*model.Profile, error)
	All() ([]*model.Profile, error)
	ByRole(role string) ([]*model.Profile, error)
	UpdateRole(id, role string) error
	UpdateName(id, name string) error
}

type profileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(profile *model.Profile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = now
	}
	if profile.Role == "" {
		profile.Role = model.RoleMember
	}

	_, err := r.db.Exec(`
		INSERT INTO profiles (id, full_name, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, profile.ID, profile.FullName, profile.Email, profile.Role, profile.CreatedAt, profile.UpdatedAt)

	return err
}

func (r *profileRepository) ByID(id string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.Get(&profile, `SELECT * FROM profiles WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) All() ([]*model.Profile, error) {
	var profiles []*model.Profile
	err := r.db.Select(&profiles, `SELECT * FROM profiles ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) ByRole(role string) ([]*model.Profile, error) {
	var profiles []*model.Profile
	err := r.db.Select(&profiles, `SELECT * FROM profiles WHERE role = $1 ORDER BY created_at ASC, id ASC`, role)
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) UpdateRole(id, role string) error {
	result, err := r.db.Exec(`
		UPDATE profiles
		SET role = $1, updated_at = $2
		WHERE id = $3
	`, role, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return rowsAffected(result, ErrProfileNotFound)
}

func (r *profileRepository) UpdateName(id, name string) error {
	result, err := r.db.Exec(`
		UPDATE profiles
		SET full_name = $1, updated_at = $2
		WHERE id = $3
	`, name, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return rowsAffected(result, ErrProfileNotFound)
}
