package repository

import (
	"database/sql"
	"errors"

	"github.com/pairtrack/pairtrack/internal/model"
)

var (
	ErrCycleNotFound     = errors.New("weekly cycle not found")
	ErrActiveCycleExists = errors.New("another weekly cycle is already active")
)

type WeeklyCycleRepository interface {
	Create(cycle *model.WeeklyCycle) error
	ByID(id string) (*model.WeeklyCycle, error)
	// Active returns the single active cycle, or ErrCycleNotFound.
	Active() (*model.WeeklyCycle, error)
	// ActiveAll returns every active row; used to assert the single-active invariant.
	ActiveAll() ([]*model.WeeklyCycle, error)
	ByStatus(status string, limit int) ([]*model.WeeklyCycle, error)
	Update(cycle *model.WeeklyCycle) error
}

type weeklyCycleRepository struct {
	db DBTX
}

func NewWeeklyCycleRepository(db DBTX) WeeklyCycleRepository {
	return &weeklyCycleRepository{db: db}
}

func (r *weeklyCycleRepository) Create(cycle *model.WeeklyCycle) error {
	query := `INSERT INTO weekly_cycles (id, week_start_date, week_end_date, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		cycle.ID,
		cycle.WeekStartDate,
		cycle.WeekEndDate,
		cycle.Status,
		cycle.CreatedAt,
		cycle.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrActiveCycleExists
	}
	return err
}

func (r *weeklyCycleRepository) ByID(id string) (*model.WeeklyCycle, error) {
	cycle := &model.WeeklyCycle{}
	err := r.db.Get(cycle, `SELECT * FROM weekly_cycles WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCycleNotFound
	}
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

func (r *weeklyCycleRepository) Active() (*model.WeeklyCycle, error) {
	cycle := &model.WeeklyCycle{}
	err := r.db.Get(cycle, `SELECT * FROM weekly_cycles WHERE status = $1 LIMIT 1`, model.CycleStatusActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCycleNotFound
	}
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

func (r *weeklyCycleRepository) ActiveAll() ([]*model.WeeklyCycle, error) {
	var cycles []*model.WeeklyCycle
	err := r.db.Select(&cycles, `SELECT * FROM weekly_cycles WHERE status = $1`, model.CycleStatusActive)
	if err != nil {
		return nil, err
	}
	return cycles, nil
}

func (r *weeklyCycleRepository) ByStatus(status string, limit int) ([]*model.WeeklyCycle, error) {
	var cycles []*model.WeeklyCycle
	query := `SELECT * FROM weekly_cycles WHERE status = $1 ORDER BY week_start_date DESC, created_at DESC LIMIT $2`
	err := r.db.Select(&cycles, query, status, limit)
	if err != nil {
		return nil, err
	}
	return cycles, nil
}

func (r *weeklyCycleRepository) Update(cycle *model.WeeklyCycle) error {
	query := `UPDATE weekly_cycles
	          SET week_start_date = $1, week_end_date = $2, status = $3, updated_at = $4
	          WHERE id = $5`

	result, err := r.db.Exec(query,
		cycle.WeekStartDate,
		cycle.WeekEndDate,
		cycle.Status,
		cycle.UpdatedAt,
		cycle.ID,
	)
	if isUniqueViolation(err) {
		return ErrActiveCycleExists
	}
	if err != nil {
		return err
	}
	return rowsAffected(result, ErrCycleNotFound)
}
