package repository

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
)

// DBTX is satisfied by both *sqlx.DB and *sqlx.Tx so every repository
// can run inside or outside a transaction.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Get(dest any, query string, args ...any) error
	Select(dest any, query string, args ...any) error
	QueryRow(query string, args ...any) *sql.Row
}

// Repositories groups every repository bound to the same DBTX.
type Repositories struct {
	Users       UserRepository
	Profiles    ProfileRepository
	Tokens      TokenRepository
	Sessions    SessionRepository
	Cycles      WeeklyCycleRepository
	Pairs       PairRepository
	Goals       GoalRepository
	GoalUpdates GoalUpdateRepository
	Comments    CommentRepository
}

func New(db DBTX) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(db),
		Profiles:    NewProfileRepository(db),
		Tokens:      NewTokenRepository(db),
		Sessions:    NewSessionRepository(db),
		Cycles:      NewWeeklyCycleRepository(db),
		Pairs:       NewPairRepository(db),
		Goals:       NewGoalRepository(db),
		GoalUpdates: NewGoalUpdateRepository(db),
		Comments:    NewCommentRepository(db),
	}
}

// Store exposes repositories bound to the pool plus transactional access.
type Store struct {
	*Repositories
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		Repositories: New(db),
		db:           db,
	}
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

// InTx runs fn with repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) InTx(fn func(r *Repositories) error) (err error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	err = fn(New(tx))
	if err != nil {
		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			slog.Error("failed to roll back transaction", "error", rollbackErr)
		}
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// isUniqueViolation works for both SQLite and PostgreSQL
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value")
}

func rowsAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
