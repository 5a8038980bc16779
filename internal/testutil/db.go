// Package testutil provides a migrated SQLite store and fixtures for tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pairtrack/pairtrack/internal/db"
	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/repository"
	"github.com/stretchr/testify/require"
)

// NewStore opens a fresh SQLite database in a temp dir with all migrations applied.
func NewStore(t *testing.T) *repository.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pairtrack.db")
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite"

	conn, err := db.Init("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.RunMigrations(conn.DB, "sqlite"))
	return repository.NewStore(conn)
}

// CreateUser inserts a verified user with a profile of the given role.
func CreateUser(t *testing.T, store *repository.Store, name, role string) *model.Profile {
	t.Helper()
	return createUserAt(t, store, name, role, time.Now().UTC())
}

func createUserAt(t *testing.T, store *repository.Store, name, role string, now time.Time) *model.Profile {
	t.Helper()

	id := uuid.New().String()
	email := fmt.Sprintf("%s-%s@example.com", strings.ToLower(name), id[:8])

	user := &model.User{ID: id, Email: email, EmailVerifiedAt: &now, CreatedAt: now}
	require.NoError(t, store.Users.Create(user))

	profile := &model.Profile{
		ID:        id,
		FullName:  &name,
		Email:     &email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.Profiles.Create(profile))
	return profile
}

// CreateMembers inserts one member per name, in order.
func CreateMembers(t *testing.T, store *repository.Store, names ...string) []*model.Profile {
	t.Helper()

	base := time.Now().UTC().Truncate(time.Second)
	profiles := make([]*model.Profile, 0, len(names))
	for i, name := range names {
		at := base.Add(time.Duration(i) * time.Second)
		profiles = append(profiles, createUserAt(t, store, name, model.RoleMember, at))
	}
	return profiles
}

// Clock is a settable time source.
type Clock struct {
	T time.Time
}

func (c *Clock) Now() time.Time {
	return c.T
}

func (c *Clock) Advance(d time.Duration) {
	c.T = c.T.Add(d)
}
