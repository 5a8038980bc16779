//go:build integration

package service_test

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/pairtrack/pairtrack/internal/db"
	"github.com/pairtrack/pairtrack/internal/repository"
	"github.com/pairtrack/pairtrack/internal/service"
	"github.com/pairtrack/pairtrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newPostgresStore(t *testing.T) *repository.Store {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("pairtrack"),
		postgrescontainer.WithUsername("pairtrack"),
		postgrescontainer.WithPassword("pairtrack"),
		postgrescontainer.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := db.Init("pgx", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.RunMigrations(conn.DB, "pgx"))
	return repository.NewStore(conn)
}

func TestWeeklyFlowOnPostgres(t *testing.T) {
	store := newPostgresStore(t)

	cycles := service.NewCycleService(store, nil, time.UTC)
	pairing := service.NewPairingService(store, nil)
	pairing.SetRand(rand.New(rand.NewPCG(7, 7)))
	room := service.NewRoomService(store, pairing, nil, 0)
	reports := service.NewReportService(store, nil)
	cycles.SetArchiver(reports)

	testutil.CreateMembers(t, store, "ada", "bob", "cy", "dee", "eve")

	_, err := cycles.ResetToCurrentWeek()
	require.NoError(t, err)

	result, err := pairing.AutoPair()
	require.NoError(t, err)
	require.Len(t, result.Pairs, 2)
	require.Len(t, result.Unpaired, 1)

	pair := result.Pairs[0]
	owner := pair.Members[0].UserID
	goal, err := room.AddGoal(pair.ID, owner, "Write the report", "")
	require.NoError(t, err)

	_, err = room.SubmitCheckIn(goal.ID, owner, 60, "most sections done")
	require.NoError(t, err)

	view, err := room.Room(pair.ID, owner)
	require.NoError(t, err)
	require.Len(t, view.MyGoals, 1)
	assert.Equal(t, 60, view.MyGoals[0].Progress)
	require.Len(t, view.CheckIns, 1)
	assert.Equal(t, "Write the report", view.CheckIns[0].GoalTitle)

	previous, err := cycles.Active()
	require.NoError(t, err)
	next, err := cycles.StartNewWeek(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, previous.ID, next.ID)

	report, err := reports.Build(previous.ID)
	require.NoError(t, err)
	assert.Len(t, report.Pairs, 2)

	overview, err := pairing.Overview()
	require.NoError(t, err)
	assert.Empty(t, overview.Pairs)
	assert.Len(t, overview.Unpaired, 5)
}
