package service_test

import (
	"testing"
	"time"

	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roomFixture struct {
	*pairingFixture
	room         *service.RoomService
	pairID       string
	ada, bob, cy *model.Profile
}

func newRoomFixture(t *testing.T) *roomFixture {
	t.Helper()

	f := newPairingFixture(t, "ada", "bob", "cy")
	pair, err := f.pairing.ManualPair(f.members[0].ID, f.members[1].ID)
	require.NoError(t, err)

	return &roomFixture{
		pairingFixture: f,
		room:           service.NewRoomService(f.store, f.pairing, nil, 0),
		pairID:         pair.ID,
		ada:            f.members[0],
		bob:            f.members[1],
		cy:             f.members[2],
	}
}

func TestAddGoal(t *testing.T) {
	f := newRoomFixture(t)

	_, err := f.room.AddGoal(f.pairID, f.ada.ID, "   ", "")
	require.ErrorIs(t, err, service.ErrTitleRequired)

	goal, err := f.room.AddGoal(f.pairID, f.ada.ID, "  Run 20km  ", "  ")
	require.NoError(t, err)
	assert.Equal(t, "Run 20km", goal.Title)
	assert.Nil(t, goal.Notes)
	assert.Equal(t, model.GoalStatusNotStarted, goal.Status)
	assert.Equal(t, 0, goal.Progress)

	stored, err := f.store.Goals.ByID(goal.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Notes)

	_, err = f.room.AddGoal(f.pairID, f.cy.ID, "Sneak in", "")
	require.ErrorIs(t, err, service.ErrNotPairMember)
}

func TestRoomSplitsGoalsByOwner(t *testing.T) {
	f := newRoomFixture(t)

	_, err := f.room.AddGoal(f.pairID, f.ada.ID, "Read a book", "chapter **one**")
	require.NoError(t, err)
	_, err = f.room.AddGoal(f.pairID, f.bob.ID, "Ship the release", "")
	require.NoError(t, err)
	_, err = f.room.AddComment(f.pairID, f.bob.ID, "Good luck!")
	require.NoError(t, err)

	view, err := f.room.Room(f.pairID, f.ada.ID)
	require.NoError(t, err)

	assert.Equal(t, f.ada.ID, view.Me.UserID)
	require.NotNil(t, view.Partner)
	assert.Equal(t, f.bob.ID, view.Partner.UserID)
	require.Len(t, view.MyGoals, 1)
	assert.Equal(t, "Read a book", view.MyGoals[0].Title)
	require.Len(t, view.PartnerGoals, 1)
	assert.Equal(t, "Ship the release", view.PartnerGoals[0].Title)
	require.Len(t, view.Comments, 1)
	assert.Equal(t, "bob", view.Name(view.Comments[0].UserID))

	_, err = f.room.Room(f.pairID, f.cy.ID)
	require.ErrorIs(t, err, service.ErrNotPairMember)
}

func TestUpdateGoal(t *testing.T) {
	f := newRoomFixture(t)
	goal, err := f.room.AddGoal(f.pairID, f.ada.ID, "Meditate", "")
	require.NoError(t, err)

	progress := 40
	status := model.GoalStatusInProgress
	updated, err := f.room.UpdateGoal(goal.ID, f.ada.ID, service.GoalPatch{Progress: &progress, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 40, updated.Progress)
	assert.Equal(t, model.GoalStatusInProgress, updated.Status)

	tooMuch := 101
	_, err = f.room.UpdateGoal(goal.ID, f.ada.ID, service.GoalPatch{Progress: &tooMuch})
	require.ErrorIs(t, err, service.ErrInvalidProgress)

	bogus := "finished"
	_, err = f.room.UpdateGoal(goal.ID, f.ada.ID, service.GoalPatch{Status: &bogus})
	require.ErrorIs(t, err, service.ErrInvalidStatus)

	_, err = f.room.UpdateGoal(goal.ID, f.bob.ID, service.GoalPatch{Progress: &progress})
	require.ErrorIs(t, err, service.ErrNotGoalOwner)

	_, err = f.room.UpdateGoal("missing", f.ada.ID, service.GoalPatch{Progress: &progress})
	require.ErrorIs(t, err, service.ErrGoalNotFound)
}

func TestAddComment(t *testing.T) {
	f := newRoomFixture(t)

	_, err := f.room.AddComment(f.pairID, f.ada.ID, " \n ")
	require.ErrorIs(t, err, service.ErrBodyRequired)

	_, err = f.room.AddComment(f.pairID, f.cy.ID, "hello")
	require.ErrorIs(t, err, service.ErrNotPairMember)

	comment, err := f.room.AddComment(f.pairID, f.ada.ID, "  nice work  ")
	require.NoError(t, err)
	assert.Equal(t, "nice work", comment.Body)
}

func TestSubmitCheckIn(t *testing.T) {
	f := newRoomFixture(t)
	goal, err := f.room.AddGoal(f.pairID, f.ada.ID, "Write daily", "")
	require.NoError(t, err)

	_, err = f.room.SubmitCheckIn(goal.ID, f.ada.ID, 30, "three pages")
	require.NoError(t, err)

	stored, err := f.store.Goals.ByID(goal.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, stored.Progress)

	checkIns, err := f.room.RecentCheckIns(f.pairID, 0)
	require.NoError(t, err)
	require.Len(t, checkIns, 1)
	assert.Equal(t, "Write daily", checkIns[0].GoalTitle)
	require.NotNil(t, checkIns[0].Body)
	assert.Equal(t, "three pages", *checkIns[0].Body)
	require.NotNil(t, checkIns[0].Progress)
	assert.Equal(t, 30, *checkIns[0].Progress)

	_, err = f.room.SubmitCheckIn(goal.ID, f.bob.ID, 50, "")
	require.ErrorIs(t, err, service.ErrNotGoalOwner)

	_, err = f.room.SubmitCheckIn(goal.ID, f.ada.ID, -1, "")
	require.ErrorIs(t, err, service.ErrInvalidProgress)

	stored, err = f.store.Goals.ByID(goal.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, stored.Progress, "rejected check-ins leave progress alone")
}

func TestCheckInRollsBackWhenGoalUpdateFails(t *testing.T) {
	f := newRoomFixture(t)
	goal, err := f.room.AddGoal(f.pairID, f.ada.ID, "Swim", "")
	require.NoError(t, err)

	_, err = f.store.DB().Exec(`CREATE TRIGGER block_progress BEFORE UPDATE OF progress ON goals
		BEGIN SELECT RAISE(ABORT, 'progress locked'); END`)
	require.NoError(t, err)

	_, err = f.room.SubmitCheckIn(goal.ID, f.ada.ID, 80, "lap")
	require.Error(t, err)

	count, err := f.store.GoalUpdates.CountByGoal(goal.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecentCheckInsNewestFirstWithLimit(t *testing.T) {
	f := newRoomFixture(t)
	goal, err := f.room.AddGoal(f.pairID, f.ada.ID, "Stretch", "")
	require.NoError(t, err)

	clock := testNow
	f.room.SetClock(func() time.Time { return clock })
	for i := 1; i <= 5; i++ {
		clock = clock.Add(time.Minute)
		_, err = f.room.SubmitCheckIn(goal.ID, f.ada.ID, i*10, "")
		require.NoError(t, err)
	}

	checkIns, err := f.room.RecentCheckIns(f.pairID, 3)
	require.NoError(t, err)
	require.Len(t, checkIns, 3)
	assert.Equal(t, 50, *checkIns[0].Progress)
	assert.Equal(t, 30, *checkIns[2].Progress)
	assert.Nil(t, checkIns[0].Body)
}
