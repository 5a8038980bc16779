package service_test

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/repository"
	"github.com/pairtrack/pairtrack/internal/service"
	"github.com/pairtrack/pairtrack/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentPairing struct {
	email, name, partner, week, pairID string
}

type recordingNotifier struct {
	sent []sentPairing
}

func (n *recordingNotifier) SendPairingEmail(email, name, partnerName, weekLabel, pairID string) error {
	n.sent = append(n.sent, sentPairing{email, name, partnerName, weekLabel, pairID})
	return nil
}

type pairingFixture struct {
	store   *repository.Store
	cycles  *service.CycleService
	pairing *service.PairingService
	members []*model.Profile
}

func newPairingFixture(t *testing.T, names ...string) *pairingFixture {
	t.Helper()

	store := testutil.NewStore(t)
	f := &pairingFixture{
		store:   store,
		cycles:  service.NewCycleService(store, nil, time.UTC),
		pairing: service.NewPairingService(store, nil),
		members: testutil.CreateMembers(t, store, names...),
	}
	f.cycles.SetClock(func() time.Time { return testNow })
	f.pairing.SetRand(rand.New(rand.NewPCG(1, 2)))

	_, err := f.cycles.ResetToCurrentWeek()
	require.NoError(t, err)
	return f
}

func TestAutoPairEvenMembers(t *testing.T) {
	f := newPairingFixture(t, "ada", "bob", "cy", "dee", "eve", "fox")

	result, err := f.pairing.AutoPair()
	require.NoError(t, err)

	require.Len(t, result.Pairs, 3)
	assert.Empty(t, result.Unpaired)

	seen := map[string]bool{}
	for _, p := range result.Pairs {
		require.Len(t, p.Members, 2)
		assert.NotEqual(t, p.Members[0].UserID, p.Members[1].UserID)
		for _, m := range p.Members {
			assert.False(t, seen[m.UserID], "member paired twice")
			seen[m.UserID] = true
		}
	}
	assert.Len(t, seen, 6)

	memberships, err := f.store.Pairs.MembersByCycle(result.Cycle.ID)
	require.NoError(t, err)
	assert.Len(t, memberships, 6)
}

func TestAutoPairOddMembersLeavesOneUnpaired(t *testing.T) {
	f := newPairingFixture(t, "ada", "bob", "cy", "dee", "eve")

	result, err := f.pairing.AutoPair()
	require.NoError(t, err)

	assert.Len(t, result.Pairs, 2)
	require.Len(t, result.Unpaired, 1)

	overview, err := f.pairing.Overview()
	require.NoError(t, err)
	require.Len(t, overview.Unpaired, 1)
	assert.Equal(t, result.Unpaired[0].ID, overview.Unpaired[0].ID)
}

func TestAutoPairReplacesExistingPairs(t *testing.T) {
	f := newPairingFixture(t, "ada", "bob", "cy", "dee")

	_, err := f.pairing.AutoPair()
	require.NoError(t, err)
	second, err := f.pairing.AutoPair()
	require.NoError(t, err)

	pairs, err := f.store.Pairs.ByCycle(second.Cycle.ID)
	require.NoError(t, err)
	assert.Len(t, pairs, 2)
}

func TestAutoPairSkipsAdmins(t *testing.T) {
	f := newPairingFixture(t, "ada", "bob")
	testutil.CreateUser(t, f.store, "root", model.RoleAdmin)

	result, err := f.pairing.AutoPair()
	require.NoError(t, err)
	assert.Len(t, result.Pairs, 1)
	assert.Empty(t, result.Unpaired)
}

func TestAutoPairRequiresActiveCycle(t *testing.T) {
	store := testutil.NewStore(t)
	testutil.CreateMembers(t, store, "ada", "bob")

	_, err := service.NewPairingService(store, nil).AutoPair()
	require.ErrorIs(t, err, service.ErrNoActiveCycle)
}

func TestManualPair(t *testing.T) {
	f := newPairingFixture(t, "ada", "bob", "cy")
	ada, bob, cy := f.members[0], f.members[1], f.members[2]

	pair, err := f.pairing.ManualPair(ada.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, pair.Members, 2)

	overview, err := f.pairing.Overview()
	require.NoError(t, err)
	require.Len(t, overview.Unpaired, 1)
	assert.Equal(t, cy.ID, overview.Unpaired[0].ID)

	tests := []struct {
		name string
		a, b string
	}{
		{"same member", cy.ID, cy.ID},
		{"empty id", cy.ID, ""},
		{"already paired", cy.ID, ada.ID},
		{"both paired", ada.ID, bob.ID},
		{"unknown member", cy.ID, "nobody"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.pairing.ManualPair(tt.a, tt.b)
			require.ErrorIs(t, err, service.ErrInvalidPairSelection)

			msg, ok := service.UserMessage(err)
			assert.True(t, ok)
			assert.Equal(t, "pick two different unpaired members", msg)
		})
	}
}

func TestRemovePairReturnsMembersToUnpaired(t *testing.T) {
	f := newPairingFixture(t, "ada", "bob")

	pair, err := f.pairing.ManualPair(f.members[0].ID, f.members[1].ID)
	require.NoError(t, err)

	require.NoError(t, f.pairing.RemovePair(pair.ID))

	overview, err := f.pairing.Overview()
	require.NoError(t, err)
	assert.Empty(t, overview.Pairs)
	assert.Len(t, overview.Unpaired, 2)

	err = f.pairing.RemovePair(pair.ID)
	require.ErrorIs(t, err, service.ErrPairNotFound)
}

func TestPairMembersSecure(t *testing.T) {
	f := newPairingFixture(t, "ada", "bob", "cy")
	ada, bob, cy := f.members[0], f.members[1], f.members[2]

	pair, err := f.pairing.ManualPair(ada.ID, bob.ID)
	require.NoError(t, err)

	members, err := f.pairing.PairMembersSecure(pair.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "ada", members[0].DisplayName())
	assert.Equal(t, "bob", members[1].DisplayName())

	_, err = f.pairing.PairMembersSecure(pair.ID, cy.ID)
	require.ErrorIs(t, err, service.ErrNotPairMember)

	ids, err := f.pairing.ActivePairForUser(ada.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{pair.ID}, ids)

	ids, err = f.pairing.ActivePairForUser(cy.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPairingNotifiesMembers(t *testing.T) {
	f := newPairingFixture(t, "ada", "bob")
	notifier := &recordingNotifier{}
	f.pairing.SetNotifier(notifier)

	pair, err := f.pairing.ManualPair(f.members[0].ID, f.members[1].ID)
	require.NoError(t, err)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "ada", notifier.sent[0].name)
	assert.Equal(t, "bob", notifier.sent[0].partner)
	assert.Equal(t, "bob", notifier.sent[1].name)
	assert.Equal(t, "ada", notifier.sent[1].partner)
	assert.Equal(t, pair.ID, notifier.sent[0].pairID)
	assert.Equal(t, "2025-01-06 → 2025-01-12", notifier.sent[0].week)
}

// Odd members, auto pair, roll the week, then try to pair the leftover
// member when nobody else is eligible.
func TestOddMembersAcrossNewWeek(t *testing.T) {
	f := newPairingFixture(t, "ada", "bob", "cy")

	result, err := f.pairing.AutoPair()
	require.NoError(t, err)
	require.Len(t, result.Pairs, 1)
	require.Len(t, result.Unpaired, 1)
	leftover := result.Unpaired[0].ID

	old := result.Cycle
	next, err := f.cycles.StartNewWeek(context.Background())
	require.NoError(t, err)

	archived, err := f.cycles.ByID(old.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CycleStatusArchived, archived.Status)
	assert.Equal(t, model.CycleStatusActive, next.Status)

	overview, err := f.pairing.Overview()
	require.NoError(t, err)
	assert.Empty(t, overview.Pairs)

	// Pair the two previously paired members, leaving only the leftover eligible.
	others := []string{}
	for _, m := range f.members {
		if m.ID != leftover {
			others = append(others, m.ID)
		}
	}
	_, err = f.pairing.ManualPair(others[0], others[1])
	require.NoError(t, err)

	_, err = f.pairing.ManualPair(leftover, others[0])
	require.ErrorIs(t, err, service.ErrInvalidPairSelection)
}
