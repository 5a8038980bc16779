package service

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/pairtrack/pairtrack/internal/events"
	"github.com/pairtrack/pairtrack/internal/metrics"
	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/pairing"
	"github.com/pairtrack/pairtrack/internal/repository"
)

var (
	ErrInvalidPairSelection = newUserError("pick two different unpaired members")
	ErrPairNotFound         = errors.New("pair not found")
	ErrNotPairMember        = errors.New("not a member of this pair")
)

// PairNotifier tells a member who their partner is. Nil disables notifications.
type PairNotifier interface {
	SendPairingEmail(email, name, partnerName, weekLabel, pairID string) error
}

type AutoPairResult struct {
	Cycle    *model.WeeklyCycle
	Pairs    []model.PairWithMembers
	Unpaired []*model.Profile
}

// PairingOverview is the admin view of the active week.
type PairingOverview struct {
	Cycle    *model.WeeklyCycle
	Pairs    []model.PairWithMembers
	Members  []*model.Profile
	Unpaired []*model.Profile
}

type PairingService struct {
	store    *repository.Store
	bus      *events.Bus
	notifier PairNotifier
	rng      pairing.Source
	now      func() time.Time
}

func NewPairingService(store *repository.Store, bus *events.Bus) *PairingService {
	return &PairingService{
		store: store,
		bus:   bus,
		rng:   pairing.DefaultSource,
		now:   utcNow,
	}
}

func (s *PairingService) SetNotifier(notifier PairNotifier) {
	s.notifier = notifier
}

func (s *PairingService) SetRand(src pairing.Source) {
	s.rng = src
}

// AutoPair replaces every pair of the active cycle with a fresh random pairing
// of all members. With an odd member count one member stays unpaired.
func (s *PairingService) AutoPair() (*AutoPairResult, error) {
	now := s.now()
	var cycle *model.WeeklyCycle
	var members []*model.Profile
	var pairs [][2]string
	var created []*model.Pair

	err := s.store.InTx(func(r *repository.Repositories) error {
		var err error
		cycle, err = activeCycle(r)
		if err != nil {
			return err
		}
		if cycle == nil {
			return ErrNoActiveCycle
		}

		members, err = r.Profiles.ByRole(model.RoleMember)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}

		_, err = r.Pairs.DeleteByCycle(cycle.ID)
		if err != nil {
			return fmt.Errorf("failed to clear pairs: %w", err)
		}

		pairs, _ = pairing.Partition(pairing.Shuffle(profileIDs(members), s.rng))
		created = make([]*model.Pair, 0, len(pairs))
		for _, p := range pairs {
			pair, err := createPair(r, cycle.ID, p[0], p[1], now)
			if err != nil {
				return err
			}
			created = append(created, pair)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("auto pair: %w", err)
	}

	byID := profilesByID(members)
	result := &AutoPairResult{Cycle: cycle}
	paired := make([]string, 0, len(pairs)*2)
	for i, p := range pairs {
		result.Pairs = append(result.Pairs, model.PairWithMembers{
			Pair:    *created[i],
			Members: []model.PairMemberProfile{memberProfile(created[i].ID, byID[p[0]]), memberProfile(created[i].ID, byID[p[1]])},
		})
		paired = append(paired, p[0], p[1])
	}
	for _, id := range pairing.Unpaired(profileIDs(members), paired) {
		result.Unpaired = append(result.Unpaired, byID[id])
	}

	metrics.RecordPairsCreated("auto", len(result.Pairs))
	metrics.RecordUnpaired(len(result.Unpaired))
	slog.Info("auto pairing complete", "cycle_id", cycle.ID, "pairs", len(result.Pairs), "unpaired", len(result.Unpaired))

	for _, p := range result.Pairs {
		s.announce(cycle, p, "auto")
	}
	return result, nil
}

// ManualPair pairs two distinct members who are both unpaired in the active cycle.
func (s *PairingService) ManualPair(idA, idB string) (*model.PairWithMembers, error) {
	if idA == "" || idB == "" || idA == idB {
		return nil, ErrInvalidPairSelection
	}

	now := s.now()
	var cycle *model.WeeklyCycle
	var pair *model.Pair
	var profiles map[string]*model.Profile

	err := s.store.InTx(func(r *repository.Repositories) error {
		var err error
		cycle, err = activeCycle(r)
		if err != nil {
			return err
		}
		if cycle == nil {
			return ErrNoActiveCycle
		}

		members, err := r.Profiles.ByRole(model.RoleMember)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}
		memberships, err := r.Pairs.MembersByCycle(cycle.ID)
		if err != nil {
			return fmt.Errorf("failed to list memberships: %w", err)
		}

		unpaired := pairing.Unpaired(profileIDs(members), membershipUserIDs(memberships))
		if !slices.Contains(unpaired, idA) || !slices.Contains(unpaired, idB) {
			return ErrInvalidPairSelection
		}

		profiles = profilesByID(members)
		pair, err = createPair(r, cycle.ID, idA, idB, now)
		return err
	})
	if errors.Is(err, repository.ErrAlreadyPaired) {
		return nil, ErrInvalidPairSelection
	}
	if err != nil {
		return nil, fmt.Errorf("manual pair: %w", err)
	}

	result := &model.PairWithMembers{
		Pair:    *pair,
		Members: []model.PairMemberProfile{memberProfile(pair.ID, profiles[idA]), memberProfile(pair.ID, profiles[idB])},
	}

	metrics.RecordPairsCreated("manual", 1)
	slog.Info("manual pair created", "cycle_id", cycle.ID, "pair_id", pair.ID)
	s.announce(cycle, *result, "manual")
	return result, nil
}

// RemovePair deletes a pair with its goals, check-ins and comments. Both
// members become unpaired again.
func (s *PairingService) RemovePair(pairID string) error {
	err := s.store.Pairs.Delete(pairID)
	if errors.Is(err, repository.ErrPairNotFound) {
		return ErrPairNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove pair: %w", err)
	}

	metrics.RecordPairRemoved()
	if s.bus != nil {
		s.bus.Publish(events.Event{Type: events.TypePairRemoved, Attrs: map[string]string{"pair_id": pairID}})
	}
	slog.Info("pair removed", "pair_id", pairID)
	return nil
}

// Overview loads the active cycle with its pairs and the unpaired members.
// Without an active cycle every member is unpaired.
func (s *PairingService) Overview() (*PairingOverview, error) {
	members, err := s.store.Profiles.ByRole(model.RoleMember)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	overview := &PairingOverview{Members: members}

	cycle, err := s.store.Cycles.Active()
	if errors.Is(err, repository.ErrCycleNotFound) {
		overview.Unpaired = members
		return overview, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active cycle: %w", err)
	}
	overview.Cycle = cycle

	pairs, err := s.store.Pairs.ByCycle(cycle.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairs: %w", err)
	}
	memberProfiles, err := s.store.Pairs.MemberProfilesByCycle(cycle.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pair members: %w", err)
	}

	byPair := make(map[string][]model.PairMemberProfile, len(pairs))
	paired := make([]string, 0, len(memberProfiles))
	for _, m := range memberProfiles {
		byPair[m.PairID] = append(byPair[m.PairID], m)
		paired = append(paired, m.UserID)
	}
	for _, p := range pairs {
		overview.Pairs = append(overview.Pairs, model.PairWithMembers{Pair: *p, Members: byPair[p.ID]})
	}

	byID := profilesByID(members)
	for _, id := range pairing.Unpaired(profileIDs(members), paired) {
		overview.Unpaired = append(overview.Unpaired, byID[id])
	}
	return overview, nil
}

// ActivePairForUser returns the ids of the active cycle's pairs containing userID.
func (s *PairingService) ActivePairForUser(userID string) ([]string, error) {
	cycle, err := s.store.Cycles.Active()
	if errors.Is(err, repository.ErrCycleNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active cycle: %w", err)
	}

	ids, err := s.store.Pairs.PairIDsForUser(cycle.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up pair: %w", err)
	}
	return ids, nil
}

// PairMembersSecure returns both members of a pair, but only to one of them.
func (s *PairingService) PairMembersSecure(pairID, callerID string) ([]model.PairMemberProfile, error) {
	members, err := s.store.Pairs.MemberProfilesSecure(pairID, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pair members: %w", err)
	}
	if len(members) == 0 {
		return nil, ErrNotPairMember
	}
	return members, nil
}

func (s *PairingService) announce(cycle *model.WeeklyCycle, pair model.PairWithMembers, mode string) {
	if s.bus != nil {
		for _, m := range pair.Members {
			s.bus.Publish(events.Event{
				Type:   events.TypePaired,
				UserID: m.UserID,
				Attrs:  map[string]string{"pair_id": pair.ID, "cycle_id": cycle.ID, "mode": mode},
			})
		}
	}

	if s.notifier == nil || len(pair.Members) != 2 {
		return
	}
	for i, m := range pair.Members {
		partner := pair.Members[1-i]
		if m.Email == nil || *m.Email == "" {
			continue
		}
		err := s.notifier.SendPairingEmail(*m.Email, m.DisplayName(), partner.DisplayName(), cycle.Label(), pair.ID)
		if err != nil {
			slog.Warn("failed to send pairing email", "error", err, "user_id", m.UserID, "pair_id", pair.ID)
		}
	}
}

func createPair(r *repository.Repositories, cycleID, idA, idB string, now time.Time) (*model.Pair, error) {
	pair := &model.Pair{
		ID:            uuid.New().String(),
		WeeklyCycleID: cycleID,
		CreatedAt:     now,
	}
	err := r.Pairs.Create(pair)
	if err != nil {
		return nil, fmt.Errorf("failed to create pair: %w", err)
	}

	for _, userID := range []string{idA, idB} {
		err = r.Pairs.AddMember(&model.PairMember{PairID: pair.ID, UserID: userID, WeeklyCycleID: cycleID})
		if err != nil {
			return nil, fmt.Errorf("failed to add pair member: %w", err)
		}
	}
	return pair, nil
}

func memberProfile(pairID string, p *model.Profile) model.PairMemberProfile {
	m := model.PairMemberProfile{PairID: pairID}
	if p != nil {
		m.UserID = p.ID
		m.FullName = p.FullName
		m.Email = p.Email
	}
	return m
}

func profileIDs(profiles []*model.Profile) []string {
	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	return ids
}

func profilesByID(profiles []*model.Profile) map[string]*model.Profile {
	m := make(map[string]*model.Profile, len(profiles))
	for _, p := range profiles {
		m[p.ID] = p
	}
	return m
}

func membershipUserIDs(members []*model.PairMember) []string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	return ids
}
