package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pairtrack/pairtrack/internal/events"
	"github.com/pairtrack/pairtrack/internal/metrics"
	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/repository"
)

const DefaultRecentCheckIns = 20

var (
	ErrTitleRequired   = newUserError("goal title is required")
	ErrBodyRequired    = newUserError("comment cannot be empty")
	ErrInvalidProgress = newUserError("progress must be between 0 and 100")
	ErrInvalidStatus   = newUserError("unknown goal status")
	ErrNotGoalOwner    = newUserError("only the goal owner can change it")
	ErrGoalNotFound    = errors.New("goal not found")
)

// RoomView is everything a pair member sees in the room.
type RoomView struct {
	PairID       string
	Me           model.PairMemberProfile
	Partner      *model.PairMemberProfile
	MyGoals      []*model.Goal
	PartnerGoals []*model.Goal
	Comments     []*model.Comment
	CheckIns     []*model.CheckIn
	Names        map[string]string
}

// Name returns the display name of a pair member.
func (v *RoomView) Name(userID string) string {
	if name, ok := v.Names[userID]; ok {
		return name
	}
	return "Member"
}

// GoalPatch carries optional changes to a goal. Nil fields stay untouched.
type GoalPatch struct {
	Progress *int
	Status   *string
}

type RoomService struct {
	store          *repository.Store
	pairing        *PairingService
	bus            *events.Bus
	recentCheckIns int
	now            func() time.Time
}

func NewRoomService(store *repository.Store, pairing *PairingService, bus *events.Bus, recentCheckIns int) *RoomService {
	if recentCheckIns <= 0 {
		recentCheckIns = DefaultRecentCheckIns
	}
	return &RoomService{
		store:          store,
		pairing:        pairing,
		bus:            bus,
		recentCheckIns: recentCheckIns,
		now:            utcNow,
	}
}

func (s *RoomService) SetClock(now func() time.Time) {
	s.now = now
}

// Room loads the room for a caller who belongs to the pair.
func (s *RoomService) Room(pairID, callerID string) (*RoomView, error) {
	members, err := s.pairing.PairMembersSecure(pairID, callerID)
	if err != nil {
		return nil, err
	}

	view := &RoomView{PairID: pairID, Names: make(map[string]string, len(members))}
	for i := range members {
		m := members[i]
		view.Names[m.UserID] = m.DisplayName()
		if m.UserID == callerID {
			view.Me = m
		} else {
			view.Partner = &m
		}
	}

	goals, err := s.store.Goals.ByPair(pairID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	for _, g := range goals {
		if g.OwnerUserID == callerID {
			view.MyGoals = append(view.MyGoals, g)
		} else {
			view.PartnerGoals = append(view.PartnerGoals, g)
		}
	}

	view.Comments, err = s.store.Comments.ByPair(pairID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}

	view.CheckIns, err = s.RecentCheckIns(pairID, s.recentCheckIns)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *RoomService) AddGoal(pairID, ownerID, title, notes string) (*model.Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	_, err := s.pairing.PairMembersSecure(pairID, ownerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	goal := &model.Goal{
		ID:          uuid.New().String(),
		PairID:      pairID,
		OwnerUserID: ownerID,
		Title:       title,
		Notes:       optionalText(notes),
		Status:      model.GoalStatusNotStarted,
		Progress:    0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.store.Goals.Create(goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	metrics.RecordRoomWrite("goal")
	slog.Info("goal created", "goal_id", goal.ID, "pair_id", pairID, "user_id", ownerID)
	return goal, nil
}

// UpdateGoal applies a patch to a goal owned by the caller.
func (s *RoomService) UpdateGoal(goalID, callerID string, patch GoalPatch) (*model.Goal, error) {
	if patch.Progress != nil && !model.ValidProgress(*patch.Progress) {
		return nil, ErrInvalidProgress
	}
	if patch.Status != nil && !model.ValidGoalStatus(*patch.Status) {
		return nil, ErrInvalidStatus
	}

	goal, err := s.ownedGoal(goalID, callerID)
	if err != nil {
		return nil, err
	}

	if patch.Progress != nil {
		goal.Progress = *patch.Progress
	}
	if patch.Status != nil {
		goal.Status = *patch.Status
	}
	goal.UpdatedAt = s.now()

	err = s.store.Goals.Update(goal)
	if err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	metrics.RecordRoomWrite("goal_update")
	return goal, nil
}

func (s *RoomService) AddComment(pairID, userID, body string) (*model.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrBodyRequired
	}

	_, err := s.pairing.PairMembersSecure(pairID, userID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ID:        uuid.New().String(),
		PairID:    pairID,
		UserID:    userID,
		Body:      body,
		CreatedAt: s.now(),
	}
	err = s.store.Comments.Create(comment)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	metrics.RecordRoomWrite("comment")
	return comment, nil
}

// SubmitCheckIn records a check-in and moves the goal's progress with it.
// Both writes commit together.
func (s *RoomService) SubmitCheckIn(goalID, userID string, progress int, note string) (*model.GoalUpdate, error) {
	if !model.ValidProgress(progress) {
		return nil, ErrInvalidProgress
	}

	goal, err := s.ownedGoal(goalID, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	update := &model.GoalUpdate{
		ID:        uuid.New().String(),
		GoalID:    goal.ID,
		UserID:    userID,
		Progress:  &progress,
		Body:      optionalText(note),
		CreatedAt: now,
	}

	err = s.store.InTx(func(r *repository.Repositories) error {
		err := r.GoalUpdates.Create(update)
		if err != nil {
			return fmt.Errorf("failed to insert check-in: %w", err)
		}
		return r.Goals.UpdateProgress(goal.ID, progress, now)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit check-in: %w", err)
	}

	metrics.RecordRoomWrite("check_in")
	if s.bus != nil {
		s.bus.Publish(events.Event{
			Type:   events.TypeCheckIn,
			UserID: userID,
			Attrs:  map[string]string{"goal_id": goal.ID, "pair_id": goal.PairID},
		})
	}
	return update, nil
}

// RecentCheckIns lists the newest check-ins of a pair, each with its goal title.
func (s *RoomService) RecentCheckIns(pairID string, limit int) ([]*model.CheckIn, error) {
	if limit <= 0 {
		limit = DefaultRecentCheckIns
	}
	checkIns, err := s.store.GoalUpdates.RecentByPair(pairID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load check-ins: %w", err)
	}
	return checkIns, nil
}

func (s *RoomService) Goal(goalID string) (*model.Goal, error) {
	goal, err := s.store.Goals.ByID(goalID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

// ownedGoal loads a goal the caller owns inside a pair they still belong to.
func (s *RoomService) ownedGoal(goalID, callerID string) (*model.Goal, error) {
	goal, err := s.Goal(goalID)
	if err != nil {
		return nil, err
	}
	if goal.OwnerUserID != callerID {
		return nil, ErrNotGoalOwner
	}

	_, err = s.pairing.PairMembersSecure(goal.PairID, callerID)
	if err != nil {
		return nil, err
	}
	return goal, nil
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
