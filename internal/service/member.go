package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/repository"
	"github.com/pairtrack/pairtrack/internal/validation"
)

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrInvalidRole    = newUserError("role must be admin or member")
	ErrSelfDemotion   = newUserError("you cannot remove your own admin role")
)

// MemberService is the member directory: profiles, roles and names.
type MemberService struct {
	store *repository.Store
}

func NewMemberService(store *repository.Store) *MemberService {
	return &MemberService{store: store}
}

func (s *MemberService) ByID(id string) (*model.Profile, error) {
	profile, err := s.store.Profiles.ByID(id)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// All lists every profile in sign-up order.
func (s *MemberService) All() ([]*model.Profile, error) {
	profiles, err := s.store.Profiles.All()
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// Members lists profiles with role member in sign-up order. Only they are paired.
func (s *MemberService) Members() ([]*model.Profile, error) {
	profiles, err := s.store.Profiles.ByRole(model.RoleMember)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return profiles, nil
}

func (s *MemberService) SetRole(actorID, userID, role string) error {
	role = strings.TrimSpace(strings.ToLower(role))
	if !model.ValidRole(role) {
		return ErrInvalidRole
	}
	if actorID == userID && role != model.RoleAdmin {
		return ErrSelfDemotion
	}

	err := s.store.Profiles.UpdateRole(userID, role)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return ErrMemberNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	slog.Info("role updated", "actor_id", actorID, "user_id", userID, "role", role)
	return nil
}

func (s *MemberService) UpdateName(userID, name string) error {
	name = strings.TrimSpace(name)
	err := validation.ValidateName(name)
	if err != nil {
		return asUserError(err)
	}

	err = s.store.Profiles.UpdateName(userID, name)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return ErrMemberNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update name: %w", err)
	}
	return nil
}
