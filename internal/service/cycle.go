package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pairtrack/pairtrack/internal/events"
	"github.com/pairtrack/pairtrack/internal/metrics"
	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/repository"
)

var (
	ErrNoActiveCycle        = newUserError("there is no active week, reset or start one first")
	ErrMultipleActiveCycles = errors.New("more than one weekly cycle is active")
	ErrInvalidRange         = newUserError("week start must be before week end")
	ErrCycleNotFound        = errors.New("weekly cycle not found")
)

// CycleArchiver receives cycles after they have been archived.
type CycleArchiver interface {
	ArchiveCycle(ctx context.Context, cycle *model.WeeklyCycle) error
}

// CycleService manages the weekly cycle. At most one cycle is active.
type CycleService struct {
	store    *repository.Store
	bus      *events.Bus
	archiver CycleArchiver
	loc      *time.Location
	now      func() time.Time
}

func NewCycleService(store *repository.Store, bus *events.Bus, loc *time.Location) *CycleService {
	if loc == nil {
		loc = time.UTC
	}
	return &CycleService{
		store: store,
		bus:   bus,
		loc:   loc,
		now:   utcNow,
	}
}

func (s *CycleService) SetArchiver(archiver CycleArchiver) {
	s.archiver = archiver
}

func (s *CycleService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *CycleService) Active() (*model.WeeklyCycle, error) {
	cycle, err := s.store.Cycles.Active()
	if errors.Is(err, repository.ErrCycleNotFound) {
		return nil, ErrNoActiveCycle
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active cycle: %w", err)
	}
	return cycle, nil
}

func (s *CycleService) ByID(id string) (*model.WeeklyCycle, error) {
	cycle, err := s.store.Cycles.ByID(id)
	if errors.Is(err, repository.ErrCycleNotFound) {
		return nil, ErrCycleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cycle: %w", err)
	}
	return cycle, nil
}

// History lists archived cycles, newest first.
func (s *CycleService) History(limit int) ([]*model.WeeklyCycle, error) {
	cycles, err := s.store.Cycles.ByStatus(model.CycleStatusArchived, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived cycles: %w", err)
	}
	return cycles, nil
}

// ResetToCurrentWeek points the active cycle at the Monday..Sunday containing
// now and clears its pairs. Without an active cycle a new one is created.
func (s *CycleService) ResetToCurrentWeek() (*model.WeeklyCycle, error) {
	start, end := model.WeekSpan(s.now(), s.loc)
	return s.resetTo("reset", start, end)
}

// SetManualRange behaves like ResetToCurrentWeek with explicit dates.
func (s *CycleService) SetManualRange(start, end time.Time) (*model.WeeklyCycle, error) {
	start, end = model.Date(start), model.Date(end)
	if !start.Before(end) {
		return nil, ErrInvalidRange
	}
	return s.resetTo("range", start, end)
}

func (s *CycleService) resetTo(action string, start, end time.Time) (*model.WeeklyCycle, error) {
	now := s.now()
	var cycle *model.WeeklyCycle
	var cleared int64

	err := s.store.InTx(func(r *repository.Repositories) error {
		active, err := activeCycle(r)
		if err != nil {
			return err
		}

		if active == nil {
			cycle = &model.WeeklyCycle{
				ID:            uuid.New().String(),
				WeekStartDate: start,
				WeekEndDate:   end,
				Status:        model.CycleStatusActive,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			return r.Cycles.Create(cycle)
		}

		active.WeekStartDate = start
		active.WeekEndDate = end
		active.Status = model.CycleStatusActive
		active.UpdatedAt = now
		err = r.Cycles.Update(active)
		if err != nil {
			return err
		}

		cleared, err = r.Pairs.DeleteByCycle(active.ID)
		if err != nil {
			return fmt.Errorf("failed to clear pairs: %w", err)
		}
		cycle = active
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset week: %w", err)
	}

	metrics.RecordCycleTransition(action)
	s.publish(events.TypeCycleReset, cycle)
	slog.Info("week reset",
		"cycle_id", cycle.ID,
		"start", model.FormatDate(cycle.WeekStartDate),
		"end", model.FormatDate(cycle.WeekEndDate),
		"pairs_cleared", cleared,
	)
	return cycle, nil
}

// StartNewWeek archives the active cycle and activates the week after the
// current one. Archived pairs stay queryable.
func (s *CycleService) StartNewWeek(ctx context.Context) (*model.WeeklyCycle, error) {
	now := s.now()
	start, end := model.WeekSpan(now, s.loc)
	start, end = start.AddDate(0, 0, 7), end.AddDate(0, 0, 7)

	var archived, next *model.WeeklyCycle

	err := s.store.InTx(func(r *repository.Repositories) error {
		active, err := activeCycle(r)
		if err != nil {
			return err
		}

		if active != nil {
			active.Status = model.CycleStatusArchived
			active.UpdatedAt = now
			err = r.Cycles.Update(active)
			if err != nil {
				return fmt.Errorf("failed to archive cycle: %w", err)
			}
			archived = active
		}

		next = &model.WeeklyCycle{
			ID:            uuid.New().String(),
			WeekStartDate: start,
			WeekEndDate:   end,
			Status:        model.CycleStatusActive,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return r.Cycles.Create(next)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start new week: %w", err)
	}

	metrics.RecordCycleTransition("start")
	s.publish(events.TypeCycleRolled, next)
	slog.Info("new week started", "cycle_id", next.ID, "start", model.FormatDate(next.WeekStartDate))

	if archived != nil && s.archiver != nil {
		err = s.archiver.ArchiveCycle(ctx, archived)
		if err != nil {
			slog.Error("failed to archive cycle report", "error", err, "cycle_id", archived.ID)
		}
	}

	return next, nil
}

func (s *CycleService) publish(eventType string, cycle *model.WeeklyCycle) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{
		Type: eventType,
		Attrs: map[string]string{
			"cycle_id": cycle.ID,
			"start":    model.FormatDate(cycle.WeekStartDate),
			"end":      model.FormatDate(cycle.WeekEndDate),
		},
	})
}

// activeCycle loads the active cycle inside a transaction, nil when there is
// none, and refuses to continue if more than one row is active.
func activeCycle(r *repository.Repositories) (*model.WeeklyCycle, error) {
	cycles, err := r.Cycles.ActiveAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load active cycle: %w", err)
	}
	switch len(cycles) {
	case 0:
		return nil, nil
	case 1:
		return cycles[0], nil
	default:
		return nil, ErrMultipleActiveCycles
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}
