package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/repository"
	"github.com/pairtrack/pairtrack/internal/storage"
)

// ReportService summarises a cycle and exports archived ones to storage.
type ReportService struct {
	store   *repository.Store
	storage storage.Storage
	now     func() time.Time
}

// NewReportService accepts a nil storage; archiving is then skipped.
func NewReportService(store *repository.Store, storage storage.Storage) *ReportService {
	return &ReportService{store: store, storage: storage, now: utcNow}
}

func (s *ReportService) Build(cycleID string) (*model.CycleReport, error) {
	cycle, err := s.store.Cycles.ByID(cycleID)
	if err != nil {
		if errors.Is(err, repository.ErrCycleNotFound) {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("failed to get cycle: %w", err)
	}

	pairs, err := s.store.Pairs.ByCycle(cycle.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairs: %w", err)
	}
	members, err := s.store.Pairs.MemberProfilesByCycle(cycle.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pair members: %w", err)
	}

	names := make(map[string]string, len(members))
	byPair := make(map[string][]string, len(pairs))
	for _, m := range members {
		names[m.UserID] = m.DisplayName()
		byPair[m.PairID] = append(byPair[m.PairID], m.DisplayName())
	}

	report := &model.CycleReport{
		CycleID:     cycle.ID,
		WeekStart:   model.FormatDate(cycle.WeekStartDate),
		WeekEnd:     model.FormatDate(cycle.WeekEndDate),
		Status:      cycle.Status,
		GeneratedAt: s.now(),
		Pairs:       make([]model.CycleReportPair, 0, len(pairs)),
	}

	for _, p := range pairs {
		goals, err := s.store.Goals.ByPair(p.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list goals: %w", err)
		}

		entry := model.CycleReportPair{
			PairID:  p.ID,
			Members: byPair[p.ID],
			Goals:   make([]model.CycleReportGoal, 0, len(goals)),
		}
		for _, g := range goals {
			count, err := s.store.GoalUpdates.CountByGoal(g.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to count check-ins: %w", err)
			}
			entry.Goals = append(entry.Goals, model.CycleReportGoal{
				Owner:    names[g.OwnerUserID],
				Title:    g.Title,
				Status:   g.Status,
				Progress: g.Progress,
				CheckIns: count,
			})
		}
		report.Pairs = append(report.Pairs, entry)
	}

	return report, nil
}

// ArchiveCycle uploads the cycle's report as JSON.
func (s *ReportService) ArchiveCycle(ctx context.Context, cycle *model.WeeklyCycle) error {
	if s.storage == nil {
		slog.Info("report storage disabled, skipping cycle archive", "cycle_id", cycle.ID)
		return nil
	}

	report, err := s.Build(cycle.ID)
	if err != nil {
		return err
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	path := ReportPath(cycle)
	err = s.storage.Save(ctx, path, bytes.NewReader(body), "application/json")
	if err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}

	slog.Info("cycle report archived", "cycle_id", cycle.ID, "path", path)
	return nil
}

// ReportURL returns a temporary download link for an archived report.
func (s *ReportService) ReportURL(ctx context.Context, cycle *model.WeeklyCycle) (string, error) {
	if s.storage == nil {
		return "", nil
	}
	return s.storage.PresignedURL(ctx, ReportPath(cycle))
}

func ReportPath(cycle *model.WeeklyCycle) string {
	return fmt.Sprintf("reports/cycles/%s-%s.json", model.FormatDate(cycle.WeekStartDate), cycle.ID)
}
