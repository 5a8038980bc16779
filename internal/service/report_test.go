package service_test

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/pairtrack/pairtrack/internal/model"
	"github.com/pairtrack/pairtrack/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStorage) Save(_ context.Context, path string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[path] = data
	m.types[path] = contentType
	return nil
}

func (m *memoryStorage) PresignedURL(_ context.Context, path string) (string, error) {
	return "https://storage.example.com/" + path, nil
}

func TestBuildReport(t *testing.T) {
	f := newRoomFixture(t)
	goal, err := f.room.AddGoal(f.pairID, f.ada.ID, "Run", "")
	require.NoError(t, err)
	_, err = f.room.SubmitCheckIn(goal.ID, f.ada.ID, 60, "")
	require.NoError(t, err)
	_, err = f.room.SubmitCheckIn(goal.ID, f.ada.ID, 70, "")
	require.NoError(t, err)

	cycle, err := f.cycles.Active()
	require.NoError(t, err)

	reports := service.NewReportService(f.store, nil)
	report, err := reports.Build(cycle.ID)
	require.NoError(t, err)

	assert.Equal(t, "2025-01-06", report.WeekStart)
	require.Len(t, report.Pairs, 1)
	assert.ElementsMatch(t, []string{"ada", "bob"}, report.Pairs[0].Members)
	require.Len(t, report.Pairs[0].Goals, 1)
	assert.Equal(t, model.CycleReportGoal{Owner: "ada", Title: "Run", Status: model.GoalStatusNotStarted, Progress: 70, CheckIns: 2}, report.Pairs[0].Goals[0])

	_, err = reports.Build("missing")
	require.ErrorIs(t, err, service.ErrCycleNotFound)
}

func TestArchiveCycleUploadsReport(t *testing.T) {
	f := newRoomFixture(t)
	storage := newMemoryStorage()
	reports := service.NewReportService(f.store, storage)
	f.cycles.SetArchiver(reports)

	old, err := f.cycles.Active()
	require.NoError(t, err)

	_, err = f.cycles.StartNewWeek(context.Background())
	require.NoError(t, err)

	path := service.ReportPath(old)
	assert.Equal(t, "reports/cycles/2025-01-06-"+old.ID+".json", path)
	require.Contains(t, storage.objects, path)
	assert.Equal(t, "application/json", storage.types[path])

	var report model.CycleReport
	require.NoError(t, json.Unmarshal(storage.objects[path], &report))
	assert.Equal(t, old.ID, report.CycleID)
	assert.Equal(t, model.CycleStatusArchived, report.Status)
	assert.Len(t, report.Pairs, 1)

	url, err := reports.ReportURL(context.Background(), old)
	require.NoError(t, err)
	assert.Contains(t, url, path)
}

func TestArchiveCycleWithoutStorage(t *testing.T) {
	f := newRoomFixture(t)
	reports := service.NewReportService(f.store, nil)

	cycle, err := f.cycles.Active()
	require.NoError(t, err)
	require.NoError(t, reports.ArchiveCycle(context.Background(), cycle))

	url, err := reports.ReportURL(context.Background(), cycle)
	require.NoError(t, err)
	assert.Empty(t, url)
}
