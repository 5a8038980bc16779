package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekSpan(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart string
		wantEnd   string
	}{
		{"monday", time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC), "2025-01-06", "2025-01-12"},
		{"wednesday", time.Date(2025, 1, 8, 23, 59, 0, 0, time.UTC), "2025-01-06", "2025-01-12"},
		{"sunday belongs to the week before", time.Date(2025, 1, 12, 12, 0, 0, 0, time.UTC), "2025-01-06", "2025-01-12"},
		{"across a month boundary", time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC), "2025-02-24", "2025-03-02"},
		{"across a year boundary", time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), "2024-12-30", "2025-01-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekSpan(tt.now, time.UTC)
			assert.Equal(t, tt.wantStart, FormatDate(start))
			assert.Equal(t, tt.wantEnd, FormatDate(end))
			assert.Equal(t, time.Monday, start.Weekday())
			assert.Equal(t, time.Sunday, end.Weekday())
			assert.True(t, start.Before(end))
		})
	}
}

func TestWeekSpanUsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// Sunday 20:00 UTC is already Monday morning in Tokyo.
	now := time.Date(2025, 1, 12, 20, 0, 0, 0, time.UTC)

	utcStart, _ := WeekSpan(now, time.UTC)
	tokyoStart, _ := WeekSpan(now, tokyo)

	assert.Equal(t, "2025-01-06", FormatDate(utcStart))
	assert.Equal(t, "2025-01-13", FormatDate(tokyoStart))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("03/02/2025")
	assert.Error(t, err)
}

func TestProfileDisplayName(t *testing.T) {
	name := "Ada"
	email := "ada@example.com"
	empty := ""

	assert.Equal(t, "Ada", (&Profile{FullName: &name, Email: &email}).DisplayName())
	assert.Equal(t, "ada@example.com", (&Profile{FullName: &empty, Email: &email}).DisplayName())
	assert.Equal(t, "Member", (&Profile{}).DisplayName())
}

func TestGoalValidation(t *testing.T) {
	assert.True(t, ValidGoalStatus(GoalStatusBlocked))
	assert.False(t, ValidGoalStatus("paused"))
	assert.True(t, ValidProgress(0))
	assert.True(t, ValidProgress(100))
	assert.False(t, ValidProgress(101))
	assert.False(t, ValidProgress(-1))
}
