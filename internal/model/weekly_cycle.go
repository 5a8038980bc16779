package model

import "time"

const (
	CycleStatusPlanned  = "planned"
	CycleStatusActive   = "active"
	CycleStatusArchived = "archived"
)

const dateLayout = "2006-01-02"

type WeeklyCycle struct {
	ID            string    `db:"id"`
	WeekStartDate time.Time `db:"week_start_date"`
	WeekEndDate   time.Time `db:"week_end_date"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (c *WeeklyCycle) IsActive() bool {
	return c != nil && c.Status == CycleStatusActive
}

// Label renders the cycle as "2025-01-06 → 2025-01-12".
func (c *WeeklyCycle) Label() string {
	return FormatDate(c.WeekStartDate) + " → " + FormatDate(c.WeekEndDate)
}

// WeekSpan returns the Monday and Sunday of the week containing now,
// evaluated in loc. Both are returned as UTC midnights so they store as plain dates.
func WeekSpan(now time.Time, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	daysSinceMonday := (int(local.Weekday()) + 6) % 7
	start = time.Date(local.Year(), local.Month(), local.Day()-daysSinceMonday, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 0, 6)
	return start, end
}

// Date truncates t to a UTC midnight of its calendar date.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}
