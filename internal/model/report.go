package model

import "time"

// CycleReport is the JSON summary exported when a week is archived.
type CycleReport struct {
	CycleID     string            `json:"cycle_id"`
	WeekStart   string            `json:"week_start"`
	WeekEnd     string            `json:"week_end"`
	Status      string            `json:"status"`
	GeneratedAt time.Time         `json:"generated_at"`
	Pairs       []CycleReportPair `json:"pairs"`
}

type CycleReportPair struct {
	PairID  string            `json:"pair_id"`
	Members []string          `json:"members"`
	Goals   []CycleReportGoal `json:"goals"`
}

type CycleReportGoal struct {
	Owner    string `json:"owner"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	CheckIns int    `json:"check_ins"`
}
