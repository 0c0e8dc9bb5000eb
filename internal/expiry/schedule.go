package expiry

import (
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// Schedule holds the notification horizons of one run: the deduplicated
// sorted day counts, the threshold date each one maps to, and the oldest
// (widest) horizon, which bounds the query window.
type Schedule struct {
	Days   []int          `json:"days"`
	Future map[int]string `json:"future"`
	Oldest int            `json:"oldest"`
	Today  string         `json:"today"`
}

// NewSchedule computes today+N threshold dates for each configured horizon.
// Non-positive and duplicate day counts are dropped.
func NewSchedule(days []int, today time.Time) Schedule {
	seen := map[int]bool{}
	kept := []int{}
	for _, d := range days {
		if d <= 0 || seen[d] {
			continue
		}
		seen[d] = true
		kept = append(kept, d)
	}
	sort.Ints(kept)

	s := Schedule{
		Days:   kept,
		Future: make(map[int]string, len(kept)),
		Today:  today.Format(dateLayout),
	}
	for _, d := range kept {
		s.Future[d] = today.AddDate(0, 0, d).Format(dateLayout)
		s.Oldest = d
	}
	return s
}
