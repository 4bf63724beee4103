package domain

import "time"

// StreakRecord counts consecutive calendar days with activity
type StreakRecord struct {
	LastActivityDate string `json:"lastActivityDate"`
	Streak           int    `json:"streak"`
}

// Touch applies one day of activity to rec. It returns the updated record and
// whether it changed (and so needs persisting). Touching twice on the same
// day is a no-op.
func Touch(rec StreakRecord, today, yesterday string) (StreakRecord, bool) {
	last := rec.LastActivityDate
	if last == today {
		return rec, false
	}

	switch {
	case last == yesterday:
		rec.Streak++
	case last == "" || before(last, yesterday):
		rec.Streak = 1
	}
	// A future date keeps its count, but the record must stay non-zero once dated.
	if rec.Streak < 1 {
		rec.Streak = 1
	}

	rec.LastActivityDate = today
	return rec, true
}

// Active reports whether the streak is still alive on today, i.e. it was
// touched today or yesterday.
func (r StreakRecord) Active(today, yesterday string) bool {
	return r.Streak > 0 && (r.LastActivityDate == today || r.LastActivityDate == yesterday)
}

// before reports a < b as calendar dates. An unparseable date is never
// before anything, so a garbled record keeps its count.
func before(a, b string) bool {
	ta, err := time.Parse(DateLayout, a)
	if err != nil {
		return false
	}
	tb, err := time.Parse(DateLayout, b)
	if err != nil {
		return false
	}
	return ta.Before(tb)
}
