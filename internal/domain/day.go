package domain

import "time"

// DateLayout is the ISO-8601 calendar date format used for streak records.
const DateLayout = "2006-01-02"

// DayKeys returns today's and yesterday's calendar dates for the given instant,
// in the instant's own location.
func DayKeys(now time.Time) (today, yesterday string) {
	return now.Format(DateLayout), now.AddDate(0, 0, -1).Format(DateLayout)
}

// DisplayDate returns a user-friendly label for a stored activity date
func DisplayDate(date string, now time.Time) string {
	if date == "" {
		return "never"
	}

	today, yesterday := DayKeys(now)
	switch date {
	case today:
		return "today"
	case yesterday:
		return "yesterday"
	}

	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("2 Jan 2006")
}
