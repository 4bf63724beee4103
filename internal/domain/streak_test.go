package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTouch(t *testing.T) {
	const today, yesterday = "2024-01-05", "2024-01-04"

	tests := []struct {
		name            string
		record          StreakRecord
		expectedStreak  int
		expectedChanged bool
	}{
		{
			name:            "first activity",
			record:          StreakRecord{},
			expectedStreak:  1,
			expectedChanged: true,
		},
		{
			name:            "already touched today",
			record:          StreakRecord{LastActivityDate: today, Streak: 4},
			expectedStreak:  4,
			expectedChanged: false,
		},
		{
			name:            "continues from yesterday",
			record:          StreakRecord{LastActivityDate: yesterday, Streak: 4},
			expectedStreak:  5,
			expectedChanged: true,
		},
		{
			name:            "gap resets",
			record:          StreakRecord{LastActivityDate: "2024-01-02", Streak: 9},
			expectedStreak:  1,
			expectedChanged: true,
		},
		{
			name:            "gap across years resets",
			record:          StreakRecord{LastActivityDate: "2023-12-31", Streak: 9},
			expectedStreak:  1,
			expectedChanged: true,
		},
		{
			name:            "future date keeps count",
			record:          StreakRecord{LastActivityDate: "2024-01-09", Streak: 3},
			expectedStreak:  3,
			expectedChanged: true,
		},
		{
			name:            "corrupt date without count starts at one",
			record:          StreakRecord{LastActivityDate: "not-a-date", Streak: 0},
			expectedStreak:  1,
			expectedChanged: true,
		},
		{
			name:            "corrupt date keeps count",
			record:          StreakRecord{LastActivityDate: "05/01/2024", Streak: 6},
			expectedStreak:  6,
			expectedChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, changed := Touch(tt.record, today, yesterday)

			assert.Equal(t, tt.expectedStreak, rec.Streak)
			assert.Equal(t, tt.expectedChanged, changed)
			assert.Equal(t, today, rec.LastActivityDate)
		})
	}
}

func TestTouch_Idempotent(t *testing.T) {
	rec := StreakRecord{LastActivityDate: "2024-01-04", Streak: 2}

	rec, _ = Touch(rec, "2024-01-05", "2024-01-04")
	rec, changed := Touch(rec, "2024-01-05", "2024-01-04")

	assert.False(t, changed)
	assert.Equal(t, 3, rec.Streak)
}

func TestTouch_ConsecutiveDays(t *testing.T) {
	days := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}
	rec := StreakRecord{}

	for i := 1; i < len(days); i++ {
		rec, _ = Touch(rec, days[i], days[i-1])
	}

	assert.Equal(t, 3, rec.Streak)
	assert.Equal(t, "2024-03-01", rec.LastActivityDate)
}

func TestStreakRecord_Active(t *testing.T) {
	const today, yesterday = "2024-01-05", "2024-01-04"

	assert.True(t, StreakRecord{LastActivityDate: today, Streak: 1}.Active(today, yesterday))
	assert.True(t, StreakRecord{LastActivityDate: yesterday, Streak: 2}.Active(today, yesterday))
	assert.False(t, StreakRecord{LastActivityDate: "2024-01-01", Streak: 2}.Active(today, yesterday))
	assert.False(t, StreakRecord{}.Active(today, yesterday))
}
