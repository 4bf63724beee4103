package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeckKeys(t *testing.T) {
	assert.Equal(t, "knownCards_7", KnownCardsKey("7"))
	assert.Equal(t, "quizStats_7", QuizStatsKey("7"))
	assert.Equal(t, "streak_7", StreakKey("7"))
	assert.Equal(t, []string{"knownCards_7", "quizStats_7", "streak_7"}, DeckKeys("7"))
}

func TestIsAppKey(t *testing.T) {
	tests := []struct {
		key      string
		expected bool
	}{
		{key: "decks", expected: true},
		{key: "globalStreak", expected: true},
		{key: "knownCards_1", expected: true},
		{key: "quizStats_12", expected: true},
		{key: "streak_3", expected: true},
		{key: "schema_migrations", expected: false},
		{key: "deck", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsAppKey(tt.key))
		})
	}
}
