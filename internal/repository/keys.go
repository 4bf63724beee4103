package repository

import "strings"

// Persisted key layout
const (
	DecksKey        = "decks"
	GlobalStreakKey = "globalStreak"

	knownCardsPrefix = "knownCards_"
	quizStatsPrefix  = "quizStats_"
	streakPrefix     = "streak_"
)

// KnownCardsKey returns the key holding a deck's known card indices
func KnownCardsKey(deckID string) string {
	return knownCardsPrefix + deckID
}

// QuizStatsKey returns the key holding a deck's quiz statistics
func QuizStatsKey(deckID string) string {
	return quizStatsPrefix + deckID
}

// StreakKey returns the key holding a deck's streak record
func StreakKey(deckID string) string {
	return streakPrefix + deckID
}

// DeckKeys returns every per-deck key for deckID
func DeckKeys(deckID string) []string {
	return []string{KnownCardsKey(deckID), QuizStatsKey(deckID), StreakKey(deckID)}
}

// IsAppKey reports whether key belongs to the application's layout
func IsAppKey(key string) bool {
	switch key {
	case DecksKey, GlobalStreakKey:
		return true
	}
	return strings.HasPrefix(key, knownCardsPrefix) ||
		strings.HasPrefix(key, quizStatsPrefix) ||
		strings.HasPrefix(key, streakPrefix)
}
