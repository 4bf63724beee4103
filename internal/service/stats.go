package service

import (
	"context"

	"flashdeck/internal/domain"
	"flashdeck/internal/repository"

	"go.uber.org/zap"
)

// StatsService accumulates lifetime quiz statistics per deck
type StatsService struct {
	store   repository.Store
	streaks *StreakService
	logger  *zap.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(store repository.Store, streaks *StreakService, logger *zap.Logger) *StatsService {
	return &StatsService{
		store:   store,
		streaks: streaks,
		logger:  logger,
	}
}

// Totals sums quiz counters across decks
type Totals struct {
	Attempts       int
	TotalCorrect   int
	TotalQuestions int
}

// DeckOverview is one deck's line on the statistics screen
type DeckOverview struct {
	Deck   domain.Deck
	Stats  domain.QuizStats
	Streak domain.StreakRecord
}

// Overview is the statistics screen content
type Overview struct {
	GlobalStreak domain.StreakRecord
	Totals       Totals
	Decks        []DeckOverview
}

// Load returns a deck's lifetime stats, empty if none were recorded
func (s *StatsService) Load(ctx context.Context, deckID string) domain.QuizStats {
	stats := domain.NewQuizStats()
	if _, err := loadJSON(ctx, s.store, repository.QuizStatsKey(deckID), &stats); err != nil {
		s.logger.Error("Failed to load quiz stats", zap.String("deck_id", deckID), zap.Error(err))
		return domain.NewQuizStats()
	}
	return stats.Normalize()
}

// Record adds one attempt on cardIndex and persists the result
func (s *StatsService) Record(ctx context.Context, deckID string, cardIndex int, correct bool) domain.QuizStats {
	stats := domain.RecordAttempt(s.Load(ctx, deckID), cardIndex, correct)

	if err := saveJSON(ctx, s.store, repository.QuizStatsKey(deckID), stats); err != nil {
		s.logger.Error("Failed to save quiz stats",
			zap.String("deck_id", deckID),
			zap.Int("card_index", cardIndex),
			zap.Error(err),
		)
	}
	return stats
}

// Overview gathers stats and streaks for the given decks
func (s *StatsService) Overview(ctx context.Context, decks []domain.Deck) Overview {
	overview := Overview{
		GlobalStreak: s.streaks.Global(ctx),
		Decks:        make([]DeckOverview, 0, len(decks)),
	}

	for _, deck := range decks {
		stats := s.Load(ctx, deck.ID)
		overview.Totals.Attempts += stats.Attempts
		overview.Totals.TotalCorrect += stats.TotalCorrect
		overview.Totals.TotalQuestions += stats.TotalQuestions

		overview.Decks = append(overview.Decks, DeckOverview{
			Deck:   deck,
			Stats:  stats,
			Streak: s.streaks.Get(ctx, deck.ID),
		})
	}

	return overview
}
