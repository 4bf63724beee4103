package service

import (
	"context"
	"time"

	"flashdeck/internal/domain"
	"flashdeck/internal/repository"

	"go.uber.org/zap"
)

// StreakService keeps the per-deck and global daily streaks
type StreakService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewStreakService creates a new streak service. now supplies the wall clock
// in the calendar's location.
func NewStreakService(store repository.Store, logger *zap.Logger, now func() time.Time) *StreakService {
	return &StreakService{
		store:  store,
		logger: logger,
		now:    now,
	}
}

// TouchSession records activity on deckID for today. It is called once when a
// study or quiz session starts and updates the deck streak and the global
// streak with the same day pair.
func (s *StreakService) TouchSession(ctx context.Context, deckID string) (deck, global domain.StreakRecord) {
	today, yesterday := domain.DayKeys(s.now())

	deck = s.touch(ctx, repository.StreakKey(deckID), today, yesterday)
	global = s.touch(ctx, repository.GlobalStreakKey, today, yesterday)

	s.logger.Debug("Streaks touched",
		zap.String("deck_id", deckID),
		zap.Int("deck_streak", deck.Streak),
		zap.Int("global_streak", global.Streak),
	)
	return deck, global
}

// Get returns a deck's streak, zero if it has none
func (s *StreakService) Get(ctx context.Context, deckID string) domain.StreakRecord {
	return s.load(ctx, repository.StreakKey(deckID))
}

// Global returns the streak across all decks
func (s *StreakService) Global(ctx context.Context) domain.StreakRecord {
	return s.load(ctx, repository.GlobalStreakKey)
}

// GlobalActive reports whether the global streak was touched today or
// yesterday, and whether it was touched today.
func (s *StreakService) GlobalActive(ctx context.Context) (alive, doneToday bool) {
	today, yesterday := domain.DayKeys(s.now())
	rec := s.Global(ctx)
	return rec.Active(today, yesterday), rec.LastActivityDate == today
}

func (s *StreakService) touch(ctx context.Context, key, today, yesterday string) domain.StreakRecord {
	rec, changed := domain.Touch(s.load(ctx, key), today, yesterday)
	if !changed {
		return rec
	}

	if err := saveJSON(ctx, s.store, key, rec); err != nil {
		s.logger.Error("Failed to save streak", zap.String("key", key), zap.Error(err))
	}
	return rec
}

func (s *StreakService) load(ctx context.Context, key string) domain.StreakRecord {
	var rec domain.StreakRecord
	if _, err := loadJSON(ctx, s.store, key, &rec); err != nil {
		s.logger.Error("Failed to load streak", zap.String("key", key), zap.Error(err))
		return domain.StreakRecord{}
	}
	return rec
}
