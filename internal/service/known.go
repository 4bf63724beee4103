package service

import (
	"context"

	"flashdeck/internal/domain"
	"flashdeck/internal/repository"

	"go.uber.org/zap"
)

// KnownService persists the cards flagged as mastered in each deck
type KnownService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewKnownService creates a new known cards service
func NewKnownService(store repository.Store, logger *zap.Logger) *KnownService {
	return &KnownService{
		store:  store,
		logger: logger,
	}
}

// Load returns the known card set of a deck
func (s *KnownService) Load(ctx context.Context, deckID string) domain.KnownCards {
	known := domain.NewKnownCards()
	if _, err := loadJSON(ctx, s.store, repository.KnownCardsKey(deckID), &known); err != nil {
		s.logger.Error("Failed to load known cards", zap.String("deck_id", deckID), zap.Error(err))
		return domain.NewKnownCards()
	}
	return known
}

// Mark flags a card as known
func (s *KnownService) Mark(ctx context.Context, deckID string, index int) domain.KnownCards {
	return s.save(ctx, deckID, s.Load(ctx, deckID).With(index))
}

// Unmark returns a card to the study rotation
func (s *KnownService) Unmark(ctx context.Context, deckID string, index int) domain.KnownCards {
	return s.save(ctx, deckID, s.Load(ctx, deckID).Without(index))
}

func (s *KnownService) save(ctx context.Context, deckID string, known domain.KnownCards) domain.KnownCards {
	if err := saveJSON(ctx, s.store, repository.KnownCardsKey(deckID), known); err != nil {
		s.logger.Error("Failed to save known cards", zap.String("deck_id", deckID), zap.Error(err))
	}
	return known
}
