package service

import (
	"context"
	"fmt"

	"flashdeck/internal/domain"
	"flashdeck/internal/repository"

	"go.uber.org/zap"
)

// ResetService wipes all application data back to the defaults
type ResetService struct {
	store  repository.Store
	decks  *DeckService
	logger *zap.Logger
}

// NewResetService creates a new reset service
func NewResetService(store repository.Store, decks *DeckService, logger *zap.Logger) *ResetService {
	return &ResetService{
		store:  store,
		decks:  decks,
		logger: logger,
	}
}

// ResetAll removes every application key, then reseeds the default decks and
// an empty global streak. The in-memory deck list is reset even when the
// store fails; the error is returned so the caller can report it.
func (s *ResetService) ResetAll(ctx context.Context) error {
	s.logger.Info("Resetting all data")

	var resetErr error
	keys, err := s.store.ListKeys(ctx)
	if err != nil {
		resetErr = fmt.Errorf("failed to list keys: %w", err)
	} else {
		var appKeys []string
		for _, key := range keys {
			if repository.IsAppKey(key) {
				appKeys = append(appKeys, key)
			}
		}
		if err := s.store.RemoveMany(ctx, appKeys); err != nil {
			resetErr = fmt.Errorf("failed to clear keys: %w", err)
		}
	}

	s.decks.Replace(ctx, domain.DefaultDecks())

	if err := saveJSON(ctx, s.store, repository.GlobalStreakKey, domain.StreakRecord{}); err != nil && resetErr == nil {
		resetErr = fmt.Errorf("failed to reset global streak: %w", err)
	}

	if resetErr != nil {
		s.logger.Error("Reset incomplete", zap.Error(resetErr))
		return resetErr
	}

	s.logger.Info("Reset completed successfully")
	return nil
}
