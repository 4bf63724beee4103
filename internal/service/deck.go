package service

import (
	"context"
	"strings"
	"sync"

	"flashdeck/internal/domain"
	"flashdeck/internal/repository"

	"go.uber.org/zap"
)

// DeckService owns the deck list. It is the only mutation path for decks and
// cards; every successful change writes the whole list under the decks key.
// Store failures are logged and the in-memory list stays authoritative.
type DeckService struct {
	store  repository.Store
	logger *zap.Logger

	mu    sync.RWMutex
	decks []domain.Deck
}

// NewDeckService creates a new deck service. Call LoadAll before use.
func NewDeckService(store repository.Store, logger *zap.Logger) *DeckService {
	return &DeckService{
		store:  store,
		logger: logger,
	}
}

// LoadAll reads the deck list from the store. A missing list is seeded with
// the default decks and persisted; a failed read or parse falls back to the
// defaults in memory only.
func (s *DeckService) LoadAll(ctx context.Context) []domain.Deck {
	s.mu.Lock()
	defer s.mu.Unlock()

	var decks []domain.Deck
	found, err := loadJSON(ctx, s.store, repository.DecksKey, &decks)
	switch {
	case err != nil:
		s.logger.Error("Failed to load decks, using defaults", zap.Error(err))
		s.decks = domain.DefaultDecks()
	case !found:
		s.logger.Info("No decks stored, seeding defaults")
		s.decks = domain.DefaultDecks()
		s.persistLocked(ctx)
	default:
		s.decks = normalizeDecks(decks)
	}

	return domain.CloneDecks(s.decks)
}

// Decks returns a snapshot of every deck
func (s *DeckService) Decks() []domain.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneDecks(s.decks)
}

// Deck returns a snapshot of one deck
func (s *DeckService) Deck(id string) (domain.Deck, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return domain.Deck{}, false
	}
	return s.decks[i].Clone(), true
}

// AddDeck appends a new empty deck
func (s *DeckService) AddDeck(ctx context.Context, name, description string) (domain.Deck, error) {
	return s.ImportDeck(ctx, domain.Deck{Name: name, Description: description})
}

// ImportDeck appends deck with its cards under a freshly assigned id
func (s *DeckService) ImportDeck(ctx context.Context, deck domain.Deck) (domain.Deck, error) {
	name := strings.TrimSpace(deck.Name)
	if name == "" {
		return domain.Deck{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deck = deck.Clone()
	deck.ID = domain.NextDeckID(s.decks)
	deck.Name = name
	deck.Description = strings.TrimSpace(deck.Description)

	s.decks = append(s.decks, deck)
	s.persistLocked(ctx)

	s.logger.Info("Deck created",
		zap.String("deck_id", deck.ID),
		zap.Int("cards", len(deck.Cards)),
	)
	return deck.Clone(), nil
}

// UpdateDeck renames a deck. The name is required, the description may be empty.
func (s *DeckService) UpdateDeck(ctx context.Context, id, name, description string) (domain.Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Deck{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return domain.Deck{}, ErrDeckNotFound
	}

	s.decks[i].Name = name
	s.decks[i].Description = strings.TrimSpace(description)
	s.persistLocked(ctx)

	return s.decks[i].Clone(), nil
}

// DeleteDeck removes a deck together with its known cards, quiz stats and streak.
func (s *DeckService) DeleteDeck(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return ErrDeckNotFound
	}

	s.decks = append(s.decks[:i], s.decks[i+1:]...)
	s.persistLocked(ctx)

	if err := s.store.RemoveMany(ctx, repository.DeckKeys(id)); err != nil {
		s.logger.Error("Failed to remove deck data",
			zap.String("deck_id", id),
			zap.Error(err),
		)
	}

	s.logger.Info("Deck deleted", zap.String("deck_id", id))
	return nil
}

// AddCard appends a card to a deck
func (s *DeckService) AddCard(ctx context.Context, deckID, front, back string) (domain.Deck, error) {
	if strings.TrimSpace(front) == "" || strings.TrimSpace(back) == "" {
		return domain.Deck{}, ErrEmptyCard
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(deckID)
	if i < 0 {
		return domain.Deck{}, ErrDeckNotFound
	}

	s.decks[i].Cards = append(s.decks[i].Cards, domain.Card{Front: front, Back: back})
	s.persistLocked(ctx)

	return s.decks[i].Clone(), nil
}

// UpdateCard replaces the card at index in place
func (s *DeckService) UpdateCard(ctx context.Context, deckID string, index int, front, back string) (domain.Deck, error) {
	if strings.TrimSpace(front) == "" || strings.TrimSpace(back) == "" {
		return domain.Deck{}, ErrEmptyCard
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(deckID)
	if i < 0 {
		return domain.Deck{}, ErrDeckNotFound
	}
	if !s.decks[i].HasCard(index) {
		return domain.Deck{}, ErrCardNotFound
	}

	s.decks[i].Cards[index] = domain.Card{Front: front, Back: back}
	s.persistLocked(ctx)

	return s.decks[i].Clone(), nil
}

// DeleteCard removes the card at index. Later cards move down one position,
// and the deck's known cards and quiz stats are re-keyed to follow them.
func (s *DeckService) DeleteCard(ctx context.Context, deckID string, index int) (domain.Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(deckID)
	if i < 0 {
		return domain.Deck{}, ErrDeckNotFound
	}
	if !s.decks[i].HasCard(index) {
		return domain.Deck{}, ErrCardNotFound
	}

	cards := s.decks[i].Cards
	s.decks[i].Cards = append(cards[:index:index], cards[index+1:]...)
	s.persistLocked(ctx)

	s.shiftCardDataLocked(ctx, deckID, index)

	return s.decks[i].Clone(), nil
}

// Replace swaps the whole deck list and persists it
func (s *DeckService) Replace(ctx context.Context, decks []domain.Deck) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.decks = normalizeDecks(domain.CloneDecks(decks))
	s.persistLocked(ctx)
}

func (s *DeckService) shiftCardDataLocked(ctx context.Context, deckID string, index int) {
	known := domain.NewKnownCards()
	knownKey := repository.KnownCardsKey(deckID)
	if found, err := loadJSON(ctx, s.store, knownKey, &known); err != nil {
		s.logger.Error("Failed to load known cards", zap.String("deck_id", deckID), zap.Error(err))
	} else if found {
		if err := saveJSON(ctx, s.store, knownKey, known.ShiftAfterDelete(index)); err != nil {
			s.logger.Error("Failed to save known cards", zap.String("deck_id", deckID), zap.Error(err))
		}
	}

	stats := domain.NewQuizStats()
	statsKey := repository.QuizStatsKey(deckID)
	if found, err := loadJSON(ctx, s.store, statsKey, &stats); err != nil {
		s.logger.Error("Failed to load quiz stats", zap.String("deck_id", deckID), zap.Error(err))
	} else if found {
		if err := saveJSON(ctx, s.store, statsKey, stats.ShiftAfterDelete(index)); err != nil {
			s.logger.Error("Failed to save quiz stats", zap.String("deck_id", deckID), zap.Error(err))
		}
	}
}

func (s *DeckService) persistLocked(ctx context.Context) {
	if err := saveJSON(ctx, s.store, repository.DecksKey, s.decks); err != nil {
		s.logger.Error("Failed to save decks", zap.Error(err))
	}
}

func (s *DeckService) indexLocked(id string) int {
	for i, d := range s.decks {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// normalizeDecks makes every card list non-nil so it encodes as []
func normalizeDecks(decks []domain.Deck) []domain.Deck {
	if decks == nil {
		return []domain.Deck{}
	}
	for i := range decks {
		if decks[i].Cards == nil {
			decks[i].Cards = []domain.Card{}
		}
	}
	return decks
}
