package handler

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleDecks shows the list of decks
func (h *Handler) handleDecks(c tele.Context) error {
	userID := c.Sender().ID
	h.endSession(userID)
	h.ResetState(userID)

	decks := h.deckService.Decks()
	return h.show(c, renderDeckList(decks), deckListMarkup(decks))
}

// handleDeckView shows one deck with its actions. It also ends any study or
// quiz, so quitting a session lands here.
func (h *Handler) handleDeckView(c tele.Context, deckID string) error {
	userID := c.Sender().ID
	h.endSession(userID)
	h.ResetState(userID)

	deck, ok := h.deckService.Deck(deckID)
	if !ok {
		if err := alert(c, "Deck not found"); err != nil {
			return err
		}
		decks := h.deckService.Decks()
		return c.Send(renderDeckList(decks), deckListMarkup(decks))
	}

	ctx := context.Background()
	known := h.knownService.Load(ctx, deckID)
	streak := h.streakService.Get(ctx, deckID)

	return h.show(c, renderDeckView(deck, known, streak, h.now()), deckViewMarkup(deck))
}

// handleCardList shows every card of a deck as a button
func (h *Handler) handleCardList(c tele.Context, deckID string) error {
	userID := c.Sender().ID
	h.endSession(userID)
	h.ResetState(userID)

	deck, ok := h.deckService.Deck(deckID)
	if !ok {
		return alert(c, "Deck not found")
	}

	known := h.knownService.Load(context.Background(), deckID)
	return h.show(c, renderCardList(deck, known), cardListMarkup(deck, known))
}

// handleCardView shows one card with edit, delete and unmark actions
func (h *Handler) handleCardView(c tele.Context, deckID string, index int) error {
	h.leaveSession(c.Sender().ID)

	deck, ok := h.deckService.Deck(deckID)
	if !ok || !deck.HasCard(index) {
		return alert(c, "Card not found")
	}

	known := h.knownService.Load(context.Background(), deckID)
	return h.show(c, renderCard(deck, index, known), cardViewMarkup(deckID, index, known.Has(index)))
}

func (h *Handler) handleDeleteCardAsk(c tele.Context, deckID string, index int) error {
	h.leaveSession(c.Sender().ID)

	deck, ok := h.deckService.Deck(deckID)
	if !ok || !deck.HasCard(index) {
		return alert(c, "Card not found")
	}

	markup := &tele.ReplyMarkup{}
	text := fmt.Sprintf("🗑 Delete card \"%s\"?", deck.Cards[index].Front)
	return h.show(c, text, confirmMarkup(
		markup.Data("Yes, delete", cardData(prefixDeleteCardOK, deckID, index)),
		markup.Data("No", cardData(prefixCard, deckID, index)),
	))
}

func (h *Handler) handleDeleteCardConfirm(c tele.Context, deckID string, index int) error {
	h.leaveSession(c.Sender().ID)

	deck, err := h.deckService.DeleteCard(context.Background(), deckID, index)
	if err != nil {
		h.logger.Warn("Failed to delete card",
			zap.String("deck_id", deckID),
			zap.Int("card_index", index),
			zap.Error(err),
		)
		return alert(c, "Card not found")
	}

	h.logger.Info("Card deleted", zap.String("deck_id", deckID), zap.Int("card_index", index))

	known := h.knownService.Load(context.Background(), deckID)
	return h.show(c, renderCardList(deck, known), cardListMarkup(deck, known))
}

// handleUnmarkKnown returns a card to the study rotation
func (h *Handler) handleUnmarkKnown(c tele.Context, deckID string, index int) error {
	h.leaveSession(c.Sender().ID)

	deck, ok := h.deckService.Deck(deckID)
	if !ok || !deck.HasCard(index) {
		return alert(c, "Card not found")
	}

	known := h.knownService.Unmark(context.Background(), deckID, index)
	return h.show(c, renderCard(deck, index, known), cardViewMarkup(deckID, index, false))
}

func (h *Handler) handleDeleteDeckAsk(c tele.Context, deckID string) error {
	h.leaveSession(c.Sender().ID)

	deck, ok := h.deckService.Deck(deckID)
	if !ok {
		return alert(c, "Deck not found")
	}

	markup := &tele.ReplyMarkup{}
	text := fmt.Sprintf("🗑 Delete deck \"%s\" with %d cards and its statistics?", deck.Name, len(deck.Cards))
	return h.show(c, text, confirmMarkup(
		markup.Data("Yes, delete", deckData(prefixDeleteDeckOK, deckID)),
		markup.Data("No", deckData(prefixDeck, deckID)),
	))
}

func (h *Handler) handleDeleteDeckConfirm(c tele.Context, deckID string) error {
	h.leaveSession(c.Sender().ID)

	if err := h.deckService.DeleteDeck(context.Background(), deckID); err != nil {
		h.logger.Warn("Failed to delete deck", zap.String("deck_id", deckID), zap.Error(err))
		return alert(c, "Deck not found")
	}

	decks := h.deckService.Decks()
	return h.show(c, "✅ Deck deleted.\n\n"+renderDeckList(decks), deckListMarkup(decks))
}
