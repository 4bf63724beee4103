package handler

import (
	"context"

	tele "gopkg.in/telebot.v3"
)

// handleStats shows streaks and lifetime quiz statistics for every deck
func (h *Handler) handleStats(c tele.Context) error {
	userID := c.Sender().ID
	h.endSession(userID)
	h.ResetState(userID)

	overview := h.statsService.Overview(context.Background(), h.deckService.Decks())

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnDecks, btnMainMenu))
	return h.show(c, renderStats(overview, h.now()), markup)
}
