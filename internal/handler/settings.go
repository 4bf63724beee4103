package handler

import (
	"context"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func (h *Handler) handleSettings(c tele.Context) error {
	userID := c.Sender().ID
	h.endSession(userID)
	h.ResetState(userID)

	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(btnReset),
		markup.Row(btnMainMenu),
	)
	return h.show(c, "⚙️ Settings", markup)
}

func (h *Handler) handleResetAsk(c tele.Context) error {
	h.leaveSession(c.Sender().ID)

	text := "⚠️ This erases every deck, card, streak and statistic and restores the sample decks.\n\nAre you sure?"
	return h.show(c, text, confirmMarkup(btnResetConfirm, btnCancel))
}

// handleResetConfirm wipes all data back to the sample decks
func (h *Handler) handleResetConfirm(c tele.Context) error {
	userID := c.Sender().ID

	h.endSession(userID)
	h.ResetState(userID)

	if err := h.resetService.ResetAll(context.Background()); err != nil {
		h.logger.Error("Failed to reset data", zap.Int64("user_id", userID), zap.Error(err))
		return h.show(c, "❌ Reset failed. Some data may remain; please try again.", mainMenuMarkup())
	}

	h.logger.Info("All data reset", zap.Int64("user_id", userID))
	return h.show(c, "✅ All data has been reset.\n\n"+mainMenuText, mainMenuMarkup())
}
