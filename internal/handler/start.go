package handler

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const mainMenuText = "🏠 Main menu\n\nChoose an action:"

// handleStart handles /start command and the main menu button
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User opened main menu",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	h.endSession(userID)
	h.ResetState(userID)

	return h.show(c, mainMenuText, mainMenuMarkup())
}

// handleCancel cancels current operation and resets state
func (h *Handler) handleCancel(c tele.Context) error {
	userID := c.Sender().ID

	h.endSession(userID)
	h.ResetState(userID)

	return h.show(c, mainMenuText, mainMenuMarkup())
}
