package handler

import (
	"fmt"

	"flashdeck/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// SendReminder nudges chatID to study before the day ends
func (h *Handler) SendReminder(chatID int64, streak domain.StreakRecord, alive bool) error {
	text := "📚 Time for a quick study session!"
	if alive {
		text = fmt.Sprintf("🔥 Your %s streak ends tonight. Study a deck to keep it going!", plural(streak.Streak, "day"))
	}

	if _, err := h.messenger.Send(tele.ChatID(chatID), text, mainMenuMarkup()); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	return nil
}
