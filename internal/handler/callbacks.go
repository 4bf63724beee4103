package handler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Prefixes of dynamic callback data. Card data carries "<deckID>_<index>".
const (
	prefixDeck         = "deck_"
	prefixStudy        = "study_"
	prefixQuiz         = "quiz_"
	prefixCards        = "cards_"
	prefixCard         = "card_"
	prefixAddCard      = "addcard_"
	prefixEditCard     = "editcard_"
	prefixDeleteCard   = "delcard_"
	prefixDeleteCardOK = "delcardok_"
	prefixUnmarkKnown  = "unknown_"
	prefixEditDeck     = "editdeck_"
	prefixDeleteDeck   = "deldeck_"
	prefixDeleteDeckOK = "deldeckok_"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

func deckData(prefix, deckID string) string {
	return prefix + deckID
}

func cardData(prefix, deckID string, index int) string {
	return fmt.Sprintf("%s%s_%d", prefix, deckID, index)
}

// parseDeckData extracts the deck id from prefixed callback data
func parseDeckData(data, prefix string) (string, bool) {
	if !strings.HasPrefix(data, prefix) {
		return "", false
	}
	deckID := strings.TrimPrefix(data, prefix)
	return deckID, deckID != ""
}

// parseCardData extracts the deck id and card index from prefixed callback
// data. The index follows the last underscore.
func parseCardData(data, prefix string) (string, int, bool) {
	rest, ok := parseDeckData(data, prefix)
	if !ok {
		return "", 0, false
	}
	sep := strings.LastIndex(rest, "_")
	if sep <= 0 {
		return "", 0, false
	}
	index, err := strconv.Atoi(rest[sep+1:])
	if err != nil || index < 0 {
		return "", 0, false
	}
	return rest[:sep], index, true
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	// If message is not modified, it means it was already edited by another callback
	// Just acknowledge and return nil - don't send new message
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	// Always acknowledge callback before sending new message
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// handleCallback handles callback queries no button endpoint claimed
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	// Clean data from all non-printable characters
	data := cleanCallbackData(callback.Data)
	h.logger.Debug("handleCallback: Processing callback",
		zap.String("data", data),
		zap.String("id", callback.ID),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)

	// Static buttons whose unique did not come through
	if callback.Unique == "" {
		switch data {
		case btnDecks.Unique:
			return h.handleDecks(c)
		case btnStats.Unique:
			return h.handleStats(c)
		case btnNewDeck.Unique:
			return h.handleNewDeck(c)
		case btnSettings.Unique:
			return h.handleSettings(c)
		case btnReset.Unique:
			return h.handleResetAsk(c)
		case btnResetConfirm.Unique:
			return h.handleResetConfirm(c)
		case btnCancel.Unique:
			return h.handleCancel(c)
		case btnMainMenu.Unique:
			return h.handleStart(c)
		case btnFlip.Unique:
			return h.handleStudyFlip(c)
		case btnNext.Unique:
			return h.handleStudyNext(c)
		case btnPrevious.Unique:
			return h.handleStudyPrevious(c)
		case btnMarkKnown.Unique:
			return h.handleStudyMarkKnown(c)
		case btnQuizNext.Unique:
			return h.handleQuizNext(c)
		case btnQuizRestart.Unique:
			return h.handleQuizRestart(c)
		case btnSkipDescription.Unique:
			return h.handleSkipDescription(c)
		}
	}

	// Card-level buttons
	cardRoutes := []struct {
		prefix string
		handle func(tele.Context, string, int) error
	}{
		{prefixDeleteCardOK, h.handleDeleteCardConfirm},
		{prefixDeleteCard, h.handleDeleteCardAsk},
		{prefixEditCard, h.handleEditCard},
		{prefixUnmarkKnown, h.handleUnmarkKnown},
		{prefixCard, h.handleCardView},
	}
	for _, route := range cardRoutes {
		if deckID, index, ok := parseCardData(data, route.prefix); ok {
			return route.handle(c, deckID, index)
		}
	}

	// Deck-level buttons
	deckRoutes := []struct {
		prefix string
		handle func(tele.Context, string) error
	}{
		{prefixDeleteDeckOK, h.handleDeleteDeckConfirm},
		{prefixDeleteDeck, h.handleDeleteDeckAsk},
		{prefixEditDeck, h.handleEditDeck},
		{prefixAddCard, h.handleAddCard},
		{prefixCards, h.handleCardList},
		{prefixStudy, h.handleStudyStart},
		{prefixQuiz, h.handleQuizStart},
		{prefixDeck, h.handleDeckView},
	}
	for _, route := range deckRoutes {
		if deckID, ok := parseDeckData(data, route.prefix); ok {
			return route.handle(c, deckID)
		}
	}

	// If it's not handled, acknowledge it anyway
	h.logger.Warn("Unhandled callback in handleCallback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}
