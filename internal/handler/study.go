package handler

import (
	"context"

	"flashdeck/internal/session"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// chatSession is the running study or quiz of one user. Its fields are
// guarded by the user's lock.
type chatSession struct {
	study *session.Study
	quiz  *session.Quiz
	stop  context.CancelFunc
}

// stopCountdown cancels a running quiz countdown, if any
func (s *chatSession) stopCountdown() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

func (h *Handler) getSession(userID int64) *chatSession {
	h.sessionMux.Lock()
	defer h.sessionMux.Unlock()
	return h.sessions[userID]
}

// startSession replaces whatever session the user had
func (h *Handler) startSession(userID int64, s *chatSession) {
	h.sessionMux.Lock()
	defer h.sessionMux.Unlock()

	if old, exists := h.sessions[userID]; exists {
		old.stopCountdown()
	}
	h.sessions[userID] = s
}

// endSession abandons the user's study or quiz
func (h *Handler) endSession(userID int64) {
	h.sessionMux.Lock()
	defer h.sessionMux.Unlock()

	if s, exists := h.sessions[userID]; exists {
		s.stopCountdown()
		delete(h.sessions, userID)
	}
}

// leaveSession ends any study or quiz and drops a pending dialogue
func (h *Handler) leaveSession(userID int64) {
	h.endSession(userID)
	h.ResetState(userID)
}

// handleStudyStart opens a study session on the deck's unknown cards
func (h *Handler) handleStudyStart(c tele.Context, deckID string) error {
	userID := c.Sender().ID
	ctx := context.Background()

	deck, ok := h.deckService.Deck(deckID)
	if !ok {
		return alert(c, "Deck not found")
	}

	study := session.NewStudy(deck, h.knownService.Load(ctx, deckID))
	h.startSession(userID, &chatSession{study: study})
	h.ResetState(userID)

	if !study.Empty() {
		deckStreak, globalStreak := h.streakService.TouchSession(ctx, deckID)
		h.logger.Info("Study session started",
			zap.Int64("user_id", userID),
			zap.String("deck_id", deckID),
			zap.Int("cards", study.Len()),
			zap.Int("deck_streak", deckStreak.Streak),
			zap.Int("global_streak", globalStreak.Streak),
		)
	}

	return h.show(c, renderStudy(study), studyMarkup(study))
}

// currentStudy returns the user's study session or answers that it expired
func (h *Handler) currentStudy(c tele.Context) (*session.Study, bool) {
	s := h.getSession(c.Sender().ID)
	if s == nil || s.study == nil {
		return nil, false
	}
	return s.study, true
}

func (h *Handler) handleStudyFlip(c tele.Context) error {
	study, ok := h.currentStudy(c)
	if !ok {
		return h.sessionExpired(c)
	}

	study.Flip()
	return h.show(c, renderStudy(study), studyMarkup(study))
}

func (h *Handler) handleStudyNext(c tele.Context) error {
	study, ok := h.currentStudy(c)
	if !ok {
		return h.sessionExpired(c)
	}

	if done := study.Next(); done {
		h.endSession(c.Sender().ID)
		return h.handleDeckView(c, study.Deck().ID)
	}
	return h.show(c, renderStudy(study), studyMarkup(study))
}

func (h *Handler) handleStudyPrevious(c tele.Context) error {
	study, ok := h.currentStudy(c)
	if !ok {
		return h.sessionExpired(c)
	}

	study.Previous()
	return h.show(c, renderStudy(study), studyMarkup(study))
}

// handleStudyMarkKnown flags the current card as known. It stays in this
// session's rotation and is skipped from the next session on.
func (h *Handler) handleStudyMarkKnown(c tele.Context) error {
	study, ok := h.currentStudy(c)
	if !ok {
		return h.sessionExpired(c)
	}

	index, _, ok := study.Current()
	if !ok {
		return c.Respond()
	}
	h.knownService.Mark(context.Background(), study.Deck().ID, index)

	return c.Respond(&tele.CallbackResponse{Text: "Marked as known"})
}

func (h *Handler) sessionExpired(c tele.Context) error {
	if err := alert(c, "This session has ended"); err != nil {
		return err
	}
	if c.Callback() != nil {
		return c.Send(mainMenuText, mainMenuMarkup())
	}
	return nil
}
