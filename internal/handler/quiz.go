package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"flashdeck/internal/domain"
	"flashdeck/internal/session"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Countdown redraws at most every countdownRedraw, then every tick near the end
const countdownRedraw = 5 * time.Second

// handleQuizStart opens a timed quiz over every card of the deck
func (h *Handler) handleQuizStart(c tele.Context, deckID string) error {
	userID := c.Sender().ID
	ctx := context.Background()

	deck, ok := h.deckService.Deck(deckID)
	if !ok {
		return alert(c, "Deck not found")
	}

	quiz, err := session.NewQuiz(deck, h.quizLimit)
	if errors.Is(err, session.ErrNoCards) {
		return alert(c, "This deck has no cards to quiz")
	}
	if err != nil {
		return err
	}

	s := &chatSession{quiz: quiz}
	h.startSession(userID, s)
	h.SetState(userID, &domain.StateData{State: domain.StateQuiz, DeckID: deckID, CardIndex: domain.NoCard})

	deckStreak, globalStreak := h.streakService.TouchSession(ctx, deckID)
	h.logger.Info("Quiz started",
		zap.Int64("user_id", userID),
		zap.String("deck_id", deckID),
		zap.Int("cards", quiz.Len()),
		zap.Int("deck_streak", deckStreak.Streak),
		zap.Int("global_streak", globalStreak.Streak),
	)

	return h.askQuestion(c, s)
}

// handleQuizAnswer grades a text message against the current question
func (h *Handler) handleQuizAnswer(c tele.Context, answer string) error {
	userID := c.Sender().ID

	s := h.getSession(userID)
	if s == nil || s.quiz == nil {
		h.ResetState(userID)
		return c.Send("This quiz has ended.", mainMenuMarkup())
	}

	quiz := s.quiz
	attempt, ok := quiz.Submit(answer)
	if !ok {
		if quiz.State() == session.Awaiting {
			return c.Send("Please type an answer.")
		}
		return c.Send("Use the buttons to continue.", quizAnsweredMarkup(quiz.Deck().ID))
	}

	s.stopCountdown()
	h.recordAttempt(context.Background(), quiz, attempt)

	return c.Send(renderQuizVerdict(quiz, attempt), quizAnsweredMarkup(quiz.Deck().ID))
}

func (h *Handler) handleQuizNext(c tele.Context) error {
	s := h.getSession(c.Sender().ID)
	if s == nil || s.quiz == nil {
		return h.sessionExpired(c)
	}

	quiz := s.quiz
	if quiz.State() != session.Answered {
		return c.Respond()
	}

	quiz.Next()
	if quiz.State() == session.Assessment {
		return h.showAssessment(c, quiz)
	}
	return h.askQuestion(c, s)
}

func (h *Handler) handleQuizRestart(c tele.Context) error {
	userID := c.Sender().ID

	s := h.getSession(userID)
	if s == nil || s.quiz == nil {
		return h.sessionExpired(c)
	}

	s.stopCountdown()
	s.quiz.Restart()
	h.SetState(userID, &domain.StateData{State: domain.StateQuiz, DeckID: s.quiz.Deck().ID, CardIndex: domain.NoCard})

	return h.askQuestion(c, s)
}

func (h *Handler) showAssessment(c tele.Context, quiz *session.Quiz) error {
	deckID := quiz.Deck().ID
	h.ResetState(c.Sender().ID)

	lifetime := h.statsService.Load(context.Background(), deckID)
	return h.show(c, renderAssessment(quiz, lifetime), assessmentMarkup(deckID))
}

// askQuestion shows the current question and starts its countdown on the
// message that displays it.
func (h *Handler) askQuestion(c tele.Context, s *chatSession) error {
	quiz := s.quiz
	text := renderQuizQuestion(quiz)
	markup := quizQuestionMarkup(quiz.Deck().ID)

	msg, err := h.display(c, text, markup)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopCountdown()
	s.stop = cancel
	go h.runCountdown(ctx, c.Sender().ID, quiz, msg)

	return nil
}

// display is show for messages that must be edited later: it returns the
// message now carrying text.
func (h *Handler) display(c tele.Context, text string, markup *tele.ReplyMarkup) (tele.Editable, error) {
	if cb := c.Callback(); cb != nil && cb.Message != nil {
		_, err := h.messenger.Edit(cb.Message, text, markup)
		if err == nil {
			return cb.Message, c.Respond()
		}
		if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
			return cb.Message, nil // Message was already modified, just acknowledged
		}
	}

	msg, err := h.messenger.Send(c.Recipient(), text, markup)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// runCountdown ticks the quiz once per interval until the question is
// answered, times out, or ctx is cancelled.
func (h *Handler) runCountdown(ctx context.Context, userID int64, quiz *session.Quiz, msg tele.Editable) {
	ticker := time.NewTicker(h.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := h.countdownTick(ctx, userID, quiz, msg); done {
				return
			}
		}
	}
}

func (h *Handler) countdownTick(ctx context.Context, userID int64, quiz *session.Quiz, msg tele.Editable) bool {
	lock := h.locks.For(userID)
	lock.Lock()
	defer lock.Unlock()

	// Answered, restarted or abandoned while waiting for the lock
	if ctx.Err() != nil {
		return true
	}

	attempt, timedOut := quiz.Tick()
	if !timedOut {
		left := quiz.TimeLeft()
		if left%countdownRedraw == 0 || left <= countdownRedraw {
			h.edit(userID, msg, renderQuizQuestion(quiz), quizQuestionMarkup(quiz.Deck().ID))
		}
		return false
	}

	h.recordAttempt(ctx, quiz, attempt)
	h.edit(userID, msg, renderQuizVerdict(quiz, attempt), quizAnsweredMarkup(quiz.Deck().ID))
	return true
}

func (h *Handler) recordAttempt(ctx context.Context, quiz *session.Quiz, attempt session.Attempt) {
	deckID := quiz.Deck().ID
	stats := h.statsService.Record(ctx, deckID, attempt.CardIndex, attempt.Correct)

	h.logger.Debug("Quiz answer recorded",
		zap.String("deck_id", deckID),
		zap.Int("card_index", attempt.CardIndex),
		zap.Bool("correct", attempt.Correct),
		zap.Bool("timed_out", attempt.TimedOut),
		zap.Int("lifetime_attempts", stats.Attempts),
	)
}

func (h *Handler) edit(userID int64, msg tele.Editable, text string, markup *tele.ReplyMarkup) {
	if _, err := h.messenger.Edit(msg, text, markup); err != nil && !strings.Contains(err.Error(), "message is not modified") {
		h.logger.Warn("Failed to update quiz message",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}
