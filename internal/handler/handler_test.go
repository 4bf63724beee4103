package handler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"flashdeck/internal/domain"
	"flashdeck/internal/middleware"
	"flashdeck/internal/repository"
	"flashdeck/internal/repository/memory"
	"flashdeck/internal/service"
	"flashdeck/internal/session"
	"flashdeck/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

const testUserID int64 = 42

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

// fakeContext records replies instead of calling the Bot API
type fakeContext struct {
	tele.Context
	sender   *tele.User
	text     string
	callback *tele.Callback
	replies  []string
}

func (c *fakeContext) Sender() *tele.User        { return c.sender }
func (c *fakeContext) Recipient() tele.Recipient { return c.sender }
func (c *fakeContext) Text() string              { return c.text }
func (c *fakeContext) Callback() *tele.Callback  { return c.callback }

func (c *fakeContext) Send(what interface{}, opts ...interface{}) error {
	c.replies = append(c.replies, fmt.Sprint(what))
	return nil
}

func (c *fakeContext) Edit(what interface{}, opts ...interface{}) error {
	c.replies = append(c.replies, fmt.Sprint(what))
	return nil
}

func (c *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	return nil
}

func (c *fakeContext) lastReply() string {
	if len(c.replies) == 0 {
		return ""
	}
	return c.replies[len(c.replies)-1]
}

// fakeMessenger records messages sent outside of update handlers
type fakeMessenger struct {
	mu    sync.Mutex
	sent  []string
	edits []string
}

func (m *fakeMessenger) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, fmt.Sprint(what))
	return &tele.Message{ID: len(m.sent), Chat: &tele.Chat{ID: testUserID}}, nil
}

func (m *fakeMessenger) Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, fmt.Sprint(what))
	return nil, nil
}

func (m *fakeMessenger) editCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.edits)
}

type testEnv struct {
	handler   *Handler
	store     *memory.Store
	messenger *fakeMessenger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.New()
	logger := testutil.NewTestLogger()
	clock := testutil.FixedClock(testNow)

	decks := service.NewDeckService(store, logger)
	decks.LoadAll(context.Background())
	streaks := service.NewStreakService(store, logger, clock)

	h := NewHandler(nil, Services{
		Decks:   decks,
		Known:   service.NewKnownService(store, logger),
		Streaks: streaks,
		Stats:   service.NewStatsService(store, streaks, logger),
		Reset:   service.NewResetService(store, decks, logger),
	}, 2*time.Second, clock, logger)

	messenger := &fakeMessenger{}
	h.messenger = messenger
	h.tickInterval = time.Hour
	t.Cleanup(func() { h.endSession(testUserID) })

	return &testEnv{handler: h, store: store, messenger: messenger}
}

func (e *testEnv) send(text string) *fakeContext {
	c := &fakeContext{sender: &tele.User{ID: testUserID}, text: text}
	return c
}

func (e *testEnv) typeText(t *testing.T, text string) *fakeContext {
	t.Helper()
	c := e.send(text)
	require.NoError(t, e.handler.handleText(c))
	return c
}

func TestHandler_CreateDeckFlow(t *testing.T) {
	env := newTestEnv(t)
	h := env.handler

	require.NoError(t, h.handleNewDeck(env.send("")))
	assert.Equal(t, domain.StateWaitingDeckName, h.GetState(testUserID).State)

	c := env.typeText(t, "   ")
	assert.Contains(t, c.lastReply(), "cannot be empty")
	assert.Equal(t, domain.StateWaitingDeckName, h.GetState(testUserID).State)

	env.typeText(t, "French")
	state := h.GetState(testUserID)
	assert.Equal(t, domain.StateWaitingDeckDescription, state.State)
	assert.Equal(t, "French", state.Draft)

	c = env.typeText(t, "Basics")
	assert.Contains(t, c.lastReply(), "French")
	assert.Equal(t, domain.StateIdle, h.GetState(testUserID).State)

	deck, ok := h.deckService.Deck("3")
	require.True(t, ok)
	assert.Equal(t, "French", deck.Name)
	assert.Equal(t, "Basics", deck.Description)
}

func TestHandler_EditDeckKeepsName(t *testing.T) {
	env := newTestEnv(t)
	h := env.handler

	require.NoError(t, h.handleEditDeck(env.send(""), "1"))
	env.typeText(t, keepValue)
	require.NoError(t, h.handleSkipDescription(env.send("")))

	deck, _ := h.deckService.Deck("1")
	assert.Equal(t, "Spanish Vocab", deck.Name)
	assert.Equal(t, "", deck.Description)
}

func TestHandler_AddAndEditCard(t *testing.T) {
	env := newTestEnv(t)
	h := env.handler

	require.NoError(t, h.handleAddCard(env.send(""), "2"))
	env.typeText(t, "Slope")
	c := env.typeText(t, "m = Δy / Δx")
	assert.Contains(t, c.lastReply(), "Card added")
	assert.Equal(t, domain.StateWaitingCardFront, h.GetState(testUserID).State, "add flow continues")

	deck, _ := h.deckService.Deck("2")
	require.Len(t, deck.Cards, 3)
	assert.Equal(t, domain.Card{Front: "Slope", Back: "m = Δy / Δx"}, deck.Cards[2])

	require.NoError(t, h.handleEditCard(env.send(""), "1", 0))
	env.typeText(t, keepValue)
	env.typeText(t, "Hi")

	deck, _ = h.deckService.Deck("1")
	assert.Equal(t, domain.Card{Front: "Hola", Back: "Hi"}, deck.Cards[0])
	assert.Equal(t, domain.StateIdle, h.GetState(testUserID).State)
}

func TestHandler_QuizAnswerRecordsStats(t *testing.T) {
	env := newTestEnv(t)
	h := env.handler

	require.NoError(t, h.handleQuizStart(env.send(""), "1"))
	assert.Equal(t, domain.StateQuiz, h.GetState(testUserID).State)
	require.Len(t, env.messenger.sent, 1)
	assert.Contains(t, env.messenger.sent[0], "Hola")

	c := env.typeText(t, "  hello ")
	assert.Contains(t, c.lastReply(), "Correct!")

	c = env.typeText(t, "hello")
	assert.Contains(t, c.lastReply(), "Use the buttons")

	var stats domain.QuizStats
	require.True(t, testutil.ReadJSON(t, env.store, repository.QuizStatsKey("1"), &stats))
	assert.Equal(t, 1, stats.Attempts)
	assert.Equal(t, 1, stats.TotalCorrect)

	var streak domain.StreakRecord
	require.True(t, testutil.ReadJSON(t, env.store, repository.StreakKey("1"), &streak))
	assert.Equal(t, domain.StreakRecord{LastActivityDate: "2024-03-10", Streak: 1}, streak)
}

func TestHandler_QuizOnEmptyDeck(t *testing.T) {
	env := newTestEnv(t)
	h := env.handler
	deck, err := h.deckService.AddDeck(context.Background(), "Empty", "")
	require.NoError(t, err)

	c := env.send("")
	require.NoError(t, h.handleQuizStart(c, deck.ID))

	assert.Contains(t, c.lastReply(), "no cards")
	assert.Nil(t, h.getSession(testUserID))
	_, found, err := env.store.Get(context.Background(), repository.StreakKey(deck.ID))
	require.NoError(t, err)
	assert.False(t, found, "empty decks do not count as activity")
}

func TestHandler_CountdownTimeout(t *testing.T) {
	env := newTestEnv(t)
	h := env.handler

	deck, err := h.deckService.AddDeck(context.Background(), "One", "")
	require.NoError(t, err)
	_, err = h.deckService.AddCard(context.Background(), deck.ID, "Hola", "Hello")
	require.NoError(t, err)

	quiz, err := session.NewQuiz(mustDeck(t, h, deck.ID), 2*time.Second)
	require.NoError(t, err)
	h.tickInterval = time.Millisecond
	s := &chatSession{quiz: quiz}
	h.startSession(testUserID, s)

	ctx, cancel := context.WithCancel(context.Background())
	s.stop = cancel
	done := make(chan struct{})
	go func() {
		h.runCountdown(ctx, testUserID, quiz, &tele.Message{ID: 1, Chat: &tele.Chat{ID: testUserID}})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("countdown did not finish")
	}

	lock := h.locks.For(testUserID)
	lock.Lock()
	defer lock.Unlock()

	assert.Equal(t, session.Answered, quiz.State())
	assert.True(t, quiz.Last().TimedOut)
	assert.Equal(t, 0, quiz.SessionCorrect())

	var stats domain.QuizStats
	require.True(t, testutil.ReadJSON(t, env.store, repository.QuizStatsKey(deck.ID), &stats))
	assert.Equal(t, 1, stats.Attempts)
	assert.Equal(t, 0, stats.TotalCorrect)
	assert.Equal(t, domain.CardStat{Correct: 0, Attempts: 1}, stats.Card(0))
	assert.Positive(t, env.messenger.editCount())
}

func TestHandler_CancelledCountdownRecordsNothing(t *testing.T) {
	env := newTestEnv(t)
	h := env.handler

	quiz, err := session.NewQuiz(mustDeck(t, h, "1"), time.Second)
	require.NoError(t, err)
	h.tickInterval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.runCountdown(ctx, testUserID, quiz, &tele.Message{ID: 1})

	assert.Equal(t, session.Awaiting, quiz.State())
	_, found, err := env.store.Get(context.Background(), repository.QuizStatsKey("1"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHandler_LeavingQuizStopsCountdown(t *testing.T) {
	tests := []struct {
		name  string
		leave func(h *Handler, c tele.Context) error
	}{
		{name: "card list", leave: func(h *Handler, c tele.Context) error { return h.handleCardList(c, "1") }},
		{name: "card view", leave: func(h *Handler, c tele.Context) error { return h.handleCardView(c, "1", 0) }},
		{name: "add card", leave: func(h *Handler, c tele.Context) error { return h.handleAddCard(c, "1") }},
		{name: "edit card", leave: func(h *Handler, c tele.Context) error { return h.handleEditCard(c, "1", 0) }},
		{name: "delete card", leave: func(h *Handler, c tele.Context) error { return h.handleDeleteCardAsk(c, "1", 0) }},
		{name: "unmark known", leave: func(h *Handler, c tele.Context) error { return h.handleUnmarkKnown(c, "1", 0) }},
		{name: "edit deck", leave: func(h *Handler, c tele.Context) error { return h.handleEditDeck(c, "1") }},
		{name: "delete deck", leave: func(h *Handler, c tele.Context) error { return h.handleDeleteDeckAsk(c, "1") }},
		{name: "settings", leave: func(h *Handler, c tele.Context) error { return h.handleSettings(c) }},
		{name: "reset", leave: func(h *Handler, c tele.Context) error { return h.handleResetAsk(c) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			h := env.handler
			// Two ticks time the question out
			h.quizLimit = 2 * time.Second
			h.tickInterval = 25 * time.Millisecond

			// Updates hold the user lock, as the bot middleware does
			serialize := middleware.Serialize(h.locks)
			require.NoError(t, serialize(func(c tele.Context) error {
				return h.handleQuizStart(c, "1")
			})(env.send("")))
			require.NoError(t, serialize(func(c tele.Context) error {
				return tt.leave(h, c)
			})(env.send("")))

			assert.Nil(t, h.getSession(testUserID))
			assert.NotEqual(t, domain.StateQuiz, h.GetState(testUserID).State)

			time.Sleep(200 * time.Millisecond)

			stats := h.statsService.Load(context.Background(), "1")
			assert.Equal(t, 0, stats.Attempts)
		})
	}
}

func TestHandler_StudyOnEmptyDeck(t *testing.T) {
	env := newTestEnv(t)
	h := env.handler
	deck, err := h.deckService.AddDeck(context.Background(), "Empty", "")
	require.NoError(t, err)

	c := env.send("")
	require.NoError(t, h.handleStudyStart(c, deck.ID))

	assert.Contains(t, c.lastReply(), "no cards to study")
	for _, key := range []string{repository.StreakKey(deck.ID), repository.GlobalStreakKey} {
		_, found, err := env.store.Get(context.Background(), key)
		require.NoError(t, err)
		assert.False(t, found, key)
	}
}

func TestHandler_DeleteCardEndsStudy(t *testing.T) {
	env := newTestEnv(t)
	h := env.handler

	require.NoError(t, h.handleStudyStart(env.send(""), "1"))
	require.NotNil(t, h.getSession(testUserID))

	require.NoError(t, h.handleDeleteCardConfirm(env.send(""), "1", 0))

	assert.Nil(t, h.getSession(testUserID))
	c := env.send("")
	require.NoError(t, h.handleStudyNext(c))
	assert.Contains(t, c.lastReply(), "session has ended")
}

func TestHandler_StudyFlow(t *testing.T) {
	env := newTestEnv(t)
	h := env.handler
	testutil.StoreJSON(t, env.store, repository.KnownCardsKey("1"), []int{1})

	c := env.send("")
	require.NoError(t, h.handleStudyStart(c, "1"))
	assert.Contains(t, c.lastReply(), "1/2")
	assert.Contains(t, c.lastReply(), "Hola")

	c = env.send("")
	require.NoError(t, h.handleStudyFlip(c))
	assert.Contains(t, c.lastReply(), "Hello")

	require.NoError(t, h.handleStudyMarkKnown(env.send("")))
	assert.Equal(t, []int{0, 1}, h.knownService.Load(context.Background(), "1").Indices())

	c = env.send("")
	require.NoError(t, h.handleStudyNext(c))
	assert.Contains(t, c.lastReply(), "Gracias")

	c = env.send("")
	require.NoError(t, h.handleStudyNext(c))
	assert.Nil(t, h.getSession(testUserID), "finishing the last card ends the session")
	assert.Contains(t, c.lastReply(), "Spanish Vocab")

	var streak domain.StreakRecord
	require.True(t, testutil.ReadJSON(t, env.store, repository.GlobalStreakKey, &streak))
	assert.Equal(t, 1, streak.Streak)
}

func TestHandler_DeleteCardConfirm(t *testing.T) {
	env := newTestEnv(t)
	h := env.handler
	testutil.StoreJSON(t, env.store, repository.KnownCardsKey("1"), []int{2})

	require.NoError(t, h.handleDeleteCardConfirm(env.send(""), "1", 0))

	deck, _ := h.deckService.Deck("1")
	require.Len(t, deck.Cards, 2)
	assert.Equal(t, "Adiós", deck.Cards[0].Front)
	assert.Equal(t, []int{1}, h.knownService.Load(context.Background(), "1").Indices())
}

func TestHandler_ResetConfirm(t *testing.T) {
	env := newTestEnv(t)
	h := env.handler
	require.NoError(t, h.deckService.DeleteDeck(context.Background(), "1"))
	testutil.StoreJSON(t, env.store, repository.StreakKey("2"), domain.StreakRecord{LastActivityDate: "2024-03-10", Streak: 3})

	c := env.send("")
	require.NoError(t, h.handleResetConfirm(c))

	assert.Contains(t, c.lastReply(), "reset")
	assert.Equal(t, domain.DefaultDecks(), h.deckService.Decks())
	_, found, err := env.store.Get(context.Background(), repository.StreakKey("2"))
	require.NoError(t, err)
	assert.False(t, found)
}

func mustDeck(t *testing.T, h *Handler, id string) domain.Deck {
	t.Helper()
	deck, ok := h.deckService.Deck(id)
	require.True(t, ok)
	return deck
}

func TestHandler_SendReminder(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.handler.SendReminder(7, domain.StreakRecord{LastActivityDate: "2024-03-09", Streak: 3}, true))
	require.NoError(t, env.handler.SendReminder(7, domain.StreakRecord{}, false))

	require.Len(t, env.messenger.sent, 2)
	assert.Contains(t, env.messenger.sent[0], "3 days streak")
	assert.Contains(t, env.messenger.sent[1], "quick study session")
}
