package handler

import (
	"sync"
	"time"

	"flashdeck/internal/domain"
	"flashdeck/internal/middleware"
	"flashdeck/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Messenger is the part of the bot API used outside of update handlers
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Handler manages all bot interactions
type Handler struct {
	bot       *tele.Bot
	messenger Messenger

	deckService   *service.DeckService
	knownService  *service.KnownService
	streakService *service.StreakService
	statsService  *service.StatsService
	resetService  *service.ResetService
	logger        *zap.Logger

	quizLimit    time.Duration
	tickInterval time.Duration
	now          func() time.Time

	// User states (in-memory state machine)
	states   map[int64]*domain.StateData
	stateMux sync.RWMutex

	// Per-user locks serialize updates and countdown ticks
	locks *middleware.UserLocks

	sessions   map[int64]*chatSession
	sessionMux sync.Mutex
}

// Services groups the services the handler depends on
type Services struct {
	Decks   *service.DeckService
	Known   *service.KnownService
	Streaks *service.StreakService
	Stats   *service.StatsService
	Reset   *service.ResetService
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	services Services,
	quizLimit time.Duration,
	now func() time.Time,
	logger *zap.Logger,
) *Handler {
	h := &Handler{
		bot:           bot,
		deckService:   services.Decks,
		knownService:  services.Known,
		streakService: services.Streaks,
		statsService:  services.Stats,
		resetService:  services.Reset,
		logger:        logger,
		quizLimit:     quizLimit,
		tickInterval:  time.Second,
		now:           now,
		states:        make(map[int64]*domain.StateData),
		locks:         middleware.NewUserLocks(),
		sessions:      make(map[int64]*chatSession),
	}
	if bot != nil {
		h.messenger = bot
	}
	return h
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	h.bot.Use(middleware.Logging(h.logger), middleware.Serialize(h.locks))

	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/decks", h.handleDecks)
	h.bot.Handle("/stats", h.handleStats)
	h.bot.Handle("/cancel", h.handleCancel)

	// Text messages
	h.bot.Handle(tele.OnText, h.handleText)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnDecks, h.handleDecks)
	h.bot.Handle(&btnStats, h.handleStats)
	h.bot.Handle(&btnNewDeck, h.handleNewDeck)
	h.bot.Handle(&btnSettings, h.handleSettings)
	h.bot.Handle(&btnReset, h.handleResetAsk)
	h.bot.Handle(&btnResetConfirm, h.handleResetConfirm)
	h.bot.Handle(&btnCancel, h.handleCancel)
	h.bot.Handle(&btnMainMenu, h.handleStart)
	h.bot.Handle(&btnFlip, h.handleStudyFlip)
	h.bot.Handle(&btnNext, h.handleStudyNext)
	h.bot.Handle(&btnPrevious, h.handleStudyPrevious)
	h.bot.Handle(&btnMarkKnown, h.handleStudyMarkKnown)
	h.bot.Handle(&btnQuizNext, h.handleQuizNext)
	h.bot.Handle(&btnQuizRestart, h.handleQuizRestart)
	h.bot.Handle(&btnSkipDescription, h.handleSkipDescription)

	// Generic callback handler for dynamic data
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// GetState returns user's current state
func (h *Handler) GetState(userID int64) *domain.StateData {
	h.stateMux.RLock()
	defer h.stateMux.RUnlock()

	state, exists := h.states[userID]
	if !exists {
		return &domain.StateData{State: domain.StateIdle, CardIndex: domain.NoCard}
	}
	return state
}

// SetState sets user's state
func (h *Handler) SetState(userID int64, state *domain.StateData) {
	h.stateMux.Lock()
	defer h.stateMux.Unlock()
	h.states[userID] = state
}

// ResetState resets user to idle state
func (h *Handler) ResetState(userID int64) {
	h.SetState(userID, &domain.StateData{State: domain.StateIdle, CardIndex: domain.NoCard})
}

// show edits the message behind a callback, or sends a new one for commands
func (h *Handler) show(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if c.Callback() != nil {
		if err := c.Edit(text, markup); err != nil {
			if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
				return nil // Message was already modified, just acknowledged
			}
			return c.Send(text, markup)
		}
		return c.Respond()
	}
	return c.Send(text, markup)
}

// alert answers a callback with a popup, or a message for commands
func alert(c tele.Context, text string) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
	}
	return c.Send(text)
}

// Inline keyboard buttons
var (
	btnDecks = tele.Btn{
		Unique: "decks",
		Text:   "📚 Decks",
	}
	btnStats = tele.Btn{
		Unique: "stats",
		Text:   "📊 Statistics",
	}
	btnNewDeck = tele.Btn{
		Unique: "new_deck",
		Text:   "➕ New deck",
	}
	btnSettings = tele.Btn{
		Unique: "settings",
		Text:   "⚙️ Settings",
	}
	btnReset = tele.Btn{
		Unique: "reset",
		Text:   "🗑 Reset all data",
	}
	btnResetConfirm = tele.Btn{
		Unique: "reset_confirm",
		Text:   "⚠️ Yes, erase everything",
	}
	btnCancel = tele.Btn{
		Unique: "cancel",
		Text:   "❌ Cancel",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🏠 Main menu",
	}
	btnFlip = tele.Btn{
		Unique: "flip",
		Text:   "🔄 Flip",
	}
	btnNext = tele.Btn{
		Unique: "next",
		Text:   "Next ➡️",
	}
	btnPrevious = tele.Btn{
		Unique: "previous",
		Text:   "⬅️ Previous",
	}
	btnMarkKnown = tele.Btn{
		Unique: "mark_known",
		Text:   "✅ I know this",
	}
	btnQuizNext = tele.Btn{
		Unique: "quiz_next",
		Text:   "Next question ➡️",
	}
	btnQuizRestart = tele.Btn{
		Unique: "quiz_restart",
		Text:   "🔁 Restart quiz",
	}
	btnSkipDescription = tele.Btn{
		Unique: "skip_description",
		Text:   "⏭ No description",
	}
)

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnDecks, btnNewDeck),
		menu.Row(btnStats, btnSettings),
	)
	return menu
}

func cancelMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(btnCancel))
	return menu
}
