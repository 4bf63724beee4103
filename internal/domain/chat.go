package domain

// ChatState represents what the bot expects from the user's next text message
type ChatState string

const (
	StateIdle                   ChatState = "idle"
	StateWaitingDeckName        ChatState = "waiting_deck_name"
	StateWaitingDeckDescription ChatState = "waiting_deck_description"
	StateWaitingCardFront       ChatState = "waiting_card_front"
	StateWaitingCardBack        ChatState = "waiting_card_back"
	StateQuiz                   ChatState = "quiz"
)

// NoCard marks StateData that does not refer to an existing card
const NoCard = -1

// StateData holds temporary data for the user's current state
type StateData struct {
	State     ChatState
	DeckID    string // empty while creating a new deck
	CardIndex int    // NoCard while adding a card
	Draft     string // first half of a two-step input
}

// Editing reports whether the flow changes an existing deck or card
func (s StateData) Editing() bool {
	switch s.State {
	case StateWaitingDeckName, StateWaitingDeckDescription:
		return s.DeckID != ""
	case StateWaitingCardFront, StateWaitingCardBack:
		return s.CardIndex != NoCard
	}
	return false
}
