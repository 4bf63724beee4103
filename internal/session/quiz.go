package session

import (
	"errors"
	"strings"
	"time"

	"flashdeck/internal/domain"
)

// DefaultQuizLimit is the answer budget per question
const DefaultQuizLimit = 30 * time.Second

// ErrNoCards is returned when a quiz is started on an empty deck
var ErrNoCards = errors.New("deck has no cards")

// State is the phase of a quiz
type State int

const (
	// Awaiting an answer for the current card, countdown running
	Awaiting State = iota
	// Answered shows the verdict until Next is called
	Answered
	// Assessment is the summary after the last card
	Assessment
)

// Attempt is one graded question. The caller feeds it to the lifetime stats.
type Attempt struct {
	CardIndex int
	Answer    string
	Correct   bool
	TimedOut  bool
}

// Quiz runs every card of a deck in order against a per-question countdown.
// The score it keeps covers this session only.
type Quiz struct {
	deck  domain.Deck
	limit time.Duration

	index    int
	state    State
	timeLeft time.Duration
	last     Attempt
	results  []Attempt
}

// NewQuiz starts a quiz on deck with limit per question.
// A non-positive limit uses DefaultQuizLimit.
func NewQuiz(deck domain.Deck, limit time.Duration) (*Quiz, error) {
	if len(deck.Cards) == 0 {
		return nil, ErrNoCards
	}
	if limit <= 0 {
		limit = DefaultQuizLimit
	}

	q := &Quiz{deck: deck.Clone(), limit: limit}
	q.Restart()
	return q, nil
}

// Grade compares an answer with the expected back side, ignoring
// surrounding whitespace and case.
func Grade(answer, expected string) bool {
	return strings.ToLower(strings.TrimSpace(answer)) == strings.ToLower(strings.TrimSpace(expected))
}

func (q *Quiz) Deck() domain.Deck {
	return q.deck
}

func (q *Quiz) State() State {
	return q.state
}

// Current returns the index and content of the card being asked
func (q *Quiz) Current() (int, domain.Card) {
	return q.index, q.deck.Cards[q.index]
}

// Len is the number of questions in the quiz
func (q *Quiz) Len() int {
	return len(q.deck.Cards)
}

func (q *Quiz) TimeLeft() time.Duration {
	return q.timeLeft
}

// Last returns the verdict of the most recent question
func (q *Quiz) Last() Attempt {
	return q.last
}

// Submit grades answer for the current card. Blank answers and answers
// outside the Awaiting state are ignored and report false.
func (q *Quiz) Submit(answer string) (Attempt, bool) {
	if q.state != Awaiting || strings.TrimSpace(answer) == "" {
		return Attempt{}, false
	}

	_, card := q.Current()
	return q.answer(Attempt{
		CardIndex: q.index,
		Answer:    strings.TrimSpace(answer),
		Correct:   Grade(answer, card.Back),
	}), true
}

// Tick takes one second off the countdown. When it reaches zero the question
// is graded wrong and the timeout attempt is returned with true.
func (q *Quiz) Tick() (Attempt, bool) {
	if q.state != Awaiting {
		return Attempt{}, false
	}

	q.timeLeft -= time.Second
	if q.timeLeft > 0 {
		return Attempt{}, false
	}
	q.timeLeft = 0

	return q.answer(Attempt{CardIndex: q.index, TimedOut: true}), true
}

// Next moves past an answered question, to the following card or to the
// assessment after the last one. It does nothing unless the current question
// has been answered.
func (q *Quiz) Next() {
	if q.state != Answered {
		return
	}
	if q.index < len(q.deck.Cards)-1 {
		q.index++
		q.state = Awaiting
		q.timeLeft = q.limit
		return
	}
	q.state = Assessment
}

// Restart begins the quiz again from the first card with a fresh session score
func (q *Quiz) Restart() {
	q.index = 0
	q.state = Awaiting
	q.timeLeft = q.limit
	q.last = Attempt{}
	q.results = nil
}

// SessionCorrect counts the questions answered correctly in this session
func (q *Quiz) SessionCorrect() int {
	n := 0
	for _, a := range q.results {
		if a.Correct {
			n++
		}
	}
	return n
}

// Results lists this session's attempts in question order
func (q *Quiz) Results() []Attempt {
	out := make([]Attempt, len(q.results))
	copy(out, q.results)
	return out
}

func (q *Quiz) answer(a Attempt) Attempt {
	q.state = Answered
	q.last = a
	q.results = append(q.results, a)
	return a
}
