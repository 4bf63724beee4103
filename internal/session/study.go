package session

import "flashdeck/internal/domain"

// Face is the visible side of the current card
type Face int

const (
	Front Face = iota
	Back
)

func (f Face) String() string {
	if f == Back {
		return "Answer"
	}
	return "Question"
}

// Study walks the cards of a deck that are not yet known. The rotation is
// fixed when the session starts; marking a card known mid-session does not
// remove it until the next session.
type Study struct {
	deck  domain.Deck
	order []int
	pos   int
	face  Face
}

// NewStudy starts a study session over the unknown cards of deck
func NewStudy(deck domain.Deck, known domain.KnownCards) *Study {
	order := make([]int, 0, len(deck.Cards))
	for i := range deck.Cards {
		if !known.Has(i) {
			order = append(order, i)
		}
	}
	return &Study{deck: deck.Clone(), order: order}
}

func (s *Study) Deck() domain.Deck {
	return s.deck
}

// Empty reports whether the deck has no cards at all
func (s *Study) Empty() bool {
	return len(s.deck.Cards) == 0
}

// AllKnown reports whether every card of a non-empty deck is known
func (s *Study) AllKnown() bool {
	return !s.Empty() && len(s.order) == 0
}

// Len is the number of cards in the rotation
func (s *Study) Len() int {
	return len(s.order)
}

// Position is the zero-based place of the current card in the rotation
func (s *Study) Position() int {
	return s.pos
}

// Current returns the deck index and content of the current card
func (s *Study) Current() (int, domain.Card, bool) {
	if len(s.order) == 0 {
		return 0, domain.Card{}, false
	}
	index := s.order[s.pos]
	return index, s.deck.Cards[index], true
}

func (s *Study) Face() Face {
	return s.face
}

// Text returns the visible side of the current card
func (s *Study) Text() string {
	_, card, ok := s.Current()
	if !ok {
		return ""
	}
	if s.face == Back {
		return card.Back
	}
	return card.Front
}

func (s *Study) Flip() {
	if s.face == Front {
		s.face = Back
	} else {
		s.face = Front
	}
}

// Next moves to the following card, front side up. It reports done when
// the current card was the last one; the position is left unchanged then.
func (s *Study) Next() (done bool) {
	if s.pos >= len(s.order)-1 {
		return true
	}
	s.pos++
	s.face = Front
	return false
}

// Previous moves back one card. It does nothing on the first card.
func (s *Study) Previous() {
	if !s.CanPrevious() {
		return
	}
	s.pos--
	s.face = Front
}

func (s *Study) CanPrevious() bool {
	return s.pos > 0
}

// Progress returns the share of the rotation reached, in percent
func (s *Study) Progress() int {
	if len(s.order) == 0 {
		return 0
	}
	return (s.pos + 1) * 100 / len(s.order)
}
