package domain

import "strconv"

// Card is a front/back text pair. Its identity is its position in the deck.
type Card struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Deck is a named, ordered collection of cards
type Deck struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cards       []Card `json:"cards"`
}

// Clone returns a deep copy of the deck so callers never share the card slice.
func (d Deck) Clone() Deck {
	cards := make([]Card, len(d.Cards))
	copy(cards, d.Cards)
	d.Cards = cards
	return d
}

// HasCard reports whether index addresses an existing card
func (d Deck) HasCard(index int) bool {
	return index >= 0 && index < len(d.Cards)
}

// CloneDecks deep-copies a deck list
func CloneDecks(decks []Deck) []Deck {
	out := make([]Deck, len(decks))
	for i, d := range decks {
		out[i] = d.Clone()
	}
	return out
}

// NextDeckID returns an id one greater than the largest numeric id in use,
// so ids stay unique after deletions.
func NextDeckID(decks []Deck) string {
	max := 0
	for _, d := range decks {
		if n, err := strconv.Atoi(d.ID); err == nil && n > max {
			max = n
		}
	}
	next := max + 1
	for {
		id := strconv.Itoa(next)
		if !containsDeckID(decks, id) {
			return id
		}
		next++
	}
}

func containsDeckID(decks []Deck, id string) bool {
	for _, d := range decks {
		if d.ID == id {
			return true
		}
	}
	return false
}

// DefaultDecks returns the built-in seed content
func DefaultDecks() []Deck {
	return []Deck{
		{
			ID:          "1",
			Name:        "Spanish Vocab",
			Description: "Basic Spanish words",
			Cards: []Card{
				{Front: "Hola", Back: "Hello"},
				{Front: "Adiós", Back: "Goodbye"},
				{Front: "Gracias", Back: "Thank you"},
			},
		},
		{
			ID:          "2",
			Name:        "Math Formulas",
			Description: "Algebra formulas",
			Cards: []Card{
				{Front: "Quadratic Formula", Back: "x = (-b ± √(b² - 4ac)) / 2a"},
				{Front: "Pythagorean Theorem", Back: "a² + b² = c²"},
			},
		},
	}
}
