package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"flashdeck/internal/domain"
	"flashdeck/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// keepValue in an edit flow keeps the current value
const keepValue = "-"

// handleText handles all text messages based on state
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	// Ignore commands (starting with /)
	if strings.HasPrefix(text, "/") {
		return nil
	}

	state := h.GetState(userID)

	switch state.State {
	case domain.StateQuiz:
		return h.handleQuizAnswer(c, text)

	case domain.StateWaitingDeckName:
		name := text
		if state.Editing() && text == keepValue {
			deck, ok := h.deckService.Deck(state.DeckID)
			if !ok {
				h.ResetState(userID)
				return c.Send("Deck not found.", mainMenuMarkup())
			}
			name = deck.Name
		}
		if name == "" {
			return c.Send("The deck name cannot be empty. Send a name:", cancelMarkup())
		}

		h.SetState(userID, &domain.StateData{
			State:     domain.StateWaitingDeckDescription,
			DeckID:    state.DeckID,
			CardIndex: domain.NoCard,
			Draft:     name,
		})
		return c.Send(descriptionPrompt(state.Editing()), skipDescriptionMarkup())

	case domain.StateWaitingDeckDescription:
		description := text
		if state.Editing() && text == keepValue {
			if deck, ok := h.deckService.Deck(state.DeckID); ok {
				description = deck.Description
			}
		}
		return h.finishDeck(c, state, description)

	case domain.StateWaitingCardFront:
		front := text
		if state.Editing() && text == keepValue {
			card, ok := h.existingCard(state)
			if !ok {
				h.ResetState(userID)
				return c.Send("Card not found.", mainMenuMarkup())
			}
			front = card.Front
		}
		if front == "" {
			return c.Send("The question cannot be empty. Send the question:", cancelMarkup())
		}

		h.SetState(userID, &domain.StateData{
			State:     domain.StateWaitingCardBack,
			DeckID:    state.DeckID,
			CardIndex: state.CardIndex,
			Draft:     front,
		})
		prompt := "Now send the answer."
		if state.Editing() {
			prompt += " Send \"-\" to keep the current one."
		}
		return c.Send(prompt, cancelMarkup())

	case domain.StateWaitingCardBack:
		back := text
		if state.Editing() && text == keepValue {
			if card, ok := h.existingCard(state); ok {
				back = card.Back
			}
		}
		return h.finishCard(c, state, back)

	default:
		return c.Send("Choose an action:", mainMenuMarkup())
	}
}

// handleNewDeck starts the create deck flow
func (h *Handler) handleNewDeck(c tele.Context) error {
	userID := c.Sender().ID
	h.endSession(userID)
	h.SetState(userID, &domain.StateData{State: domain.StateWaitingDeckName, CardIndex: domain.NoCard})

	return h.show(c, "➕ New deck\n\nSend the deck name:", cancelMarkup())
}

// handleEditDeck starts the edit deck flow
func (h *Handler) handleEditDeck(c tele.Context, deckID string) error {
	h.endSession(c.Sender().ID)

	deck, ok := h.deckService.Deck(deckID)
	if !ok {
		return alert(c, "Deck not found")
	}

	h.SetState(c.Sender().ID, &domain.StateData{
		State:     domain.StateWaitingDeckName,
		DeckID:    deckID,
		CardIndex: domain.NoCard,
	})

	text := fmt.Sprintf("✏️ Editing \"%s\"\n\nSend the new name, or \"-\" to keep it.", deck.Name)
	return h.show(c, text, cancelMarkup())
}

// handleSkipDescription finishes a deck flow with an empty description
func (h *Handler) handleSkipDescription(c tele.Context) error {
	userID := c.Sender().ID
	h.endSession(userID)

	state := h.GetState(userID)
	if state.State != domain.StateWaitingDeckDescription {
		return c.Respond()
	}
	return h.finishDeck(c, state, "")
}

// handleAddCard starts the add card flow
func (h *Handler) handleAddCard(c tele.Context, deckID string) error {
	h.endSession(c.Sender().ID)

	deck, ok := h.deckService.Deck(deckID)
	if !ok {
		return alert(c, "Deck not found")
	}

	h.SetState(c.Sender().ID, &domain.StateData{
		State:     domain.StateWaitingCardFront,
		DeckID:    deckID,
		CardIndex: domain.NoCard,
	})

	return h.show(c, fmt.Sprintf("➕ New card in \"%s\"\n\nSend the question:", deck.Name), cancelMarkup())
}

// handleEditCard starts the edit card flow
func (h *Handler) handleEditCard(c tele.Context, deckID string, index int) error {
	h.endSession(c.Sender().ID)

	deck, ok := h.deckService.Deck(deckID)
	if !ok || !deck.HasCard(index) {
		return alert(c, "Card not found")
	}

	h.SetState(c.Sender().ID, &domain.StateData{
		State:     domain.StateWaitingCardFront,
		DeckID:    deckID,
		CardIndex: index,
	})

	card := deck.Cards[index]
	text := fmt.Sprintf("✏️ Editing card %d\n\nQuestion: %s\nAnswer: %s\n\nSend the new question, or \"-\" to keep it.",
		index+1, card.Front, card.Back)
	return h.show(c, text, cancelMarkup())
}

func (h *Handler) finishDeck(c tele.Context, state *domain.StateData, description string) error {
	userID := c.Sender().ID
	ctx := context.Background()

	var (
		deck domain.Deck
		err  error
	)
	if state.Editing() {
		deck, err = h.deckService.UpdateDeck(ctx, state.DeckID, state.Draft, description)
	} else {
		deck, err = h.deckService.AddDeck(ctx, state.Draft, description)
	}
	h.ResetState(userID)

	if err != nil {
		h.logger.Warn("Failed to save deck",
			zap.Int64("user_id", userID),
			zap.String("deck_id", state.DeckID),
			zap.Error(err),
		)
		return c.Send(userMessage(err), mainMenuMarkup())
	}

	known := h.knownService.Load(ctx, deck.ID)
	streak := h.streakService.Get(ctx, deck.ID)
	return h.show(c, "✅ Saved!\n\n"+renderDeckView(deck, known, streak, h.now()), deckViewMarkup(deck))
}

func (h *Handler) finishCard(c tele.Context, state *domain.StateData, back string) error {
	userID := c.Sender().ID
	ctx := context.Background()

	var (
		deck domain.Deck
		err  error
	)
	if state.Editing() {
		deck, err = h.deckService.UpdateCard(ctx, state.DeckID, state.CardIndex, state.Draft, back)
	} else {
		deck, err = h.deckService.AddCard(ctx, state.DeckID, state.Draft, back)
	}

	if errors.Is(err, service.ErrEmptyCard) {
		return c.Send("The answer cannot be empty. Send the answer:", cancelMarkup())
	}
	if err != nil {
		h.ResetState(userID)
		h.logger.Warn("Failed to save card",
			zap.Int64("user_id", userID),
			zap.String("deck_id", state.DeckID),
			zap.Error(err),
		)
		return c.Send(userMessage(err), mainMenuMarkup())
	}

	known := h.knownService.Load(ctx, deck.ID)
	if state.Editing() {
		h.ResetState(userID)
		return c.Send("✅ Card updated!\n\n"+renderCard(deck, state.CardIndex, known),
			cardViewMarkup(deck.ID, state.CardIndex, known.Has(state.CardIndex)))
	}

	// Stay in the flow so several cards can be added in a row
	h.SetState(userID, &domain.StateData{
		State:     domain.StateWaitingCardFront,
		DeckID:    deck.ID,
		CardIndex: domain.NoCard,
	})
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data("🃏 Cards", deckData(prefixCards, deck.ID)),
		backToDeckButton(markup, deck.ID),
	))
	return c.Send(fmt.Sprintf("✅ Card added! \"%s\" now has %s.\n\nSend the next question, or go back.",
		deck.Name, plural(len(deck.Cards), "card")), markup)
}

func (h *Handler) existingCard(state *domain.StateData) (domain.Card, bool) {
	deck, ok := h.deckService.Deck(state.DeckID)
	if !ok || !deck.HasCard(state.CardIndex) {
		return domain.Card{}, false
	}
	return deck.Cards[state.CardIndex], true
}

func descriptionPrompt(editing bool) string {
	if editing {
		return "Send the new description, \"-\" to keep it, or skip to clear it."
	}
	return "Send a short description, or skip it."
}

func skipDescriptionMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(btnSkipDescription, btnCancel))
	return menu
}

// userMessage turns a service rejection into a reply
func userMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrEmptyName):
		return "❌ The deck name cannot be empty."
	case errors.Is(err, service.ErrEmptyCard):
		return "❌ Question and answer cannot be empty."
	case errors.Is(err, service.ErrDeckNotFound):
		return "❌ Deck not found."
	case errors.Is(err, service.ErrCardNotFound):
		return "❌ Card not found."
	default:
		return "❌ Something went wrong. Please try again."
	}
}
