package handler

import (
	"fmt"
	"strings"
	"time"

	"flashdeck/internal/domain"
	"flashdeck/internal/service"
	"flashdeck/internal/session"

	tele "gopkg.in/telebot.v3"
)

const progressBarWidth = 10

// progressBar draws percent as a fixed-width bar
func progressBar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * progressBarWidth / 100
	return strings.Repeat("▓", filled) + strings.Repeat("░", progressBarWidth-filled)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func renderDeckList(decks []domain.Deck) string {
	if len(decks) == 0 {
		return "📚 You have no decks yet.\n\nCreate one to get started."
	}

	var b strings.Builder
	b.WriteString("📚 Your decks:\n\n")
	for _, deck := range decks {
		fmt.Fprintf(&b, "• %s (%s)\n", deck.Name, plural(len(deck.Cards), "card"))
	}
	return b.String()
}

func renderDeckView(deck domain.Deck, known domain.KnownCards, streak domain.StreakRecord, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📘 %s\n", deck.Name)
	if deck.Description != "" {
		fmt.Fprintf(&b, "%s\n", deck.Description)
	}
	b.WriteString("\n")

	knownCount := 0
	for i := range deck.Cards {
		if known.Has(i) {
			knownCount++
		}
	}
	fmt.Fprintf(&b, "Cards: %d (%d known)\n", len(deck.Cards), knownCount)
	fmt.Fprintf(&b, "🔥 Streak: %s, last studied %s\n",
		plural(streak.Streak, "day"), domain.DisplayDate(streak.LastActivityDate, now))

	if len(deck.Cards) == 0 {
		b.WriteString("\nNo cards yet. Add one!")
	}
	return b.String()
}

func renderCardList(deck domain.Deck, known domain.KnownCards) string {
	if len(deck.Cards) == 0 {
		return fmt.Sprintf("🃏 %s\n\nNo cards yet. Add one!", deck.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🃏 %s — cards:\n\n", deck.Name)
	for i, card := range deck.Cards {
		mark := ""
		if known.Has(i) {
			mark = " ✅"
		}
		fmt.Fprintf(&b, "%d. %s%s\n", i+1, card.Front, mark)
	}
	return b.String()
}

func renderCard(deck domain.Deck, index int, known domain.KnownCards) string {
	card := deck.Cards[index]
	text := fmt.Sprintf("🃏 %s — card %d/%d\n\nQuestion: %s\nAnswer: %s",
		deck.Name, index+1, len(deck.Cards), card.Front, card.Back)
	if known.Has(index) {
		text += "\n\n✅ Marked as known"
	}
	return text
}

func renderStudy(study *session.Study) string {
	deck := study.Deck()
	if study.Empty() {
		return fmt.Sprintf("📖 %s\n\nThis deck has no cards to study.", deck.Name)
	}
	if study.AllKnown() {
		return fmt.Sprintf("📖 %s\n\n🎉 All Cards Marked as Known!", deck.Name)
	}

	return fmt.Sprintf("📖 %s — %d/%d\n%s %d%%\n\n%s\n\n%s",
		deck.Name,
		study.Position()+1, study.Len(),
		progressBar(study.Progress()), study.Progress(),
		study.Face(),
		study.Text(),
	)
}

func renderQuizQuestion(quiz *session.Quiz) string {
	index, card := quiz.Current()
	return fmt.Sprintf("❓ %s — question %d/%d\n⏱ %ds left\n\n%s\n\nType your answer.",
		quiz.Deck().Name,
		index+1, quiz.Len(),
		int(quiz.TimeLeft()/time.Second),
		card.Front,
	)
}

func renderQuizVerdict(quiz *session.Quiz, attempt session.Attempt) string {
	card := quiz.Deck().Cards[attempt.CardIndex]
	switch {
	case attempt.TimedOut:
		return fmt.Sprintf("⌛ Time's up!\n\n%s\nCorrect answer: %s", card.Front, card.Back)
	case attempt.Correct:
		return fmt.Sprintf("✅ Correct!\n\n%s — %s", card.Front, card.Back)
	default:
		return fmt.Sprintf("❌ Wrong.\n\n%s\nYour answer: %s\nCorrect answer: %s", card.Front, attempt.Answer, card.Back)
	}
}

// renderAssessment summarizes a finished quiz. The score covers this
// session; attempts and per-card lines are lifetime figures.
func renderAssessment(quiz *session.Quiz, lifetime domain.QuizStats) string {
	deck := quiz.Deck()
	n := len(deck.Cards)

	var b strings.Builder
	fmt.Fprintf(&b, "🏁 Quiz complete: %s\n\n", deck.Name)
	fmt.Fprintf(&b, "Score: %d/%d\n", quiz.SessionCorrect(), n)
	fmt.Fprintf(&b, "Total attempts: %d\n", lifetime.Attempts)
	fmt.Fprintf(&b, "Lifetime correct: %d/%d\n\n", lifetime.LifetimeCorrectCards(n), n)

	for i, card := range deck.Cards {
		cs := lifetime.Card(i)
		fmt.Fprintf(&b, "%d. %s: %d/%d correct\n", i+1, card.Front, cs.Correct, cs.Attempts)
	}
	return b.String()
}

func renderStats(overview service.Overview, now time.Time) string {
	var b strings.Builder
	b.WriteString("📊 Statistics\n\n")
	fmt.Fprintf(&b, "🔥 Global streak: %s (last active %s)\n",
		plural(overview.GlobalStreak.Streak, "day"),
		domain.DisplayDate(overview.GlobalStreak.LastActivityDate, now))

	totals := overview.Totals
	accuracy := 0.0
	if totals.TotalQuestions > 0 {
		accuracy = float64(totals.TotalCorrect) * 100 / float64(totals.TotalQuestions)
	}
	fmt.Fprintf(&b, "Total attempts: %d\n", totals.Attempts)
	fmt.Fprintf(&b, "Correct answers: %d/%d (%.0f%%)\n", totals.TotalCorrect, totals.TotalQuestions, accuracy)

	for _, d := range overview.Decks {
		n := len(d.Deck.Cards)
		fmt.Fprintf(&b, "\n📘 %s\n", d.Deck.Name)
		fmt.Fprintf(&b, "Streak: %s\n", plural(d.Streak.Streak, "day"))
		fmt.Fprintf(&b, "Attempts: %d, accuracy %.0f%%\n", d.Stats.Attempts, d.Stats.Accuracy())
		fmt.Fprintf(&b, "Lifetime correct: %d/%d\n", d.Stats.LifetimeCorrectCards(n), n)
		for i, card := range d.Deck.Cards {
			cs := d.Stats.Card(i)
			if cs.Attempts == 0 {
				continue
			}
			fmt.Fprintf(&b, "  %d. %s: %d/%d\n", i+1, card.Front, cs.Correct, cs.Attempts)
		}
	}
	return b.String()
}

func deckListMarkup(decks []domain.Deck) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{}
	for _, deck := range decks {
		btnText := fmt.Sprintf("%s (%d)", deck.Name, len(deck.Cards))
		rows = append(rows, markup.Row(markup.Data(btnText, deckData(prefixDeck, deck.ID))))
	}
	rows = append(rows, markup.Row(btnNewDeck, btnMainMenu))
	markup.Inline(rows...)
	return markup
}

func deckViewMarkup(deck domain.Deck) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(
			markup.Data("📖 Study", deckData(prefixStudy, deck.ID)),
			markup.Data("❓ Quiz", deckData(prefixQuiz, deck.ID)),
		),
		markup.Row(
			markup.Data("🃏 Cards", deckData(prefixCards, deck.ID)),
			markup.Data("➕ Add card", deckData(prefixAddCard, deck.ID)),
		),
		markup.Row(
			markup.Data("✏️ Edit deck", deckData(prefixEditDeck, deck.ID)),
			markup.Data("🗑 Delete deck", deckData(prefixDeleteDeck, deck.ID)),
		),
		markup.Row(btnDecks),
	)
	return markup
}

func backToDeckButton(markup *tele.ReplyMarkup, deckID string) tele.Btn {
	return markup.Data("◀️ Back to deck", deckData(prefixDeck, deckID))
}

func cardListMarkup(deck domain.Deck, known domain.KnownCards) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{}
	for i, card := range deck.Cards {
		btnText := fmt.Sprintf("%d. %s", i+1, card.Front)
		if known.Has(i) {
			btnText += " ✅"
		}
		rows = append(rows, markup.Row(markup.Data(btnText, cardData(prefixCard, deck.ID, i))))
	}
	rows = append(rows, markup.Row(
		markup.Data("➕ Add card", deckData(prefixAddCard, deck.ID)),
		backToDeckButton(markup, deck.ID),
	))
	markup.Inline(rows...)
	return markup
}

func cardViewMarkup(deckID string, index int, known bool) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{
		markup.Row(
			markup.Data("✏️ Edit", cardData(prefixEditCard, deckID, index)),
			markup.Data("🗑 Delete", cardData(prefixDeleteCard, deckID, index)),
		),
	}
	if known {
		rows = append(rows, markup.Row(markup.Data("↩️ Mark as unknown", cardData(prefixUnmarkKnown, deckID, index))))
	}
	rows = append(rows, markup.Row(markup.Data("◀️ Back to cards", deckData(prefixCards, deckID))))
	markup.Inline(rows...)
	return markup
}

func confirmMarkup(yes tele.Btn, no tele.Btn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(yes, no))
	return markup
}

func studyMarkup(study *session.Study) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	deckID := study.Deck().ID
	if study.Len() == 0 {
		markup.Inline(markup.Row(backToDeckButton(markup, deckID)))
		return markup
	}

	nav := tele.Row{}
	if study.CanPrevious() {
		nav = append(nav, btnPrevious)
	}
	nav = append(nav, btnNext)

	markup.Inline(
		markup.Row(btnFlip, btnMarkKnown),
		nav,
		markup.Row(backToDeckButton(markup, deckID)),
	)
	return markup
}

func quizQuestionMarkup(deckID string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data("🚪 Quit quiz", deckData(prefixDeck, deckID))))
	return markup
}

func quizAnsweredMarkup(deckID string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(btnQuizNext),
		markup.Row(markup.Data("🚪 Quit quiz", deckData(prefixDeck, deckID))),
	)
	return markup
}

func assessmentMarkup(deckID string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnQuizRestart, backToDeckButton(markup, deckID)))
	return markup
}
