package domain

// CardStat holds lifetime counters for one card position
type CardStat struct {
	Correct  int `json:"correct"`
	Attempts int `json:"attempts"`
}

// QuizStats accumulates lifetime quiz results for a deck.
// Every attempt is one question, so TotalQuestions always equals Attempts.
type QuizStats struct {
	Attempts       int              `json:"attempts"`
	TotalCorrect   int              `json:"totalCorrect"`
	TotalQuestions int              `json:"totalQuestions"`
	CardStats      map[int]CardStat `json:"cardStats"`
}

// NewQuizStats returns empty stats with an initialized card map
func NewQuizStats() QuizStats {
	return QuizStats{CardStats: make(map[int]CardStat)}
}

// Clone returns a copy that shares no map with s
func (s QuizStats) Clone() QuizStats {
	cardStats := make(map[int]CardStat, len(s.CardStats))
	for i, cs := range s.CardStats {
		cardStats[i] = cs
	}
	s.CardStats = cardStats
	return s
}

// Card returns the counters for a card index, zero if never attempted
func (s QuizStats) Card(index int) CardStat {
	return s.CardStats[index]
}

// RecordAttempt returns stats with one more attempt on cardIndex.
// A timed-out question is recorded with wasCorrect false.
func RecordAttempt(stats QuizStats, cardIndex int, wasCorrect bool) QuizStats {
	out := stats.Clone()
	out.Attempts++
	out.TotalQuestions++

	cs := out.CardStats[cardIndex]
	cs.Attempts++
	if wasCorrect {
		out.TotalCorrect++
		cs.Correct++
	}
	out.CardStats[cardIndex] = cs
	return out
}

// ShiftAfterDelete drops the counters of a deleted card and moves the
// counters of every later card down one position. Totals are kept.
func (s QuizStats) ShiftAfterDelete(deleted int) QuizStats {
	out := s.Clone()
	out.CardStats = make(map[int]CardStat, len(s.CardStats))
	for i, cs := range s.CardStats {
		switch {
		case i < deleted:
			out.CardStats[i] = cs
		case i > deleted:
			out.CardStats[i-1] = cs
		}
	}
	return out
}

// LifetimeCorrectCards counts cards in [0, cardCount) with at least one
// correct answer ever recorded.
func (s QuizStats) LifetimeCorrectCards(cardCount int) int {
	n := 0
	for i := 0; i < cardCount; i++ {
		if cs, ok := s.CardStats[i]; ok && cs.Attempts > 0 && cs.Correct > 0 {
			n++
		}
	}
	return n
}

// Accuracy returns the lifetime share of correct answers in percent
func (s QuizStats) Accuracy() float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return float64(s.TotalCorrect) * 100 / float64(s.TotalQuestions)
}

// Normalize repairs counters read from storage so the invariants hold
func (s QuizStats) Normalize() QuizStats {
	out := s.Clone()
	if out.Attempts < 0 {
		out.Attempts = 0
	}
	out.TotalQuestions = out.Attempts
	if out.TotalCorrect < 0 {
		out.TotalCorrect = 0
	}
	if out.TotalCorrect > out.TotalQuestions {
		out.TotalCorrect = out.TotalQuestions
	}
	for i, cs := range out.CardStats {
		if i < 0 || cs.Attempts <= 0 {
			delete(out.CardStats, i)
			continue
		}
		if cs.Correct < 0 {
			cs.Correct = 0
		}
		if cs.Correct > cs.Attempts {
			cs.Correct = cs.Attempts
		}
		out.CardStats[i] = cs
	}
	return out
}
