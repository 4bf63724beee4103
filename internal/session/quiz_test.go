package session

import (
	"testing"
	"time"

	"flashdeck/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		expected string
		correct  bool
	}{
		{name: "exact", answer: "Hello", expected: "Hello", correct: true},
		{name: "case and spaces", answer: "  hello ", expected: "Hello", correct: true},
		{name: "expected has spaces", answer: "thank you", expected: " Thank You ", correct: true},
		{name: "wrong", answer: "Goodbye", expected: "Hello", correct: false},
		{name: "inner spaces count", answer: "thankyou", expected: "Thank you", correct: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.correct, Grade(tt.answer, tt.expected))
		})
	}
}

func TestNewQuiz(t *testing.T) {
	_, err := NewQuiz(testutil.NewTestDeck("1", "Empty"), time.Second)
	assert.ErrorIs(t, err, ErrNoCards)

	quiz, err := NewQuiz(testutil.NewTestDeck("1", "One", "Hola", "Hello"), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultQuizLimit, quiz.TimeLeft())
	assert.Equal(t, Awaiting, quiz.State())
}

func TestQuiz_Submit(t *testing.T) {
	quiz, err := NewQuiz(testutil.NewTestDeck("1", "Spanish", "Hola", "Hello", "Adiós", "Goodbye"), 30*time.Second)
	require.NoError(t, err)

	_, ok := quiz.Submit("   ")
	assert.False(t, ok, "blank answers are not submitted")
	assert.Equal(t, Awaiting, quiz.State())

	attempt, ok := quiz.Submit("  hello ")
	require.True(t, ok)
	assert.Equal(t, Attempt{CardIndex: 0, Answer: "hello", Correct: true}, attempt)
	assert.Equal(t, Answered, quiz.State())

	_, ok = quiz.Submit("hello")
	assert.False(t, ok, "a question is graded once")

	quiz.Next()
	index, card := quiz.Current()
	assert.Equal(t, 1, index)
	assert.Equal(t, "Adiós", card.Front)

	attempt, ok = quiz.Submit("bye")
	require.True(t, ok)
	assert.False(t, attempt.Correct)

	quiz.Next()
	assert.Equal(t, Assessment, quiz.State())
	assert.Equal(t, 1, quiz.SessionCorrect())
	assert.Len(t, quiz.Results(), 2)
}

func TestQuiz_NextRequiresAnswer(t *testing.T) {
	quiz, err := NewQuiz(testutil.NewTestDeck("1", "Two", "a", "b", "c", "d"), time.Second)
	require.NoError(t, err)

	quiz.Next()

	index, _ := quiz.Current()
	assert.Equal(t, 0, index)
	assert.Equal(t, Awaiting, quiz.State())
}

func TestQuiz_TimeoutOnSingleCard(t *testing.T) {
	quiz, err := NewQuiz(testutil.NewTestDeck("1", "One", "Hola", "Hello"), 3*time.Second)
	require.NoError(t, err)

	_, timedOut := quiz.Tick()
	assert.False(t, timedOut)
	_, timedOut = quiz.Tick()
	assert.False(t, timedOut)
	assert.Equal(t, time.Second, quiz.TimeLeft())

	attempt, timedOut := quiz.Tick()
	require.True(t, timedOut)
	assert.Equal(t, Attempt{CardIndex: 0, TimedOut: true}, attempt)
	assert.Equal(t, Answered, quiz.State())
	assert.Equal(t, time.Duration(0), quiz.TimeLeft())

	_, timedOut = quiz.Tick()
	assert.False(t, timedOut, "ticks after grading are ignored")

	_, ok := quiz.Submit("Hello")
	assert.False(t, ok, "answers after a timeout are ignored")

	quiz.Next()
	assert.Equal(t, Assessment, quiz.State())
	assert.Equal(t, 0, quiz.SessionCorrect())
}

func TestQuiz_CountdownResetsPerQuestion(t *testing.T) {
	quiz, err := NewQuiz(testutil.NewTestDeck("1", "Two", "a", "b", "c", "d"), 5*time.Second)
	require.NoError(t, err)

	quiz.Tick()
	quiz.Tick()
	quiz.Submit("b")
	quiz.Next()

	assert.Equal(t, 5*time.Second, quiz.TimeLeft())
}

func TestQuiz_Restart(t *testing.T) {
	quiz, err := NewQuiz(testutil.NewTestDeck("1", "One", "Hola", "Hello"), time.Second)
	require.NoError(t, err)
	quiz.Submit("hello")
	quiz.Next()
	require.Equal(t, Assessment, quiz.State())

	quiz.Restart()

	assert.Equal(t, Awaiting, quiz.State())
	assert.Equal(t, 0, quiz.SessionCorrect())
	assert.Empty(t, quiz.Results())
	index, _ := quiz.Current()
	assert.Equal(t, 0, index)
	assert.Equal(t, time.Second, quiz.TimeLeft())
}
