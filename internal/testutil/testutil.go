package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"flashdeck/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// FixedClock returns a clock that always reports t
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// NewTestDeck creates a deck with cards built from front/back pairs
func NewTestDeck(id, name string, pairs ...string) domain.Deck {
	deck := domain.Deck{ID: id, Name: name, Description: name + " description", Cards: []domain.Card{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		deck.Cards = append(deck.Cards, domain.Card{Front: pairs[i], Back: pairs[i+1]})
	}
	return deck
}

// StoreJSON seeds key with the JSON encoding of v
func StoreJSON(t *testing.T, store interface {
	Set(ctx context.Context, key, value string) error
}, key string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), key, string(raw)))
}

// ReadJSON decodes the value under key into v and reports whether it existed
func ReadJSON(t *testing.T, store interface {
	Get(ctx context.Context, key string) (string, bool, error)
}, key string, v any) bool {
	t.Helper()
	raw, found, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	if !found {
		return false
	}
	require.NoError(t, json.Unmarshal([]byte(raw), v))
	return true
}
