package service

import (
	"context"
	"fmt"
	"testing"

	"flashdeck/internal/domain"
	"flashdeck/internal/repository"
	"flashdeck/internal/repository/memory"
	"flashdeck/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestResetService_ResetAll(t *testing.T) {
	store := memory.New()
	logger := testutil.NewTestLogger()
	ctx := context.Background()
	decks := NewDeckService(store, logger)
	decks.LoadAll(ctx)

	_, err := decks.AddDeck(ctx, "French", "")
	require.NoError(t, err)
	testutil.StoreJSON(t, store, repository.KnownCardsKey("3"), []int{0})
	testutil.StoreJSON(t, store, repository.QuizStatsKey("1"), domain.NewQuizStats())
	testutil.StoreJSON(t, store, repository.StreakKey("1"), domain.StreakRecord{LastActivityDate: "2024-03-10", Streak: 4})
	testutil.StoreJSON(t, store, repository.GlobalStreakKey, domain.StreakRecord{LastActivityDate: "2024-03-10", Streak: 4})
	require.NoError(t, store.Set(ctx, "unrelated", "keep"))

	service := NewResetService(store, decks, logger)
	require.NoError(t, service.ResetAll(ctx))

	assert.Equal(t, domain.DefaultDecks(), decks.Decks())

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{repository.DecksKey, repository.GlobalStreakKey, "unrelated"}, keys)

	var global domain.StreakRecord
	require.True(t, testutil.ReadJSON(t, store, repository.GlobalStreakKey, &global))
	assert.Equal(t, domain.StreakRecord{}, global)

	var stored []domain.Deck
	require.True(t, testutil.ReadJSON(t, store, repository.DecksKey, &stored))
	assert.Len(t, stored, 2)
}

func TestResetService_StoreErrors(t *testing.T) {
	tests := []struct {
		name      string
		listError error
		keys      []string
		rmError   error
	}{
		{
			name:      "list keys fails",
			listError: fmt.Errorf("db error"),
		},
		{
			name:    "remove fails",
			keys:    []string{repository.DecksKey, repository.StreakKey("1")},
			rmError: fmt.Errorf("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(testutil.MockStore)
			mockStore.On("ListKeys", mock.Anything).Return(tt.keys, tt.listError)
			if tt.listError == nil {
				mockStore.On("RemoveMany", mock.Anything, tt.keys).Return(tt.rmError)
			}
			mockStore.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)

			logger := testutil.NewTestLogger()
			decks := NewDeckService(mockStore, logger)
			service := NewResetService(mockStore, decks, logger)

			err := service.ResetAll(context.Background())

			assert.Error(t, err)
			assert.Len(t, decks.Decks(), 2)
			mockStore.AssertExpectations(t)
		})
	}
}
