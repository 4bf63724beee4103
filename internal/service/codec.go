package service

import (
	"context"
	"encoding/json"
	"fmt"

	"flashdeck/internal/repository"
)

// loadJSON decodes the value under key into v. It reports false, with a nil
// error, when the key is absent.
func loadJSON(ctx context.Context, store repository.Store, key string, v any) (bool, error) {
	raw, found, err := store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func saveJSON(ctx context.Context, store repository.Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return store.Set(ctx, key, string(raw))
}
