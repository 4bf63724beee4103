package repository

import "context"

// Store is the persistent key-value store every component writes through.
// Get reports found=false, with a nil error, for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	RemoveMany(ctx context.Context, keys []string) error
	ListKeys(ctx context.Context) ([]string, error)
}
