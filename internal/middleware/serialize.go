package middleware

import (
	"sync"

	tele "gopkg.in/telebot.v3"
)

// UserLocks hands out one mutex per user
type UserLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewUserLocks creates an empty lock table
func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[int64]*sync.Mutex)}
}

// For returns the lock of userID, creating it on first use
func (l *UserLocks) For(userID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, exists := l.locks[userID]
	if !exists {
		lock = &sync.Mutex{}
		l.locks[userID] = lock
	}
	return lock
}

// Serialize creates middleware that runs at most one update per user at a time.
// Updates without a sender pass through unlocked.
func Serialize(locks *UserLocks) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}

			lock := locks.For(sender.ID)
			lock.Lock()
			defer lock.Unlock()

			return next(c)
		}
	}
}
