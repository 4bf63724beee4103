package middleware

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	tele "gopkg.in/telebot.v3"
)

// fakeContext stubs the context accessors the middleware reads
type fakeContext struct {
	tele.Context
	sender *tele.User
}

func (c *fakeContext) Sender() *tele.User       { return c.sender }
func (c *fakeContext) Callback() *tele.Callback { return nil }

func TestUserLocks_For(t *testing.T) {
	locks := NewUserLocks()

	assert.Same(t, locks.For(1), locks.For(1))
	assert.NotSame(t, locks.For(1), locks.For(2))
}

func TestSerialize(t *testing.T) {
	locks := NewUserLocks()

	var running, maxRunning int32
	handler := Serialize(locks)(func(c tele.Context) error {
		n := atomic.AddInt32(&running, 1)
		for {
			m := atomic.LoadInt32(&maxRunning)
			if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, handler(&fakeContext{sender: &tele.User{ID: 42}}))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
}

func TestSerialize_NoSender(t *testing.T) {
	called := false
	handler := Serialize(NewUserLocks())(func(c tele.Context) error {
		called = true
		return nil
	})

	require.NoError(t, handler(&fakeContext{}))
	assert.True(t, called)
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	failure := errors.New("boom")

	handler := Logging(logger)(func(c tele.Context) error { return failure })
	err := handler(&fakeContext{sender: &tele.User{ID: 7}})

	assert.ErrorIs(t, err, failure)
	entries := logs.FilterMessage("Handler failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(7), entries[0].ContextMap()["user_id"])

	handler = Logging(logger)(func(c tele.Context) error { return nil })
	require.NoError(t, handler(&fakeContext{sender: &tele.User{ID: 7}}))
	assert.Equal(t, 1, logs.FilterMessage("Update handled").Len())
}
