package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s := &Session{ID: "abc", CSRFToken: "tok", User: &Principal{UserID: uuid.New(), Name: "Alice"}}
	require.NoError(t, store.Save(ctx, s, time.Minute))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.CSRFToken)
	assert.Equal(t, "Alice", got.User.Name)

	// Mutating the returned copy does not touch the stored record.
	got.User.Name = "Mallory"
	again, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.User.Name)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, &Session{ID: "short"}, time.Second))

	now = now.Add(2 * time.Second)
	_, err := store.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, store.Len())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := newSession(nil)
			if !assert.NoError(t, err) {
				return
			}
			assert.NoError(t, store.Save(ctx, s, time.Minute))
			_, err = store.Get(ctx, s.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, store.Len())
}
