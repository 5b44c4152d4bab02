package connect

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHandshakeStore_TakeConsumesExactlyOnce(t *testing.T) {
	store := NewMemoryHandshakeStore(0)
	store.Put("req-token", Handshake{Secret: "req-secret", UserID: "user-1"})

	h, ok := store.Take("req-token")
	require.True(t, ok)
	require.Equal(t, "req-secret", h.Secret)
	require.Equal(t, "user-1", h.UserID)

	_, ok = store.Take("req-token")
	require.False(t, ok, "second take of the same token must fail")
}

func TestHandshakeStore_UnknownTokenLeavesStoreUnchanged(t *testing.T) {
	store := NewMemoryHandshakeStore(0)
	store.Put("issued", Handshake{Secret: "s"})

	_, ok := store.Take("never-issued")
	require.False(t, ok)
	require.Equal(t, 1, store.Len())
}

func TestHandshakeStore_ExpiredEntriesNotReturned(t *testing.T) {
	store := NewMemoryHandshakeStore(time.Minute)
	store.Put("old", Handshake{
		Secret:    "s",
		CreatedAt: time.Now().Add(-2 * time.Minute),
	})

	_, ok := store.Take("old")
	require.False(t, ok)
}

func TestHandshakeStore_PutSweepsExpired(t *testing.T) {
	store := NewMemoryHandshakeStore(time.Minute)
	store.Put("old", Handshake{
		Secret:    "s",
		CreatedAt: time.Now().Add(-2 * time.Minute),
	})
	store.Put("fresh", Handshake{Secret: "s2"})

	require.Equal(t, 1, store.Len(), "expired entry swept on insert")
}

func TestHandshakeStore_ConcurrentTakeSingleWinner(t *testing.T) {
	store := NewMemoryHandshakeStore(0)
	store.Put("contested", Handshake{Secret: "s"})

	var wins int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := store.Take("contested"); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, wins, "a verifier must not be double-spendable")
}
