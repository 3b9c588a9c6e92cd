package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreOneConversationPerUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	store.Put(ctx, 1, &Conversation{Step: StepName})
	store.Put(ctx, 1, &Conversation{Step: StepSearchKeyword})
	store.Put(ctx, 2, &Conversation{Step: StepServiceTitle})

	require.Equal(t, 2, store.Len(ctx))

	conv, ok := store.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, StepSearchKeyword, conv.Step, "a new flow supersedes the old one")

	store.Delete(ctx, 1)
	_, ok = store.Get(ctx, 1)
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len(ctx))
}

func TestMemoryStoreSweepEvictsStale(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10 * time.Minute)

	store.Put(ctx, 1, &Conversation{Step: StepTypingRequirements})
	store.Put(ctx, 2, &Conversation{Step: StepCreatingQuote})

	// Backdate the first entry past the TTL.
	conv, ok := store.Get(ctx, 1)
	require.True(t, ok)
	conv.UpdatedAt = time.Now().Add(-time.Hour)

	removed := store.Sweep(time.Now())
	assert.Equal(t, 1, removed)

	_, ok = store.Get(ctx, 1)
	assert.False(t, ok, "abandoned flow should be evicted")
	_, ok = store.Get(ctx, 2)
	assert.True(t, ok, "live flow survives the sweep")
}

func TestMemoryStoreSerializePerUser(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	var (
		inFlight int
		max      int
		mu       sync.Mutex
		wg       sync.WaitGroup
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Serialize(7, func() error {
				mu.Lock()
				inFlight++
				if inFlight > max {
					max = inFlight
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inFlight--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, max, "at most one in-flight transition per user")
}

func TestRunSweeperStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewMemoryStore(time.Nanosecond)
	store.Put(ctx, 1, &Conversation{Step: StepName})

	done := make(chan struct{})
	go func() {
		RunSweeper(ctx, store, time.Millisecond, nil)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return store.Len(ctx) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
