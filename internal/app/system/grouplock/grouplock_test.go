package grouplock_test

import (
	"sync"
	"testing"

	"github.com/rowphant/headless-wp/internal/app/system/grouplock"
)

func TestLock_SerializesSameKey(t *testing.T) {
	l := grouplock.New()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock := l.Lock("group-a")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("counter = %d, want %d", counter, workers)
	}
}

func TestLock_IndependentKeysDoNotBlock(t *testing.T) {
	l := grouplock.New()

	unlockA := l.Lock("group-a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := l.Lock("group-b")
		unlockB()
		close(done)
	}()

	// A second key must not be blocked by the held first key. The test
	// deadlocks here if it is.
	<-done
}

func TestLock_ReacquireAfterUnlock(t *testing.T) {
	l := grouplock.New()

	unlock := l.Lock("group-a")
	unlock()

	// The entry was released; taking the lock again must not deadlock.
	unlock = l.Lock("group-a")
	unlock()
}

func TestLock_ManyKeysManyHolders(t *testing.T) {
	l := grouplock.New()
	keys := []string{"a", "b", "c", "d"}
	counts := make(map[string]int)
	var mu sync.Mutex

	var wg sync.WaitGroup
	for _, k := range keys {
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				unlock := l.Lock(key)
				defer unlock()
				mu.Lock()
				counts[key]++
				mu.Unlock()
			}(k)
		}
	}
	wg.Wait()

	for _, k := range keys {
		if counts[k] != 20 {
			t.Errorf("counts[%q] = %d, want 20", k, counts[k])
		}
	}
}
