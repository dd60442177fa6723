package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallLockerSerializesSameCall(t *testing.T) {
	locker := NewCallLocker()

	var mu sync.Mutex
	var active, maxActive int

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock("cc-1")
			defer unlock()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive, "at most one holder per call id at a time")
}

func TestCallLockerIndependentCalls(t *testing.T) {
	locker := NewCallLocker()

	unlockA := locker.Lock("cc-a")

	// A different call id must not block
	done := make(chan struct{})
	go func() {
		unlockB := locker.Lock("cc-b")
		unlockB()
		close(done)
	}()
	<-done

	unlockA()
}

func TestCallLockerCleansUpEntries(t *testing.T) {
	locker := NewCallLocker()

	unlock := locker.Lock("cc-x")
	unlock()

	locker.mu.Lock()
	defer locker.mu.Unlock()
	assert.Empty(t, locker.locks, "released locks are removed from the table")
}
