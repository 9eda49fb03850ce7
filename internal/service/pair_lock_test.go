package service

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tabletennis-tracker/internal/domain"
)

func TestPairLockerSerializesSamePair(t *testing.T) {
	locker := NewPairLocker()
	pair := domain.NewPairKey("a", "b")

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock(pair)
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, 0, locker.held())
}

func TestPairLockerIndependentPairs(t *testing.T) {
	locker := NewPairLocker()

	unlockAB := locker.Lock(domain.NewPairKey("a", "b"))
	defer unlockAB()

	done := make(chan struct{})
	go func() {
		unlock := locker.Lock(domain.NewPairKey("c", "d"))
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different pair blocked")
	}
}

func TestPairLockerUsesNormalizedKey(t *testing.T) {
	locker := NewPairLocker()

	unlock := locker.Lock(domain.NewPairKey("b", "a"))

	acquired := make(chan struct{})
	go func() {
		u := locker.Lock(domain.NewPairKey("a", "b"))
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("swapped pair order acquired a held lock")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	<-acquired
}
