package service

import (
	"sync"

	"tabletennis-tracker/internal/domain"
)

// PairLocker serializes work on one pair while leaving different pairs free
// to proceed in parallel. Entries are dropped once nobody holds or waits on them.
type PairLocker struct {
	mu    sync.Mutex
	locks map[domain.PairKey]*pairLock
}

type pairLock struct {
	mu   sync.Mutex
	refs int
}

func NewPairLocker() *PairLocker {
	return &PairLocker{locks: make(map[domain.PairKey]*pairLock)}
}

// Lock blocks until the pair is free and returns its unlock function.
func (l *PairLocker) Lock(pair domain.PairKey) func() {
	l.mu.Lock()
	pl, ok := l.locks[pair]
	if !ok {
		pl = &pairLock{}
		l.locks[pair] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()

	return func() {
		pl.mu.Unlock()

		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.locks, pair)
		}
		l.mu.Unlock()
	}
}

func (l *PairLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
