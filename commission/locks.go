package commission

import "sync"

// =============================================================================
// PER-SALE LOCKS
// =============================================================================

type saleLockKey struct {
	owner OwnerID
	sale  SaleID
}

type saleLock struct {
	mu   sync.Mutex
	refs int
}

// SaleLocks hands out one mutex per sale and forgets it once unused. Every
// read-modify-write of a stored sale in this process goes through it.
type SaleLocks struct {
	mu    sync.Mutex
	locks map[saleLockKey]*saleLock
}

func NewSaleLocks() *SaleLocks {
	return &SaleLocks{locks: make(map[saleLockKey]*saleLock)}
}

// Lock blocks until the sale is free and returns the matching unlock.
func (l *SaleLocks) Lock(owner OwnerID, sale SaleID) (unlock func()) {
	k := saleLockKey{owner: owner, sale: sale}

	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[saleLockKey]*saleLock)
	}
	sl, ok := l.locks[k]
	if !ok {
		sl = &saleLock{}
		l.locks[k] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, k)
		}
		l.mu.Unlock()
	}
}
