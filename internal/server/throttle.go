package server

import (
	"sync"
	"time"
)

const throttlePruneInterval = 10 * time.Minute

// claimThrottle caps how many license transitions one account may attempt
// per fixed window. Claim traffic spikes right after a kit unboxing, so the
// window state is kept per account and stale accounts are swept on a timer
// rather than per request.
type claimThrottle struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	accounts  map[string]*claimWindow
	lastSweep time.Time
}

type claimWindow struct {
	openedAt time.Time
	attempts int
}

func newClaimThrottle(limit int, window time.Duration) *claimThrottle {
	return &claimThrottle{
		limit:    limit,
		window:   window,
		now:      time.Now,
		accounts: make(map[string]*claimWindow),
	}
}

// Allow records one attempt for the account and reports whether it still
// fits the window budget. A non-positive limit disables throttling.
func (t *claimThrottle) Allow(accountID string) bool {
	if t.limit <= 0 {
		return true
	}
	if accountID == "" {
		return false
	}

	now := t.now().UTC()
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sweepLocked(now)

	win := t.accounts[accountID]
	if win == nil || now.Sub(win.openedAt) >= t.window {
		win = &claimWindow{openedAt: now}
		t.accounts[accountID] = win
	}
	if win.attempts >= t.limit {
		return false
	}
	win.attempts++
	return true
}

// sweepLocked drops accounts whose window has long closed so one-off
// claimers do not accumulate forever.
func (t *claimThrottle) sweepLocked(now time.Time) {
	if now.Sub(t.lastSweep) < throttlePruneInterval {
		return
	}
	for id, win := range t.accounts {
		if now.Sub(win.openedAt) >= t.window {
			delete(t.accounts, id)
		}
	}
	t.lastSweep = now
}
