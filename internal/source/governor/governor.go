// Package governor enforces per-source rate budgets: a hard sliding
// window on request count, a minimum inter-request delay, and a daily
// quota ledger for sources that bill calls in units. It sits above the
// HTTP client's pacing, which alone cannot guarantee a windowed cap.
package governor

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ErrQuotaExhausted is returned when an acquisition would exceed the
// remaining quota. Callers stop cleanly and keep partial results.
type ErrQuotaExhausted struct {
	Need      int
	Remaining int
}

func (e *ErrQuotaExhausted) Error() string {
	return fmt.Sprintf("quota exhausted: need %d units, %d remaining", e.Need, e.Remaining)
}

// =============================================================================
// SLIDING WINDOW
// =============================================================================

// Window enforces at most Limit acquisitions inside any rolling Period,
// plus a minimum delay between consecutive acquisitions. The guarantee
// is strict: for every instant t, the count of acquisitions in
// (t-Period, t] never exceeds Limit.
type Window struct {
	Limit    int
	Period   time.Duration
	MinDelay time.Duration

	mu    sync.Mutex
	log   []time.Time // acquisition timestamps, oldest first
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewWindow creates a sliding-window governor.
func NewWindow(limit int, period, minDelay time.Duration) *Window {
	return &Window{
		Limit:    limit,
		Period:   period,
		MinDelay: minDelay,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Acquire blocks until a request is allowed under the window, then
// records it. It returns early only if the context is canceled.
func (w *Window) Acquire(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for {
		now := w.now()
		w.evict(now)

		var wait time.Duration
		if len(w.log) > 0 && w.MinDelay > 0 {
			if d := w.MinDelay - now.Sub(w.log[len(w.log)-1]); d > wait {
				wait = d
			}
		}
		if w.Limit > 0 && len(w.log) >= w.Limit {
			// Window is full: wait for the oldest entry to age out.
			if d := w.log[0].Add(w.Period).Sub(now); d > wait {
				wait = d
			}
		}

		if wait <= 0 {
			w.log = append(w.log, now)
			return nil
		}
		if err := w.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// evict drops log entries older than the window.
func (w *Window) evict(now time.Time) {
	cutoff := now.Add(-w.Period)
	i := 0
	for i < len(w.log) && !w.log[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.log = append(w.log[:0], w.log[i:]...)
	}
}

// InFlight returns how many acquisitions fall inside the current window.
func (w *Window) InFlight() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.evict(w.now())
	return len(w.log)
}

// =============================================================================
// QUOTA LEDGER
// =============================================================================

// Ledger tracks consumption against a fixed budget of quota units,
// where different operations cost different amounts. Spend is checked
// before the call is made, never after.
type Ledger struct {
	budget int

	mu    sync.Mutex
	spent int
}

// NewLedger creates a quota ledger with the given budget.
func NewLedger(budget int) *Ledger {
	return &Ledger{budget: budget}
}

// Spend debits the ledger by cost units. If the debit would exceed the
// budget, nothing is spent and ErrQuotaExhausted is returned.
func (l *Ledger) Spend(cost int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.spent+cost > l.budget {
		return &ErrQuotaExhausted{Need: cost, Remaining: l.budget - l.spent}
	}
	l.spent += cost
	return nil
}

// Remaining returns the unspent portion of the budget.
func (l *Ledger) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.budget - l.spent
}

// Spent returns the consumed portion of the budget.
func (l *Ledger) Spent() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.spent
}
