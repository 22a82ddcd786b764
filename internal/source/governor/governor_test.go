package governor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives a Window deterministically: sleep advances time
// instead of blocking.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) install(w *Window) {
	w.now = func() time.Time { return c.now }
	w.sleep = func(ctx context.Context, d time.Duration) error {
		c.now = c.now.Add(d)
		return nil
	}
}

func TestWindowNeverExceedsLimit(t *testing.T) {
	w := NewWindow(40, 10*time.Second, 0)
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	clock.install(w)

	// Replay 100 acquisitions and record their grant times.
	var grants []time.Time
	for i := 0; i < 100; i++ {
		require.NoError(t, w.Acquire(context.Background()))
		grants = append(grants, clock.now)
	}

	// No 10-second window may contain more than 40 grants.
	for i := range grants {
		count := 0
		for j := i; j < len(grants); j++ {
			if grants[j].Sub(grants[i]) < 10*time.Second {
				count++
			}
		}
		assert.LessOrEqualf(t, count, 40, "window starting at grant %d holds %d calls", i, count)
	}
}

func TestWindowEnforcesMinDelay(t *testing.T) {
	w := NewWindow(1000, time.Minute, 250*time.Millisecond)
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	clock.install(w)

	var prev time.Time
	for i := 0; i < 10; i++ {
		require.NoError(t, w.Acquire(context.Background()))
		if i > 0 {
			assert.GreaterOrEqual(t, clock.now.Sub(prev), 250*time.Millisecond)
		}
		prev = clock.now
	}
}

func TestWindowAcquireRespectsCancellation(t *testing.T) {
	w := NewWindow(1, time.Hour, 0)
	require.NoError(t, w.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := w.Acquire(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLedgerRejectsBeforeSpending(t *testing.T) {
	l := NewLedger(150)

	require.NoError(t, l.Spend(100)) // search
	require.NoError(t, l.Spend(1))   // list
	assert.Equal(t, 49, l.Remaining())

	err := l.Spend(100)
	require.Error(t, err)
	var exhausted *ErrQuotaExhausted
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 100, exhausted.Need)
	assert.Equal(t, 49, exhausted.Remaining)

	// The failed debit must not consume anything.
	assert.Equal(t, 49, l.Remaining())
	require.NoError(t, l.Spend(49))
	assert.Equal(t, 0, l.Remaining())
}
