package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noBackoff(int) time.Duration { return 0 }

func TestDoSucceedsFirstTry(t *testing.T) {
	p := Policy{MaxAttempts: 3, Backoff: noBackoff}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsBudget(t *testing.T) {
	p := Policy{MaxAttempts: 3, Backoff: noBackoff}
	boom := errors.New("boom")

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestDoRecoversMidway(t *testing.T) {
	p := Policy{MaxAttempts: 3, Backoff: noBackoff}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	fatal := errors.New("fatal")
	p := Policy{
		MaxAttempts: 3,
		Backoff:     noBackoff,
		Retryable:   func(err error) bool { return !errors.Is(err, fatal) },
	}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return fatal
	})

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDoHonorsContextDuringBackoff(t *testing.T) {
	p := Policy{MaxAttempts: 3, Backoff: LinearBackoff(time.Hour)}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := p.Do(ctx, func(ctx context.Context) error {
		calls++
		return errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestLinearBackoffSchedule(t *testing.T) {
	b := LinearBackoff(time.Second)
	assert.Equal(t, time.Second, b(1))
	assert.Equal(t, 2*time.Second, b(2))
	assert.Equal(t, 3*time.Second, b(3))
}

func TestAdminAPIReadsPolicy(t *testing.T) {
	assert.Equal(t, 3, AdminAPIReads.MaxAttempts)
	assert.Equal(t, time.Second, AdminAPIReads.Backoff(1))
	assert.Equal(t, 2*time.Second, AdminAPIReads.Backoff(2))
}
