package actor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type counterState struct {
	identity string
	value    int
	inTurn   atomic.Int32
}

func newCounterHost(t *testing.T, opts Options) (*Host[counterState], *atomic.Int32) {
	t.Helper()
	var created atomic.Int32
	h := NewHost("Test", func(identity string) *counterState {
		created.Add(1)
		return &counterState{identity: identity}
	}, opts)
	t.Cleanup(func() { _ = h.Close() })
	return h, &created
}

func TestHost_TurnsForOneIdentityNeverInterleave(t *testing.T) {
	h, _ := newCounterHost(t, Options{MailboxSize: 4})

	var overlapped atomic.Bool
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 200; i++ {
		g.Go(func() error {
			return h.Do(ctx, "X", func(ctx context.Context, s *counterState) error {
				if s.inTurn.Add(1) != 1 {
					overlapped.Store(true)
				}
				// read, yield, write: a lost update shows up if turns interleave.
				v := s.value
				time.Sleep(time.Microsecond)
				s.value = v + 1
				s.inTurn.Add(-1)
				return nil
			})
		})
	}
	require.NoError(t, g.Wait())
	require.False(t, overlapped.Load())

	var final int
	require.NoError(t, h.Do(context.Background(), "X", func(ctx context.Context, s *counterState) error {
		final = s.value
		return nil
	}))
	require.Equal(t, 200, final)
}

func TestHost_DistinctIdentitiesRunInParallel(t *testing.T) {
	h, _ := newCounterHost(t, Options{})

	aStarted := make(chan struct{})
	bStarted := make(chan struct{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	g := new(errgroup.Group)
	g.Go(func() error {
		return h.Do(ctx, "A", func(context.Context, *counterState) error {
			close(aStarted)
			select {
			case <-bStarted:
				return nil
			case <-time.After(2 * time.Second):
				return errors.New("B never ran while A was in its turn")
			}
		})
	})
	g.Go(func() error {
		return h.Do(ctx, "B", func(context.Context, *counterState) error {
			<-aStarted
			close(bStarted)
			return nil
		})
	})
	require.NoError(t, g.Wait())
	require.Equal(t, 2, h.Len())
}

func TestHost_QueuedTurnSkippedWhenCallerGivesUp(t *testing.T) {
	h, _ := newCounterHost(t, Options{})

	release := make(chan struct{})
	started := make(chan struct{})
	first := make(chan error, 1)
	go func() {
		first <- h.Do(context.Background(), "X", func(context.Context, *counterState) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	queued := make(chan error, 1)
	var ran atomic.Bool
	go func() {
		queued <- h.Do(ctx, "X", func(context.Context, *counterState) error {
			ran.Store(true)
			return nil
		})
	}()

	// Let the second turn reach the mailbox, then abandon it.
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(release)

	require.NoError(t, <-first)
	require.ErrorIs(t, <-queued, context.Canceled)
	require.False(t, ran.Load())
}

func TestHost_StartedTurnOutlivesCallerContext(t *testing.T) {
	h, _ := newCounterHost(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	err := h.Do(ctx, "X", func(turnCtx context.Context, s *counterState) error {
		cancel()
		if turnCtx.Err() != nil {
			return fmt.Errorf("turn context cancelled mid-turn: %w", turnCtx.Err())
		}
		s.value = 10
		return nil
	})
	require.NoError(t, err)
}

func TestHost_PanicBecomesError(t *testing.T) {
	h, _ := newCounterHost(t, Options{})

	err := h.Do(context.Background(), "X", func(context.Context, *counterState) error {
		panic("boom")
	})
	require.ErrorContains(t, err, "turn panicked: boom")

	// The actor keeps serving.
	require.NoError(t, h.Do(context.Background(), "X", func(context.Context, *counterState) error { return nil }))
}

func TestHost_IdleEvictionRebuildsState(t *testing.T) {
	h, created := newCounterHost(t, Options{IdleTimeout: 20 * time.Millisecond})

	require.NoError(t, h.Do(context.Background(), "X", func(_ context.Context, s *counterState) error {
		s.value = 7
		return nil
	}))
	require.Equal(t, int32(1), created.Load())

	require.Eventually(t, func() bool { return h.Len() == 0 }, 2*time.Second, 5*time.Millisecond)

	var seen int
	require.NoError(t, h.Do(context.Background(), "X", func(_ context.Context, s *counterState) error {
		seen = s.value
		return nil
	}))
	require.Equal(t, 0, seen)
	require.Equal(t, int32(2), created.Load())
}

func TestHost_Close(t *testing.T) {
	h, _ := newCounterHost(t, Options{})

	require.NoError(t, h.Do(context.Background(), "X", func(context.Context, *counterState) error { return nil }))
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	err := h.Do(context.Background(), "X", func(context.Context, *counterState) error { return nil })
	require.ErrorIs(t, err, ErrHostClosed)
}

func TestHost_CancelledContextNeverEnqueues(t *testing.T) {
	h, _ := newCounterHost(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := h.Do(ctx, "X", func(context.Context, *counterState) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, h.Len())
}
