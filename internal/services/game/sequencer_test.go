package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencerRunsJobsOneAtATime(t *testing.T) {
	seq := NewSequencer()

	var mu sync.Mutex
	running, maxRunning, total := 0, 0, 0

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := seq.Do(context.Background(), "g1", func() error {
				mu.Lock()
				running++
				maxRunning = max(maxRunning, running)
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				running--
				total++
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxRunning)
	assert.Equal(t, 20, total)
	assert.Equal(t, 0, seq.Active())
}

func TestSequencerGamesRunIndependently(t *testing.T) {
	seq := NewSequencer()
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = seq.Do(context.Background(), "g1", func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	// g2 must not wait behind the blocked g1 job
	err := seq.Do(context.Background(), "g2", func() error { return nil })
	require.NoError(t, err)
	close(release)
}

func TestSequencerReturnsJobError(t *testing.T) {
	seq := NewSequencer()
	boom := errors.New("boom")

	err := seq.Do(context.Background(), "g1", func() error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestSequencerRecoversPanic(t *testing.T) {
	seq := NewSequencer()

	err := seq.Do(context.Background(), "g1", func() error { panic("bad") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")

	// The mailbox is still usable afterwards
	assert.NoError(t, seq.Do(context.Background(), "g1", func() error { return nil }))
}

func TestSequencerCancelledBeforeEnqueueDoesNotRun(t *testing.T) {
	seq := NewSequencer()
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = seq.Do(context.Background(), "g1", func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ran := false
	err := seq.Do(ctx, "g1", func() error {
		ran = true
		return nil
	})
	close(release)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, ran)
}

func TestSequencerStartedJobIgnoresCancellation(t *testing.T) {
	seq := NewSequencer()
	ctx, cancel := context.WithCancel(context.Background())

	err := seq.Do(ctx, "g1", func() error {
		cancel()
		time.Sleep(5 * time.Millisecond)
		return nil
	})
	assert.NoError(t, err)
}
