package game

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcoot/battleship-go/internal/model"
)

// Sequencer runs mutations for each game one at a time on a dedicated
// goroutine. Mailboxes are created on first use and torn down once no caller
// holds them.
type Sequencer struct {
	mu        sync.Mutex
	mailboxes map[model.GameID]*mailbox
}

type mailbox struct {
	jobs chan func()
	refs int
}

// NewSequencer creates an empty Sequencer
func NewSequencer() *Sequencer {
	return &Sequencer{mailboxes: make(map[model.GameID]*mailbox)}
}

// Do queues fn on the game's mailbox and waits for it to finish.
// If ctx ends before fn is dequeued, fn never runs and ctx.Err() is returned.
// Once fn has started it always runs to completion.
func (s *Sequencer) Do(ctx context.Context, gameID model.GameID, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mb := s.acquire(gameID)
	defer s.release(gameID, mb)

	done := make(chan error, 1)
	job := func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("game %s: mutation panicked: %v", gameID, r)
			}
		}()
		done <- fn()
	}

	select {
	case mb.jobs <- job:
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-done
}

// Active returns the number of live mailboxes
func (s *Sequencer) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mailboxes)
}

func (s *Sequencer) acquire(gameID model.GameID) *mailbox {
	s.mu.Lock()
	defer s.mu.Unlock()

	mb, ok := s.mailboxes[gameID]
	if !ok {
		mb = &mailbox{jobs: make(chan func())}
		s.mailboxes[gameID] = mb
		go func() {
			for job := range mb.jobs {
				job()
			}
		}()
	}
	mb.refs++
	return mb
}

func (s *Sequencer) release(gameID model.GameID, mb *mailbox) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mb.refs--
	if mb.refs == 0 {
		close(mb.jobs)
		delete(s.mailboxes, gameID)
	}
}
