/* Apache v2 license
*  Copyright (C) <2024> Eden Network
*
*  SPDX-License-Identifier: Apache-2.0
 */

package driver

import (
	"sync"

	"github.com/eden-network/mempool-stream/internal/models"
)

// Stream is the consumer handle for one subscription: an ordered, unbounded
// hand-off queue between the connection-owning goroutine and the consumer.
//
// The producer side never blocks. Once the driver loop ends, Next drains
// whatever was already queued and then reports the end of the stream. A
// Stream cannot be restarted; recovering takes a fresh Subscribe call.
type Stream struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*models.PendingTx
	done   bool  // producer finished
	closed bool  // consumer gave up
	err    error // termination reason
}

func newStream() *Stream {
	s := &Stream{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Next blocks until the next pending transaction arrives and returns it, in
// strict arrival order. It returns false once the stream has ended and every
// queued transaction was consumed, or immediately after Close.
func (s *Stream) Next() (*models.PendingTx, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if s.closed {
			return nil, false
		}
		if len(s.queue) > 0 {
			tx := s.queue[0]
			s.queue = s.queue[1:]
			return tx, true
		}
		if s.done {
			return nil, false
		}
		s.cond.Wait()
	}
}

// Close releases the stream. The driver treats its next delivery attempt as
// a shutdown signal and exits without logging an error.
func (s *Stream) Close() {
	s.mu.Lock()
	s.closed = true
	s.queue = nil
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Err reports why the stream ended: nil while it is running or when the
// consumer shut it down, ErrStreamClosed after a server close frame, and the
// decode or transport failure otherwise.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// push hands one transaction to the consumer side. It reports false when the
// consumer has closed the stream.
func (s *Stream) push(tx *models.PendingTx) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.queue = append(s.queue, tx)
	s.mu.Unlock()
	s.cond.Signal()
	return true
}

// finish marks the producer side as ended with the given reason.
func (s *Stream) finish(err error) {
	s.mu.Lock()
	s.done = true
	if !s.closed {
		s.err = err
	}
	s.mu.Unlock()
	s.cond.Broadcast()
}
