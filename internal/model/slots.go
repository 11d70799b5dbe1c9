package model

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Slots bounds concurrent use of a shared model to a fixed number of
// replicas. Callers beyond the replica count wait in a queue of bounded
// length; once the queue is full further callers are rejected.
type Slots struct {
	sem        *semaphore.Weighted
	queueLimit int64
	waiting    atomic.Int64
}

// NewSlots returns slots for the given replica count and queue limit.
func NewSlots(replicas, queueLimit int) *Slots {
	if replicas < 1 {
		panic("replicas must be positive")
	}
	if queueLimit < 0 {
		queueLimit = 0
	}
	return &Slots{
		sem:        semaphore.NewWeighted(int64(replicas)),
		queueLimit: int64(queueLimit),
	}
}

// Acquire blocks until a slot is free or ctx is done. The returned release
// function is idempotent.
func (s *Slots) Acquire(ctx context.Context) (func(), error) {
	if !s.sem.TryAcquire(1) {
		if s.waiting.Add(1) > s.queueLimit {
			s.waiting.Add(-1)
			return nil, &InferenceError{Code: ErrorCodeQueueFull, Message: "all inference slots busy", Underlying: ErrQueueFull}
		}
		err := s.sem.Acquire(ctx, 1)
		s.waiting.Add(-1)
		if err != nil {
			return nil, err
		}
	}
	var once sync.Once
	return func() { once.Do(func() { s.sem.Release(1) }) }, nil
}

// Waiting returns the number of callers currently queued.
func (s *Slots) Waiting() int {
	return int(s.waiting.Load())
}
