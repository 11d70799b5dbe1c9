package decode

import (
	"context"
	"iter"
	"sync"
)

// Stream is a lazy, single-use token sequence. Generation starts when
// Tokens is first ranged over and runs on the caller's goroutine.
type Stream struct {
	engine *Engine
	ctx    context.Context
	job    job

	mu       sync.Mutex
	consumed bool
	done     bool
	result   Result
	err      error
}

// Stream validates req and returns an unstarted stream. Breaking out of the
// range loop cancels the generation.
func (e *Engine) Stream(ctx context.Context, req Request) (*Stream, error) {
	j, err := e.prepare(req)
	if err != nil {
		return nil, err
	}
	return &Stream{engine: e, ctx: ctx, job: j}, nil
}

// Tokens yields tokens in emission order. Beam search yields its winning
// sequence once the search completes. A second range yields nothing.
func (s *Stream) Tokens() iter.Seq[int] {
	return func(yield func(int) bool) {
		s.mu.Lock()
		if s.consumed {
			s.mu.Unlock()
			return
		}
		s.consumed = true
		s.mu.Unlock()

		res, err := s.engine.run(s.ctx, s.job, yield)

		s.mu.Lock()
		s.result, s.err, s.done = res, err, true
		s.mu.Unlock()
	}
}

// Result returns the finished generation. It reports ErrStreamPending until
// Tokens has been ranged over.
func (s *Stream) Result() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.done {
		return Result{}, ErrStreamPending
	}
	return s.result, s.err
}
