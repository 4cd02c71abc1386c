package usecase

import "sync/atomic"

// sequence issues ids for push-only events. The first id is 1 and the
// counter never rewinds while the process runs.
type sequence struct {
	n atomic.Uint64
}

func (s *sequence) Next() uint64 { return s.n.Add(1) }

func (s *sequence) Current() uint64 { return s.n.Load() }
