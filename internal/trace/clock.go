package trace

import "sync/atomic"

// Clock hands out the seq numbers calls are journalled under. Seqs start at
// 1 and never repeat within a journal, so replaying a run's calls by seq
// gives the order the pipeline made them in. Safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock returns a clock whose first Next is 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next advances the clock and returns the new seq.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current is the last seq handed out, or 0 before the first call.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
