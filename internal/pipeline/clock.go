package pipeline

import "time"

// Clock abstracts wall-clock reads so replay mode can run against a frozen
// instant instead of real time, per the determinism requirement: no
// wall-clock reads anywhere in the check sequence.
type Clock interface {
	NowUnixMs() uint64
}

// SystemClock reads the real wall clock, for live operation.
type SystemClock struct{}

func (SystemClock) NowUnixMs() uint64 { return uint64(time.Now().UnixMilli()) }

// FrozenClock always returns the same instant, for replay and tests.
type FrozenClock struct {
	Ms uint64
}

func (c FrozenClock) NowUnixMs() uint64 { return c.Ms }
