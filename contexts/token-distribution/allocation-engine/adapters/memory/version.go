package memory

import "sync/atomic"

// VersionCounter is the process-wide snapshot dirty marker. The registry
// bumps it on weight-affecting writes; the allocation cache reads it.
type VersionCounter struct {
	value atomic.Uint64
}

func NewVersionCounter() *VersionCounter {
	return &VersionCounter{}
}

func (v *VersionCounter) Bump() uint64 {
	return v.value.Add(1)
}

func (v *VersionCounter) Current() uint64 {
	return v.value.Load()
}
