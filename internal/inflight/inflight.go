// Package inflight tracks single-flight user actions such as login and
// checkout, where a second submission must be refused rather than queued.
package inflight

import "sync/atomic"

// Flag is held by at most one caller at a time. The zero value is free.
type Flag struct {
	busy atomic.Bool
}

// TryAcquire takes the flag and reports whether it was free.
func (f *Flag) TryAcquire() bool {
	return f.busy.CompareAndSwap(false, true)
}

// Release frees the flag.
func (f *Flag) Release() {
	f.busy.Store(false)
}

// Busy reports whether the flag is held.
func (f *Flag) Busy() bool {
	return f.busy.Load()
}
