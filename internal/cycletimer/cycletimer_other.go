//go:build !amd64

package cycletimer

import "time"

// Start and Stop are a portable, non-serialized fallback for architectures
// without RDTSC/RDTSCP. They let the package build (and the harness run in
// non-timing mode) on other GOARCHes, but the resulting "cycle" counts are
// wall-clock nanoseconds, not TSC ticks, and must not be used for
// side-channel-sensitive measurement.
func Start() uint64 { return uint64(time.Now().UnixNano()) }

// Stop mirrors Start; see its doc comment.
func Stop() uint64 { return uint64(time.Now().UnixNano()) }
