//go:build !leakcheck

package visionbridge

func trackAlloc(_ string, _ uint64) {}
func trackFree(_ uint64)            {}

// LiveResources always returns nil without the leakcheck tag.
func LiveResources() []LeakRecord { return nil }

// ResetTracker is a no-op without the leakcheck tag.
func ResetTracker() {}

// TrackedCount always returns 0 without the leakcheck tag.
func TrackedCount() int { return 0 }
