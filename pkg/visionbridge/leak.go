package visionbridge

// Live-resource tracking for handle leaks.
//
// Build with -tags leakcheck to enable tracking. In default builds every
// tracker call is a no-op.
//
//	h := visionbridge.Own(visionbridge.MatKind, m)
//	// ...
//	h.Close()
//	leaks := visionbridge.LiveResources() // empty if every owner closed

// LeakRecord describes an owned resource whose release has not run.
type LeakRecord struct {
	Kind  string
	ID    uint64
	Stack string
}
