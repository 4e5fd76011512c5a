//go:build leakcheck

package visionbridge

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
)

var (
	trackerMu sync.Mutex
	tracked   = make(map[uint64]LeakRecord)
)

func callerStack(skip int) string {
	var pcs [8]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "  %s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return b.String()
}

func trackAlloc(kind string, id uint64) {
	trackerMu.Lock()
	defer trackerMu.Unlock()
	tracked[id] = LeakRecord{Kind: kind, ID: id, Stack: callerStack(2)}
}

func trackFree(id uint64) {
	trackerMu.Lock()
	defer trackerMu.Unlock()
	delete(tracked, id)
}

// LiveResources returns every tracked resource that has not been released.
func LiveResources() []LeakRecord {
	trackerMu.Lock()
	defer trackerMu.Unlock()
	result := make([]LeakRecord, 0, len(tracked))
	for _, rec := range tracked {
		result = append(result, rec)
	}
	return result
}

// ResetTracker clears all tracking state.
func ResetTracker() {
	trackerMu.Lock()
	defer trackerMu.Unlock()
	tracked = make(map[uint64]LeakRecord)
}

// TrackedCount returns the number of unreleased resources.
func TrackedCount() int {
	trackerMu.Lock()
	defer trackerMu.Unlock()
	return len(tracked)
}
