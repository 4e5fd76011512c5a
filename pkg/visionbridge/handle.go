package visionbridge

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"visionbridge/internal/monitoring"
)

var (
	kindsMu sync.Mutex
	kinds   = make(map[string]struct{})

	nextResourceID atomic.Uint64
)

// Kind names a class of owned resource and carries its single release
// function.
type Kind[T any] struct {
	name    string
	release func(T)
}

// Name returns the registered kind name.
func (k *Kind[T]) Name() string { return k.name }

// RegisterKind declares a resource kind. Registering the same name twice
// panics.
func RegisterKind[T any](name string, release func(T)) *Kind[T] {
	if release == nil {
		precondition("RegisterKind", "kind %q has no release function", name)
	}
	kindsMu.Lock()
	defer kindsMu.Unlock()
	if _, ok := kinds[name]; ok {
		panic(&PreconditionError{Op: "RegisterKind", Detail: fmt.Sprintf("kind %q already registered", name)})
	}
	kinds[name] = struct{}{}
	return &Kind[T]{name: name, release: release}
}

var (
	// MatKind owns matrices; release closes the matrix.
	MatKind = RegisterKind("mat", (*Mat).Close)
	// TrackerKind owns tracker models; release closes the model.
	TrackerKind = RegisterKind("tracker", func(t TrackerModel) { t.Close() })
)

type resource[T any] struct {
	kind *Kind[T]
	v    T
	id   uint64
	refs atomic.Int32
}

func newResource[T any](kind *Kind[T], v T) *resource[T] {
	r := &resource[T]{kind: kind, v: v, id: nextResourceID.Add(1)}
	r.refs.Store(1)
	trackAlloc(kind.name, r.id)
	return r
}

func (r *resource[T]) retain() {
	r.refs.Add(1)
}

func (r *resource[T]) drop() {
	n := r.refs.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		panic(&PreconditionError{Op: "Handle.Close", Detail: fmt.Sprintf("%s resource %d released twice", r.kind.name, r.id)})
	}
	trackFree(r.id)
	r.kind.release(r.v)
	monitoring.Logger().Debug("bridge: released", "kind", r.kind.name, "id", r.id)
	var zero T
	r.v = zero
}

// Handle is one owner of a reference-counted resource. The release
// function of the resource's kind runs exactly once, when the last owner
// closes. A Handle is meant for a single goroutine; distinct handles on
// the same resource may live on different goroutines.
type Handle[T any] struct {
	kind *Kind[T]
	res  *resource[T]
}

// Own takes ownership of v.
func Own[T any](kind *Kind[T], v T) *Handle[T] {
	return &Handle[T]{kind: kind, res: newResource(kind, v)}
}

// Empty returns a handle of the kind that owns nothing.
func Empty[T any](kind *Kind[T]) *Handle[T] {
	return &Handle[T]{kind: kind}
}

// Clone returns a new owner of the same resource.
func (h *Handle[T]) Clone() *Handle[T] {
	if h.res != nil {
		h.res.retain()
	}
	return &Handle[T]{kind: h.kind, res: h.res}
}

// Close drops this owner. Closing an empty or closed handle does nothing.
func (h *Handle[T]) Close() {
	if h == nil || h.res == nil {
		return
	}
	r := h.res
	h.res = nil
	r.drop()
}

// Replace drops the current resource and takes ownership of v.
func (h *Handle[T]) Replace(v T) {
	old := h.res
	h.res = newResource(h.kind, v)
	if old != nil {
		old.drop()
	}
}

// Assign makes h share src's resource. The new resource is retained before
// the old one is dropped, so assigning a handle to itself is safe.
func (h *Handle[T]) Assign(src *Handle[T]) {
	if src.kind != h.kind {
		precondition("Handle.Assign", "kind %s assigned to %s", src.kind.name, h.kind.name)
	}
	if src.res != nil {
		src.res.retain()
	}
	old := h.res
	h.res = src.res
	if old != nil {
		old.drop()
	}
}

// Get returns the owned resource, or the zero value for an empty handle.
func (h *Handle[T]) Get() T {
	if h == nil || h.res == nil {
		var zero T
		return zero
	}
	return h.res.v
}

// Valid reports whether the handle owns a resource.
func (h *Handle[T]) Valid() bool {
	return h != nil && h.res != nil
}

// Refs returns the number of owners of the resource, 0 for an empty handle.
func (h *Handle[T]) Refs() int {
	if h == nil || h.res == nil {
		return 0
	}
	return int(h.res.refs.Load())
}

// Same reports whether both handles own the same resource.
func (h *Handle[T]) Same(o *Handle[T]) bool {
	return h.res != nil && h.res == o.res
}

// View is a borrowed reference to a resource owned elsewhere. It carries
// no release obligation and is only valid until the owner next changes.
type View[T any] struct {
	v T
}

// Borrow wraps an externally owned value.
func Borrow[T any](v T) View[T] {
	return View[T]{v: v}
}

// Get returns the borrowed value.
func (v View[T]) Get() T { return v.v }

// CopyOut snapshots a borrowed slice into memory the caller owns.
func CopyOut[E any](v View[[]E]) []E {
	if v.v == nil {
		return []E{}
	}
	return slices.Clone(v.v)
}
