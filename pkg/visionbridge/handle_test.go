package visionbridge

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counted struct {
	name     string
	released int
}

func countingKind(t *testing.T) *Kind[*counted] {
	t.Helper()
	return RegisterKind("counted/"+t.Name(), func(c *counted) { c.released++ })
}

func TestHandle_ReleaseOnLastOwner(t *testing.T) {
	t.Parallel()
	k := countingKind(t)
	c := &counted{name: "a"}

	h1 := Own(k, c)
	h2 := h1.Clone()
	h3 := h2.Clone()
	assert.Equal(t, 3, h1.Refs())

	h1.Close()
	h3.Close()
	assert.Equal(t, 0, c.released)
	assert.True(t, h2.Valid())

	h2.Close()
	assert.Equal(t, 1, c.released)
	assert.False(t, h2.Valid())
}

func TestHandle_CloseIsIdempotent(t *testing.T) {
	t.Parallel()
	k := countingKind(t)
	c := &counted{}
	h := Own(k, c)
	other := h.Clone()

	h.Close()
	h.Close()
	assert.Equal(t, 0, c.released, "double close on one handle must not drop another owner")

	other.Close()
	assert.Equal(t, 1, c.released)
}

func TestHandle_Replace(t *testing.T) {
	t.Parallel()
	k := countingKind(t)
	a, b := &counted{name: "a"}, &counted{name: "b"}

	h := Own(k, a)
	h.Replace(b)
	assert.Equal(t, 1, a.released)
	assert.Same(t, b, h.Get())

	h.Close()
	assert.Equal(t, 1, b.released)
}

func TestHandle_ReplaceKeepsSharedOwner(t *testing.T) {
	t.Parallel()
	k := countingKind(t)
	a, b := &counted{}, &counted{}

	h := Own(k, a)
	keep := h.Clone()
	h.Replace(b)
	assert.Equal(t, 0, a.released)
	assert.Same(t, a, keep.Get())

	keep.Close()
	h.Close()
	assert.Equal(t, 1, a.released)
	assert.Equal(t, 1, b.released)
}

func TestHandle_Assign(t *testing.T) {
	t.Parallel()
	k := countingKind(t)
	a, b := &counted{}, &counted{}

	ha := Own(k, a)
	hb := Own(k, b)
	ha.Assign(hb)
	assert.Equal(t, 1, a.released)
	assert.True(t, ha.Same(hb))
	assert.Equal(t, 2, hb.Refs())

	hb.Close()
	assert.Equal(t, 0, b.released)
	ha.Close()
	assert.Equal(t, 1, b.released)
}

func TestHandle_AssignSelf(t *testing.T) {
	t.Parallel()
	k := countingKind(t)
	c := &counted{}
	h := Own(k, c)

	h.Assign(h)
	assert.Equal(t, 0, c.released)
	assert.Equal(t, 1, h.Refs())

	h.Close()
	assert.Equal(t, 1, c.released)
}

func TestHandle_AssignEmpty(t *testing.T) {
	t.Parallel()
	k := countingKind(t)
	c := &counted{}
	h := Own(k, c)

	h.Assign(Empty(k))
	assert.Equal(t, 1, c.released)
	assert.False(t, h.Valid())
	assert.Nil(t, h.Get())
}

func TestHandle_ConcurrentOwners(t *testing.T) {
	t.Parallel()
	k := countingKind(t)
	c := &counted{}
	root := Own(k, c)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		h := root.Clone()
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Close()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, c.released)
	root.Close()
	assert.Equal(t, 1, c.released)
}

func TestRegisterKind_Duplicate(t *testing.T) {
	t.Parallel()
	RegisterKind("dup/"+t.Name(), func(*counted) {})
	r := panicValue(func() { RegisterKind("dup/"+t.Name(), func(*counted) {}) })
	require.IsType(t, &PreconditionError{}, r)
	assert.Contains(t, r.(error).Error(), "already registered")
}

func TestBorrowCopyOut(t *testing.T) {
	t.Parallel()
	internal := []Comp{{Neighbors: 1}, {Neighbors: 2}}
	v := Borrow(internal)

	snap := CopyOut(v)
	internal[0].Neighbors = 99
	assert.Equal(t, 1, snap[0].Neighbors)
	assert.Len(t, snap, 2)

	assert.Equal(t, []Comp{}, CopyOut(Borrow[[]Comp](nil)))
}

func TestMatKind_ClosesMat(t *testing.T) {
	t.Parallel()
	released := 0
	m, err := WrapNative(1, 1, 1, Elem8U, 1, []byte{7}, func() { released++ })
	require.NoError(t, err)

	h := Own(MatKind, m)
	h.Clone().Close()
	assert.Equal(t, 0, released)
	h.Close()
	assert.Equal(t, 1, released)
	assert.True(t, m.Empty())
}
