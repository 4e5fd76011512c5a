//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"

	vb "visionbridge/pkg/visionbridge"
)

// closer is anything script can hold by id.
type closer interface {
	Close()
}

// registry maps the integer ids handed to script onto Go objects. Script
// owns every id it receives and must pass it to delete.
type registry struct {
	next int
	objs map[int]closer
}

func newRegistry() *registry {
	return &registry{next: 1, objs: make(map[int]closer)}
}

func (r *registry) add(c closer) int {
	id := r.next
	r.next++
	r.objs[id] = c
	return id
}

func (r *registry) remove(id int) bool {
	c, ok := r.objs[id]
	if !ok {
		return false
	}
	delete(r.objs, id)
	c.Close()
	return true
}

func lookup[T closer](v js.Value) (T, error) {
	var zero T
	if v.Type() != js.TypeNumber {
		return zero, fmt.Errorf("expected an object id, got %s", v.Type())
	}
	c, ok := objs.objs[v.Int()]
	if !ok {
		return zero, fmt.Errorf("unknown id %d", v.Int())
	}
	t, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("id %d is a %T", v.Int(), c)
	}
	return t, nil
}

func imageArg(v js.Value) (*vb.Image, error) { return lookup[*vb.Image](v) }

func deleteObject(args []js.Value) (interface{}, error) {
	if err := need(args, 1, "delete(id)"); err != nil {
		return nil, err
	}
	return objs.remove(args[0].Int()), nil
}

func liveResources(_ []js.Value) (interface{}, error) {
	return map[string]interface{}{
		"objects": len(objs.objs),
		"tracked": vb.TrackedCount(),
		"cached":  cache.Len(),
	}, nil
}
