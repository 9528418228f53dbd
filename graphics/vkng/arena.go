package vkng

import (
	"github.com/cockroachdb/errors"
	"github.com/dcore-engine/dcore/graphics"
)

// arena maps engine handles to live vkngwrapper objects. Handles are never
// reused.
type arena struct {
	next    graphics.Handle
	objects map[graphics.Handle]any
	// interned maps the identity of objects the host hands out repeatedly,
	// such as physical devices, to their handle.
	interned map[any]graphics.Handle
}

func newArena() *arena {
	return &arena{
		objects:  make(map[graphics.Handle]any),
		interned: make(map[any]graphics.Handle),
	}
}

func (a *arena) put(obj any) graphics.Handle {
	a.next++
	a.objects[a.next] = obj
	return a.next
}

// intern returns the handle already given to key while it is live, and
// otherwise stores obj under a new one.
func (a *arena) intern(key, obj any) graphics.Handle {
	if h, ok := a.interned[key]; ok {
		if _, live := a.objects[h]; live {
			a.objects[h] = obj
			return h
		}
	}
	h := a.put(obj)
	a.interned[key] = h
	return h
}

func (a *arena) remove(h graphics.Handle) {
	delete(a.objects, h)
}

// get returns the object behind h if it is live and of type T.
func get[T any](a *arena, h graphics.Handle) (T, bool) {
	obj, ok := a.objects[h]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := obj.(T)
	return t, ok
}

// lookup is get with a descriptive error for stale or mistyped handles.
func lookup[T any](a *arena, h graphics.Handle) (T, error) {
	t, ok := get[T](a, h)
	if !ok {
		return t, errors.Newf("handle %d is not a live %T", h, t)
	}
	return t, nil
}
