package vulkan

import (
	"github.com/RotatingArtDev/FNA3D/driver"
)

// registry is a generational arena of live driver resources. Handles issued by add
// embed the slot's generation; remove bumps the generation, so a handle held past
// disposal simply stops resolving instead of dangling. Slot generations start at 1,
// which keeps the zero driver.Handle permanently invalid.
type registry[T any] struct {
	slots []registrySlot[T]
	free  []uint32
	count int
}

type registrySlot[T any] struct {
	value      T
	generation uint32
	live       bool
}

// add stores value and returns its handle.
func (r *registry[T]) add(value T) driver.Handle {
	if n := len(r.free); n > 0 {
		index := r.free[n-1]
		r.free = r.free[:n-1]
		slot := &r.slots[index]
		slot.value = value
		slot.live = true
		r.count++
		return driver.Handle{Index: index, Generation: slot.generation}
	}
	r.slots = append(r.slots, registrySlot[T]{value: value, generation: 1, live: true})
	r.count++
	return driver.Handle{Index: uint32(len(r.slots) - 1), Generation: 1}
}

// get resolves h to the stored value, or reports false for a nil, stale or
// removed handle.
func (r *registry[T]) get(h driver.Handle) (*T, bool) {
	if int(h.Index) >= len(r.slots) {
		return nil, false
	}
	slot := &r.slots[h.Index]
	if !slot.live || slot.generation != h.Generation {
		return nil, false
	}
	return &slot.value, true
}

// remove unlinks h from the registry and returns the stored value. After remove
// the handle no longer resolves; the slot is recycled under a new generation.
func (r *registry[T]) remove(h driver.Handle) (T, bool) {
	var zero T
	if int(h.Index) >= len(r.slots) {
		return zero, false
	}
	slot := &r.slots[h.Index]
	if !slot.live || slot.generation != h.Generation {
		return zero, false
	}
	value := slot.value
	slot.value = zero
	slot.live = false
	slot.generation++
	r.free = append(r.free, h.Index)
	r.count--
	return value, true
}

// drain removes and returns every live entry, most recently created first. Used
// for bulk teardown.
func (r *registry[T]) drain() []T {
	var zero T
	values := make([]T, 0, r.count)
	for i := len(r.slots) - 1; i >= 0; i-- {
		slot := &r.slots[i]
		if !slot.live {
			continue
		}
		values = append(values, slot.value)
		slot.value = zero
		slot.live = false
		slot.generation++
		r.free = append(r.free, uint32(i))
	}
	r.count = 0
	return values
}

// size returns the number of live entries.
func (r *registry[T]) size() int {
	return r.count
}
