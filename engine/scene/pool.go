package scene

import "fmt"

// Handle identifies an item in a Pool. The generation detects stale
// handles whose slot has been reused.
type Handle struct {
	index      uint32
	generation uint32
}

type poolSlot struct {
	generation uint32
	denseIndex uint32
	occupied   bool
}

// Pool is a dense array of items plus a sparse slot map, so iteration is
// cache friendly while handles stay stable across removals.
type Pool[T any] struct {
	slots      []poolSlot
	free       []uint32
	dense      []T
	denseSlots []uint32
}

func NewPool[T any]() *Pool[T] {
	return &Pool[T]{}
}

func (p *Pool[T]) Add(item T) Handle {
	var slotIndex uint32
	if len(p.free) != 0 {
		slotIndex = p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
	} else {
		slotIndex = uint32(len(p.slots))
		p.slots = append(p.slots, poolSlot{})
	}

	slot := &p.slots[slotIndex]
	slot.denseIndex = uint32(len(p.dense))
	slot.occupied = true

	p.dense = append(p.dense, item)
	p.denseSlots = append(p.denseSlots, slotIndex)

	return Handle{index: slotIndex, generation: slot.generation}
}

func (p *Pool[T]) Get(handle Handle) (*T, bool) {
	if handle.index >= uint32(len(p.slots)) {
		return nil, false
	}
	slot := &p.slots[handle.index]
	if !slot.occupied || slot.generation != handle.generation {
		return nil, false
	}
	return &p.dense[slot.denseIndex], true
}

// MustGet resolves the handle or panics. Requesting an item that was
// never registered or already removed is caller misuse.
func (p *Pool[T]) MustGet(handle Handle) *T {
	item, ok := p.Get(handle)
	if !ok {
		panic(fmt.Sprintf("pool: stale or invalid handle {index: %d, generation: %d}", handle.index, handle.generation))
	}
	return item
}

func (p *Pool[T]) Remove(handle Handle) bool {
	if handle.index >= uint32(len(p.slots)) {
		return false
	}
	slot := &p.slots[handle.index]
	if !slot.occupied || slot.generation != handle.generation {
		return false
	}

	// Move the last dense item into the removed spot.
	last := uint32(len(p.dense) - 1)
	removed := slot.denseIndex
	if removed != last {
		p.dense[removed] = p.dense[last]
		p.denseSlots[removed] = p.denseSlots[last]
		p.slots[p.denseSlots[removed]].denseIndex = removed
	}
	p.dense = p.dense[:last]
	p.denseSlots = p.denseSlots[:last]

	slot.occupied = false
	slot.generation++
	p.free = append(p.free, handle.index)
	return true
}

func (p *Pool[T]) Len() int {
	return len(p.dense)
}

func (p *Pool[T]) ForEach(fn func(*T)) {
	for i := range p.dense {
		fn(&p.dense[i])
	}
}
