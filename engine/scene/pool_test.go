package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolAddGet(t *testing.T) {
	p := NewPool[int]()

	a := p.Add(10)
	b := p.Add(20)

	va, ok := p.Get(a)
	assert.True(t, ok)
	assert.Equal(t, 10, *va)

	vb, ok := p.Get(b)
	assert.True(t, ok)
	assert.Equal(t, 20, *vb)
	assert.Equal(t, 2, p.Len())
}

func TestPoolRemoveInvalidatesHandle(t *testing.T) {
	p := NewPool[int]()

	a := p.Add(10)
	b := p.Add(20)

	assert.True(t, p.Remove(a))
	_, ok := p.Get(a)
	assert.False(t, ok)

	// The surviving item is still reachable after the dense swap.
	vb, ok := p.Get(b)
	assert.True(t, ok)
	assert.Equal(t, 20, *vb)
	assert.Equal(t, 1, p.Len())
}

func TestPoolReusedSlotGetsNewGeneration(t *testing.T) {
	p := NewPool[int]()

	a := p.Add(10)
	p.Remove(a)
	c := p.Add(30)

	// Same slot, new generation: the old handle must stay dead.
	_, ok := p.Get(a)
	assert.False(t, ok)

	vc, ok := p.Get(c)
	assert.True(t, ok)
	assert.Equal(t, 30, *vc)
}

func TestPoolMustGetPanicsOnStaleHandle(t *testing.T) {
	p := NewPool[int]()

	a := p.Add(10)
	p.Remove(a)

	assert.Panics(t, func() {
		p.MustGet(a)
	})
}

func TestPoolForEachVisitsAll(t *testing.T) {
	p := NewPool[int]()
	p.Add(1)
	p.Add(2)
	p.Add(3)

	sum := 0
	p.ForEach(func(v *int) {
		sum += *v
	})
	assert.Equal(t, 6, sum)
}
