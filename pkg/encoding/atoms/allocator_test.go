package atoms

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate(t *testing.T) {
	a := NewAllocator()

	first := a.Allocate(Match(1, 2, 1, 1))
	second := a.Allocate(Match(2, 1, 1, 1))
	third := a.Allocate(Indicator(0))

	assert.Equal(t, ID(1), first)
	assert.Equal(t, ID(2), second)
	assert.Equal(t, ID(3), third)
	assert.Equal(t, first, a.Allocate(Match(1, 2, 1, 1)), "allocation must be idempotent")
	assert.Equal(t, 3, a.Len())

	k, ok := a.KeyOf(second)
	require.True(t, ok)
	assert.Equal(t, Match(2, 1, 1, 1), k)

	_, ok = a.KeyOf(0)
	assert.False(t, ok)
	_, ok = a.KeyOf(4)
	assert.False(t, ok)

	_, ok = a.Lookup(Match(3, 4, 1, 1))
	assert.False(t, ok)
	assert.Equal(t, 3, a.Len(), "lookup must not allocate")
}

func TestAllocateKindsDoNotCollide(t *testing.T) {
	a := NewAllocator()
	h := a.Allocate(Key{Kind: Home, I: 1})
	b := a.Allocate(Key{Kind: Bound, I: 1})
	assert.NotEqual(t, h, b)
}

func TestAllocatorsAreIndependent(t *testing.T) {
	var wg sync.WaitGroup
	results := make([][]ID, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := NewAllocatorCap(16)
			// Each session requests keys in a different order.
			for w := 1; w <= 4; w++ {
				a.Allocate(Match(i+1, i+2, 1, w))
			}
			results[i] = []ID{
				a.Allocate(Match(i+1, i+2, 1, 1)),
				a.Allocate(Match(i+1, i+2, 1, 4)),
			}
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, []ID{1, 4}, r)
	}
}
