package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncMap(t *testing.T) {
	aMap := NewSyncMap[string, int]()
	aMap.Put("a", 1)
	aMap.Put("b", 2)
	assert.Equal(t, 2, aMap.Len())

	value, ok := aMap.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, value)

	value, ok = aMap.Take("a")
	assert.True(t, ok)
	assert.Equal(t, 1, value)
	_, ok = aMap.Get("a")
	assert.False(t, ok)
	_, ok = aMap.Take("a")
	assert.False(t, ok)

	drained := aMap.Drain()
	assert.Equal(t, []int{2}, drained)
	assert.Equal(t, 0, aMap.Len())
}
