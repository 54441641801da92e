package ttl

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiry(t *testing.T) {
	m := NewMap[string, int](50 * time.Millisecond)
	m.Set("a", 1)

	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	time.Sleep(80 * time.Millisecond)

	_, ok = m.Get("a")
	assert.False(t, ok)
	assert.False(t, m.Has("a"))
}

func TestTouchResetsDeadline(t *testing.T) {
	m := NewMap[string, int](100 * time.Millisecond)
	m.Set("a", 1)

	time.Sleep(60 * time.Millisecond)
	m.Touch("a")
	time.Sleep(60 * time.Millisecond)

	// 120ms after Set, but only 60ms after Touch
	assert.True(t, m.Has("a"))
}

func TestGetDoesNotRefresh(t *testing.T) {
	m := NewMap[string, int](80 * time.Millisecond)
	m.Set("a", 1)

	time.Sleep(50 * time.Millisecond)
	_, ok := m.Get("a")
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	_, ok = m.Get("a")
	assert.False(t, ok)
}

func TestNoExpiry(t *testing.T) {
	m := NewMap[string, int](0)
	m.Set("a", 1)

	time.Sleep(30 * time.Millisecond)
	assert.True(t, m.Has("a"))
}

func TestTouchAbsent(t *testing.T) {
	m := NewMap[string, int](time.Minute)
	m.Touch("nope")

	assert.False(t, m.Has("nope"))
	assert.Equal(t, 0, m.Length())
}

func TestUpsert(t *testing.T) {
	m := NewMap[string, int](time.Minute)

	inc := func(old int, ok bool) int {
		if ok {
			return old + 1
		}
		return 1
	}
	m.Upsert("a", inc)
	m.Upsert("a", inc)

	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestModify(t *testing.T) {
	m := NewMap[string, int](time.Minute)

	// Modify never creates entries
	assert.False(t, m.Modify("a", func(v int) int { return v + 1 }))
	assert.False(t, m.Has("a"))

	m.Set("a", 1)
	assert.True(t, m.Modify("a", func(v int) int { return v + 1 }))

	v, _ := m.Get("a")
	assert.Equal(t, 2, v)
}

func TestRemove(t *testing.T) {
	m := NewMap[string, int](time.Minute)
	m.Set("a", 1)

	assert.True(t, m.Remove("a"))
	assert.False(t, m.Remove("a"))
	assert.False(t, m.Has("a"))
}

func TestPrune(t *testing.T) {
	m := NewMap[string, int](40 * time.Millisecond)
	m.Set("old", 1)

	time.Sleep(60 * time.Millisecond)
	m.Set("new", 2)

	assert.Equal(t, 1, m.Prune())
	assert.Equal(t, 1, m.Length())
	assert.True(t, m.Has("new"))
}

func TestValues(t *testing.T) {
	m := NewMap[string, int](time.Minute)
	m.Set("a", 1)
	m.Set("b", 2)

	assert.ElementsMatch(t, []int{1, 2}, m.Values())
}

func TestConcurrent(t *testing.T) {
	m := NewMap[int, int](time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Set(j, n)
				m.Get(j)
				m.Touch(j)
				m.Upsert(j, func(old int, ok bool) int { return old + 1 })
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, m.Length())
}
