package sparse

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a, err := New[string]([]int{2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 24, a.TotalSize())
	assert.Equal(t, []int{2, 3, 4}, a.Sizes())
	assert.Len(t, a.Track(), 24)
	assert.Equal(t, 0, a.Populated())
	assert.Equal(t, 0.0, a.Density())

	_, err = New[string]([]int{2, -1})
	assert.ErrorIs(t, err, ErrNegativeSize)

	_, err = New[string]([]int{math.MaxUint32, 2})
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestNew_ZeroSize(t *testing.T) {
	for _, sizes := range [][]int{nil, {0}, {5, 0, 3}} {
		a, err := New[int](sizes)
		require.NoError(t, err)
		assert.Equal(t, 0, a.TotalSize())
		d := a.Density()
		assert.False(t, math.IsNaN(d))
		assert.Equal(t, 0.0, d)
		_, ok := a.ContentAt(0)
		assert.False(t, ok)
	}
}

func TestArray_TrackAndContent(t *testing.T) {
	a, err := New[string]([]int{2, 3})
	require.NoError(t, err)

	track := []int{0, 11, 0, 12, 13, 0}
	require.NoError(t, a.SetTrack(track))
	assert.Equal(t, 3, a.Populated())

	err = a.SetContent([]string{"a", "b"})
	var le *LengthError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "content", le.What)
	assert.Equal(t, 3, le.Expected)

	require.NoError(t, a.SetContent([]string{"b", "d", "e"}))
	assert.InDelta(t, 0.5, a.Density(), 1e-12)

	for flat, want := range map[int]string{1: "b", 3: "d", 4: "e"} {
		got, ok := a.ContentAt(flat)
		require.True(t, ok, "flat %d", flat)
		assert.Equal(t, want, got)
	}
	for _, flat := range []int{0, 2, 5, -1, 6} {
		_, ok := a.ContentAt(flat)
		assert.False(t, ok, "flat %d", flat)
	}

	loc, ok := a.LocatorAt(3)
	assert.True(t, ok)
	assert.Equal(t, 12, loc)
	_, ok = a.LocatorAt(2)
	assert.False(t, ok)

	assert.True(t, a.Occupied().Contains(4))
}

func TestArray_SetTrackLength(t *testing.T) {
	a, err := New[int]([]int{4})
	require.NoError(t, err)
	err = a.SetTrack([]int{1, 2})
	var le *LengthError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "track", le.What)
	assert.Equal(t, 4, le.Expected)
	assert.Equal(t, 2, le.Actual)
}

func TestArray_Each(t *testing.T) {
	a, err := New[int]([]int{5})
	require.NoError(t, err)
	require.NoError(t, a.SetTrack([]int{0, 7, 0, 9, 4}))
	require.NoError(t, a.SetContent([]int{70, 90, 40}))

	var flats, locs, contents []int
	a.Each(func(flat, loc, c int) bool {
		flats = append(flats, flat)
		locs = append(locs, loc)
		contents = append(contents, c)
		return true
	})
	assert.Equal(t, []int{1, 3, 4}, flats)
	assert.Equal(t, []int{7, 9, 4}, locs)
	assert.Equal(t, []int{70, 90, 40}, contents)

	n := 0
	a.Each(func(int, int, int) bool {
		n++
		return false
	})
	assert.Equal(t, 1, n)
}

func TestArray_FullDensity(t *testing.T) {
	a, err := New[int]([]int{3, 4})
	require.NoError(t, err)
	track := make([]int, a.TotalSize())
	content := make([]int, a.TotalSize())
	for i := range track {
		track[i] = i + 1
		content[i] = i
	}
	require.NoError(t, a.SetTrack(track))
	require.NoError(t, a.SetContent(content))
	assert.Equal(t, 1.0, a.Density())
}

func TestArray_ContentAtAcrossWords(t *testing.T) {
	a, err := New[int]([]int{5, 61})
	require.NoError(t, err)

	// Populate every third cell plus both ends of each 64-cell word.
	track := make([]int, a.TotalSize())
	var content []int
	for i := range track {
		if i%3 == 0 || i%64 == 0 || i%64 == 63 {
			track[i] = i + 1
			content = append(content, i)
		}
	}
	require.NoError(t, a.SetTrack(track))
	require.NoError(t, a.SetContent(content))

	for flat, loc := range track {
		got, ok := a.ContentAt(flat)
		if loc == 0 {
			assert.False(t, ok, "flat %d", flat)
			continue
		}
		require.True(t, ok, "flat %d", flat)
		assert.Equal(t, flat, got)
	}
}
