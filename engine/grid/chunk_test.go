package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkIndexValidation(t *testing.T) {
	for _, c := range [][2]int{{-1, 0}, {0, -1}, {ChunkSize, 0}, {0, ChunkSize}, {128, 0}} {
		_, err := NewChunkIndex(c[0], c[1])
		assert.ErrorIs(t, err, ErrInvalidIndex, "%v", c)
	}

	idx, err := NewChunkIndex(127, 127)
	require.NoError(t, err)
	x, y := idx.ToCoords()
	assert.Equal(t, 127, x)
	assert.Equal(t, 127, y)
	assert.Equal(t, ChunkSize*ChunkSize-1, idx.Index())
}

func TestChunkIndexRoundTrip(t *testing.T) {
	for _, c := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {64, 3}, {127, 0}, {0, 127}} {
		idx, err := NewChunkIndex(c[0], c[1])
		require.NoError(t, err)
		x, y := idx.ToCoords()
		assert.Equal(t, c, [2]int{x, y})
		assert.Equal(t, c[1]*ChunkSize+c[0], idx.Index())
	}
}

func TestChunkNeighboursDropOutOfBounds(t *testing.T) {
	origin, _ := NewChunkIndex(0, 0)
	assert.Len(t, origin.StrictNeighbours(), 2)
	assert.Len(t, origin.AllNeighbours(), 4)
	assert.Contains(t, origin.AllNeighbours(), origin)

	mid, _ := NewChunkIndex(10, 10)
	assert.Len(t, mid.StrictNeighbours(), 4)
	assert.Len(t, mid.AllNeighbours(), 9)

	far, _ := NewChunkIndex(ChunkSize-1, ChunkSize-1)
	var coords [][2]int
	for _, n := range far.StrictNeighbours() {
		x, y := n.ToCoords()
		coords = append(coords, [2]int{x, y})
	}
	assert.ElementsMatch(t, [][2]int{{ChunkSize - 2, ChunkSize - 1}, {ChunkSize - 1, ChunkSize - 2}}, coords)
}

func TestChunkIndicesRowMajor(t *testing.T) {
	n := 0
	for idx := range ChunkIndices() {
		assert.Equal(t, n, idx.Index())
		n++
	}
	assert.Equal(t, ChunkSize*ChunkSize, n)
}
