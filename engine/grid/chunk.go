package grid

import (
	"errors"
	"fmt"
	"iter"
)

// ChunkSize is the side length of a chunk in cells
const ChunkSize = 128

// ErrInvalidIndex is returned for coordinates outside the addressed region
var ErrInvalidIndex = errors.New("invalid index")

// ChunkIndex is an offset into a ChunkSize x ChunkSize region that is known to
// be in bounds. The only way to obtain one is NewChunkIndex (or the iterators
// in this file), so holders never need to re-check it.
type ChunkIndex struct {
	i int
}

// NewChunkIndex validates (x, y) and encodes it row-major
func NewChunkIndex(x, y int) (ChunkIndex, error) {
	if x < 0 || y < 0 || x >= ChunkSize || y >= ChunkSize {
		return ChunkIndex{}, fmt.Errorf("%w: chunk x: %d, y: %d", ErrInvalidIndex, x, y)
	}
	return ChunkIndex{i: y*ChunkSize + x}, nil
}

// Index returns the row-major offset
func (c ChunkIndex) Index() int { return c.i }

// ToCoords decodes the index back to (x, y)
func (c ChunkIndex) ToCoords() (x, y int) {
	x = c.i % ChunkSize
	y = (c.i - x) / ChunkSize
	return x, y
}

// StrictNeighbours returns the in-bounds orthogonal neighbours (N, W, E, S)
func (c ChunkIndex) StrictNeighbours() []ChunkIndex {
	x, y := c.ToCoords()
	return collectChunk(strictOffsets[:], x, y)
}

// AllNeighbours returns the in-bounds cells of the 3x3 block centred on c,
// c itself included
func (c ChunkIndex) AllNeighbours() []ChunkIndex {
	x, y := c.ToCoords()
	return collectChunk(blockOffsets[:], x, y)
}

func collectChunk(offsets [][2]int, x, y int) []ChunkIndex {
	out := make([]ChunkIndex, 0, len(offsets))
	for _, d := range offsets {
		if n, err := NewChunkIndex(x+d[0], y+d[1]); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// ChunkIndices yields every index of a chunk in row-major order
func ChunkIndices() iter.Seq[ChunkIndex] {
	return func(yield func(ChunkIndex) bool) {
		for i := 0; i < ChunkSize*ChunkSize; i++ {
			if !yield(ChunkIndex{i: i}) {
				return
			}
		}
	}
}
