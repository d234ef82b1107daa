package grid

import (
	"fmt"
	"iter"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Point is an integer cell coordinate
type Point struct{ X, Y int }

// Neighbour offsets. Both the Dense grid and ChunkIndex enumerate in this order.
var (
	strictOffsets = [4][2]int{{0, 1}, {-1, 0}, {1, 0}, {0, -1}}
	blockOffsets  = [9][2]int{
		{-1, 1}, {0, 1}, {1, 1},
		{-1, 0}, {0, 0}, {1, 0},
		{-1, -1}, {0, -1}, {1, -1},
	}
)

// Dense is a square, row-major grid of cells (index = y*size + x) placed in
// the world by a Transform. len(tiles) == size*size always holds.
type Dense[T any] struct {
	tiles     []T
	transform Transform
	size      int
}

// New fills a size x size grid by calling init for every cell. init must be a
// pure function of (x, y): rows are filled concurrently.
func New[T any](size int, transform Transform, init func(x, y int) T) *Dense[T] {
	area, ok := Area(size)
	if !ok {
		panic(fmt.Sprintf("grid: invalid size %d", size))
	}
	tiles := make([]T, area)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for y := 0; y < size; y++ {
		g.Go(func() error {
			row := tiles[y*size : (y+1)*size]
			for x := range row {
				row[x] = init(x, y)
			}
			return nil
		})
	}
	_ = g.Wait()

	return &Dense[T]{tiles: tiles, transform: transform, size: size}
}

// Area returns size*size, or false if size is negative or the square
// overflows an int
func Area(size int) (int, bool) {
	if size < 0 || (size != 0 && size > math.MaxInt/size) {
		return 0, false
	}
	return size * size, true
}

// FromParts wraps existing cells. It panics if len(tiles) != size*size.
func FromParts[T any](size int, tiles []T, transform Transform) *Dense[T] {
	area, ok := Area(size)
	if !ok || len(tiles) != area {
		panic(fmt.Sprintf("grid: the grid must be square: size %d, got %d tiles", size, len(tiles)))
	}
	return &Dense[T]{tiles: tiles, transform: transform, size: size}
}

// Size returns the side length
func (g *Dense[T]) Size() int { return g.size }

// Transform returns the world placement of the grid origin
func (g *Dense[T]) Transform() Transform { return g.transform }

// SetTransform moves the grid in the world
func (g *Dense[T]) SetTransform(t Transform) { g.transform = t }

// ValidPosition reports whether 0 <= x < size and 0 <= y < size
func (g *Dense[T]) ValidPosition(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.size && y < g.size
}

// Index returns the row-major offset of (x, y) if it is in bounds
func (g *Dense[T]) Index(x, y int) (int, bool) {
	if !g.ValidPosition(x, y) {
		return 0, false
	}
	return y*g.size + x, true
}

// Coords converts an offset back to (x, y). The offset is not checked.
func (g *Dense[T]) Coords(i int) (x, y int) {
	x = i % g.size
	return x, (i - x) / g.size
}

// Tile returns a copy of the cell at (x, y), or false when out of bounds
func (g *Dense[T]) Tile(x, y int) (T, bool) {
	i, ok := g.Index(x, y)
	if !ok {
		var zero T
		return zero, false
	}
	return g.tiles[i], true
}

// TileMut returns a pointer to the cell at (x, y), or nil when out of bounds
func (g *Dense[T]) TileMut(x, y int) *T {
	i, ok := g.Index(x, y)
	if !ok {
		return nil
	}
	return &g.tiles[i]
}

// TileFromIndex is the trusted accessor: i must come from a validated source
// (Index, a neighbour query on this grid, a ChunkIndex). It panics otherwise.
func (g *Dense[T]) TileFromIndex(i int) T {
	g.mustIndex(i)
	return g.tiles[i]
}

// TileMutFromIndex is the mutable form of TileFromIndex
func (g *Dense[T]) TileMutFromIndex(i int) *T {
	g.mustIndex(i)
	return &g.tiles[i]
}

func (g *Dense[T]) mustIndex(i int) {
	if i < 0 || i >= len(g.tiles) {
		panic(fmt.Sprintf("grid: tile index %d is invalid for %d tiles", i, len(g.tiles)))
	}
}

// At is trusted access through a ChunkIndex. Only valid on chunk-sized grids.
func (g *Dense[T]) At(c ChunkIndex) T {
	g.mustChunk()
	return g.tiles[c.Index()]
}

// AtMut is the mutable form of At
func (g *Dense[T]) AtMut(c ChunkIndex) *T {
	g.mustChunk()
	return &g.tiles[c.Index()]
}

func (g *Dense[T]) mustChunk() {
	if g.size != ChunkSize {
		panic(fmt.Sprintf("grid: chunk index used on grid of size %d", g.size))
	}
}

// Tiles exposes the backing slice. Its length must not be changed.
func (g *Dense[T]) Tiles() []T { return g.tiles }

// All yields every cell with its coordinate in row-major order
func (g *Dense[T]) All() iter.Seq2[Point, T] {
	return func(yield func(Point, T) bool) {
		for i, t := range g.tiles {
			x, y := g.Coords(i)
			if !yield(Point{x, y}, t) {
				return
			}
		}
	}
}

// StrictNeighbours returns the offsets of the up to 4 orthogonal neighbours of
// (x, y) that are inside the grid
func (g *Dense[T]) StrictNeighbours(x, y int) []int {
	return g.collect(strictOffsets[:], x, y)
}

// AllNeighbours returns the offsets of the up to 9 cells of the 3x3 block
// centred on (x, y), the centre included, that are inside the grid
func (g *Dense[T]) AllNeighbours(x, y int) []int {
	return g.collect(blockOffsets[:], x, y)
}

func (g *Dense[T]) collect(offsets [][2]int, x, y int) []int {
	out := make([]int, 0, len(offsets))
	for _, d := range offsets {
		if i, ok := g.Index(x+d[0], y+d[1]); ok {
			out = append(out, i)
		}
	}
	return out
}
