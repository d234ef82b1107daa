package maplib

import (
	"github.com/chewxy/math32"

	"github.com/1siamBot/rts-flowfield/engine/grid"
)

// TileKind classifies the shape of a tile. It drives rendering; the flow
// field search only reads it through the cliff-aware edge cost.
type TileKind uint8

const (
	KindFlat TileKind = iota
	KindRampTop
	KindRampBottom
	KindRampRight
	KindRampLeft
	KindCornerConcaveRT
	KindCornerConvexRT
	KindCornerConcaveLT
	KindCornerConvexLT
	KindCornerConcaveRB
	KindCornerConvexRB
	KindCornerConcaveLB
	KindCornerConvexLB
	kindCount
)

var kindNames = [...]string{
	"flat", "ramp_top", "ramp_bottom", "ramp_right", "ramp_left",
	"corner_concave_rt", "corner_convex_rt", "corner_concave_lt", "corner_convex_lt",
	"corner_concave_rb", "corner_convex_rb", "corner_concave_lb", "corner_convex_lb",
}

func (k TileKind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "unknown"
}

// Valid reports whether k is a known kind
func (k TileKind) Valid() bool { return k < kindCount }

// TerrainCell is one tile of terrain
type TerrainCell struct {
	Height     float32  // height of the tile's representative point
	Kind       TileKind // shape classification
	HeightDiff float32  // largest step to a strict neighbour; auxiliary, see RecomputeHeightDiff
}

// Terrain is the grid every flow field is built over
type Terrain = grid.Dense[TerrainCell]

// NewFlat creates a size x size terrain at height 0
func NewFlat(size int, transform grid.Transform) *Terrain {
	return grid.New(size, transform, func(x, y int) TerrainCell {
		return TerrainCell{Kind: KindFlat}
	})
}

// NewHeightmap creates a terrain whose heights come from h
func NewHeightmap(size int, transform grid.Transform, h func(x, y int) float32) *Terrain {
	t := grid.New(size, transform, func(x, y int) TerrainCell {
		return TerrainCell{Height: h(x, y), Kind: KindFlat}
	})
	RecomputeHeightDiff(t)
	return t
}

// RaiseRect sets the height of every cell in the inclusive rectangle
// (x1,y1)-(x2,y2), clipped to the terrain
func RaiseRect(t *Terrain, x1, y1, x2, y2 int, height float32) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			if c := t.TileMut(x, y); c != nil {
				c.Height = height
			}
		}
	}
	RecomputeHeightDiff(t)
}

// RecomputeHeightDiff refreshes HeightDiff as the largest absolute height step
// from each cell to any of its strict neighbours
func RecomputeHeightDiff(t *Terrain) {
	size := t.Size()
	diffs := make([]float32, size*size)
	for i, c := range t.Tiles() {
		x, y := t.Coords(i)
		var d float32
		for _, n := range t.StrictNeighbours(x, y) {
			d = math32.Max(d, math32.Abs(t.TileFromIndex(n).Height-c.Height))
		}
		diffs[i] = d
	}
	tiles := t.Tiles()
	for i := range tiles {
		tiles[i].HeightDiff = diffs[i]
	}
}

// HeightAt returns the height of cell (x, y), or false when out of bounds
func HeightAt(t *Terrain, x, y int) (float32, bool) {
	c, ok := t.Tile(x, y)
	return c.Height, ok
}
