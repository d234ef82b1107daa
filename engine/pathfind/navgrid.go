package pathfind

import (
	"github.com/1siamBot/rts-flowfield/engine/grid"
	"github.com/1siamBot/rts-flowfield/engine/maplib"
)

// NavGrid is the cost map the single-path A* search runs on. Unlike a flow
// field it charges per entered cell, by tile shape rather than height step.
type NavGrid struct {
	Size  int
	Costs []float64 // cost to enter each cell (0 = impassable)
}

// kind penalties on top of the base cost of 1
var kindCost = map[maplib.TileKind]float64{
	maplib.KindFlat:       1.0,
	maplib.KindRampTop:    1.5,
	maplib.KindRampBottom: 1.5,
	maplib.KindRampRight:  1.5,
	maplib.KindRampLeft:   1.5,
}

// NewNavGrid derives a navigation grid from terrain. Sloped tiles that step
// more than one unit to a neighbour are blocked.
func NewNavGrid(t *maplib.Terrain) *NavGrid {
	ng := &NavGrid{
		Size:  t.Size(),
		Costs: make([]float64, len(t.Tiles())),
	}
	for i, c := range t.Tiles() {
		switch cost, ok := kindCost[c.Kind]; {
		case c.Kind != maplib.KindFlat && c.HeightDiff > 1:
			ng.Costs[i] = 0
		case ok:
			ng.Costs[i] = cost
		default:
			// corners
			ng.Costs[i] = 2.0
		}
	}
	return ng
}

func (ng *NavGrid) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < ng.Size && y < ng.Size
}

// Passable checks if a cell can be entered
func (ng *NavGrid) Passable(p grid.Point) bool {
	return ng.inBounds(p.X, p.Y) && ng.Costs[p.Y*ng.Size+p.X] > 0
}

// Cost returns the cost of entering p, 0 when out of bounds or blocked
func (ng *NavGrid) Cost(p grid.Point) float64 {
	if !ng.inBounds(p.X, p.Y) {
		return 0
	}
	return ng.Costs[p.Y*ng.Size+p.X]
}

// SetBlocked marks a cell as impassable
func (ng *NavGrid) SetBlocked(p grid.Point) {
	ng.SetCost(p, 0)
}

// SetCost sets a custom cost for a cell
func (ng *NavGrid) SetCost(p grid.Point, cost float64) {
	if ng.inBounds(p.X, p.Y) {
		ng.Costs[p.Y*ng.Size+p.X] = cost
	}
}
