package pathfind

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"github.com/1siamBot/rts-flowfield/engine/grid"
	"github.com/1siamBot/rts-flowfield/engine/maplib"
	"github.com/1siamBot/rts-flowfield/engine/vmath"
)

// Unreached is the distance of a cell the search has not reached
const Unreached = math.MaxUint32

// cancellation is polled once per this many queue pops
const cancelCheckEvery = 1024

// ErrInvalidTarget is returned when a build target lies outside the terrain
var ErrInvalidTarget = errors.New("pathfind: invalid target")

// FlowCell is one cell of a flow field. Cells order by Distance only; Pos
// travels with the cell through the queue.
type FlowCell struct {
	Distance  uint32
	Direction vmath.Vec3
	Pos       grid.Point
}

// FlowField steers every cell of a terrain towards Target. It is read-only
// once built and may be shared by any number of agents.
type FlowField struct {
	Grid   *grid.Dense[FlowCell]
	Target grid.Point
}

// EdgeCostFunc returns the cost of crossing between two orthogonally adjacent
// cells, where to is the cell being reached. ok == false makes the step
// impassable. Costs must be at least 1.
type EdgeCostFunc func(from, to maplib.TerrainCell) (cost uint32, ok bool)

// TerrainCost charges one per step plus the rounded height difference.
// Steps too large for a uint32, infinite or NaN cost Unreached-1.
func TerrainCost(from, to maplib.TerrainCell) (uint32, bool) {
	diff := math32.Round(math32.Abs(to.Height - from.Height))
	if !(diff < float32(Unreached-2)) {
		return Unreached - 1, true
	}
	return uint32(diff) + 1, true
}

// CliffCost is TerrainCost, except that a sloped tile stepping more than one
// unit to any neighbour cannot be entered
func CliffCost(from, to maplib.TerrainCell) (uint32, bool) {
	if to.Kind != maplib.KindFlat && to.HeightDiff > 1 {
		return 0, false
	}
	return TerrainCost(from, to)
}

// Builder computes flow fields. The zero value uses TerrainCost.
type Builder struct {
	EdgeCost EdgeCostFunc
}

// Build computes the flow field for target over terrain with TerrainCost
func Build(target grid.Point, terrain *maplib.Terrain) (*FlowField, error) {
	return Builder{}.Build(target, terrain)
}

// Build computes the flow field for target over terrain
func (b Builder) Build(target grid.Point, terrain *maplib.Terrain) (*FlowField, error) {
	return b.BuildContext(context.Background(), target, terrain)
}

// BuildContext is Build with cancellation. terrain must not be modified while
// the build runs.
func (b Builder) BuildContext(ctx context.Context, target grid.Point, terrain *maplib.Terrain) (*FlowField, error) {
	if !terrain.ValidPosition(target.X, target.Y) {
		return nil, fmt.Errorf("%w: (%d, %d) on terrain of size %d: %w",
			ErrInvalidTarget, target.X, target.Y, terrain.Size(), grid.ErrInvalidIndex)
	}
	dist, err := b.distanceField(ctx, target, terrain)
	if err != nil {
		return nil, err
	}
	return &FlowField{
		Grid:   directionField(dist, terrain),
		Target: target,
	}, nil
}

func (b Builder) edgeCost() EdgeCostFunc {
	if b.EdgeCost != nil {
		return b.EdgeCost
	}
	return TerrainCost
}

// distanceField floods outward from target. A cell's distance is fixed the
// first time it is assigned; costs are positive, so the queue pops cells in
// non-decreasing distance order.
func (b Builder) distanceField(ctx context.Context, target grid.Point, terrain *maplib.Terrain) (*grid.Dense[FlowCell], error) {
	cost := b.edgeCost()
	field := grid.New(terrain.Size(), terrain.Transform(), func(x, y int) FlowCell {
		return FlowCell{Distance: Unreached, Pos: grid.Point{X: x, Y: y}}
	})

	ti, _ := field.Index(target.X, target.Y)
	field.TileMutFromIndex(ti).Distance = 0

	queue := newPriorityQueue(func(a, b FlowCell) bool { return a.Distance < b.Distance })
	queue.push(field.TileFromIndex(ti))

	for pops := 0; queue.Len() > 0; pops++ {
		if pops%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("pathfind: build towards (%d, %d): %w", target.X, target.Y, err)
			}
		}
		cur := queue.pop()
		ci, _ := field.Index(cur.Pos.X, cur.Pos.Y)
		from := terrain.TileFromIndex(ci)
		for _, n := range field.StrictNeighbours(cur.Pos.X, cur.Pos.Y) {
			nc := field.TileMutFromIndex(n)
			if nc.Distance != Unreached {
				continue
			}
			step, ok := cost(from, terrain.TileFromIndex(n))
			if !ok {
				continue
			}
			nc.Distance = saturatingAdd(cur.Distance, step)
			queue.push(*nc)
		}
	}
	return field, nil
}

func saturatingAdd(a, b uint32) uint32 {
	if b >= Unreached-a {
		return Unreached - 1
	}
	return a + b
}

// directionField gives every cell the normalized vector from the lowest
// distance cell of its 3x3 block (itself included) to itself:
//
//	direction = normalize_or_zero((x, h, y) - (mx, mh, my))
//
// so the vector points away from lower cost; steering negates it. A cell with
// no strictly lower neighbour keeps the zero vector. Among equally low
// neighbours the first in AllNeighbours order wins; callers must not rely on
// which.
func directionField(dist *grid.Dense[FlowCell], terrain *maplib.Terrain) *grid.Dense[FlowCell] {
	return grid.New(dist.Size(), dist.Transform(), func(x, y int) FlowCell {
		ci, _ := dist.Index(x, y)
		c := dist.TileFromIndex(ci)
		best, bi := c, ci
		for _, n := range dist.AllNeighbours(x, y) {
			if nc := dist.TileFromIndex(n); nc.Distance < best.Distance {
				best, bi = nc, n
			}
		}
		if bi == ci {
			return c
		}
		pc := vmath.V3(float32(x), terrain.TileFromIndex(ci).Height, float32(y))
		pm := vmath.V3(float32(best.Pos.X), terrain.TileFromIndex(bi).Height, float32(best.Pos.Y))
		c.Direction = pc.Sub(pm).NormalizeOrZero()
		return c
	})
}

// Size returns the side length of the field
func (f *FlowField) Size() int { return f.Grid.Size() }

// Direction returns the stored direction at (x, y)
func (f *FlowField) Direction(x, y int) (vmath.Vec3, bool) {
	c, ok := f.Grid.Tile(x, y)
	return c.Direction, ok
}

// Distance returns the cost-to-target at (x, y)
func (f *FlowField) Distance(x, y int) (uint32, bool) {
	c, ok := f.Grid.Tile(x, y)
	return c.Distance, ok
}

// Reachable reports whether (x, y) is inside the field and connected to the target
func (f *FlowField) Reachable(x, y int) bool {
	d, ok := f.Distance(x, y)
	return ok && d != Unreached
}

// Each calls fn for every cell with its stored direction, row-major
func (f *FlowField) Each(fn func(p grid.Point, dir vmath.Vec3)) {
	for p, c := range f.Grid.All() {
		fn(p, c.Direction)
	}
}

// Sample bilinearly interpolates the stored direction at fractional grid
// coordinates, treating each cell's value as located at its centre. Cells
// outside the field contribute zero. The result is normalized or zero.
func (f *FlowField) Sample(gx, gy float32) vmath.Vec3 {
	fx, fy := gx-0.5, gy-0.5
	x0, y0 := math32.Floor(fx), math32.Floor(fy)
	tx, ty := fx-x0, fy-y0
	ix, iy := int(x0), int(y0)

	at := func(x, y int) vmath.Vec3 {
		d, _ := f.Direction(x, y)
		return d
	}
	top := at(ix, iy).Lerp(at(ix+1, iy), tx)
	bottom := at(ix, iy+1).Lerp(at(ix+1, iy+1), tx)
	return top.Lerp(bottom, ty).NormalizeOrZero()
}
