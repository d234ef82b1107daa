package pathfind

import (
	"math"

	"github.com/1siamBot/rts-flowfield/engine/grid"
)

var octileDirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

type pathNode struct {
	p    grid.Point
	g, f float64
}

// FindPath returns the cheapest 8-connected path from start to goal, both
// included, or nil when the goal cannot be reached. Diagonal steps may not cut
// the corner of a blocked cell.
func FindPath(ng *NavGrid, start, goal grid.Point) []grid.Point {
	if !ng.Passable(goal) || !ng.inBounds(start.X, start.Y) {
		return nil
	}
	idx := func(p grid.Point) int { return p.Y*ng.Size + p.X }

	gScore := make([]float64, ng.Size*ng.Size)
	for i := range gScore {
		gScore[i] = math.Inf(1)
	}
	came := make([]int, len(gScore))
	for i := range came {
		came[i] = -1
	}

	open := newPriorityQueue(func(a, b pathNode) bool { return a.f < b.f })
	gScore[idx(start)] = 0
	open.push(pathNode{p: start, f: octile(start, goal)})

	for open.Len() > 0 {
		cur := open.pop()
		if cur.p == goal {
			return reconstructPath(came, ng.Size, goal)
		}
		if cur.g > gScore[idx(cur.p)] {
			// stale entry
			continue
		}
		for _, d := range octileDirs {
			np := grid.Point{X: cur.p.X + d[0], Y: cur.p.Y + d[1]}
			if !ng.Passable(np) {
				continue
			}
			diagonal := d[0] != 0 && d[1] != 0
			if diagonal && (!ng.Passable(grid.Point{X: cur.p.X + d[0], Y: cur.p.Y}) ||
				!ng.Passable(grid.Point{X: cur.p.X, Y: cur.p.Y + d[1]})) {
				continue
			}
			step := ng.Cost(np)
			if diagonal {
				step *= math.Sqrt2
			}
			g := cur.g + step
			if g >= gScore[idx(np)] {
				continue
			}
			gScore[idx(np)] = g
			came[idx(np)] = idx(cur.p)
			open.push(pathNode{p: np, g: g, f: g + octile(np, goal)})
		}
	}
	return nil
}

// SmoothPath drops waypoints that are in straight line of sight of an earlier one
func SmoothPath(ng *NavGrid, path []grid.Point) []grid.Point {
	if len(path) <= 2 {
		return path
	}
	smooth := []grid.Point{path[0]}
	cur := 0
	for cur < len(path)-1 {
		farthest := cur + 1
		for i := len(path) - 1; i > cur+1; i-- {
			if lineOfSight(ng, path[cur], path[i]) {
				farthest = i
				break
			}
		}
		smooth = append(smooth, path[farthest])
		cur = farthest
	}
	return smooth
}

// lineOfSight walks the Bresenham line from a to b
func lineOfSight(ng *NavGrid, a, b grid.Point) bool {
	dx, dy := abs(b.X-a.X), abs(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx - dy
	p := a
	for {
		if !ng.Passable(p) {
			return false
		}
		if p == b {
			return true
		}
		e2 := err * 2
		if e2 > -dy {
			err -= dy
			p.X += sx
		}
		if e2 < dx {
			err += dx
			p.Y += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func octile(a, b grid.Point) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	return dx + dy + (math.Sqrt2-2)*math.Min(dx, dy)
}

func reconstructPath(came []int, size int, goal grid.Point) []grid.Point {
	path := []grid.Point{goal}
	for i := came[goal.Y*size+goal.X]; i >= 0; i = came[i] {
		path = append(path, grid.Point{X: i % size, Y: i / size})
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
