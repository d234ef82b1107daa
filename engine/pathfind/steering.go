package pathfind

import (
	"github.com/1siamBot/rts-flowfield/engine/grid"
	"github.com/1siamBot/rts-flowfield/engine/vmath"
)

// Steerer gives an agent at a world position the unit direction it should
// move in. ok is false when no guidance is available there.
type Steerer interface {
	Steer(pos vmath.Vec3) (dir vmath.Vec3, ok bool)
}

// FlowSteerer reads a shared flow field
type FlowSteerer struct {
	Field *FlowField
	// Interpolate samples the field bilinearly instead of using the cell value
	Interpolate bool
}

// Steer looks up the cell under pos. Stored directions point away from the
// target, so the returned direction is their negation. Cells outside the
// field, the target cell and unreachable cells give no guidance.
func (s FlowSteerer) Steer(pos vmath.Vec3) (vmath.Vec3, bool) {
	tr := s.Field.Grid.Transform()
	x, y := tr.CellAt(pos)
	dir, ok := s.Field.Direction(x, y)
	if !ok || dir.IsZero() {
		return vmath.Zero, false
	}
	if s.Interpolate {
		gx, gy := tr.WorldToGrid(pos)
		if d := s.Field.Sample(gx, gy); !d.IsZero() {
			dir = d
		}
	}
	return localToWorld(tr, dir.Neg()), true
}

// localToWorld rotates and scales a grid-space (x, h, y) direction into world space
func localToWorld(tr grid.Transform, d vmath.Vec3) vmath.Vec3 {
	return tr.GridToWorld(d.X, d.Z, d.Y).Sub(tr.GridToWorld(0, 0, 0)).NormalizeOrZero()
}

// PathSteerer follows a list of waypoints produced by FindPath. It is
// stateful and belongs to a single agent.
type PathSteerer struct {
	Path      []grid.Point
	Transform grid.Transform
	// Reach is the ground distance at which a waypoint counts as passed
	Reach float32
	next  int
}

// NewPathSteerer starts at the first waypoint
func NewPathSteerer(path []grid.Point, tr grid.Transform) *PathSteerer {
	return &PathSteerer{Path: path, Transform: tr, Reach: 0.4}
}

// Steer seeks the current waypoint centre, advancing past waypoints already
// within Reach. It reports false once the last waypoint is reached.
func (s *PathSteerer) Steer(pos vmath.Vec3) (vmath.Vec3, bool) {
	for s.next < len(s.Path) {
		wp := s.Path[s.next]
		target := s.Transform.CellCenter(wp.X, wp.Y, 0)
		if pos.HorizontalDistance(target) > s.Reach {
			d := target.Sub(pos)
			d.Y = 0
			return d.NormalizeOrZero(), true
		}
		s.next++
	}
	return vmath.Zero, false
}

// Done reports whether every waypoint has been passed
func (s *PathSteerer) Done() bool { return s.next >= len(s.Path) }
