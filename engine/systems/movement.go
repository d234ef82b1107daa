package systems

import (
	"runtime"

	"github.com/chewxy/math32"
	"golang.org/x/sync/errgroup"

	"github.com/1siamBot/rts-flowfield/engine/grid"
	"github.com/1siamBot/rts-flowfield/engine/maplib"
	"github.com/1siamBot/rts-flowfield/engine/pathfind"
	"github.com/1siamBot/rts-flowfield/engine/vmath"
)

// agents per goroutine below which Update runs inline
const parallelBatch = 64

// NoGuidance decides what an agent does on a tick its steerer gives no direction
type NoGuidance uint8

const (
	// Coast keeps the current velocity
	Coast NoGuidance = iota
	// Halt zeroes the velocity
	Halt
)

// Agent is a unit that can follow orders
type Agent struct {
	ID       uint64
	Position vmath.Vec3
	Velocity vmath.Vec3
	Speed    float32 // world units per second
	Facing   float32 // yaw in the ground plane, radians
	Order    *Order
}

// Order is an agent's current movement goal. Orders built from the same
// move command share one flow field through their Steer.
type Order struct {
	Target grid.Point
	Goal   vmath.Vec3 // world position of the target cell centre
	Steer  pathfind.Steerer
}

// Idle reports whether the agent has no order
func (a *Agent) Idle() bool { return a.Order == nil }

// ArrivalPolicy decides when an order is complete
type ArrivalPolicy interface {
	Arrived(a *Agent, o *Order) bool
}

// ArrivalFunc adapts a function to ArrivalPolicy
type ArrivalFunc func(a *Agent, o *Order) bool

func (f ArrivalFunc) Arrived(a *Agent, o *Order) bool { return f(a, o) }

// WithinRadius arrives when the agent is within the radius of the goal on the ground plane
type WithinRadius float32

func (r WithinRadius) Arrived(a *Agent, o *Order) bool {
	return a.Position.HorizontalDistance(o.Goal) <= float32(r)
}

// MovementSystem advances agents along their orders
type MovementSystem struct {
	// Terrain bounds each step: a step ending outside it is not taken. Optional.
	Terrain *maplib.Terrain
	// Arrival detaches finished orders. Nil never detaches.
	Arrival    ArrivalPolicy
	NoGuidance NoGuidance
	// SnapToGround sets the height of each moved agent to the terrain cell it lands on
	SnapToGround bool
	// Workers bounds the goroutines used by Update; 0 means GOMAXPROCS
	Workers int
}

// Update steps every agent by dt seconds. Agents are independent and may be
// stepped concurrently; each is touched by exactly one goroutine.
func (s *MovementSystem) Update(agents []*Agent, dt float32) {
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || len(agents) <= parallelBatch {
		for _, a := range agents {
			s.Step(a, dt)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < len(agents); start += parallelBatch {
		batch := agents[start:min(start+parallelBatch, len(agents))]
		g.Go(func() error {
			for _, a := range batch {
				s.Step(a, dt)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Step advances one agent by dt seconds
func (s *MovementSystem) Step(a *Agent, dt float32) {
	o := a.Order
	if o == nil {
		return
	}

	if dir, ok := o.Steer.Steer(a.Position); ok {
		a.Velocity = dir.Scale(a.Speed)
	} else if s.NoGuidance == Halt {
		a.Velocity = vmath.Zero
	}

	if !a.Velocity.IsZero() {
		if next, ok := s.land(a.Position.Add(a.Velocity.Scale(dt))); ok {
			a.Position = next
		}
		if a.Velocity.X != 0 || a.Velocity.Z != 0 {
			a.Facing = math32.Atan2(a.Velocity.Z, a.Velocity.X)
		}
	}

	if s.Arrival != nil && s.Arrival.Arrived(a, o) {
		a.Order = nil
		a.Velocity = vmath.Zero
	}
}

// land validates a step target against the terrain and applies ground snapping
func (s *MovementSystem) land(next vmath.Vec3) (vmath.Vec3, bool) {
	if s.Terrain == nil {
		return next, true
	}
	tr := s.Terrain.Transform()
	x, y := tr.CellAt(next)
	cell, ok := s.Terrain.Tile(x, y)
	if !ok {
		return next, false
	}
	if s.SnapToGround {
		next.Y = tr.GridToWorld(0, 0, cell.Height).Y
	}
	return next, true
}
