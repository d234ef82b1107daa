// Package orders turns world-space move commands into flow fields or paths
// and attaches them to agents.
package orders

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/1siamBot/rts-flowfield/engine/grid"
	"github.com/1siamBot/rts-flowfield/engine/maplib"
	"github.com/1siamBot/rts-flowfield/engine/pathfind"
	"github.com/1siamBot/rts-flowfield/engine/systems"
	"github.com/1siamBot/rts-flowfield/engine/vmath"
)

var (
	// ErrInvalidTarget is returned when a goal does not land on the terrain
	ErrInvalidTarget = errors.New("orders: invalid target")
	// ErrNoPath is returned when the path search cannot reach the goal
	ErrNoPath = errors.New("orders: no path")
)

// Move is one command: a group of agents heading for a world position
type Move struct {
	Goal   vmath.Vec3
	Agents []*systems.Agent
}

// Dispatcher issues orders over one terrain. The terrain must not be edited
// while an Issue call is running.
type Dispatcher struct {
	Terrain *maplib.Terrain
	Builder pathfind.Builder
	// Interpolate makes flow steerers sample the field bilinearly
	Interpolate bool
}

// Resolve maps a world position to the terrain cell under it
func (d *Dispatcher) Resolve(world vmath.Vec3) (grid.Point, error) {
	x, y := d.Terrain.Transform().CellAt(world)
	if !d.Terrain.ValidPosition(x, y) {
		return grid.Point{}, fmt.Errorf("%w: (%g, %g, %g) is cell (%d, %d): %w",
			ErrInvalidTarget, world.X, world.Y, world.Z, x, y, grid.ErrInvalidIndex)
	}
	return grid.Point{X: x, Y: y}, nil
}

// IssueMove builds one flow field for goal and hands it to every agent,
// replacing their current orders
func (d *Dispatcher) IssueMove(ctx context.Context, goal vmath.Vec3, agents []*systems.Agent) (*pathfind.FlowField, error) {
	order, ff, err := d.flowOrder(ctx, goal)
	if err != nil {
		return nil, err
	}
	attach(order, agents)
	return ff, nil
}

// IssueBatch builds the fields of independent moves concurrently. Orders are
// attached only when every build succeeded.
func (d *Dispatcher) IssueBatch(ctx context.Context, moves []Move) ([]*pathfind.FlowField, error) {
	built := make([]*systems.Order, len(moves))
	fields := make([]*pathfind.FlowField, len(moves))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range moves {
		g.Go(func() error {
			order, ff, err := d.flowOrder(gctx, m.Goal)
			if err != nil {
				return fmt.Errorf("orders: move %d: %w", i, err)
			}
			built[i], fields[i] = order, ff
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, m := range moves {
		attach(built[i], m.Agents)
	}
	return fields, nil
}

// IssuePath sends a single agent along an A* path instead of a flow field
func (d *Dispatcher) IssuePath(goal vmath.Vec3, agent *systems.Agent) ([]grid.Point, error) {
	target, err := d.Resolve(goal)
	if err != nil {
		return nil, err
	}
	tr := d.Terrain.Transform()
	sx, sy := tr.CellAt(agent.Position)

	ng := pathfind.NewNavGrid(d.Terrain)
	path := pathfind.FindPath(ng, grid.Point{X: sx, Y: sy}, target)
	if path == nil {
		return nil, fmt.Errorf("%w: (%d, %d) to (%d, %d)", ErrNoPath, sx, sy, target.X, target.Y)
	}
	path = pathfind.SmoothPath(ng, path)
	agent.Order = &systems.Order{
		Target: target,
		Goal:   d.goal(target),
		Steer:  pathfind.NewPathSteerer(path, tr),
	}
	return path, nil
}

func (d *Dispatcher) flowOrder(ctx context.Context, goal vmath.Vec3) (*systems.Order, *pathfind.FlowField, error) {
	target, err := d.Resolve(goal)
	if err != nil {
		return nil, nil, err
	}
	ff, err := d.Builder.BuildContext(ctx, target, d.Terrain)
	if err != nil {
		return nil, nil, err
	}
	return &systems.Order{
		Target: target,
		Goal:   d.goal(target),
		Steer:  pathfind.FlowSteerer{Field: ff, Interpolate: d.Interpolate},
	}, ff, nil
}

func (d *Dispatcher) goal(target grid.Point) vmath.Vec3 {
	h, _ := maplib.HeightAt(d.Terrain, target.X, target.Y)
	return d.Terrain.Transform().CellCenter(target.X, target.Y, h)
}

func attach(o *systems.Order, agents []*systems.Agent) {
	for _, a := range agents {
		a.Order = o
	}
}
