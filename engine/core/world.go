package core

import (
	"context"

	"github.com/1siamBot/rts-flowfield/engine/grid"
	"github.com/1siamBot/rts-flowfield/engine/maplib"
	"github.com/1siamBot/rts-flowfield/engine/orders"
	"github.com/1siamBot/rts-flowfield/engine/pathfind"
	"github.com/1siamBot/rts-flowfield/engine/systems"
	"github.com/1siamBot/rts-flowfield/engine/vmath"
)

// MoveOrdered is the payload of EvtMoveOrdered
type MoveOrdered struct {
	Field  *pathfind.FlowField
	Agents []*systems.Agent
}

// PathOrdered is the payload of EvtPathOrdered
type PathOrdered struct {
	Agent *systems.Agent
	Path  []grid.Point
}

// World holds the agents and the terrain they move over
type World struct {
	Agents     []*systems.Agent
	Movement   *systems.MovementSystem
	Dispatcher *orders.Dispatcher
	Events     *EventBus
	TickCount  uint64

	nextID uint64
	// scratch for arrival detection
	ordered []bool
}

// NewWorld wires movement and dispatch to the same terrain
func NewWorld(terrain *maplib.Terrain, movement *systems.MovementSystem, builder pathfind.Builder) *World {
	if movement == nil {
		movement = &systems.MovementSystem{}
	}
	movement.Terrain = terrain
	return &World{
		Movement:   movement,
		Dispatcher: &orders.Dispatcher{Terrain: terrain, Builder: builder},
		Events:     NewEventBus(),
	}
}

// Terrain returns the terrain agents currently move over
func (w *World) Terrain() *maplib.Terrain {
	return w.Dispatcher.Terrain
}

// Spawn adds an idle agent at pos
func (w *World) Spawn(pos vmath.Vec3, speed float32) *systems.Agent {
	w.nextID++
	a := &systems.Agent{ID: w.nextID, Position: pos, Speed: speed}
	w.Agents = append(w.Agents, a)
	w.emit(EvtAgentSpawned, a)
	return a
}

// Move orders agents to goal; every agent when agents is nil
func (w *World) Move(ctx context.Context, goal vmath.Vec3, agents []*systems.Agent) (*pathfind.FlowField, error) {
	if agents == nil {
		agents = w.Agents
	}
	ff, err := w.Dispatcher.IssueMove(ctx, goal, agents)
	if err != nil {
		return nil, err
	}
	w.emit(EvtMoveOrdered, MoveOrdered{Field: ff, Agents: agents})
	return ff, nil
}

// MovePath sends one agent to goal along a smoothed A* path. The returned
// cells start at the agent's cell and end at the goal cell.
func (w *World) MovePath(goal vmath.Vec3, agent *systems.Agent) ([]grid.Point, error) {
	path, err := w.Dispatcher.IssuePath(goal, agent)
	if err != nil {
		return nil, err
	}
	w.emit(EvtPathOrdered, PathOrdered{Agent: agent, Path: path})
	return path, nil
}

// ReplaceTerrain swaps the terrain. Orders built on the old one are dropped,
// and agents that no longer stand on the terrain are clamped back onto it.
func (w *World) ReplaceTerrain(terrain *maplib.Terrain) {
	w.Dispatcher.Terrain = terrain
	w.Movement.Terrain = terrain
	tr := terrain.Transform()
	for _, a := range w.Agents {
		a.Order = nil
		a.Velocity = vmath.Zero
		x, y := tr.CellAt(a.Position)
		if !terrain.ValidPosition(x, y) {
			x = min(max(x, 0), terrain.Size()-1)
			y = min(max(y, 0), terrain.Size()-1)
			h, _ := maplib.HeightAt(terrain, x, y)
			a.Position = tr.CellCenter(x, y, h)
		}
	}
	w.emit(EvtTerrainReplaced, nil)
}

// Tick advances every agent by dt seconds and dispatches the tick's events
func (w *World) Tick(dt float64) {
	w.ordered = w.ordered[:0]
	for _, a := range w.Agents {
		w.ordered = append(w.ordered, !a.Idle())
	}

	w.Movement.Update(w.Agents, float32(dt))

	for i, a := range w.Agents {
		if w.ordered[i] && a.Idle() {
			w.emit(EvtAgentArrived, a)
		}
	}
	w.TickCount++
	w.Events.Dispatch()
}

// Idle reports whether no agent has an order
func (w *World) Idle() bool {
	for _, a := range w.Agents {
		if !a.Idle() {
			return false
		}
	}
	return true
}

func (w *World) emit(t EventType, payload any) {
	w.Events.Emit(Event{Type: t, Tick: w.TickCount, Payload: payload})
}
