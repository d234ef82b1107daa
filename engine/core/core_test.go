package core

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/rts-flowfield/engine/grid"
	"github.com/1siamBot/rts-flowfield/engine/maplib"
	"github.com/1siamBot/rts-flowfield/engine/orders"
	"github.com/1siamBot/rts-flowfield/engine/pathfind"
	"github.com/1siamBot/rts-flowfield/engine/systems"
	"github.com/1siamBot/rts-flowfield/engine/vmath"
)

func newWorld(size int) *World {
	mv := &systems.MovementSystem{Arrival: systems.WithinRadius(0.25)}
	return NewWorld(maplib.NewFlat(size, grid.Identity()), mv, pathfind.Builder{})
}

func TestEventBusDispatchesInOrder(t *testing.T) {
	eb := NewEventBus()
	var got []uint64
	eb.On(EvtAgentArrived, func(e Event) { got = append(got, e.Tick) })
	eb.Emit(Event{Type: EvtAgentArrived, Tick: 1})
	eb.Emit(Event{Type: EvtAgentSpawned, Tick: 2})
	eb.Emit(Event{Type: EvtAgentArrived, Tick: 3})
	assert.Equal(t, 3, eb.Pending())

	eb.Dispatch()
	assert.Equal(t, []uint64{1, 3}, got)
	assert.Zero(t, eb.Pending())
}

func TestEventBusHandlesEventsEmittedByHandlers(t *testing.T) {
	eb := NewEventBus()
	var order []EventType
	eb.On(EvtAgentSpawned, func(e Event) {
		order = append(order, e.Type)
		eb.Emit(Event{Type: EvtMoveOrdered})
	})
	eb.On(EvtMoveOrdered, func(e Event) { order = append(order, e.Type) })

	eb.Emit(Event{Type: EvtAgentSpawned})
	eb.Dispatch()
	assert.Equal(t, []EventType{EvtAgentSpawned, EvtMoveOrdered}, order)
	assert.Zero(t, eb.Pending())
	assert.Equal(t, "move-ordered", EvtMoveOrdered.String())
}

func TestAdvanceFixedTimestep(t *testing.T) {
	gl := NewGameLoop(newWorld(2), 4)

	gl.Advance(0.5)
	assert.Zero(t, gl.CurrentTick(), "paused loop does not tick")

	gl.Play()
	alpha := gl.Advance(0.125)
	assert.Zero(t, gl.CurrentTick())
	assert.Equal(t, 0.5, alpha)

	alpha = gl.Advance(0.125)
	assert.Equal(t, uint64(1), gl.CurrentTick())
	assert.Zero(t, alpha)

	// long frames are capped to one tick's worth here
	gl.Advance(10)
	assert.Equal(t, uint64(2), gl.CurrentTick())

	gl.Toggle()
	assert.Equal(t, StatePaused, gl.State)
	gl.Advance(0.25)
	assert.Equal(t, uint64(2), gl.CurrentTick())
}

func TestWorldMoveUntilArrival(t *testing.T) {
	w := newWorld(8)
	a := w.Spawn(vmath.V3(0.5, 0, 0.5), 2)
	b := w.Spawn(vmath.V3(7.5, 0, 0.5), 2)

	var spawned, arrived []uint64
	w.Events.On(EvtAgentSpawned, func(e Event) { spawned = append(spawned, e.Payload.(*systems.Agent).ID) })
	w.Events.On(EvtAgentArrived, func(e Event) { arrived = append(arrived, e.Payload.(*systems.Agent).ID) })
	var ordered int
	w.Events.On(EvtMoveOrdered, func(e Event) { ordered = len(e.Payload.(MoveOrdered).Agents) })

	ff, err := w.Move(context.Background(), vmath.V3(6.5, 0, 6.5), nil)
	require.NoError(t, err)
	assert.Equal(t, grid.Point{X: 6, Y: 6}, ff.Target)

	gl := NewGameLoop(w, 30)
	for i := 0; i < 1000 && !w.Idle(); i++ {
		gl.Run(1)
	}
	require.True(t, w.Idle())
	assert.Equal(t, []uint64{a.ID, b.ID}, spawned)
	assert.Equal(t, 2, ordered)
	assert.ElementsMatch(t, []uint64{a.ID, b.ID}, arrived)
	for _, ag := range w.Agents {
		assert.InDelta(t, 6.5, ag.Position.X, 0.35)
		assert.InDelta(t, 6.5, ag.Position.Z, 0.35)
	}
}

func TestWorldMoveInvalidGoal(t *testing.T) {
	w := newWorld(4)
	w.Spawn(vmath.V3(0.5, 0, 0.5), 1)
	_, err := w.Move(context.Background(), vmath.V3(9, 0, 9), nil)
	assert.Error(t, err)
	assert.True(t, w.Idle())
}

func TestWorldMovePathFollowsAStar(t *testing.T) {
	w := newWorld(8)
	a := w.Spawn(vmath.V3(0.5, 0, 0.5), 2)
	idle := w.Spawn(vmath.V3(7.5, 0, 7.5), 2)

	var ordered PathOrdered
	w.Events.On(EvtPathOrdered, func(e Event) { ordered = e.Payload.(PathOrdered) })
	var arrived []uint64
	w.Events.On(EvtAgentArrived, func(e Event) { arrived = append(arrived, e.Payload.(*systems.Agent).ID) })

	path, err := w.MovePath(vmath.V3(5.5, 0, 3.5), a)
	require.NoError(t, err)
	require.NotEmpty(t, path)
	assert.Equal(t, grid.Point{}, path[0])
	assert.Equal(t, grid.Point{X: 5, Y: 3}, path[len(path)-1])
	assert.True(t, idle.Idle(), "only the given agent is ordered")

	gl := NewGameLoop(w, 30)
	for i := 0; i < 1000 && !w.Idle(); i++ {
		gl.Run(1)
	}
	require.True(t, w.Idle())
	assert.Same(t, a, ordered.Agent)
	assert.Equal(t, path, ordered.Path)
	assert.Equal(t, []uint64{a.ID}, arrived)
	assert.InDelta(t, 5.5, a.Position.X, 0.35)
	assert.InDelta(t, 3.5, a.Position.Z, 0.35)
	assert.Equal(t, "path-ordered", EvtPathOrdered.String())
}

func TestWorldMovePathBlocked(t *testing.T) {
	w := newWorld(4)
	ter := w.Terrain()
	for y := 0; y < 4; y++ {
		ter.TileMut(2, y).Kind = maplib.KindRampRight
	}
	maplib.RaiseRect(ter, 2, 0, 2, 3, 5)
	a := w.Spawn(vmath.V3(0.5, 0, 0.5), 1)

	var fired bool
	w.Events.On(EvtPathOrdered, func(Event) { fired = true })
	_, err := w.MovePath(vmath.V3(3.5, 0, 0.5), a)
	assert.ErrorIs(t, err, orders.ErrNoPath)
	w.Tick(1.0 / 30)
	assert.False(t, fired)
	assert.True(t, a.Idle())
}

func TestReplaceTerrain(t *testing.T) {
	w := newWorld(8)
	far := w.Spawn(vmath.V3(7.5, 0, 7.5), 1)
	near := w.Spawn(vmath.V3(1.5, 0, 1.5), 1)
	_, err := w.Move(context.Background(), vmath.V3(4.5, 0, 4.5), nil)
	require.NoError(t, err)

	small := maplib.NewFlat(4, grid.Identity())
	small.TileMut(3, 3).Height = 2
	w.ReplaceTerrain(small)

	assert.Same(t, small, w.Terrain())
	assert.Same(t, small, w.Movement.Terrain)
	assert.True(t, w.Idle())
	assert.Equal(t, vmath.V3(3.5, 2, 3.5), far.Position)
	assert.Equal(t, vmath.V3(1.5, 0, 1.5), near.Position)
}

func TestReplayRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.replay")
	rec, err := NewReplayRecorder(path)
	require.NoError(t, err)
	cmds := []Command{
		{Tick: 0, Kind: CmdSpawn, Pos: vmath.V3(0.5, 0, 0.5), Speed: 2},
		{Tick: 0, Kind: CmdSpawn, Pos: vmath.V3(5.5, 0, 0.5), Speed: 2},
		{Tick: 3, Kind: CmdMove, Pos: vmath.V3(3.5, 0, 5.5)},
	}
	for _, c := range cmds {
		require.NoError(t, rec.Record(c))
	}
	require.NoError(t, rec.Close())

	got, err := LoadReplay(path)
	require.NoError(t, err)
	assert.Equal(t, cmds, got.Commands)
	assert.Len(t, got.CommandsForTick(0), 2)
	assert.Empty(t, got.CommandsForTick(1))
	assert.Equal(t, uint64(3), got.LastTick())
}

func TestLoadReplayTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cut.replay")
	var buf bytes.Buffer
	c := Command{Tick: 7, Kind: CmdMove}
	require.NoError(t, c.Encode(&buf))
	require.NoError(t, c.Encode(&buf))
	require.NoError(t, os.WriteFile(path, buf.Bytes()[:buf.Len()-3], 0o644))

	_, err := LoadReplay(path)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

// replaying the same commands reproduces the same run
func TestReplayIsDeterministic(t *testing.T) {
	cmds := []Command{
		{Tick: 0, Kind: CmdSpawn, Pos: vmath.V3(0.5, 0, 0.5), Speed: 2},
		{Tick: 2, Kind: CmdSpawn, Pos: vmath.V3(7.5, 0, 7.5), Speed: 3},
		{Tick: 5, Kind: CmdMove, Pos: vmath.V3(4.5, 0, 1.5)},
	}
	play := func() []vmath.Vec3 {
		w := NewWorld(maplib.Generate(8, grid.Identity(), 4, 3), nil, pathfind.Builder{})
		r := &Replay{Commands: cmds}
		for w.TickCount < 40 {
			for _, c := range r.CommandsForTick(w.TickCount) {
				require.NoError(t, w.Apply(context.Background(), c))
			}
			w.Tick(1.0 / 30)
		}
		var out []vmath.Vec3
		for _, a := range w.Agents {
			out = append(out, a.Position)
		}
		return out
	}
	first := play()
	require.Len(t, first, 2)
	assert.NotEqual(t, vmath.V3(0.5, 0, 0.5), first[0], "agent moved")
	assert.Equal(t, first, play())

	w := newWorld(2)
	assert.Error(t, w.Apply(context.Background(), Command{Kind: 9}))
}
