// Command flowview shows a flow field over terrain and lets agents follow it.
//
// Left click spawns an agent, right click orders every agent to the cursor.
// P sends the newest agent to the cursor along an A* path instead.
// Space pauses, F toggles arrows, H toggles the distance heatmap. When the
// terrain comes from a file, saving the file reloads it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/multierr"

	"github.com/1siamBot/rts-flowfield/engine/config"
	"github.com/1siamBot/rts-flowfield/engine/core"
	"github.com/1siamBot/rts-flowfield/engine/grid"
	"github.com/1siamBot/rts-flowfield/engine/input"
	"github.com/1siamBot/rts-flowfield/engine/maplib"
	"github.com/1siamBot/rts-flowfield/engine/pathfind"
	"github.com/1siamBot/rts-flowfield/engine/render"
	"github.com/1siamBot/rts-flowfield/engine/vmath"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720
)

// Viewer implements ebiten.Game
type Viewer struct {
	cfg     config.Config
	world   *core.World
	loop    *core.GameLoop
	cam     *render.Camera
	input   *input.InputState
	watcher *maplib.Watcher
	replay  *core.Replay
	name    string

	field      *pathfind.FlowField
	path       []grid.Point
	terrainImg *ebiten.Image
	heatImg    *ebiten.Image

	showArrows bool
	showHeat   bool
	status     string
}

func NewViewer(cfg config.Config) (*Viewer, error) {
	ter, name, err := cfg.LoadTerrain()
	if err != nil {
		return nil, err
	}
	world := core.NewWorld(ter, cfg.MovementSystem(), cfg.Builder())
	world.Dispatcher.Interpolate = cfg.Movement.Interpolate

	v := &Viewer{
		cfg:        cfg,
		world:      world,
		loop:       core.NewGameLoop(world, cfg.Sim.TickRate),
		cam:        render.NewCamera(ScreenWidth, ScreenHeight),
		input:      input.NewInputState(),
		name:       name,
		showArrows: true,
	}
	v.cam.Fit(ter.Transform(), ter.Size())
	v.terrainImg = ebiten.NewImageFromImage(render.TerrainImage(ter))

	world.Events.On(core.EvtAgentArrived, func(e core.Event) {
		v.status = fmt.Sprintf("tick %d: an agent arrived", e.Tick)
	})
	world.Events.On(core.EvtTerrainReplaced, func(e core.Event) {
		v.status = fmt.Sprintf("tick %d: terrain %q reloaded, orders cleared", e.Tick, v.name)
	})

	if cfg.Terrain.Path != "" {
		if v.watcher, err = maplib.Watch(cfg.Terrain.Path, maplib.DefaultSettle); err != nil {
			log.Printf("Not watching %s: %v", cfg.Terrain.Path, err)
		}
	}
	v.loop.Play()
	return v, nil
}

func (v *Viewer) Update() error {
	v.input.Update()
	v.input.DriveCamera(v.cam, 1.0/float64(ebiten.TPS()))
	v.pollReload()

	switch {
	case v.input.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case v.input.IsKeyJustPressed(ebiten.KeySpace):
		v.loop.Toggle()
	case v.input.IsKeyJustPressed(ebiten.KeyF):
		v.showArrows = !v.showArrows
	case v.input.IsKeyJustPressed(ebiten.KeyH):
		v.showHeat = !v.showHeat
	}

	cursor := v.input.Cursor(v.cam)
	if v.input.IsKeyJustPressed(ebiten.KeyP) {
		v.route(cursor)
	}
	if v.input.LeftJustPressed {
		v.spawn(cursor)
	}
	if v.input.RightJustPressed {
		v.order(cursor)
	}

	v.loop.Update()
	return nil
}

func (v *Viewer) spawn(at vmath.Vec3) {
	ter := v.world.Terrain()
	x, y := ter.Transform().CellAt(at)
	h, ok := maplib.HeightAt(ter, x, y)
	if !ok {
		return
	}
	at.Y = ter.Transform().GridToWorld(0, 0, h).Y
	v.record(core.Command{Tick: v.world.TickCount, Kind: core.CmdSpawn, Pos: at, Speed: v.cfg.Movement.Speed})
	v.world.Spawn(at, v.cfg.Movement.Speed)
}

func (v *Viewer) order(goal vmath.Vec3) {
	ff, err := v.world.Move(context.Background(), goal, nil)
	if err != nil {
		v.status = err.Error()
		return
	}
	v.record(core.Command{Tick: v.world.TickCount, Kind: core.CmdMove, Pos: goal})
	v.field = ff
	v.heatImg = ebiten.NewImageFromImage(render.DistanceImage(ff))
	v.status = fmt.Sprintf("moving %d agents to cell (%d, %d)", len(v.world.Agents), ff.Target.X, ff.Target.Y)
}

func (v *Viewer) route(goal vmath.Vec3) {
	if len(v.world.Agents) == 0 {
		v.status = "spawn an agent first"
		return
	}
	a := v.world.Agents[len(v.world.Agents)-1]
	path, err := v.world.MovePath(goal, a)
	if err != nil {
		v.status = err.Error()
		return
	}
	v.path = path
	end := path[len(path)-1]
	v.status = fmt.Sprintf("agent %d takes %d waypoints to cell (%d, %d)", a.ID, len(path), end.X, end.Y)
}

func (v *Viewer) record(cmd core.Command) {
	if v.replay == nil {
		return
	}
	if err := v.replay.Record(cmd); err != nil {
		log.Printf("Recording stopped: %v", multierr.Append(err, v.replay.Close()))
		v.replay = nil
	}
}

func (v *Viewer) pollReload() {
	if v.watcher == nil {
		return
	}
	select {
	case r, ok := <-v.watcher.Reloads:
		if !ok {
			v.watcher = nil
			return
		}
		if r.Err != nil {
			log.Printf("Reload failed: %v", r.Err)
			v.status = "reload failed: " + r.Err.Error()
			return
		}
		v.name = r.Name
		v.world.ReplaceTerrain(r.Terrain)
		v.field, v.heatImg, v.path = nil, nil, nil
		v.terrainImg = ebiten.NewImageFromImage(render.TerrainImage(r.Terrain))
	default:
	}
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(render.ColorBackground)
	ter := v.world.Terrain()
	drawCells(screen, v.terrainImg, ter.Transform(), v.cam, 1)
	if v.field != nil {
		if v.showHeat {
			drawCells(screen, v.heatImg, ter.Transform(), v.cam, 0.6)
		}
		if v.showArrows {
			drawArrows(screen, v.field, v.cam)
		}
		drawTarget(screen, v.field, v.cam)
	}
	drawPath(screen, v.path, ter.Transform(), v.cam)
	drawAgents(screen, v.world.Agents, v.cam)

	state := "playing"
	if v.loop.State == core.StatePaused {
		state = "paused"
	}
	info := fmt.Sprintf("%s  tick %d  %s  agents %d  TPS %.0f\n%s",
		v.name, v.loop.CurrentTick(), state, len(v.world.Agents), ebiten.ActualTPS(), v.status)
	ebitenutil.DebugPrintAt(screen, info, 10, 8)
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.cam.ScreenW, v.cam.ScreenH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Close stops watching and recording and optionally writes the terrain back out
func (v *Viewer) Close(savePath string) error {
	var err error
	if v.watcher != nil {
		err = multierr.Append(err, v.watcher.Close())
	}
	if v.replay != nil {
		err = multierr.Append(err, v.replay.Close())
	}
	if savePath != "" {
		err = multierr.Append(err, maplib.Save(savePath, v.name, v.world.Terrain()))
	}
	return err
}

func main() {
	configPath := flag.String("config", "", "YAML settings file (defaults when empty)")
	savePath := flag.String("save", "", "write the terrain to this map file on exit")
	recordPath := flag.String("record", "", "record spawns and moves to this replay file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal(err)
		}
	}

	viewer, err := NewViewer(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if *recordPath != "" {
		if viewer.replay, err = core.NewReplayRecorder(*recordPath); err != nil {
			log.Fatal(err)
		}
	}

	ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	ebiten.SetWindowTitle("Flow Field Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(true)

	runErr := ebiten.RunGame(viewer)
	if errors.Is(runErr, ebiten.Termination) {
		runErr = nil
	}
	if err := multierr.Append(runErr, viewer.Close(*savePath)); err != nil {
		log.Fatal(err)
	}
}
