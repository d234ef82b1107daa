// Command flowsim runs a headless flow field simulation: it builds terrain,
// orders a crowd of agents to one goal and ticks until they arrive.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/1siamBot/rts-flowfield/engine/config"
	"github.com/1siamBot/rts-flowfield/engine/core"
	"github.com/1siamBot/rts-flowfield/engine/maplib"
	"github.com/1siamBot/rts-flowfield/engine/render"
	"github.com/1siamBot/rts-flowfield/engine/systems"
	"github.com/1siamBot/rts-flowfield/engine/vmath"
)

func main() {
	configPath := flag.String("config", "", "YAML settings file (defaults when empty)")
	goalFlag := flag.String("goal", "", "world goal as x,z (terrain centre when empty)")
	pngPath := flag.String("png", "", "write the distance heatmap to this PNG")
	savePath := flag.String("save", "", "write the terrain to this map file (.json or .msgpack)")
	scale := flag.Int("png-scale", 4, "pixels per cell in the heatmap")
	replayPath := flag.String("replay", "", "play back a replay recorded by flowview instead of the scripted crowd")
	astar := flag.Bool("astar", false, "send each agent along its own A* path instead of a shared flow field")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := options{
		config: *configPath,
		goal:   *goalFlag,
		png:    *pngPath,
		save:   *savePath,
		scale:  *scale,
		replay: *replayPath,
		astar:  *astar,
	}
	if err := run(ctx, opts); err != nil {
		log.Fatal(err)
	}
}

type options struct {
	config, goal, png, save, replay string
	scale                           int
	astar                           bool
}

func run(ctx context.Context, opts options) error {
	cfg := config.Default()
	if opts.config != "" {
		var err error
		if cfg, err = config.Load(opts.config); err != nil {
			return err
		}
	}

	ter, name, err := cfg.LoadTerrain()
	if err != nil {
		return fmt.Errorf("terrain: %w", err)
	}
	log.Printf("Terrain %q: %dx%d", name, ter.Size(), ter.Size())

	if opts.save != "" {
		if err := maplib.Save(opts.save, name, ter); err != nil {
			return err
		}
		log.Printf("Saved terrain to %s", opts.save)
	}

	world := core.NewWorld(ter, cfg.MovementSystem(), cfg.Builder())
	world.Dispatcher.Interpolate = cfg.Movement.Interpolate

	var arrived int
	world.Events.On(core.EvtAgentArrived, func(e core.Event) {
		arrived++
		a := e.Payload.(*systems.Agent)
		log.Printf("tick %d: agent %d arrived at (%.2f, %.2f)", e.Tick, a.ID, a.Position.X, a.Position.Z)
	})

	gl := core.NewGameLoop(world, cfg.Sim.TickRate)
	if opts.replay != "" {
		return playback(ctx, gl, cfg, opts.replay, &arrived)
	}

	spawnAgents(world, cfg)
	goal, err := parseGoal(opts.goal, ter)
	if err != nil {
		return err
	}
	start := time.Now()
	if opts.astar {
		routed := 0
		for _, a := range world.Agents {
			if _, err := world.MovePath(goal, a); err != nil {
				log.Printf("agent %d: %v", a.ID, err)
				continue
			}
			routed++
		}
		log.Printf("Routed %d/%d agents with A* in %v", routed, len(world.Agents), time.Since(start))
		if opts.png != "" {
			log.Printf("No flow field with -astar, skipping heatmap")
		}
		return tick(ctx, gl, cfg, &arrived)
	}
	ff, err := world.Move(ctx, goal, nil)
	if err != nil {
		return err
	}
	log.Printf("Flow field towards cell (%d, %d) built in %v", ff.Target.X, ff.Target.Y, time.Since(start))

	if opts.png != "" {
		if err := render.WritePNG(opts.png, render.Upscale(render.DistanceImage(ff), opts.scale)); err != nil {
			return err
		}
		log.Printf("Wrote heatmap to %s", opts.png)
	}
	return tick(ctx, gl, cfg, &arrived)
}

// tick runs the loop until every agent is idle or the tick budget is spent
func tick(ctx context.Context, gl *core.GameLoop, cfg config.Config, arrived *int) error {
	start := time.Now()
	for gl.CurrentTick() < uint64(cfg.Sim.Ticks) && !gl.World.Idle() {
		if err := ctx.Err(); err != nil {
			return err
		}
		gl.Run(1)
	}
	log.Printf("%d/%d agents arrived after %d ticks (%v)",
		*arrived, len(gl.World.Agents), gl.CurrentTick(), time.Since(start))
	return nil
}

// playback applies each recorded command on its tick and runs until every
// command is applied and the agents have settled
func playback(ctx context.Context, gl *core.GameLoop, cfg config.Config, path string, arrived *int) error {
	replay, err := core.LoadReplay(path)
	if err != nil {
		return err
	}
	world := gl.World
	last := replay.LastTick()
	log.Printf("Replaying %d commands from %s", len(replay.Commands), path)

	start := time.Now()
	for gl.CurrentTick() < uint64(cfg.Sim.Ticks) {
		if err := ctx.Err(); err != nil {
			return err
		}
		tick := gl.CurrentTick()
		for _, cmd := range replay.CommandsForTick(tick) {
			if err := world.Apply(ctx, cmd); err != nil {
				log.Printf("tick %d: %v", tick, err)
			}
		}
		if tick > last && world.Idle() {
			break
		}
		gl.Run(1)
	}
	log.Printf("%d/%d agents arrived after %d ticks (%v)",
		*arrived, len(world.Agents), gl.CurrentTick(), time.Since(start))
	return nil
}

// spawnAgents scatters agents over the terrain, the same way for the same seed
func spawnAgents(w *core.World, cfg config.Config) {
	ter := w.Terrain()
	rng := rand.New(rand.NewPCG(uint64(cfg.Terrain.Seed), uint64(cfg.Sim.Agents)))
	for range cfg.Sim.Agents {
		x, y := rng.IntN(ter.Size()), rng.IntN(ter.Size())
		h, _ := maplib.HeightAt(ter, x, y)
		w.Spawn(ter.Transform().CellCenter(x, y, h), cfg.Movement.Speed)
	}
}

func parseGoal(s string, ter *maplib.Terrain) (vmath.Vec3, error) {
	if s == "" {
		c := ter.Size() / 2
		return ter.Transform().CellCenter(c, c, 0), nil
	}
	xs, zs, ok := strings.Cut(s, ",")
	if !ok {
		return vmath.Zero, fmt.Errorf("goal %q: want x,z", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 32)
	if err != nil {
		return vmath.Zero, fmt.Errorf("goal %q: %w", s, err)
	}
	z, err := strconv.ParseFloat(strings.TrimSpace(zs), 32)
	if err != nil {
		return vmath.Zero, fmt.Errorf("goal %q: %w", s, err)
	}
	return vmath.V3(float32(x), 0, float32(z)), nil
}
