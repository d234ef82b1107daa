package core

import "time"

// LoopState is whether the loop advances the world
type LoopState uint8

const (
	StatePaused LoopState = iota
	StatePlaying
)

// maxFrameTime caps one frame's contribution to the accumulator
const maxFrameTime = 0.25

// GameLoop runs the world at a fixed timestep regardless of frame rate
type GameLoop struct {
	World       *World
	State       LoopState
	TickRate    float64 // fixed ticks per second
	accumulator float64
	lastTime    time.Time
}

// NewGameLoop creates a paused loop over w
func NewGameLoop(w *World, tickRate float64) *GameLoop {
	return &GameLoop{
		World:    w,
		TickRate: tickRate,
		lastTime: time.Now(),
	}
}

// Update should be called every render frame. It measures the wall time
// since the last call and advances by it.
// Returns the interpolation alpha for smooth rendering.
func (gl *GameLoop) Update() float64 {
	now := time.Now()
	frameTime := now.Sub(gl.lastTime).Seconds()
	gl.lastTime = now
	return gl.Advance(frameTime)
}

// Advance runs as many fixed ticks as frameTime covers and carries the
// remainder to the next call. Paused loops drain time without ticking.
func (gl *GameLoop) Advance(frameTime float64) float64 {
	// Cap frame time to avoid spiral of death
	frameTime = min(max(frameTime, 0), maxFrameTime)

	dt := 1.0 / gl.TickRate
	gl.accumulator += frameTime

	for gl.accumulator >= dt {
		if gl.State == StatePlaying {
			gl.World.Tick(dt)
		}
		gl.accumulator -= dt
	}

	return gl.accumulator / dt
}

// Run ticks the world n times back to back, ignoring wall time
func (gl *GameLoop) Run(n int) {
	dt := 1.0 / gl.TickRate
	for range n {
		gl.World.Tick(dt)
	}
}

// Play starts or resumes the loop
func (gl *GameLoop) Play() {
	gl.State = StatePlaying
	gl.lastTime = time.Now()
}

// Pause stops ticking until Play
func (gl *GameLoop) Pause() {
	gl.State = StatePaused
}

// Toggle flips between playing and paused
func (gl *GameLoop) Toggle() {
	if gl.State == StatePlaying {
		gl.Pause()
		return
	}
	gl.Play()
}

// CurrentTick returns the current simulation tick
func (gl *GameLoop) CurrentTick() uint64 {
	return gl.World.TickCount
}
