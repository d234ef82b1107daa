// Package config loads simulation and viewer settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/1siamBot/rts-flowfield/engine/grid"
	"github.com/1siamBot/rts-flowfield/engine/maplib"
	"github.com/1siamBot/rts-flowfield/engine/pathfind"
	"github.com/1siamBot/rts-flowfield/engine/systems"
	"github.com/1siamBot/rts-flowfield/engine/vmath"
)

// Config is the full settings file
type Config struct {
	Terrain  TerrainConfig  `yaml:"terrain"`
	Pathfind PathfindConfig `yaml:"pathfind"`
	Movement MovementConfig `yaml:"movement"`
	Sim      SimConfig      `yaml:"sim"`
}

// TerrainConfig picks the terrain: loaded from Path when set, else generated
type TerrainConfig struct {
	Path      string  `yaml:"path"`
	Size      int     `yaml:"size"`
	Seed      int64   `yaml:"seed"`
	Amplitude float32 `yaml:"amplitude"`
	CellSize  float32 `yaml:"cell_size"`
}

type PathfindConfig struct {
	// EdgeCost is "terrain" or "cliff"
	EdgeCost string `yaml:"edge_cost"`
}

type MovementConfig struct {
	Speed         float32 `yaml:"speed"`
	ArrivalRadius float32 `yaml:"arrival_radius"`
	// NoGuidance is "coast" or "halt"
	NoGuidance   string `yaml:"no_guidance"`
	Interpolate  bool   `yaml:"interpolate"`
	SnapToGround bool   `yaml:"snap_to_ground"`
	Workers      int    `yaml:"workers"`
}

type SimConfig struct {
	TickRate float64 `yaml:"tick_rate"`
	Ticks    int     `yaml:"ticks"`
	Agents   int     `yaml:"agents"`
}

// Default returns the settings used when no file overrides them
func Default() Config {
	return Config{
		Terrain: TerrainConfig{
			Size:      128,
			Seed:      1,
			Amplitude: 6,
			CellSize:  1,
		},
		Pathfind: PathfindConfig{EdgeCost: "terrain"},
		Movement: MovementConfig{
			Speed:         4,
			ArrivalRadius: 0.25,
			NoGuidance:    "coast",
			SnapToGround:  true,
		},
		Sim: SimConfig{
			TickRate: 30,
			Ticks:    600,
			Agents:   64,
		},
	}
}

// Load reads path over the defaults and validates the result
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once
func (c Config) Validate() error {
	var err error
	if c.Terrain.Path == "" && c.Terrain.Size <= 0 {
		err = multierr.Append(err, fmt.Errorf("terrain.size must be positive, got %d", c.Terrain.Size))
	}
	if c.Terrain.CellSize <= 0 {
		err = multierr.Append(err, fmt.Errorf("terrain.cell_size must be positive, got %g", c.Terrain.CellSize))
	}
	if c.Terrain.Amplitude < 0 {
		err = multierr.Append(err, fmt.Errorf("terrain.amplitude must not be negative, got %g", c.Terrain.Amplitude))
	}
	if _, e := c.EdgeCost(); e != nil {
		err = multierr.Append(err, e)
	}
	if c.Movement.Speed <= 0 {
		err = multierr.Append(err, fmt.Errorf("movement.speed must be positive, got %g", c.Movement.Speed))
	}
	if c.Movement.ArrivalRadius < 0 {
		err = multierr.Append(err, fmt.Errorf("movement.arrival_radius must not be negative, got %g", c.Movement.ArrivalRadius))
	}
	if _, e := c.NoGuidance(); e != nil {
		err = multierr.Append(err, e)
	}
	if c.Movement.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("movement.workers must not be negative, got %d", c.Movement.Workers))
	}
	if c.Sim.TickRate <= 0 {
		err = multierr.Append(err, fmt.Errorf("sim.tick_rate must be positive, got %g", c.Sim.TickRate))
	}
	if c.Sim.Ticks < 0 || c.Sim.Agents < 0 {
		err = multierr.Append(err, errors.New("sim.ticks and sim.agents must not be negative"))
	}
	return err
}

// EdgeCost resolves pathfind.edge_cost
func (c Config) EdgeCost() (pathfind.EdgeCostFunc, error) {
	switch c.Pathfind.EdgeCost {
	case "", "terrain":
		return pathfind.TerrainCost, nil
	case "cliff":
		return pathfind.CliffCost, nil
	}
	return nil, fmt.Errorf("pathfind.edge_cost %q is not terrain or cliff", c.Pathfind.EdgeCost)
}

// NoGuidance resolves movement.no_guidance
func (c Config) NoGuidance() (systems.NoGuidance, error) {
	switch c.Movement.NoGuidance {
	case "", "coast":
		return systems.Coast, nil
	case "halt":
		return systems.Halt, nil
	}
	return systems.Coast, fmt.Errorf("movement.no_guidance %q is not coast or halt", c.Movement.NoGuidance)
}

// MovementSystem builds the movement system these settings describe
func (c Config) MovementSystem() *systems.MovementSystem {
	ng, _ := c.NoGuidance()
	return &systems.MovementSystem{
		Arrival:      systems.WithinRadius(c.Movement.ArrivalRadius),
		NoGuidance:   ng,
		SnapToGround: c.Movement.SnapToGround,
		Workers:      c.Movement.Workers,
	}
}

// Builder returns the flow field builder for pathfind.edge_cost
func (c Config) Builder() pathfind.Builder {
	cost, _ := c.EdgeCost()
	return pathfind.Builder{EdgeCost: cost}
}

// Transform places generated terrain at the origin with cell_size spacing
func (c Config) Transform() grid.Transform {
	s := c.Terrain.CellSize
	return grid.Transform{Scale: vmath.V3(s, 1, s)}
}

// LoadTerrain reads terrain.path when set and generates a heightmap otherwise.
// The returned name is the map name from the file, or "generated".
func (c Config) LoadTerrain() (*maplib.Terrain, string, error) {
	if c.Terrain.Path != "" {
		return maplib.Load(c.Terrain.Path)
	}
	t := c.Terrain
	return maplib.Generate(t.Size, c.Transform(), t.Seed, t.Amplitude), "generated", nil
}
