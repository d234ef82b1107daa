package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/1siamBot/rts-flowfield/engine/grid"
	"github.com/1siamBot/rts-flowfield/engine/maplib"
	"github.com/1siamBot/rts-flowfield/engine/systems"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, `
terrain:
  size: 64
pathfind:
  edge_cost: cliff
movement:
  speed: 2.5
  no_guidance: halt
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Terrain.Size)
	assert.Equal(t, int64(1), cfg.Terrain.Seed, "default kept")
	assert.Equal(t, float32(2.5), cfg.Movement.Speed)
	assert.Equal(t, float32(0.25), cfg.Movement.ArrivalRadius, "default kept")

	ng, err := cfg.NoGuidance()
	require.NoError(t, err)
	assert.Equal(t, systems.Halt, ng)

	sys := cfg.MovementSystem()
	assert.Equal(t, systems.Halt, sys.NoGuidance)
	assert.Equal(t, systems.WithinRadius(0.25), sys.Arrival)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Terrain.Size = 0
	cfg.Pathfind.EdgeCost = "teleport"
	cfg.Movement.Speed = -1
	cfg.Movement.NoGuidance = "drift"
	cfg.Sim.TickRate = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 5)
	assert.Contains(t, err.Error(), "terrain.size")
	assert.Contains(t, err.Error(), "teleport")
	assert.Contains(t, err.Error(), "drift")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "terrain: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "movement:\n  speed: 0\n"))
	assert.ErrorContains(t, err, "movement.speed")
}

func TestTerrainPathSkipsSizeCheck(t *testing.T) {
	cfg := Default()
	cfg.Terrain.Size = 0
	cfg.Terrain.Path = "map.json"
	assert.NoError(t, cfg.Validate())
}

func TestLoadTerrain(t *testing.T) {
	cfg := Default()
	cfg.Terrain.Size = 16
	cfg.Terrain.CellSize = 2
	ter, name, err := cfg.LoadTerrain()
	require.NoError(t, err)
	assert.Equal(t, "generated", name)
	assert.Equal(t, 16, ter.Size())
	assert.Equal(t, float32(2), ter.Transform().Scale.X)

	path := filepath.Join(t.TempDir(), "valley.json")
	require.NoError(t, maplib.Save(path, "valley", maplib.NewFlat(4, grid.Identity())))
	cfg.Terrain.Path = path
	ter, name, err = cfg.LoadTerrain()
	require.NoError(t, err)
	assert.Equal(t, "valley", name)
	assert.Equal(t, 4, ter.Size())

	cfg.Pathfind.EdgeCost = "cliff"
	assert.NotNil(t, cfg.Builder().EdgeCost)
}
