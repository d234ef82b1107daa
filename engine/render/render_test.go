package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/rts-flowfield/engine/grid"
	"github.com/1siamBot/rts-flowfield/engine/maplib"
	"github.com/1siamBot/rts-flowfield/engine/pathfind"
	"github.com/1siamBot/rts-flowfield/engine/vmath"
)

func TestCameraRoundTrip(t *testing.T) {
	cam := NewCamera(800, 600)
	cam.CenterOn(vmath.V3(10, 3, 20))
	cam.SetZoom(2)

	sx, sy := cam.WorldToScreen(vmath.V3(10, 0, 20))
	assert.Equal(t, float32(400), sx)
	assert.Equal(t, float32(300), sy)

	sx, sy = cam.WorldToScreen(vmath.V3(11, 0, 20))
	assert.Equal(t, float32(416), sx)
	assert.Equal(t, float32(300), sy)

	w := cam.ScreenToWorld(416, 316)
	assert.InDelta(t, 11, w.X, 1e-5)
	assert.InDelta(t, 21, w.Z, 1e-5)
}

func TestCameraZoomAtKeepsPointFixed(t *testing.T) {
	cam := NewCamera(640, 480)
	before := cam.ScreenToWorld(100, 50)
	cam.ZoomAt(2, 100, 50)
	after := cam.ScreenToWorld(100, 50)
	assert.InDelta(t, before.X, after.X, 1e-4)
	assert.InDelta(t, before.Z, after.Z, 1e-4)
	assert.Equal(t, 2.0, cam.Zoom)

	cam.SetZoom(100)
	assert.Equal(t, cam.MaxZoom, cam.Zoom)
}

func TestVisibleCellRange(t *testing.T) {
	cam := NewCamera(80, 80)
	cam.CellPixels = 10
	cam.CenterOn(vmath.V3(4, 0, 4))

	minX, minY, maxX, maxY, ok := cam.VisibleCellRange(grid.Identity(), 64)
	require.True(t, ok)
	assert.Equal(t, [4]int{0, 0, 9, 9}, [4]int{minX, minY, maxX, maxY})

	cam.CenterOn(vmath.V3(-100, 0, -100))
	_, _, _, _, ok = cam.VisibleCellRange(grid.Identity(), 64)
	assert.False(t, ok)
}

func TestCameraFit(t *testing.T) {
	cam := NewCamera(400, 300)
	cam.Fit(grid.Identity(), 30)
	assert.InDelta(t, 15, cam.X, 1e-4)
	assert.InDelta(t, 15, cam.Z, 1e-4)
	assert.InDelta(t, 300.0/30/cam.CellPixels, cam.Zoom, 1e-4)
}

func TestLerpAndDistanceColor(t *testing.T) {
	assert.Equal(t, ColorLow, Lerp(ColorLow, ColorHigh, -1))
	assert.Equal(t, ColorHigh, Lerp(ColorLow, ColorHigh, 2))

	assert.Equal(t, ColorUnreached, DistanceColor(3, 10, false))
	assert.Equal(t, ColorNear, DistanceColor(0, 10, true))
	assert.Equal(t, ColorFar, DistanceColor(10, 10, true))
	assert.Equal(t, ColorNear, DistanceColor(0, 0, true))
}

func TestCellColorTintsShapes(t *testing.T) {
	flat := CellColor(maplib.TerrainCell{Height: 0}, 0, 0)
	assert.Equal(t, ColorLow, flat)
	ramp := CellColor(maplib.TerrainCell{Kind: maplib.KindRampTop}, 0, 0)
	corner := CellColor(maplib.TerrainCell{Kind: maplib.KindCornerConvexLB}, 0, 0)
	assert.NotEqual(t, flat, ramp)
	assert.NotEqual(t, ramp, corner)
}

func TestImages(t *testing.T) {
	ter := maplib.NewFlat(4, grid.Identity())
	ter.TileMut(3, 0).Height = 5
	timg := TerrainImage(ter)
	assert.Equal(t, ColorLow, timg.RGBAAt(0, 0))
	assert.Equal(t, ColorHigh, timg.RGBAAt(3, 0))

	ff, err := pathfind.Build(grid.Point{X: 1, Y: 1}, ter)
	require.NoError(t, err)
	dimg := DistanceImage(ff)
	assert.Equal(t, ColorTarget, dimg.RGBAAt(1, 1))
	assert.Equal(t, ColorFar, dimg.RGBAAt(3, 0), "the raised corner is the farthest cell")

	big := Upscale(dimg, 3)
	assert.Equal(t, 12, big.Bounds().Dx())
	assert.Equal(t, dimg.RGBAAt(3, 0), big.RGBAAt(11, 2))
	assert.Equal(t, dimg.RGBAAt(1, 1), big.RGBAAt(4, 5))

	path := filepath.Join(t.TempDir(), "field.png")
	require.NoError(t, WritePNG(path, big))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Width)
}
