package render

import (
	"fmt"
	"image"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/1siamBot/rts-flowfield/engine/maplib"
	"github.com/1siamBot/rts-flowfield/engine/pathfind"
)

// TerrainImage renders one pixel per cell, shaded by height. Pixel (x, y) is
// cell (x, y).
func TerrainImage(t *maplib.Terrain) *image.RGBA {
	lo, hi := heightRange(t)
	img := image.NewRGBA(image.Rect(0, 0, t.Size(), t.Size()))
	for p, c := range t.All() {
		img.SetRGBA(p.X, p.Y, CellColor(c, lo, hi))
	}
	return img
}

// DistanceImage renders one pixel per cell, shaded by distance to the target
func DistanceImage(ff *pathfind.FlowField) *image.RGBA {
	var far uint32
	for _, c := range ff.Grid.All() {
		if c.Distance != pathfind.Unreached {
			far = max(far, c.Distance)
		}
	}
	img := image.NewRGBA(image.Rect(0, 0, ff.Size(), ff.Size()))
	for p, c := range ff.Grid.All() {
		img.SetRGBA(p.X, p.Y, DistanceColor(c.Distance, far, c.Distance != pathfind.Unreached))
	}
	img.SetRGBA(ff.Target.X, ff.Target.Y, ColorTarget)
	return img
}

// Upscale enlarges src by an integer factor keeping cells as hard squares
func Upscale(src image.Image, factor int) *image.RGBA {
	factor = max(factor, 1)
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// WritePNG saves img to path
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("render: encode %s: %w", path, err)
	}
	return f.Close()
}

func heightRange(t *maplib.Terrain) (lo, hi float32) {
	first := true
	for _, c := range t.Tiles() {
		if first {
			lo, hi, first = c.Height, c.Height, false
			continue
		}
		lo, hi = min(lo, c.Height), max(hi, c.Height)
	}
	return lo, hi
}
