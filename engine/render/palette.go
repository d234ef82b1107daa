package render

import (
	"image/color"

	"golang.org/x/image/colornames"

	"github.com/1siamBot/rts-flowfield/engine/maplib"
)

// Colors used by the debug views
var (
	ColorLow        = colornames.Darkolivegreen
	ColorHigh       = colornames.Wheat
	ColorRamp       = colornames.Sandybrown
	ColorCorner     = colornames.Peru
	ColorNear       = colornames.Gold
	ColorFar        = colornames.Midnightblue
	ColorUnreached  = colornames.Black
	ColorArrow      = colornames.White
	ColorAgent      = colornames.Orangered
	ColorTarget     = colornames.Red
	ColorPath       = colornames.Cyan
	ColorBackground = colornames.Darkslategray
)

// Lerp blends a towards b; t is clamped to [0, 1]
func Lerp(a, b color.RGBA, t float32) color.RGBA {
	t = min(max(t, 0), 1)
	mix := func(x, y uint8) uint8 {
		return uint8(float32(x) + (float32(y)-float32(x))*t + 0.5)
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), mix(a.A, b.A)}
}

// CellColor shades a terrain cell by its height within [lo, hi] and tints
// ramps and corners
func CellColor(c maplib.TerrainCell, lo, hi float32) color.RGBA {
	var t float32
	if hi > lo {
		t = (c.Height - lo) / (hi - lo)
	}
	base := Lerp(ColorLow, ColorHigh, t)
	switch {
	case c.Kind == maplib.KindFlat:
		return base
	case c.Kind <= maplib.KindRampLeft:
		return Lerp(base, ColorRamp, 0.5)
	default:
		return Lerp(base, ColorCorner, 0.5)
	}
}

// DistanceColor shades a flow distance against the largest finite distance
func DistanceColor(d, far uint32, reachable bool) color.RGBA {
	if !reachable {
		return ColorUnreached
	}
	if far == 0 {
		return ColorNear
	}
	return Lerp(ColorNear, ColorFar, float32(d)/float32(far))
}
