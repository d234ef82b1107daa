package render

import (
	"math"

	"github.com/1siamBot/rts-flowfield/engine/grid"
	"github.com/1siamBot/rts-flowfield/engine/vmath"
)

// Camera is a top-down view of the world ground plane. World X runs right
// and world Z runs down the screen.
type Camera struct {
	X, Z       float64 // world position at the screen centre
	Zoom       float64 // zoom level (1.0 = default)
	MinZoom    float64
	MaxZoom    float64
	ScreenW    int     // viewport width in pixels
	ScreenH    int     // viewport height in pixels
	Speed      float64 // pan speed (pixels per second)
	CellPixels float64 // pixels per world unit at zoom 1
}

// NewCamera creates a camera with default settings
func NewCamera(screenW, screenH int) *Camera {
	return &Camera{
		Zoom:       1.0,
		MinZoom:    0.25,
		MaxZoom:    8.0,
		ScreenW:    screenW,
		ScreenH:    screenH,
		Speed:      500,
		CellPixels: 8,
	}
}

// PixelsPerUnit is the current screen size of one world unit
func (c *Camera) PixelsPerUnit() float64 {
	return c.CellPixels * c.Zoom
}

// Pan moves the camera by a pixel delta
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx / c.PixelsPerUnit()
	c.Z += dy / c.PixelsPerUnit()
}

// SetZoom sets zoom level with clamping
func (c *Camera) SetZoom(z float64) {
	c.Zoom = math.Max(c.MinZoom, math.Min(c.MaxZoom, z))
}

// ZoomAt zooms by factor while keeping the world point under the screen
// point fixed
func (c *Camera) ZoomAt(factor float64, screenX, screenY int) {
	before := c.ScreenToWorld(screenX, screenY)
	c.SetZoom(c.Zoom * factor)
	after := c.ScreenToWorld(screenX, screenY)
	c.X += float64(before.X - after.X)
	c.Z += float64(before.Z - after.Z)
}

// CenterOn centres the camera on a world position
func (c *Camera) CenterOn(p vmath.Vec3) {
	c.X, c.Z = float64(p.X), float64(p.Z)
}

// Fit centres the terrain of the given size and zooms so it fills the shorter
// screen side
func (c *Camera) Fit(tr grid.Transform, size int) {
	n := float32(size)
	c.CenterOn(tr.GridToWorld(n/2, n/2, 0))
	span := float64(tr.GridToWorld(n, n, 0).Sub(tr.GridToWorld(0, 0, 0)).Length())
	if span == 0 {
		return
	}
	side := float64(min(c.ScreenW, c.ScreenH))
	c.SetZoom(side / (span / math.Sqrt2) / c.CellPixels)
}

// WorldToScreen converts a world position to screen pixels; height is ignored
func (c *Camera) WorldToScreen(p vmath.Vec3) (float32, float32) {
	s := c.PixelsPerUnit()
	sx := (float64(p.X)-c.X)*s + float64(c.ScreenW)/2
	sy := (float64(p.Z)-c.Z)*s + float64(c.ScreenH)/2
	return float32(sx), float32(sy)
}

// ScreenToWorld converts a screen pixel to a ground-plane world position
func (c *Camera) ScreenToWorld(sx, sy int) vmath.Vec3 {
	s := c.PixelsPerUnit()
	wx := (float64(sx)-float64(c.ScreenW)/2)/s + c.X
	wz := (float64(sy)-float64(c.ScreenH)/2)/s + c.Z
	return vmath.V3(float32(wx), 0, float32(wz))
}

// VisibleCellRange returns the inclusive range of cells of a grid placed by tr
// that may be on screen. ok is false when none are.
func (c *Camera) VisibleCellRange(tr grid.Transform, size int) (minX, minY, maxX, maxY int, ok bool) {
	corners := [4][2]int{{0, 0}, {c.ScreenW, 0}, {0, c.ScreenH}, {c.ScreenW, c.ScreenH}}
	lo := [2]float32{math.MaxFloat32, math.MaxFloat32}
	hi := [2]float32{-math.MaxFloat32, -math.MaxFloat32}
	for _, s := range corners {
		gx, gy := tr.WorldToGrid(c.ScreenToWorld(s[0], s[1]))
		lo[0], lo[1] = min(lo[0], gx), min(lo[1], gy)
		hi[0], hi[1] = max(hi[0], gx), max(hi[1], gy)
	}

	// Add padding and clamp
	const pad = 1
	minX = max(int(math.Floor(float64(lo[0])))-pad, 0)
	minY = max(int(math.Floor(float64(lo[1])))-pad, 0)
	maxX = min(int(math.Ceil(float64(hi[0])))+pad, size-1)
	maxY = min(int(math.Ceil(float64(hi[1])))+pad, size-1)
	return minX, minY, maxX, maxY, minX <= maxX && minY <= maxY
}
