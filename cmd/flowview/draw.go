package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/1siamBot/rts-flowfield/engine/grid"
	"github.com/1siamBot/rts-flowfield/engine/pathfind"
	"github.com/1siamBot/rts-flowfield/engine/render"
	"github.com/1siamBot/rts-flowfield/engine/systems"
	"github.com/1siamBot/rts-flowfield/engine/vmath"
)

// cellGeoM maps pixel (x, y) of a one-pixel-per-cell image to the screen,
// following the grid transform and the camera
func cellGeoM(tr grid.Transform, cam *render.Camera) ebiten.GeoM {
	o := tr.GridToWorld(0, 0, 0)
	ex := tr.GridToWorld(1, 0, 0).Sub(o)
	ey := tr.GridToWorld(0, 1, 0).Sub(o)

	var g ebiten.GeoM
	g.SetElement(0, 0, float64(ex.X))
	g.SetElement(0, 1, float64(ey.X))
	g.SetElement(0, 2, float64(o.X))
	g.SetElement(1, 0, float64(ex.Z))
	g.SetElement(1, 1, float64(ey.Z))
	g.SetElement(1, 2, float64(o.Z))

	g.Translate(-cam.X, -cam.Z)
	s := cam.PixelsPerUnit()
	g.Scale(s, s)
	g.Translate(float64(cam.ScreenW)/2, float64(cam.ScreenH)/2)
	return g
}

func drawCells(dst, img *ebiten.Image, tr grid.Transform, cam *render.Camera, alpha float32) {
	op := &ebiten.DrawImageOptions{GeoM: cellGeoM(tr, cam)}
	op.ColorScale.ScaleAlpha(alpha)
	dst.DrawImage(img, op)
}

// drawArrows draws the steering direction of every visible cell
func drawArrows(dst *ebiten.Image, ff *pathfind.FlowField, cam *render.Camera) {
	tr := ff.Grid.Transform()
	minX, minY, maxX, maxY, ok := cam.VisibleCellRange(tr, ff.Size())
	if !ok {
		return
	}
	// arrows get unreadable when cells are tiny
	if cam.PixelsPerUnit() < 6 {
		return
	}
	ff.Each(func(p grid.Point, dir vmath.Vec3) {
		if p.X < minX || p.X > maxX || p.Y < minY || p.Y > maxY || dir.IsZero() {
			return
		}
		cx, cy := float32(p.X)+0.5, float32(p.Y)+0.5
		x0, y0 := cam.WorldToScreen(tr.GridToWorld(cx, cy, 0))
		x1, y1 := cam.WorldToScreen(tr.GridToWorld(cx-dir.X*0.4, cy-dir.Z*0.4, 0))
		arrow(dst, x0, y0, x1, y1, render.ColorArrow)
	})
}

func arrow(dst *ebiten.Image, x0, y0, x1, y1 float32, clr color.Color) {
	vector.StrokeLine(dst, x0, y0, x1, y1, 1, clr, true)
	angle := math.Atan2(float64(y1-y0), float64(x1-x0))
	length := math.Hypot(float64(x1-x0), float64(y1-y0)) * 0.35
	for _, side := range []float64{-1, 1} {
		a := angle + math.Pi - side*math.Pi/6
		bx := x1 + float32(math.Cos(a)*length)
		by := y1 + float32(math.Sin(a)*length)
		vector.StrokeLine(dst, x1, y1, bx, by, 1, clr, true)
	}
}

func drawAgents(dst *ebiten.Image, agents []*systems.Agent, cam *render.Camera) {
	r := float32(max(cam.PixelsPerUnit()*0.3, 2))
	for _, a := range agents {
		x, y := cam.WorldToScreen(a.Position)
		vector.DrawFilledCircle(dst, x, y, r, render.ColorAgent, true)
		if !a.Velocity.IsZero() {
			v := a.Velocity.NormalizeOrZero()
			hx, hy := cam.WorldToScreen(a.Position.Add(v.Scale(0.6)))
			vector.StrokeLine(dst, x, y, hx, hy, 1, render.ColorArrow, true)
		}
	}
}

func drawTarget(dst *ebiten.Image, ff *pathfind.FlowField, cam *render.Camera) {
	tr := ff.Grid.Transform()
	x, y := cam.WorldToScreen(tr.CellCenter(ff.Target.X, ff.Target.Y, 0))
	r := float32(max(cam.PixelsPerUnit()*0.5, 4))
	vector.StrokeCircle(dst, x, y, r, 2, render.ColorTarget, true)
}

// drawPath joins the waypoints of an A* order
func drawPath(dst *ebiten.Image, path []grid.Point, tr grid.Transform, cam *render.Camera) {
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		x0, y0 := cam.WorldToScreen(tr.CellCenter(a.X, a.Y, 0))
		x1, y1 := cam.WorldToScreen(tr.CellCenter(b.X, b.Y, 0))
		vector.StrokeLine(dst, x0, y0, x1, y1, 2, render.ColorPath, true)
	}
}
