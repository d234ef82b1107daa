package grid

import (
	"github.com/chewxy/math32"

	"github.com/1siamBot/rts-flowfield/engine/vmath"
)

// Transform places a grid in the world. Grid column x runs along world X,
// grid row y along world Z, and cell heights along world Y. Rotation is a yaw
// around the Y axis in radians, applied after scaling.
type Transform struct {
	Translation vmath.Vec3
	Rotation    float32
	Scale       vmath.Vec3
}

// Identity returns a transform with unit scale at the origin
func Identity() Transform {
	return Transform{Scale: vmath.V3(1, 1, 1)}
}

// At returns a unit-scale transform translated to pos
func At(pos vmath.Vec3) Transform {
	return Transform{Translation: pos, Scale: vmath.V3(1, 1, 1)}
}

// GridToWorld maps fractional grid coordinates and a cell height to a world position
func (t Transform) GridToWorld(gx, gy, h float32) vmath.Vec3 {
	s := t.scale()
	lx, ly, lz := gx*s.X, h*s.Y, gy*s.Z
	sin, cos := math32.Sincos(t.Rotation)
	return vmath.V3(
		cos*lx+sin*lz+t.Translation.X,
		ly+t.Translation.Y,
		-sin*lx+cos*lz+t.Translation.Z,
	)
}

// WorldToGrid is the inverse of GridToWorld on the ground plane. The height
// component of p is ignored.
func (t Transform) WorldToGrid(p vmath.Vec3) (gx, gy float32) {
	s := t.scale()
	dx, dz := p.X-t.Translation.X, p.Z-t.Translation.Z
	sin, cos := math32.Sincos(t.Rotation)
	lx := cos*dx - sin*dz
	lz := sin*dx + cos*dz
	return lx / s.X, lz / s.Z
}

// CellAt returns the integer cell containing world position p. The result may
// lie outside any particular grid; callers bounds-check it.
func (t Transform) CellAt(p vmath.Vec3) (x, y int) {
	gx, gy := t.WorldToGrid(p)
	return int(math32.Floor(gx)), int(math32.Floor(gy))
}

// CellCenter returns the world position of the centre of cell (x, y) at height h
func (t Transform) CellCenter(x, y int, h float32) vmath.Vec3 {
	return t.GridToWorld(float32(x)+0.5, float32(y)+0.5, h)
}

// zero scale components are treated as 1 so a zero Transform behaves as Identity
func (t Transform) scale() vmath.Vec3 {
	s := t.Scale
	if s.X == 0 {
		s.X = 1
	}
	if s.Y == 0 {
		s.Y = 1
	}
	if s.Z == 0 {
		s.Z = 1
	}
	return s
}
