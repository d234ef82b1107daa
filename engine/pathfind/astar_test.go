package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/rts-flowfield/engine/grid"
	"github.com/1siamBot/rts-flowfield/engine/maplib"
)

func pt(x, y int) grid.Point { return grid.Point{X: x, Y: y} }

func TestFindPathStraightLine(t *testing.T) {
	ng := NewNavGrid(flat(6))
	path := FindPath(ng, pt(0, 2), pt(5, 2))
	require.Len(t, path, 6)
	assert.Equal(t, pt(0, 2), path[0])
	assert.Equal(t, pt(5, 2), path[5])
	for i, p := range path {
		assert.Equal(t, pt(i, 2), p)
	}
}

func TestFindPathStartIsGoal(t *testing.T) {
	ng := NewNavGrid(flat(3))
	assert.Equal(t, []grid.Point{pt(1, 1)}, FindPath(ng, pt(1, 1), pt(1, 1)))
}

func TestFindPathAroundWall(t *testing.T) {
	ng := NewNavGrid(flat(5))
	for y := 0; y < 4; y++ {
		ng.SetBlocked(pt(2, y))
	}
	path := FindPath(ng, pt(0, 0), pt(4, 0))
	require.NotNil(t, path)
	assert.Contains(t, path, pt(2, 4), "the only gap is at the bottom")
	for _, p := range path {
		assert.True(t, ng.Passable(p), "%v", p)
	}
	for i := 1; i < len(path); i++ {
		assert.LessOrEqual(t, abs(path[i].X-path[i-1].X), 1)
		assert.LessOrEqual(t, abs(path[i].Y-path[i-1].Y), 1)
	}
}

func TestFindPathNoCornerCutting(t *testing.T) {
	ng := NewNavGrid(flat(2))
	ng.SetBlocked(pt(1, 0))
	path := FindPath(ng, pt(0, 0), pt(1, 1))
	assert.Equal(t, []grid.Point{pt(0, 0), pt(0, 1), pt(1, 1)}, path)
}

func TestFindPathUnreachable(t *testing.T) {
	ng := NewNavGrid(flat(4))
	for y := 0; y < 4; y++ {
		ng.SetBlocked(pt(2, y))
	}
	assert.Nil(t, FindPath(ng, pt(0, 0), pt(3, 3)))
	assert.Nil(t, FindPath(ng, pt(0, 0), pt(2, 0)), "blocked goal")
	assert.Nil(t, FindPath(ng, pt(-1, 0), pt(1, 0)), "start outside")
}

func TestNavGridFromTerrain(t *testing.T) {
	ter := flat(3)
	ter.TileMut(1, 1).Kind = maplib.KindRampTop
	ter.TileMut(2, 2).Kind = maplib.KindCornerConvexLB
	ter.TileMut(0, 2).Kind = maplib.KindRampLeft
	maplib.RaiseRect(ter, 0, 2, 0, 2, 4)

	ng := NewNavGrid(ter)
	assert.Equal(t, 1.0, ng.Cost(pt(0, 0)))
	assert.Equal(t, 1.5, ng.Cost(pt(1, 1)))
	assert.Equal(t, 2.0, ng.Cost(pt(2, 2)))
	assert.False(t, ng.Passable(pt(0, 2)), "steep ramp")
	assert.Equal(t, 0.0, ng.Cost(pt(5, 5)))
}

func TestSmoothPathOpenField(t *testing.T) {
	ng := NewNavGrid(flat(8))
	path := FindPath(ng, pt(0, 0), pt(7, 3))
	smooth := SmoothPath(ng, path)
	assert.Equal(t, []grid.Point{pt(0, 0), pt(7, 3)}, smooth)
}

func TestSmoothPathKeepsCornerAroundWall(t *testing.T) {
	ng := NewNavGrid(flat(5))
	for y := 0; y < 4; y++ {
		ng.SetBlocked(pt(2, y))
	}
	smooth := SmoothPath(ng, FindPath(ng, pt(0, 0), pt(4, 0)))
	require.Greater(t, len(smooth), 2)
	for i := 1; i < len(smooth); i++ {
		assert.True(t, lineOfSight(ng, smooth[i-1], smooth[i]))
	}
}
