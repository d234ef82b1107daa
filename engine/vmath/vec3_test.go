package vmath

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeOrZero(t *testing.T) {
	n := V3(3, 0, 4).NormalizeOrZero()
	assert.InDelta(t, 1, n.Length(), 1e-6)
	assert.InDelta(t, 0.6, n.X, 1e-6)
	assert.InDelta(t, 0.8, n.Z, 1e-6)

	assert.Equal(t, Zero, Zero.NormalizeOrZero())
	assert.Equal(t, Zero, V3(1e-9, 0, 0).NormalizeOrZero())
	assert.Equal(t, Zero, V3(math32.NaN(), 0, 0).NormalizeOrZero())
	assert.Equal(t, Zero, V3(math32.Inf(1), 0, 0).NormalizeOrZero())
}

func TestArithmetic(t *testing.T) {
	a := V3(1, 2, 3)
	b := V3(4, 5, 6)
	assert.Equal(t, V3(5, 7, 9), a.Add(b))
	assert.Equal(t, V3(-3, -3, -3), a.Sub(b))
	assert.Equal(t, V3(2, 4, 6), a.Scale(2))
	assert.Equal(t, V3(-1, -2, -3), a.Neg())
	assert.Equal(t, float32(32), a.Dot(b))
	assert.Equal(t, V3(2.5, 3.5, 4.5), a.Lerp(b, 0.5))
	assert.True(t, Zero.IsZero())
	assert.False(t, a.IsZero())
}

func TestHorizontalDistanceIgnoresHeight(t *testing.T) {
	assert.InDelta(t, 5, V3(0, 100, 0).HorizontalDistance(V3(3, -7, 4)), 1e-6)
}
