package maplib

import (
	"github.com/chewxy/math32"
	"github.com/ojrac/opensimplex-go"

	"github.com/1siamBot/rts-flowfield/engine/grid"
)

// octaves of noise summed for generated terrain: sample frequency and relative weight
var octaves = []struct {
	freq, weight float64
}{
	{1.0 / 64, 1},
	{1.0 / 16, 0.35},
	{1.0 / 4, 0.1},
}

// Generate creates a rolling heightfield from opensimplex noise. Heights are
// whole steps in [0, amplitude], so terrain looks like terraces. The result is
// a pure function of (size, seed, amplitude).
func Generate(size int, transform grid.Transform, seed int64, amplitude float32) *Terrain {
	noises := make([]opensimplex.Noise, len(octaves))
	var total float64
	for i, o := range octaves {
		noises[i] = opensimplex.New(seed + int64(i))
		total += o.weight
	}
	return NewHeightmap(size, transform, func(x, y int) float32 {
		var v float64
		for i, o := range octaves {
			v += noises[i].Eval2(float64(x)*o.freq, float64(y)*o.freq) * o.weight
		}
		// Eval2 is in [-1, 1]
		n := float32((v/total + 1) / 2)
		return math32.Round(math32.Max(0, math32.Min(1, n)) * amplitude)
	})
}
