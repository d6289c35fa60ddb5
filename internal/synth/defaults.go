package synth

import (
	"math/rand"

	"github.com/Danondso/wallhit/internal/clip"
)

// impactSeed keeps bootstrapped wall_impact files identical across runs.
const impactSeed = 0x57a11

// Named pairs a file base name with the generator that renders it.
type Named struct {
	Name     string
	Generate func() *clip.Buffer
}

// Defaults returns the cues written to an empty sound directory.
func Defaults() []Named {
	return []Named{
		{Name: "wall_hit", Generate: func() *clip.Buffer {
			return WallHit(DefaultSampleRate, 0.15)
		}},
		{Name: "deep_impact", Generate: func() *clip.Buffer {
			return DeepImpact(DefaultSampleRate, 0.25)
		}},
		{Name: "wall_impact", Generate: func() *clip.Buffer {
			return ImpactWithRing(rand.New(rand.NewSource(impactSeed)), DefaultSampleRate, 0.2)
		}},
	}
}
