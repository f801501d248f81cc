// Package shading evaluates the parallax mapping fragment stage on the CPU.
//
// Every function here is a pure function of its arguments: textures are
// read-only, parameters are passed by value, and nothing is cached between
// calls. A frame can therefore be shaded by any number of goroutines without
// coordination.
package shading

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// grazingEpsilon is the smallest |z| used as a divisor.
	grazingEpsilon = 1e-3
	minAOSamples   = 8
)

// Params is the per-frame shading configuration. It is copied into each
// shader and never mutated while a frame is being shaded.
type Params struct {
	// BumpScale is the height amplitude in UV units.
	BumpScale float32
	// Parallax enables UV displacement. When false both techniques sample
	// every texture at the interpolated UV.
	Parallax bool
	// SelfShadow enables the light-direction march.
	SelfShadow bool

	Diffuse      float32
	SpecularBase float32
	Ambient      float32
	// AOMin and ShadowMin keep occluded regions from going black.
	AOMin     float32
	ShadowMin float32

	LightColor     mgl32.Vec3
	LightIntensity float32

	Tunables Tunables
}

// Tunables are the fixed constants of the marching and filtering loops.
type Tunables struct {
	// MinSteps is used face-on, MaxSteps edge-on.
	MinSteps float32
	MaxSteps float32
	// ShadowMinSteps and ShadowMaxSteps bound the light march.
	ShadowMinSteps float32
	ShadowMaxSteps float32

	AOSamples int
	// AORadius is the sample ring radius in texels.
	AORadius      float32
	AOBias        float32
	AOWeightFloor float32
	AOFlatten     float32
	AOStrength    float32

	// ShadowKernel is k in the (2k+1)x(2k+1) tap grid.
	ShadowKernel int
	// ShadowSpacing is the distance between taps in texels.
	ShadowSpacing float32
	ShadowEpsilon float32

	NormalBlend float32

	SpecularPower       float32
	HeightSpecularBoost float32

	// OffsetBias is the fraction of BumpScale subtracted by the single-sample
	// technique so offsets centre on mid-height.
	OffsetBias float32
}

// DefaultParams matches the demo's defaults: a shallow relief with parallax
// and self-shadowing on.
func DefaultParams() Params {
	return Params{
		BumpScale:      0.05,
		Parallax:       true,
		SelfShadow:     true,
		Diffuse:        0.9,
		SpecularBase:   0.35,
		Ambient:        0.15,
		AOMin:          0.35,
		ShadowMin:      0.35,
		LightColor:     mgl32.Vec3{1, 1, 0.65},
		LightIntensity: 1,
		Tunables:       DefaultTunables(),
	}
}

func DefaultTunables() Tunables {
	return Tunables{
		MinSteps:            36,
		MaxSteps:            72,
		ShadowMinSteps:      12,
		ShadowMaxSteps:      48,
		AOSamples:           12,
		AORadius:            3,
		AOBias:              0.03,
		AOWeightFloor:       0.25,
		AOFlatten:           0.5,
		AOStrength:          1,
		ShadowKernel:        3,
		ShadowSpacing:       0.75,
		ShadowEpsilon:       0.02,
		NormalBlend:         0.5,
		SpecularPower:       32,
		HeightSpecularBoost: 1,
		OffsetBias:          0.5,
	}
}

// HighQuality widens the primary step range.
func (t Tunables) HighQuality() Tunables {
	t.MinSteps = 16
	t.MaxSteps = 128
	return t
}

// Sanitize clamps every field into the range the loops can handle.
func (p Params) Sanitize() Params {
	p.BumpScale = max(p.BumpScale, 0)
	p.AOMin = clamp01(p.AOMin)
	p.ShadowMin = clamp01(p.ShadowMin)
	p.Diffuse = max(p.Diffuse, 0)
	p.SpecularBase = max(p.SpecularBase, 0)
	p.Ambient = max(p.Ambient, 0)
	p.LightIntensity = max(p.LightIntensity, 0)

	t := &p.Tunables
	t.MinSteps = max(t.MinSteps, 1)
	t.MaxSteps = max(t.MaxSteps, t.MinSteps)
	t.ShadowMinSteps = max(t.ShadowMinSteps, 1)
	t.ShadowMaxSteps = max(t.ShadowMaxSteps, t.ShadowMinSteps)
	t.AOSamples = max(t.AOSamples, minAOSamples)
	t.AORadius = max(t.AORadius, 0)
	t.AOWeightFloor = min(max(t.AOWeightFloor, 0.05), 1)
	t.AOFlatten = clamp01(t.AOFlatten)
	t.AOStrength = max(t.AOStrength, 0)
	t.ShadowKernel = max(t.ShadowKernel, 0)
	t.ShadowSpacing = max(t.ShadowSpacing, 0)
	t.ShadowEpsilon = max(t.ShadowEpsilon, 0)
	t.NormalBlend = clamp01(t.NormalBlend)
	t.SpecularPower = max(t.SpecularPower, 1)
	t.HeightSpecularBoost = max(t.HeightSpecularBoost, 0)
	t.OffsetBias = clamp01(t.OffsetBias)
	return p
}

// clamp01 also maps NaN to 0.
func clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
