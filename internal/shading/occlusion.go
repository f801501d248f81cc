package shading

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AmbientOcclusion estimates local occlusion from a ring of height and normal
// samples around uv. The result lies in [p.AOMin, 1].
func AmbientOcclusion(h HeightSource, n NormalSource, uv mgl32.Vec2, normal mgl32.Vec3, center float32, p Params) float32 {
	t := p.Tunables
	samples := max(t.AOSamples, minAOSamples)
	floor := min(max(t.AOWeightFloor, 0.05), 1)
	texel := h.Texel()

	var sum, weights float32
	for i := range samples {
		a := 2 * math.Pi * float32(i) / float32(samples)
		off := mgl32.Vec2{
			math32.Cos(a) * t.AORadius * texel[0],
			math32.Sin(a) * t.AORadius * texel[1],
		}
		suv := uv.Add(off)
		raw := clamp01(center - h.Height(suv) + t.AOBias)
		// Dissimilar normals are down-weighted, never dropped.
		w := floor + (1-floor)*clamp01(normal.Dot(n.Normal(suv)))
		sum += raw * w
		weights += w
	}

	var occ float32
	if weights > 1e-6 {
		occ = sum / weights
	}
	nz := math32.Abs(normal[2])
	occ *= 1 - clamp01(t.AOFlatten)*nz*nz

	ao := 1 - clamp01(occ*t.AOStrength)
	aoMin := clamp01(p.AOMin)
	return clamp01(aoMin + (1-aoMin)*ao)
}
