package shading

import (
	"github.com/go-gl/mathgl/mgl32"
)

// SelfShadow marches toward the light from a grid of taps around uv and
// averages the outcomes into a soft factor in [p.ShadowMin, 1]. light must
// already have its handedness flipped.
func SelfShadow(h HeightSource, uv mgl32.Vec2, height float32, normal, light mgl32.Vec3, p Params) float32 {
	if !p.SelfShadow || p.BumpScale <= 0 || normal.Dot(light) <= 0 {
		return 1
	}
	t := p.Tunables
	m := planMarch(light, p.BumpScale, t.ShadowMinSteps, t.ShadowMaxSteps)
	texel := h.Texel()
	shadowMin := clamp01(p.ShadowMin)
	k := max(t.ShadowKernel, 0)

	var total float32
	taps := 0
	for j := -k; j <= k; j++ {
		for i := -k; i <= k; i++ {
			start := uv
			startHeight := height
			if i != 0 || j != 0 {
				start = uv.Add(mgl32.Vec2{
					float32(i) * t.ShadowSpacing * texel[0],
					float32(j) * t.ShadowSpacing * texel[1],
				})
				startHeight = h.Height(start)
			}
			if occluded(h, start, startHeight+t.ShadowEpsilon, m) {
				total += shadowMin
			} else {
				total += 1
			}
			taps++
		}
	}
	return min(max(total/float32(taps), shadowMin), 1)
}

// occluded reports whether the height field rises above the ray before the
// ray leaves the top layer.
func occluded(h HeightSource, uv mgl32.Vec2, rayHeight float32, m march) bool {
	for i := 0; i < m.steps && rayHeight < 1; i++ {
		uv = uv.Add(m.deltaUV)
		rayHeight += m.layer
		if h.Height(uv) > rayHeight {
			return true
		}
	}
	return false
}
