package shading

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// HeightSource is a wrapped, filtered height field in [0,1].
type HeightSource interface {
	Height(uv mgl32.Vec2) float32
	// Texel is the UV size of one texel.
	Texel() mgl32.Vec2
}

// TraceResult is where the view ray meets the height field.
type TraceResult struct {
	UV     mgl32.Vec2
	Height float32
	// Steps is how many layers the march descended.
	Steps int
}

// Trace marches the view ray down through the height field from the top
// layer and refines the crossing by interpolating the last two samples.
// view points from the surface toward the eye in tangent space.
func Trace(h HeightSource, uv mgl32.Vec2, view mgl32.Vec3, p Params) TraceResult {
	if !p.Parallax || p.BumpScale <= 0 {
		return TraceResult{UV: uv, Height: h.Height(uv)}
	}
	m := planMarch(view, p.BumpScale, p.Tunables.MinSteps, p.Tunables.MaxSteps)

	cur := uv
	remaining := float32(1)
	height := h.Height(cur)
	prevUV, prevHeight, prevRemaining := cur, height, remaining

	steps := 0
	for steps < m.steps && height < remaining {
		prevUV, prevHeight, prevRemaining = cur, height, remaining
		steps++
		cur = cur.Sub(m.deltaUV)
		remaining = 1 - float32(steps)*m.layer
		height = h.Height(cur)
	}
	if steps == 0 {
		return TraceResult{UV: uv, Height: height}
	}

	after := height - remaining
	before := prevHeight - prevRemaining
	w := crossingWeight(after, before)
	out := cur.Add(prevUV.Sub(cur).Mul(w))
	return TraceResult{UV: out, Height: h.Height(out), Steps: steps}
}

// crossingWeight is the share of the previous sample in the refined UV.
// after is at or below the surface, before above it.
func crossingWeight(after, before float32) float32 {
	denom := after - before
	if math32.Abs(denom) < 1e-6 {
		return 0
	}
	return clamp01(after / denom)
}

// Offset is single-sample parallax: the UV is shifted once by the height
// under the interpolated UV, biased so the relief centres on mid-height.
func Offset(h HeightSource, uv mgl32.Vec2, view mgl32.Vec3, p Params) TraceResult {
	height := h.Height(uv)
	if !p.Parallax || p.BumpScale <= 0 {
		return TraceResult{UV: uv, Height: height}
	}
	z := max(math32.Abs(view[2]), grazingEpsilon)
	amount := (height - p.Tunables.OffsetBias) * p.BumpScale / z
	out := uv.Add(mgl32.Vec2{view[1] * amount, view[0] * amount})
	return TraceResult{UV: out, Height: h.Height(out), Steps: 1}
}
