package shading

import (
	"github.com/go-gl/mathgl/mgl32"
)

// NormalSource is a decoded, unit-length tangent-space normal map.
type NormalSource interface {
	Normal(uv mgl32.Vec2) mgl32.Vec3
}

// HeightNormal builds the macro-shape normal from forward differences one
// texel along +U and +V.
func HeightNormal(h HeightSource, uv mgl32.Vec2, bumpScale float32) mgl32.Vec3 {
	texel := h.Texel()
	c := h.Height(uv)
	dHdU := (h.Height(uv.Add(mgl32.Vec2{texel[0], 0})) - c) * bumpScale / texel[0]
	dHdV := (h.Height(uv.Add(mgl32.Vec2{0, texel[1]})) - c) * bumpScale / texel[1]
	return mgl32.Vec3{-dHdU, -dHdV, 1}.Normalize()
}

// BlendNormals returns normalize(a*(1-w) + b*w). Opposite inputs that cancel
// out fall back to b.
func BlendNormals(a, b mgl32.Vec3, w float32) mgl32.Vec3 {
	v := a.Mul(1 - w).Add(b.Mul(w))
	if v.Len() < 1e-6 {
		return b
	}
	return v.Normalize()
}

// ReconstructNormal blends the height-derived normal with the normal map.
func ReconstructNormal(h HeightSource, n NormalSource, uv mgl32.Vec2, p Params) mgl32.Vec3 {
	return BlendNormals(HeightNormal(h, uv, p.BumpScale), n.Normal(uv), p.Tunables.NormalBlend)
}
