package shading

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Surface is everything the lighting model needs at one shading point. All
// vectors are unit length and in tangent space.
type Surface struct {
	Albedo mgl32.Vec3
	Normal mgl32.Vec3
	Light  mgl32.Vec3
	View   mgl32.Vec3
	Height float32
	AO     float32
	Shadow float32
}

// Composite combines ambient, Lambert diffuse and Blinn-Phong specular.
// Diffuse and specular are attenuated by the shadow factor and diffuse also
// by AO. Ambient is a constant term and takes neither.
func Composite(s Surface, p Params) mgl32.Vec3 {
	t := p.Tunables
	ndl := max(s.Normal.Dot(s.Light), 0)
	diffuse := ndl * p.Diffuse

	var specular float32
	if ndl > 0 {
		half := s.Light.Add(s.View)
		if half.Len() > 1e-6 {
			half = half.Normalize()
			// Raised regions get a tighter, brighter highlight.
			boost := 1 + s.Height*t.HeightSpecularBoost
			power := max(t.SpecularPower*boost, 1)
			specular = math32.Pow(max(s.Normal.Dot(half), 0), power) * p.SpecularBase * (1 + 0.5*s.Height*t.HeightSpecularBoost)
		}
	}

	light := p.LightColor.Mul(p.LightIntensity)
	direct := diffuse * s.AO * s.Shadow
	return mgl32.Vec3{
		s.Albedo[0]*p.Ambient + s.Albedo[0]*light[0]*direct + light[0]*specular*s.Shadow,
		s.Albedo[1]*p.Ambient + s.Albedo[1]*light[1]*direct + light[1]*specular*s.Shadow,
		s.Albedo[2]*p.Ambient + s.Albedo[2]*light[2]*direct + light[2]*specular*s.Shadow,
	}
}
