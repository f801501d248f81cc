package shading

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AlbedoSource is the base colour texture.
type AlbedoSource interface {
	Color(uv mgl32.Vec2) mgl32.Vec3
}

// Maps are the textures a shader reads. They must not change while a frame
// is being shaded.
type Maps struct {
	Height HeightSource
	Normal NormalSource
	Albedo AlbedoSource
}

func (m Maps) validate() error {
	if m.Height == nil || m.Normal == nil || m.Albedo == nil {
		return errors.New("shading: height, normal and albedo maps are all required")
	}
	return nil
}

// TangentFrame is the per-pixel basis the height field is defined in.
type TangentFrame struct {
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
	Normal    mgl32.Vec3
}

// ToTangent expresses v in the frame.
func (f TangentFrame) ToTangent(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v.Dot(f.Tangent), v.Dot(f.Bitangent), v.Dot(f.Normal)}
}

// Orthonormal reports whether the axes are unit length and mutually
// orthogonal within eps. March step sizes are wrong otherwise.
func (f TangentFrame) Orthonormal(eps float32) bool {
	unit := func(v mgl32.Vec3) bool { return math32.Abs(v.Len()-1) <= eps }
	return unit(f.Tangent) && unit(f.Bitangent) && unit(f.Normal) &&
		math32.Abs(f.Tangent.Dot(f.Bitangent)) <= eps &&
		math32.Abs(f.Tangent.Dot(f.Normal)) <= eps &&
		math32.Abs(f.Bitangent.Dot(f.Normal)) <= eps
}

// Fragment holds the interpolated inputs for one pixel.
type Fragment struct {
	UV mgl32.Vec2
	// View points from the surface to the eye, tangent space, unit.
	View mgl32.Vec3
	// Light points from the surface to the light, tangent space, unit,
	// before FlipHandedness.
	Light mgl32.Vec3
}

// FlipHandedness negates the tangent-space X of a light vector. The quad's
// UV winding makes its tangent basis left-handed relative to the light.
func FlipHandedness(l mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{-l[0], l[1], l[2]}
}

// Shader turns a fragment into a linear RGB colour.
type Shader interface {
	Shade(f Fragment) mgl32.Vec3
}

// Steep is steep parallax mapping with interpolated crossings, reconstructed
// normals, local AO and soft self-shadowing.
type Steep struct {
	maps   Maps
	params Params
}

func NewSteep(maps Maps, p Params) (*Steep, error) {
	if err := maps.validate(); err != nil {
		return nil, err
	}
	return &Steep{maps: maps, params: p.Sanitize()}, nil
}

func (s *Steep) Params() Params { return s.params }

func (s *Steep) Shade(f Fragment) mgl32.Vec3 {
	p := s.params
	light := FlipHandedness(f.Light)

	hit := Trace(s.maps.Height, f.UV, f.View, p)
	normal := ReconstructNormal(s.maps.Height, s.maps.Normal, hit.UV, p)
	ao := AmbientOcclusion(s.maps.Height, s.maps.Normal, hit.UV, normal, hit.Height, p)
	shadow := SelfShadow(s.maps.Height, hit.UV, hit.Height, normal, light, p)

	return Composite(Surface{
		Albedo: s.maps.Albedo.Color(hit.UV),
		Normal: normal,
		Light:  light,
		View:   f.View,
		Height: hit.Height,
		AO:     ao,
		Shadow: shadow,
	}, p)
}

// Basic is single-sample parallax lit with the normal map alone.
type Basic struct {
	maps   Maps
	params Params
}

func NewBasic(maps Maps, p Params) (*Basic, error) {
	if err := maps.validate(); err != nil {
		return nil, err
	}
	return &Basic{maps: maps, params: p.Sanitize()}, nil
}

func (b *Basic) Params() Params { return b.params }

func (b *Basic) Shade(f Fragment) mgl32.Vec3 {
	p := b.params
	light := FlipHandedness(f.Light)
	hit := Offset(b.maps.Height, f.UV, f.View, p)
	return Composite(Surface{
		Albedo: b.maps.Albedo.Color(hit.UV),
		Normal: b.maps.Normal.Normal(hit.UV),
		Light:  light,
		View:   f.View,
		Height: hit.Height,
		AO:     1,
		Shadow: 1,
	}, p)
}
