package texture

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// HeightField is a grayscale height texture. Heights are read from the red
// channel and lie in [0,1], 1 being the top of the relief.
type HeightField struct {
	s *Sampler
}

func NewHeightField(s *Sampler) *HeightField {
	return &HeightField{s: s}
}

func (h *HeightField) Height(uv mgl32.Vec2) float32 {
	return h.s.Sample(uv)[0]
}

func (h *HeightField) Texel() mgl32.Vec2 {
	return h.s.Texel()
}

// NormalMap stores unit tangent-space normals encoded as color*0.5+0.5.
type NormalMap struct {
	s *Sampler
}

func NewNormalMap(s *Sampler) *NormalMap {
	return &NormalMap{s: s}
}

// Normal decodes and normalises the filtered normal at uv.
func (n *NormalMap) Normal(uv mgl32.Vec2) mgl32.Vec3 {
	return DecodeNormal(n.s.Sample(uv))
}

// DecodeNormal maps an RGB colour in [0,1] to a unit vector. A zero-length
// result (grey 0.5) decodes to +Z.
func DecodeNormal(c mgl32.Vec3) mgl32.Vec3 {
	v := mgl32.Vec3{c[0]*2 - 1, c[1]*2 - 1, c[2]*2 - 1}
	if v.Len() < 1e-6 {
		return mgl32.Vec3{0, 0, 1}
	}
	return v.Normalize()
}

// AlbedoMap is the base surface colour.
type AlbedoMap struct {
	s *Sampler
}

func NewAlbedoMap(s *Sampler) *AlbedoMap {
	return &AlbedoMap{s: s}
}

func (a *AlbedoMap) Color(uv mgl32.Vec2) mgl32.Vec3 {
	return a.s.Sample(uv)
}

// Material bundles the three textures a surface is shaded with.
type Material struct {
	Height *HeightField
	Normal *NormalMap
	Albedo *AlbedoMap
}

func (m *Material) Validate() error {
	if m == nil {
		return errors.New("texture: nil material")
	}
	if m.Height == nil || m.Height.s == nil {
		return errors.New("texture: material has no height field")
	}
	if m.Normal == nil || m.Normal.s == nil {
		return errors.New("texture: material has no normal map")
	}
	if m.Albedo == nil || m.Albedo.s == nil {
		return errors.New("texture: material has no albedo map")
	}
	return nil
}
