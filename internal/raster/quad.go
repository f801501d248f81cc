package raster

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/erinpentecost/parallaxmap/internal/shading"
)

// Quad is an axis-aligned square in the plane z=Z of object space, UV 0..1
// across [-HalfSize, HalfSize]. U runs along y and V along x, so the +X
// tangent lies along V and the +Y bitangent along U.
type Quad struct {
	HalfSize float32
	Z        float32
	// Handedness is the tangent's w: the bitangent is cross(N, T) * w.
	Handedness float32
}

func DemoQuad() Quad {
	return Quad{HalfSize: 7, Z: 4, Handedness: 1}
}

// Frame is the same for every point of the quad.
func (q Quad) Frame() shading.TangentFrame {
	n := mgl32.Vec3{0, 0, 1}
	t := mgl32.Vec3{1, 0, 0}
	return shading.TangentFrame{
		Tangent:   t,
		Bitangent: n.Cross(t).Mul(q.Handedness),
		Normal:    n,
	}
}

// Corners returns the quad's vertices in object space, counter-clockwise.
func (q Quad) Corners() [4]mgl32.Vec3 {
	s := q.HalfSize
	return [4]mgl32.Vec3{{-s, -s, q.Z}, {s, -s, q.Z}, {s, s, q.Z}, {-s, s, q.Z}}
}

// Hit is a ray-quad intersection.
type Hit struct {
	// T is the distance along the unit ray.
	T     float32
	Point mgl32.Vec3
	UV    mgl32.Vec2
}

// Intersect casts a ray from origin along the unit dir. Both faces count.
func (q Quad) Intersect(origin, dir mgl32.Vec3) (Hit, bool) {
	if math32.Abs(dir[2]) < 1e-9 {
		return Hit{}, false
	}
	t := (q.Z - origin[2]) / dir[2]
	if t <= 0 {
		return Hit{}, false
	}
	p := origin.Add(dir.Mul(t))
	s := q.HalfSize
	if p[0] < -s || p[0] > s || p[1] < -s || p[1] > s {
		return Hit{}, false
	}
	uv := mgl32.Vec2{(p[1] + s) / (2 * s), (p[0] + s) / (2 * s)}
	return Hit{T: t, Point: p, UV: uv}, true
}

// Fragment builds the shader inputs at a hit from the object-space eye and
// light positions.
func (q Quad) Fragment(h Hit, eye, light mgl32.Vec3) shading.Fragment {
	f := q.Frame()
	return shading.Fragment{
		UV:    h.UV,
		View:  f.ToTangent(eye.Sub(h.Point)).Normalize(),
		Light: f.ToTangent(light.Sub(h.Point)).Normalize(),
	}
}
