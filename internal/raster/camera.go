// Package raster is the software host for the shading core: it places the
// demo quad and light in front of a camera, casts one ray per pixel and
// hands the interpolated surface inputs to a shader.
package raster

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera looks down -Z at the origin. Rotate and Elevate spin the model, not
// the eye, and are in degrees.
type Camera struct {
	Eye     mgl32.Vec3
	Rotate  float32
	Elevate float32

	FovY float32
	Near float32
	Far  float32
}

func DefaultCamera() Camera {
	return Camera{
		Eye:     mgl32.Vec3{0, 0, 35},
		Elevate: -20,
		FovY:    25,
		Near:    0.1,
		Far:     1000,
	}
}

// View is the eye transform alone. The light lives in this space.
func (c Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
}

// Model applies elevation about X, then rotation about Y.
func (c Camera) Model() mgl32.Mat4 {
	return mgl32.HomogRotate3DX(mgl32.DegToRad(c.Elevate)).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(c.Rotate)))
}

func (c Camera) ModelView() mgl32.Mat4 {
	return c.View().Mul4(c.Model())
}

func (c Camera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// AdvanceRotation returns the camera turned by step degrees, wrapped into
// [0,360).
func (c Camera) AdvanceRotation(step float32) Camera {
	c.Rotate = math32.Mod(c.Rotate+step, 360)
	if c.Rotate < 0 {
		c.Rotate += 360
	}
	return c
}

// InvertRigid inverts a rotation plus translation: the rotation is
// transposed and the translation becomes -Rᵀt. m must not scale or shear.
func InvertRigid(m mgl32.Mat4) mgl32.Mat4 {
	rt := m.Mat3().Transpose()
	t := rt.Mul3x1(mgl32.Vec3{m[12], m[13], m[14]}).Mul(-1)
	out := rt.Mat4()
	out[12], out[13], out[14] = t[0], t[1], t[2]
	return out
}

// Light is a coloured point light in world space.
type Light struct {
	Position  mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
}

func DefaultLight() Light {
	return Light{
		Position:  mgl32.Vec3{0, 0, 8},
		Color:     mgl32.Vec3{1, 1, 0.65},
		Intensity: 1,
	}
}

// Clamped keeps the light inside the box it can be moved around in.
func (l Light) Clamped() Light {
	l.Position = mgl32.Vec3{
		mgl32.Clamp(l.Position[0], -10, 10),
		mgl32.Clamp(l.Position[1], -10, 10),
		mgl32.Clamp(l.Position[2], 2, 20),
	}
	return l
}

// markerRadius is the size of the sphere drawn at the light.
const markerRadius = 0.5

// hitSphere returns the nearest positive distance along the unit ray from the
// origin to a sphere, or false.
func hitSphere(dir, center mgl32.Vec3, radius float32) (float32, bool) {
	b := dir.Dot(center)
	disc := b*b - (center.Dot(center) - radius*radius)
	if disc < 0 {
		return 0, false
	}
	s := math32.Sqrt(disc)
	if t := b - s; t > 0 {
		return t, true
	}
	if t := b + s; t > 0 {
		return t, true
	}
	return 0, false
}
