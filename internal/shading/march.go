package shading

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// StepCount interpolates between maxSteps edge-on (|z|=0) and minSteps
// face-on (|z|=1).
func StepCount(z, minSteps, maxSteps float32) float32 {
	t := clamp01(math32.Abs(z))
	return maxSteps + (minSteps-maxSteps)*t
}

// march is the discretisation shared by the view and light rays. Both must
// come from planMarch or parallax and shadow offsets drift apart.
type march struct {
	steps int
	// layer is the height travelled per step.
	layer float32
	// deltaUV is the UV travelled per step in the direction dir leans
	// toward. The view trace subtracts it, the shadow trace adds it.
	deltaUV mgl32.Vec2
}

// planMarch derives the step count and per-step UV delta for a tangent-space
// direction pointing away from the surface. The yx swap maps tangent axes
// onto UV axes for the quad's parameterisation.
func planMarch(dir mgl32.Vec3, bumpScale, minSteps, maxSteps float32) march {
	n := int(math32.Round(StepCount(dir[2], minSteps, maxSteps)))
	if n < 1 {
		n = 1
	}
	z := max(math32.Abs(dir[2]), grazingEpsilon)
	s := bumpScale / (z * float32(n))
	return march{
		steps:   n,
		layer:   1 / float32(n),
		deltaUV: mgl32.Vec2{dir[1] * s, dir[0] * s},
	}
}
