package shading

import (
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/erinpentecost/parallaxmap/internal/texture"
)

// heightFunc is an analytic height field with wrap addressing.
type heightFunc struct {
	f     func(u, v float32) float32
	texel mgl32.Vec2
}

func (h heightFunc) Height(uv mgl32.Vec2) float32 {
	return h.f(texture.Wrap(uv[0]), texture.Wrap(uv[1]))
}

func (h heightFunc) Texel() mgl32.Vec2 { return h.texel }

var texel256 = mgl32.Vec2{1.0 / 256, 1.0 / 256}

func flatField(v float32) heightFunc {
	return heightFunc{f: func(_, _ float32) float32 { return v }, texel: texel256}
}

func wavyField() heightFunc {
	return heightFunc{
		f: func(u, v float32) float32 {
			return 0.5 + 0.4*math32.Sin(2*math.Pi*u)*math32.Cos(2*math.Pi*v)
		},
		texel: texel256,
	}
}

// wallField is flat at 0.2 with a full-height band across u in [0.52, 0.56].
func wallField() heightFunc {
	return heightFunc{
		f: func(u, _ float32) float32 {
			if u >= 0.52 && u <= 0.56 {
				return 1
			}
			return 0.2
		},
		texel: texel256,
	}
}

type constNormal mgl32.Vec3

func (n constNormal) Normal(mgl32.Vec2) mgl32.Vec3 { return mgl32.Vec3(n) }

type constAlbedo mgl32.Vec3

func (a constAlbedo) Color(mgl32.Vec2) mgl32.Vec3 { return mgl32.Vec3(a) }

var up = mgl32.Vec3{0, 0, 1}

func obliqueViews() []mgl32.Vec3 {
	return []mgl32.Vec3{
		{0, 0, 1},
		mgl32.Vec3{0.6, 0, 0.8},
		mgl32.Vec3{-0.3, 0.4, 0.866}.Normalize(),
		mgl32.Vec3{0.7, -0.7, 0.14}.Normalize(),
		mgl32.Vec3{0.05, 0.99, 0.1}.Normalize(),
	}
}

func requireFinite(t *testing.T, vs ...float32) {
	t.Helper()
	for _, v := range vs {
		require.False(t, math32.IsNaN(v), "NaN")
		require.False(t, math32.IsInf(v, 0), "Inf")
	}
}

func TestStepCountFaceOnVsGrazing(t *testing.T) {
	tun := DefaultTunables()
	faceOn := StepCount(1, tun.MinSteps, tun.MaxSteps)
	grazing := StepCount(1e-4, tun.MinSteps, tun.MaxSteps)
	require.Equal(t, tun.MinSteps, faceOn)
	require.Less(t, faceOn, grazing)
	require.InDelta(t, tun.MaxSteps, grazing, 0.01)

	require.Less(t,
		planMarch(up, 0.05, tun.MinSteps, tun.MaxSteps).steps,
		planMarch(mgl32.Vec3{1, 0, 1e-4}, 0.05, tun.MinSteps, tun.MaxSteps).steps)

	hq := tun.HighQuality()
	require.Equal(t, float32(16), StepCount(1, hq.MinSteps, hq.MaxSteps))
	require.Equal(t, float32(128), StepCount(0, hq.MinSteps, hq.MaxSteps))
}

func TestPlanMarchSwapsAxes(t *testing.T) {
	m := planMarch(mgl32.Vec3{0.6, 0, 0.8}, 0.1, 36, 72)
	require.Equal(t, float32(0), m.deltaUV[0])
	require.Greater(t, m.deltaUV[1], float32(0))
	require.InDelta(t, 0.1*0.6/(0.8*float32(m.steps)), m.deltaUV[1], 1e-7)
	require.InDelta(t, 1/float32(m.steps), m.layer, 1e-7)
}

func TestTraceZeroBumpScale(t *testing.T) {
	p := DefaultParams()
	p.BumpScale = 0
	uv := mgl32.Vec2{0.37, 0.81}
	for _, v := range obliqueViews() {
		got := Trace(wavyField(), uv, v, p)
		require.Equal(t, uv, got.UV)
		require.Zero(t, got.Steps)
	}
}

func TestTraceParallaxDisabled(t *testing.T) {
	p := DefaultParams()
	p.Parallax = false
	uv := mgl32.Vec2{0.1, 0.2}
	require.Equal(t, uv, Trace(wavyField(), uv, obliqueViews()[2], p).UV)
	require.Equal(t, uv, Offset(wavyField(), uv, obliqueViews()[2], p).UV)
}

func TestTraceFlatField(t *testing.T) {
	p := DefaultParams()
	uv := mgl32.Vec2{0.4, 0.6}

	t.Run("face on", func(t *testing.T) {
		got := Trace(flatField(0.5), uv, up, p)
		require.Equal(t, uv, got.UV)
		require.InDelta(t, 0.5, got.Height, 1e-6)
	})

	t.Run("oblique is a rigid shift", func(t *testing.T) {
		view := mgl32.Vec3{0.6, 0, 0.8}
		got := Trace(flatField(0.5), uv, view, p)
		// Depth 0.5 below the top layer along the swapped axis.
		shift := p.BumpScale * 0.5 * view[0] / view[2]
		require.InDelta(t, uv[0], got.UV[0], 1e-6)
		require.InDelta(t, uv[1]-shift, got.UV[1], 1e-4)
	})

	t.Run("top layer", func(t *testing.T) {
		got := Trace(flatField(1), uv, obliqueViews()[3], p)
		require.Equal(t, uv, got.UV)
		require.Zero(t, got.Steps)
	})
}

func TestTraceContinuousInBumpScale(t *testing.T) {
	p := DefaultParams()
	q := p
	q.BumpScale += 1e-4
	for _, view := range obliqueViews()[:3] {
		for _, uv := range []mgl32.Vec2{{0.1, 0.1}, {0.33, 0.72}, {0.9, 0.45}} {
			a := Trace(wavyField(), uv, view, p)
			b := Trace(wavyField(), uv, view, q)
			step := planMarch(view, q.BumpScale, p.Tunables.MinSteps, p.Tunables.MaxSteps).deltaUV.Len()
			require.LessOrEqual(t, b.UV.Sub(a.UV).Len(), step+1e-5, "view %v uv %v", view, uv)
		}
	}
}

func TestTraceGrazingIsFinite(t *testing.T) {
	p := DefaultParams()
	for _, view := range []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0.7071, 0.7071, 0}} {
		got := Trace(wavyField(), mgl32.Vec2{0.5, 0.5}, view, p)
		requireFinite(t, got.UV[0], got.UV[1], got.Height)
		got = Offset(wavyField(), mgl32.Vec2{0.5, 0.5}, view, p)
		requireFinite(t, got.UV[0], got.UV[1], got.Height)
	}
}

func TestCrossingWeight(t *testing.T) {
	tests := []struct {
		name          string
		after, before float32
		want          float32
	}{
		{name: "midway", after: 0.25, before: -0.25, want: 0.5},
		{name: "exact hit", after: 0, before: -0.1, want: 0},
		{name: "degenerate", after: 0, before: 0, want: 0},
		{name: "tiny denominator", after: 1e-8, before: -1e-8, want: 0},
		{name: "overshoot clamps", after: -0.2, before: -0.1, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := crossingWeight(tt.after, tt.before)
			require.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestOffsetMidHeightIsStill(t *testing.T) {
	p := DefaultParams()
	uv := mgl32.Vec2{0.2, 0.3}
	got := Offset(flatField(0.5), uv, obliqueViews()[2], p)
	require.InDeltaSlice(t, uv[:], got.UV[:], 1e-7)

	raised := Offset(flatField(1), uv, mgl32.Vec3{0.6, 0, 0.8}, p)
	require.Greater(t, raised.UV[1], uv[1])
}

func TestNormalBlendHalf(t *testing.T) {
	p := DefaultParams()
	p.BumpScale = 0.5
	ramp := heightFunc{
		f:     func(u, v float32) float32 { return 0.3*u + 0.1*v },
		texel: mgl32.Vec2{1.0 / 64, 1.0 / 64},
	}
	uv := mgl32.Vec2{0.4, 0.4}

	hn := HeightNormal(ramp, uv, p.BumpScale)
	slope := mgl32.Vec3{-0.15, -0.05, 1}.Normalize()
	require.InDeltaSlice(t, slope[:], hn[:], 1e-4)

	nm := mgl32.Vec3{0.1, 0.4, 0.9}.Normalize()
	got := ReconstructNormal(ramp, constNormal(nm), uv, p)
	want := nm.Add(hn).Normalize()
	require.InDeltaSlice(t, want[:], got[:], 1e-5)
	require.InDelta(t, 1, got.Len(), 1e-5)
}

func TestBlendNormalsOpposite(t *testing.T) {
	got := BlendNormals(up, up.Mul(-1), 0.5)
	require.Equal(t, up.Mul(-1), got)
}

func TestAmbientOcclusionFlat(t *testing.T) {
	p := DefaultParams()
	ao := AmbientOcclusion(flatField(0.5), constNormal(up), mgl32.Vec2{0.5, 0.5}, up, 0.5, p)
	require.InDelta(t, 1, ao, 0.02)
	require.LessOrEqual(t, ao, float32(1))
}

func TestAmbientOcclusionBounds(t *testing.T) {
	spiky := heightFunc{
		f: func(u, v float32) float32 {
			if int(u*256)%2 == int(v*256)%2 {
				return 1
			}
			return 0
		},
		texel: texel256,
	}
	normals := []mgl32.Vec3{up, mgl32.Vec3{1, 0, 0.1}.Normalize(), {0, -1, 0}, {0, 0, -1}}
	for _, aoMin := range []float32{0, 0.35, 0.9} {
		p := DefaultParams()
		p.AOMin = aoMin
		p.Tunables.AOStrength = 4
		for _, field := range []heightFunc{wavyField(), spiky, flatField(0)} {
			for _, n := range normals {
				for _, uv := range []mgl32.Vec2{{0.1, 0.9}, {0.5, 0.5}, {0.001, 0.999}} {
					for _, center := range []float32{0, 0.5, 1} {
						ao := AmbientOcclusion(field, constNormal(n), uv, n, center, p)
						require.GreaterOrEqual(t, ao, aoMin)
						require.LessOrEqual(t, ao, float32(1))
					}
				}
			}
		}
	}
}

func TestAmbientOcclusionDarkensRaisedCenter(t *testing.T) {
	p := DefaultParams()
	tilted := mgl32.Vec3{0.8, 0, 0.6}
	ao := AmbientOcclusion(flatField(0.1), constNormal(tilted), mgl32.Vec2{0.5, 0.5}, tilted, 0.9, p)
	require.Less(t, ao, float32(0.8))
}

func TestSelfShadowDisabled(t *testing.T) {
	p := DefaultParams()
	p.SelfShadow = false
	light := mgl32.Vec3{0, 0.6, 0.8}
	require.Equal(t, float32(1), SelfShadow(wallField(), mgl32.Vec2{0.5, 0.5}, 0.2, up, light, p))
}

func TestSelfShadowFacingAway(t *testing.T) {
	p := DefaultParams()
	light := mgl32.Vec3{0, 0.6, -0.8}
	require.Equal(t, float32(1), SelfShadow(wallField(), mgl32.Vec2{0.5, 0.5}, 0.2, up, light, p))
}

func TestSelfShadowFlatField(t *testing.T) {
	p := DefaultParams()
	lights := []mgl32.Vec3{
		up,
		mgl32.Vec3{0, 0.6, 0.8},
		mgl32.Vec3{-0.5, 0.5, 0.2}.Normalize(),
		mgl32.Vec3{0.99, 0, 0.05}.Normalize(),
	}
	for _, l := range lights {
		got := SelfShadow(flatField(0.5), mgl32.Vec2{0.3, 0.3}, 0.5, up, l, p)
		require.Equal(t, float32(1), got, "light %v", l)
	}
}

func TestSelfShadowWall(t *testing.T) {
	p := DefaultParams()
	p.BumpScale = 0.1
	uv := mgl32.Vec2{0.5, 0.5}

	toward := SelfShadow(wallField(), uv, 0.2, up, mgl32.Vec3{0, 0.6, 0.8}, p)
	require.Less(t, toward, float32(1))
	// Every tap is blocked, so the average is exactly the floor.
	require.InDelta(t, p.ShadowMin, toward, 1e-6)

	away := SelfShadow(wallField(), uv, 0.2, up, mgl32.Vec3{0, -0.6, 0.8}, p)
	require.Equal(t, float32(1), away)
}

func TestSelfShadowPenumbra(t *testing.T) {
	p := DefaultParams()
	p.BumpScale = 0.1
	// The wall's near edge sits within the kernel's reach for only some taps.
	edge := heightFunc{
		f: func(u, _ float32) float32 {
			if u >= 0.5005 && u <= 0.52 {
				return 0.3
			}
			return 0.2
		},
		texel: texel256,
	}
	got := SelfShadow(edge, mgl32.Vec2{0.5, 0.5}, 0.2, up, mgl32.Vec3{0, 0.6, 0.8}, p)
	// Partly lit: strictly between the floor and full light.
	require.Greater(t, got, p.ShadowMin)
	require.Less(t, got, float32(1))
}

func TestSelfShadowBounds(t *testing.T) {
	for _, shadowMin := range []float32{0, 0.35, 0.8} {
		p := DefaultParams()
		p.ShadowMin = shadowMin
		p.BumpScale = 0.2
		for _, l := range []mgl32.Vec3{up, mgl32.Vec3{0.3, 0.3, 0.9}.Normalize(), mgl32.Vec3{1, 0, 0.02}.Normalize()} {
			for _, uv := range []mgl32.Vec2{{0.1, 0.1}, {0.6, 0.25}, {0.95, 0.05}} {
				got := SelfShadow(wavyField(), uv, wavyField().Height(uv), up, l, p)
				require.GreaterOrEqual(t, got, shadowMin)
				require.LessOrEqual(t, got, float32(1))
			}
		}
	}
}

func TestCompositeAmbientIsNotOccluded(t *testing.T) {
	p := DefaultParams()
	s := Surface{
		Albedo: mgl32.Vec3{0.5, 0.4, 0.3},
		Normal: up,
		Light:  mgl32.Vec3{0, 0, -1},
		View:   up,
		AO:     0.2,
		Shadow: 0.2,
	}
	got := Composite(s, p)
	want := s.Albedo.Mul(p.Ambient)
	require.InDeltaSlice(t, want[:], got[:], 1e-6)
}

func TestCompositeShadowAndAOAttenuateDirect(t *testing.T) {
	p := DefaultParams()
	lit := Surface{
		Albedo: mgl32.Vec3{0.5, 0.5, 0.5},
		Normal: up,
		Light:  mgl32.Vec3{0, 0.6, 0.8},
		View:   up,
		Height: 0.5,
		AO:     1,
		Shadow: 1,
	}
	full := Composite(lit, p)

	shadowed := lit
	shadowed.Shadow = 0.35
	occluded := lit
	occluded.AO = 0.35
	for i := range 3 {
		require.Less(t, Composite(shadowed, p)[i], full[i])
		require.Less(t, Composite(occluded, p)[i], full[i])
	}
	// AO leaves the specular highlight alone, shadow does not.
	require.Greater(t, Composite(occluded, p)[0], Composite(shadowed, p)[0])
}

func TestSanitize(t *testing.T) {
	p := Params{BumpScale: -1, AOMin: 2, ShadowMin: -1}
	p.Tunables.MinSteps = 50
	p.Tunables.MaxSteps = 10
	p.Tunables.AOSamples = 3
	p.Tunables.NormalBlend = 4
	got := p.Sanitize()
	require.Zero(t, got.BumpScale)
	require.Equal(t, float32(1), got.AOMin)
	require.Zero(t, got.ShadowMin)
	require.Equal(t, float32(50), got.Tunables.MaxSteps)
	require.Equal(t, minAOSamples, got.Tunables.AOSamples)
	require.Equal(t, float32(1), got.Tunables.NormalBlend)
	require.Greater(t, got.Tunables.AOWeightFloor, float32(0))
}

func TestClamp01NaN(t *testing.T) {
	require.Zero(t, clamp01(math32.NaN()))
	require.Equal(t, float32(1), clamp01(math32.Inf(1)))
}

func TestTangentFrame(t *testing.T) {
	f := TangentFrame{Tangent: mgl32.Vec3{1, 0, 0}, Bitangent: mgl32.Vec3{0, 1, 0}, Normal: up}
	require.True(t, f.Orthonormal(1e-5))
	require.Equal(t, mgl32.Vec3{1, 2, 3}, f.ToTangent(mgl32.Vec3{1, 2, 3}))

	skew := TangentFrame{Tangent: mgl32.Vec3{1, 0, 0}, Bitangent: mgl32.Vec3{0.5, 0.5, 0}, Normal: up}
	require.False(t, skew.Orthonormal(1e-5))
}

func TestFlipHandedness(t *testing.T) {
	require.Equal(t, mgl32.Vec3{-0.1, 0.2, 0.3}, FlipHandedness(mgl32.Vec3{0.1, 0.2, 0.3}))
}
