// Package texture holds the read-only samplers the shading core reads from.
//
// All samplers use repeat addressing and bilinear filtering, so any UV is
// valid input. They are never mutated after construction and are safe to
// share between goroutines.
package texture

import (
	"errors"
	"fmt"
	"image"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const channels = 3

// Sampler is an RGB float texture with wrap addressing.
type Sampler struct {
	width  int
	height int
	// pix holds row-major RGB triples in [0,1], row 0 at v=0.
	pix []float32
}

// FromRGB builds a sampler from a flat 8-bit RGB buffer.
func FromRGB(rgb []byte, width, height int) (*Sampler, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("texture: bad dimensions %dx%d", width, height)
	}
	if len(rgb) != width*height*channels {
		return nil, fmt.Errorf("texture: got %d bytes, want %d for %dx%d", len(rgb), width*height*channels, width, height)
	}
	s := &Sampler{
		width:  width,
		height: height,
		pix:    make([]float32, len(rgb)),
	}
	for i, b := range rgb {
		s.pix[i] = float32(b) / 255
	}
	return s, nil
}

// FromImage builds a sampler from any image. Image row 0 maps to v=0.
func FromImage(img image.Image) (*Sampler, error) {
	if img == nil {
		return nil, errors.New("texture: nil image")
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.New("texture: empty image")
	}
	s := &Sampler{
		width:  b.Dx(),
		height: b.Dy(),
		pix:    make([]float32, b.Dx()*b.Dy()*channels),
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			s.pix[i+0] = float32(r) / 0xffff
			s.pix[i+1] = float32(g) / 0xffff
			s.pix[i+2] = float32(bb) / 0xffff
			i += channels
		}
	}
	return s, nil
}

// Size returns the texture dimensions in texels.
func (s *Sampler) Size() (width, height int) {
	return s.width, s.height
}

// Texel returns the UV size of one texel.
func (s *Sampler) Texel() mgl32.Vec2 {
	return mgl32.Vec2{1 / float32(s.width), 1 / float32(s.height)}
}

// Sample returns the bilinearly filtered colour at uv.
func (s *Sampler) Sample(uv mgl32.Vec2) mgl32.Vec3 {
	// Texel centres sit at half-integer coordinates.
	x := Wrap(uv[0])*float32(s.width) - 0.5
	y := Wrap(uv[1])*float32(s.height) - 0.5
	x0f := math32.Floor(x)
	y0f := math32.Floor(y)
	fx := x - x0f
	fy := y - y0f

	x0 := wrapIndex(int(x0f), s.width)
	y0 := wrapIndex(int(y0f), s.height)
	x1 := wrapIndex(x0+1, s.width)
	y1 := wrapIndex(y0+1, s.height)

	c00 := s.texel(x0, y0)
	c10 := s.texel(x1, y0)
	c01 := s.texel(x0, y1)
	c11 := s.texel(x1, y1)

	top := lerp3(c00, c10, fx)
	bottom := lerp3(c01, c11, fx)
	return lerp3(top, bottom, fy)
}

// Fetch returns the unfiltered texel at integer coordinates, wrapped.
func (s *Sampler) Fetch(x, y int) mgl32.Vec3 {
	return s.texel(wrapIndex(x, s.width), wrapIndex(y, s.height))
}

func (s *Sampler) texel(x, y int) mgl32.Vec3 {
	i := (y*s.width + x) * channels
	return mgl32.Vec3{s.pix[i], s.pix[i+1], s.pix[i+2]}
}

// Wrap maps f into [0,1) with repeat semantics.
func Wrap(f float32) float32 {
	w := f - math32.Floor(f)
	// f slightly below an integer can round up to exactly 1.
	if w >= 1 {
		return 0
	}
	return w
}

func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func lerp3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return mgl32.Vec3{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}
