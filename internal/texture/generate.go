package texture

import (
	"image"
	"image/color"
	"math"

	"github.com/chewxy/math32"
)

// bumpCells is how many domes GenerateHeight lays along each axis.
const bumpCells = 4

// GenerateHeight draws a tileable grid of rounded domes. Used when no height
// texture is configured.
func GenerateHeight(size int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	cell := float32(size) / bumpCells
	for y := range size {
		for x := range size {
			// Position inside the cell in [-1,1].
			cx := math32.Mod(float32(x)+0.5, cell)/cell*2 - 1
			cy := math32.Mod(float32(y)+0.5, cell)/cell*2 - 1
			r2 := (cx*cx + cy*cy) / (0.9 * 0.9)
			var h float32
			if r2 < 1 {
				h = math32.Sqrt(1 - r2)
			}
			img.SetGray(x, y, color.Gray{Y: uint8(h*math.MaxUint8 + 0.5)})
		}
	}
	return img
}

// GenerateAlbedo draws two-tone tiles aligned with GenerateHeight's domes.
func GenerateAlbedo(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	light := color.RGBA{R: 196, G: 164, B: 120, A: math.MaxUint8}
	dark := color.RGBA{R: 138, G: 96, B: 70, A: math.MaxUint8}
	cell := size / bumpCells
	if cell == 0 {
		cell = 1
	}
	for y := range size {
		for x := range size {
			if (x/cell+y/cell)%2 == 0 {
				img.SetRGBA(x, y, light)
			} else {
				img.SetRGBA(x, y, dark)
			}
		}
	}
	return img
}

// NormalFromHeight derives a tangent-space normal map from a height image
// using wrapped central differences. strength scales the slope.
//
// Channel encoding, as in the usual tangent-space normal map:
// X: -1 to +1 :  Red:     0 to 255
// Y: -1 to +1 :  Green:   0 to 255
// Z:  0 to +1 :  Blue:  128 to 255
func NormalFromHeight(height image.Image, strength float32) *image.RGBA {
	b := height.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	at := func(x, y int) float32 {
		x = wrapIndex(x, w)
		y = wrapIndex(y, h)
		gray := color.GrayModel.Convert(height.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
		return float32(gray.Y) / math.MaxUint8
	}
	for y := range h {
		for x := range w {
			// Slope in UV units: height difference over two texels.
			dx := (at(x+1, y) - at(x-1, y)) * 0.5 * float32(w) * strength
			dy := (at(x, y+1) - at(x, y-1)) * 0.5 * float32(h) * strength
			nx, ny, nz := -dx, -dy, float32(1)
			l := math32.Sqrt(nx*nx + ny*ny + nz*nz)
			out.SetRGBA(x, y, color.RGBA{
				R: normalTransform(quantize(nx / l)),
				G: normalTransform(quantize(ny / l)),
				B: normalTransform(quantize(nz / l)),
				A: math.MaxUint8,
			})
		}
	}
	return out
}

func quantize(v float32) int8 {
	return int8(math32.Round(max(-1, min(1, v)) * math.MaxInt8))
}

// normalTransform maps a signed component to its unsigned colour byte.
func normalTransform(v int8) uint8 {
	return uint8(v) ^ 0x80
}

// SplitNormalHeight separates a packed normal-height (_nh) texture. The RGB
// channels carry the tangent space normal and alpha carries the height.
func SplitNormalHeight(img image.Image) (*NormalMap, *HeightField, error) {
	b := img.Bounds()
	normals := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	heights := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			normals.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: math.MaxUint8})
			heights.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: c.A})
		}
	}
	ns, err := FromImage(normals)
	if err != nil {
		return nil, nil, err
	}
	hs, err := FromImage(heights)
	if err != nil {
		return nil, nil, err
	}
	return NewNormalMap(ns), NewHeightField(hs), nil
}
