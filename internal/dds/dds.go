// Package dds reads and writes DirectDraw Surface textures.
//
// Decoding handles DXT1, DXT3, DXT5 and uncompressed 24/32-bit BGR(A).
// Encoding always writes uncompressed 32-bit RGBA so rendered frames and
// generated textures survive a round trip exactly.
package dds

import (
	"encoding/binary"
	"errors"
	"image"
	"io"

	"golang.org/x/image/draw"
)

const (
	magic      = "DDS "
	headerSize = 124
	pfSize     = 32
	// pfOffset is where the pixel format block starts inside the header.
	pfOffset = 76

	flagCaps        = 0x1
	flagHeight      = 0x2
	flagWidth       = 0x4
	flagPitch       = 0x8
	flagPixelFormat = 0x1000

	pfAlphaPixels = 0x1
	pfRGB         = 0x40

	capsTexture = 0x1000
)

// Encode writes m as an uncompressed RGBA8 DDS. Channel masks describe
// bytes in R G B A order.
func Encode(w io.Writer, m image.Image) error {
	b := m.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return errors.New("dds: empty image")
	}
	rgba, ok := m.(*image.RGBA)
	if !ok || rgba.Stride != b.Dx()*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), m, b.Min, draw.Src)
	}

	var header [headerSize]byte
	put := func(off int, v uint32) {
		binary.LittleEndian.PutUint32(header[off:], v)
	}
	put(0, headerSize)
	put(4, flagCaps|flagHeight|flagWidth|flagPitch|flagPixelFormat)
	put(8, uint32(b.Dy()))
	put(12, uint32(b.Dx()))
	put(16, uint32(b.Dx()*4))
	put(pfOffset, pfSize)
	put(pfOffset+4, pfRGB|pfAlphaPixels)
	put(pfOffset+12, 32)
	put(pfOffset+16, 0x000000FF)
	put(pfOffset+20, 0x0000FF00)
	put(pfOffset+24, 0x00FF0000)
	put(pfOffset+28, 0xFF000000)
	put(108, capsTexture)

	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(rgba.Pix[:b.Dx()*b.Dy()*4])
	return err
}
