package dds

import (
	"encoding/binary"
	"fmt"
	"image"

	"github.com/mauserzjeh/dxt"
)

// Decode parses a DDS file into an RGBA image.
func Decode(raw []byte) (*image.RGBA, error) {
	const total = len(magic) + headerSize
	if len(raw) < total {
		return nil, fmt.Errorf("dds: data too short for header: %d < %d", len(raw), total)
	}
	if string(raw[:len(magic)]) != magic {
		return nil, fmt.Errorf("dds: missing magic %q", magic)
	}
	hdr := raw[len(magic):total]
	height := binary.LittleEndian.Uint32(hdr[8:12])
	width := binary.LittleEndian.Uint32(hdr[12:16])
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("dds: bad dimensions %dx%d", width, height)
	}
	pf := hdr[pfOffset : pfOffset+pfSize]
	fourCC := string(pf[8:12])
	bits := binary.LittleEndian.Uint32(pf[12:16])
	data := raw[total:]

	var (
		pix []byte
		err error
	)
	switch fourCC {
	case "DXT1":
		pix, err = dxt.DecodeDXT1(data, uint(width), uint(height))
	case "DXT3":
		pix, err = dxt.DecodeDXT3(data, uint(width), uint(height))
	case "DXT5":
		pix, err = dxt.DecodeDXT5(data, uint(width), uint(height))
	case "\x00\x00\x00\x00":
		pix, err = decodeUncompressed(data, int(width), int(height), bits, pf)
	default:
		return nil, fmt.Errorf("dds: unsupported FourCC %q", fourCC)
	}
	if err != nil {
		return nil, fmt.Errorf("dds: decode %dx%d: %w", width, height, err)
	}
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	if len(pix) != len(img.Pix) {
		return nil, fmt.Errorf("dds: decoded %d bytes, want %d", len(pix), len(img.Pix))
	}
	copy(img.Pix, pix)
	return img, nil
}

// decodeUncompressed reads tightly packed 24 or 32 bit pixels. The red mask
// tells RGBA byte order (what Encode writes) apart from BGRA.
func decodeUncompressed(data []byte, width, height int, bits uint32, pf []byte) ([]byte, error) {
	if bits != 24 && bits != 32 {
		return nil, fmt.Errorf("unsupported bit count %d", bits)
	}
	bpp := int(bits / 8)
	if len(data) < width*height*bpp {
		return nil, fmt.Errorf("data too small (%d < %d)", len(data), width*height*bpp)
	}
	ri, bi := 2, 0
	if binary.LittleEndian.Uint32(pf[16:20]) == 0x000000FF {
		ri, bi = 0, 2
	}
	out := make([]byte, width*height*4)
	for i := range width * height {
		src := data[i*bpp : i*bpp+bpp]
		dst := out[i*4 : i*4+4]
		dst[0] = src[ri]
		dst[1] = src[1]
		dst[2] = src[bi]
		dst[3] = 0xFF
		if bpp == 4 {
			dst[3] = src[3]
		}
	}
	return out, nil
}
