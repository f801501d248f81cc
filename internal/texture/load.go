package texture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/erinpentecost/parallaxmap/internal/dds"
)

// Load decodes a .bmp, .png or .dds file.
func Load(path string) (image.Image, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".dds":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", path, err)
		}
		img, err := dds.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %q: %w", path, err)
		}
		return img, nil
	case ".bmp", ".png":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", path, err)
		}
		defer f.Close()
		var img image.Image
		if ext == ".bmp" {
			img, err = bmp.Decode(f)
		} else {
			img, err = png.Decode(f)
		}
		if err != nil {
			return nil, fmt.Errorf("decode %q: %w", path, err)
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported texture format %q", path)
	}
}

// LoadSampler is Load followed by FromImage.
func LoadSampler(path string) (*Sampler, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	s, err := FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("sample %q: %w", path, err)
	}
	return s, nil
}
