package raster

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/erinpentecost/parallaxmap/internal/dds"
)

// Encode writes img to path in the format its extension names.
func Encode(path string, img image.Image) error {
	var encode func(io.Writer, image.Image) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".bmp":
		encode = bmp.Encode
	case ".png":
		encode = png.Encode
	case ".dds":
		encode = dds.Encode
	default:
		return fmt.Errorf("unsupported output format %q", ext)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer out.Close()
	if err := encode(out, img); err != nil {
		return fmt.Errorf("encode %q: %w", path, err)
	}
	return out.Close()
}
