// Package imaging validates icon sources and renders adaptive icons.
package imaging

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// Dimensions is the outcome of a size check.
type Dimensions struct {
	Width   int
	Height  int
	Matches bool
}

func (d Dimensions) String() string { return fmt.Sprintf("%dx%d", d.Width, d.Height) }

// ValidateDimensions reads only the image header of path and reports whether
// it is exactly width x height. An unreadable or non-image file is an error.
func ValidateDimensions(path string, width, height int) (Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Dimensions{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return Dimensions{
		Width:   cfg.Width,
		Height:  cfg.Height,
		Matches: cfg.Width == width && cfg.Height == height,
	}, nil
}

// GenerateAdaptive renders src into a size x size transparent canvas with
// inset pixels of padding on each side and writes it to dst as PNG.
func GenerateAdaptive(src, dst string, size, inset int) error {
	inner := size - 2*inset
	if inner <= 0 {
		return fmt.Errorf("inset %d too large for size %d", inset, size)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(src), err)
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	target := image.Rect(inset, inset, inset+inner, inset+inner)
	draw.CatmullRom.Scale(canvas, target, img, img.Bounds(), draw.Over, nil)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(out, canvas); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", filepath.Base(dst), err)
	}
	return out.Close()
}
