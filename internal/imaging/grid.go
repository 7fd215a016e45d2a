package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-hash-mcp/internal/fingerprint"
)

// DefaultGridColor is used when a grid is requested without a color.
const DefaultGridColor = "#ff0000"

// gridBlend is how strongly grid lines cover the preview beneath them.
const gridBlend = 0.6

// GridOptions controls the lines drawn over a scaled preview.
type GridOptions struct {
	// Color is a "#rrggbb" or "#rgb" hex color.
	Color string `json:"color,omitempty"`

	// Cells also outlines every fingerprint cell, not just the quadrant
	// boundaries. Ignored below scale 4, where cells are too small to
	// separate.
	Cells bool `json:"cells,omitempty"`
}

// parseGridColor accepts an empty string as DefaultGridColor.
func parseGridColor(hex string) (colorful.Color, error) {
	if hex == "" {
		hex = DefaultGridColor
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}
	if len(hex) != 4 && len(hex) != 7 {
		return colorful.Color{}, fmt.Errorf("invalid grid color %q: want #rgb or #rrggbb", hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid grid color %q: %w", hex, err)
	}
	return c, nil
}

// overlayGrid copies img and blends grid lines over it. scale is the side of
// one fingerprint cell in img.
func overlayGrid(img image.Image, scale int, opts GridOptions) (*image.RGBA, error) {
	line, err := parseGridColor(opts.Color)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	step := scale * fingerprint.Size / 2
	if opts.Cells && scale >= 4 {
		step = scale
	}

	width, height := result.Bounds().Dx(), result.Bounds().Dy()

	// Vertical lines
	for x := step; x < width; x += step {
		for y := 0; y < height; y++ {
			blendPixel(result, x, y, line)
		}
	}

	// Horizontal lines
	for y := step; y < height; y += step {
		for x := 0; x < width; x++ {
			if x%step == 0 && x > 0 {
				continue // already drawn by the vertical pass
			}
			blendPixel(result, x, y, line)
		}
	}

	return result, nil
}

func blendPixel(img *image.RGBA, x, y int, line colorful.Color) {
	under, ok := colorful.MakeColor(img.RGBAAt(x, y))
	if !ok {
		under = colorful.Color{}
	}
	r, g, b := under.BlendRgb(line, gridBlend).Clamped().RGB255()
	img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
}
