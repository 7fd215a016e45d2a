package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-hash-mcp/internal/fingerprint"
)

// GrayMode selects how color pixels are reduced to one brightness value.
type GrayMode string

const (
	// GrayLuma weights the RGB channels (0.3, 0.6, 0.1).
	GrayLuma GrayMode = "luma"

	// GrayLightness uses the CIE L*a*b* lightness channel, which tracks
	// perceived brightness more closely for saturated colors.
	GrayLightness GrayMode = "lightness"
)

// ParseGrayMode validates a gray mode name. The empty string selects GrayLuma.
func ParseGrayMode(name string) (GrayMode, error) {
	switch GrayMode(strings.ToLower(name)) {
	case "", GrayLuma:
		return GrayLuma, nil
	case GrayLightness:
		return GrayLightness, nil
	}
	return "", fmt.Errorf("unknown gray mode: %s", name)
}

var resampleFilters = map[string]imaging.ResampleFilter{
	"nearest":    imaging.NearestNeighbor,
	"box":        imaging.Box,
	"linear":     imaging.Linear,
	"catmullrom": imaging.CatmullRom,
	"lanczos":    imaging.Lanczos,
}

// ParseResampleFilter maps a filter name to its resampling filter. The empty
// string selects Lanczos.
func ParseResampleFilter(name string) (imaging.ResampleFilter, error) {
	if name == "" {
		return imaging.Lanczos, nil
	}
	f, ok := resampleFilters[strings.ToLower(name)]
	if !ok {
		return imaging.ResampleFilter{}, fmt.Errorf("unknown resample filter: %s", name)
	}
	return f, nil
}

// NormalizeOptions controls how a source image becomes the grayscale input
// of a fingerprint.
type NormalizeOptions struct {
	// Resample is the filter name understood by ParseResampleFilter.
	Resample string

	// GrayMode selects the brightness conversion.
	GrayMode GrayMode

	// SkipOrient disables MirrorByBrightness.
	SkipOrient bool
}

// DefaultNormalizeOptions returns Lanczos resampling, luma conversion and
// orientation enabled.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{
		Resample: "lanczos",
		GrayMode: GrayLuma,
	}
}

// Normalize turns any decoded image into the fingerprint.Size square
// grayscale image the hash is computed from.
//
// The image is resized (ignoring aspect ratio), converted to grayscale and,
// unless disabled, mirrored by MirrorByBrightness. The returned image has
// bounds starting at (0,0).
func Normalize(img image.Image, opts NormalizeOptions) (*image.Gray, error) {
	filter, err := ParseResampleFilter(opts.Resample)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("cannot normalize empty image")
	}

	resized := imaging.Resize(img, fingerprint.Size, fingerprint.Size, filter)

	var gray *image.Gray
	switch opts.GrayMode {
	case GrayLightness:
		gray = lightness(resized)
	case GrayLuma, "":
		gray = toGray(effect.Grayscale(resized))
	default:
		return nil, fmt.Errorf("unknown gray mode: %s", opts.GrayMode)
	}

	if opts.SkipOrient {
		return gray, nil
	}
	return MirrorByBrightness(gray), nil
}

// lightness converts img to grayscale using CIE L*. Fully transparent
// pixels become black.
func lightness(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c, _ := colorful.MakeColor(img.At(x, y))
			l, _, _ := c.Lab()
			l = math.Max(0, math.Min(1, l))
			out.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: uint8(math.Round(l * 255))})
		}
	}
	return out
}
