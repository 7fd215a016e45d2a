package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-hash-mcp/internal/fingerprint"
)

// Preview layers accepted by RenderFingerprint.
const (
	LayerBits      = "bits"
	LayerGrayscale = "grayscale"
)

// MaxPreviewScale bounds the magnification of a preview.
const MaxPreviewScale = 64

// ErrPartialFingerprint is returned when the grayscale layer of a
// fingerprint rebuilt from hex is requested.
var ErrPartialFingerprint = errors.New("fingerprint has no grayscale data")

// PreviewResult contains a rendered fingerprint as a base64 PNG.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Layer       string `json:"layer"`
	Grid        bool   `json:"grid,omitempty"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// RenderFingerprint draws one layer of fp as a square grayscale PNG.
//
// The "bits" layer shows set bits white and clear bits black; the
// "grayscale" layer shows the normalized image the bits were derived from.
// Each fingerprint pixel becomes a scale×scale block. A non-nil grid draws
// quadrant (and optionally cell) boundaries over the result in color.
func RenderFingerprint(fp *fingerprint.Fingerprint, layer string, scale int, grid *GridOptions) (*PreviewResult, error) {
	if scale < 1 || scale > MaxPreviewScale {
		return nil, fmt.Errorf("preview scale %d outside 1-%d", scale, MaxPreviewScale)
	}

	img, err := fingerprintImage(fp, layer)
	if err != nil {
		return nil, err
	}

	var out image.Image = img
	if scale > 1 {
		out = imaging.Resize(img, fingerprint.Size*scale, fingerprint.Size*scale, imaging.NearestNeighbor)
	}
	if grid != nil {
		out, err = overlayGrid(out, scale, *grid)
		if err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		Layer:       layer,
		Grid:        grid != nil,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// fingerprintImage lays the requested layer out as a Size×Size image.
func fingerprintImage(fp *fingerprint.Fingerprint, layer string) (*image.Gray, error) {
	var values [fingerprint.Pixels]uint8
	switch layer {
	case LayerBits:
		for i, b := range fp.Bits() {
			values[i] = b * 255
		}
	case LayerGrayscale:
		if fp.Partial() {
			return nil, ErrPartialFingerprint
		}
		values = fp.Grayscale()
	default:
		return nil, fmt.Errorf("unknown preview layer: %s", layer)
	}

	img := image.NewGray(image.Rect(0, 0, fingerprint.Size, fingerprint.Size))
	for i, v := range values {
		img.SetGray(i%fingerprint.Size, i/fingerprint.Size, color.Gray{Y: v})
	}
	return img, nil
}
