package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Region is a pixel rectangle relative to the image's top-left corner.
// X2 and Y2 are exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Crop returns the part of img inside r.
func Crop(img image.Image, r Region) (image.Image, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if r.X1 < 0 || r.Y1 < 0 || r.X2 > w || r.Y2 > h {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds %dx%d",
			r.X1, r.Y1, r.X2, r.Y2, w, h)
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	rect := image.Rect(r.X1, r.Y1, r.X2, r.Y2).Add(bounds.Min)
	return imaging.Crop(img, rect), nil
}

// NamedRegion resolves a region name against a w×h image. Names are the
// quadrants ("top-left" ...), the halves ("top-half" ...) and "center", the
// middle 50% in each direction.
func NamedRegion(name string, w, h int) (Region, error) {
	midX, midY := w/2, h/2

	switch name {
	case "top-left":
		return Region{0, 0, midX, midY}, nil
	case "top-right":
		return Region{midX, 0, w, midY}, nil
	case "bottom-left":
		return Region{0, midY, midX, h}, nil
	case "bottom-right":
		return Region{midX, midY, w, h}, nil
	case "top-half":
		return Region{0, 0, w, midY}, nil
	case "bottom-half":
		return Region{0, midY, w, h}, nil
	case "left-half":
		return Region{0, 0, midX, h}, nil
	case "right-half":
		return Region{midX, 0, w, h}, nil
	case "center":
		qW, qH := w/4, h/4
		return Region{qW, qH, w - qW, h - qH}, nil
	default:
		return Region{}, fmt.Errorf("unknown region: %s", name)
	}
}

// CropNamed crops img to the region called name.
func CropNamed(img image.Image, name string) (image.Image, error) {
	r, err := NamedRegion(name, img.Bounds().Dx(), img.Bounds().Dy())
	if err != nil {
		return nil, err
	}
	return Crop(img, r)
}
