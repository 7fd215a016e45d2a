package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/transform"
)

// MirrorByBrightness normalizes the orientation of a grayscale image so that
// mirrored copies of the same picture hash alike.
//
// The image is flipped horizontally when its right half is brighter than its
// left half, and vertically when its bottom half is brighter than its top
// half. Equal halves are left alone. Center columns or rows of odd-sized
// images count toward neither half. The result has the same dimensions,
// with bounds starting at (0,0), and applying the function twice gives the
// same image as applying it once.
func MirrorByBrightness(img *image.Gray) *image.Gray {
	left, right, top, bottom := halfSums(img)

	var out image.Image = img
	flipped := false
	if right > left {
		out = transform.FlipH(out)
		flipped = true
	}
	if bottom > top {
		out = transform.FlipV(out)
		flipped = true
	}

	if !flipped {
		return rebase(img)
	}
	return toGray(out)
}

// halfSums returns the total brightness of each half of img.
func halfSums(img *image.Gray) (left, right, top, bottom uint64) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint64(img.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			switch {
			case 2*x < w-1:
				left += v
			case 2*x > w-1:
				right += v
			}
			switch {
			case 2*y < h-1:
				top += v
			case 2*y > h-1:
				bottom += v
			}
		}
	}
	return left, right, top, bottom
}

// toGray copies the first channel of an image whose channels are equal,
// such as the RGBA output of a flipped grayscale image.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			out.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: uint8(r >> 8)})
		}
	}
	return out
}

// rebase returns a copy of img with bounds starting at (0,0).
func rebase(img *image.Gray) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return out
}
