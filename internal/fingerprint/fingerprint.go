package fingerprint

import (
	"errors"
	"fmt"
	"image"
	"slices"
	"strings"
)

// ErrDimensions is returned by FromGray when the image is not Size×Size.
var ErrDimensions = errors.New("grayscale image has wrong dimensions")

// Fingerprint is the perceptual hash of one image.
//
// The zero value is not a valid fingerprint; obtain one from FromPixels,
// FromGray or FromHex. All accessors return copies, so a Fingerprint never
// changes after construction.
type Fingerprint struct {
	grayscale  [Pixels]uint8
	bits       [Pixels]uint8
	thresholds Thresholds
	partial    bool
}

// FromPixels builds a complete fingerprint from a row-major grayscale buffer.
func FromPixels(px [Pixels]uint8) *Fingerprint {
	fp := &Fingerprint{grayscale: px}
	fp.thresholds = quadrantThresholds(&fp.grayscale)
	fp.bits = binarize(&fp.grayscale, fp.thresholds)
	return fp
}

// FromGray builds a complete fingerprint from a grayscale image.
//
// The image must be exactly Size×Size; it is not resized here. Pixel
// coordinates are taken relative to img.Bounds().Min.
func FromGray(img *image.Gray) (*Fingerprint, error) {
	b := img.Bounds()
	if b.Dx() != Size || b.Dy() != Size {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d", ErrDimensions, b.Dx(), b.Dy(), Size, Size)
	}

	var px [Pixels]uint8
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			px[x+Size*y] = img.GrayAt(b.Min.X+x, b.Min.Y+y).Y
		}
	}
	return FromPixels(px), nil
}

// quadrantThresholds returns the lower-median brightness of each quadrant.
func quadrantThresholds(gray *[Pixels]uint8) Thresholds {
	var buckets [4][]uint8
	for i := range buckets {
		buckets[i] = make([]uint8, 0, quadrantLen)
	}
	for i, val := range gray {
		q := QuadrantOf(i)
		buckets[q] = append(buckets[q], val)
	}

	var t Thresholds
	for _, q := range Quadrants {
		vals := buckets[q]
		slices.Sort(vals)
		t.set(q, vals[thresholdRank])
	}
	return t
}

// binarize sets a bit for every pixel at or above its quadrant threshold.
func binarize(gray *[Pixels]uint8, t Thresholds) [Pixels]uint8 {
	var bits [Pixels]uint8
	for i, val := range gray {
		if val >= t.Get(QuadrantOf(i)) {
			bits[i] = 1
		}
	}
	return bits
}

// Bits returns the bit vector, one 0 or 1 per pixel in row-major order.
func (f *Fingerprint) Bits() [Pixels]uint8 {
	return f.bits
}

// Grayscale returns the grayscale buffer the fingerprint was derived from.
// It is all zeros for a partial fingerprint.
func (f *Fingerprint) Grayscale() [Pixels]uint8 {
	return f.grayscale
}

// Thresholds returns the per-quadrant thresholds. They are all zero for a
// partial fingerprint.
func (f *Fingerprint) Thresholds() Thresholds {
	return f.thresholds
}

// Partial reports whether the fingerprint was rebuilt from text and carries
// only its bit vector.
func (f *Fingerprint) Partial() bool {
	return f.partial
}

// String renders the bit vector as Pixels characters of '0' and '1'.
func (f *Fingerprint) String() string {
	var sb strings.Builder
	sb.Grow(Pixels)
	for _, b := range f.bits {
		sb.WriteByte('0' + b)
	}
	return sb.String()
}
