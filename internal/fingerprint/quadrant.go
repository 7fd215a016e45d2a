package fingerprint

import "fmt"

const (
	// Size is the width and height of the grayscale image a fingerprint is
	// computed from. It must be even.
	Size = 16

	// Pixels is the number of pixels, and bits, in a fingerprint.
	Pixels = Size * Size

	// HexLen is the number of hex digits in the text form of a fingerprint.
	HexLen = Pixels / 4

	// quadrantLen is the number of pixels in one quadrant.
	quadrantLen = Pixels / 4

	// thresholdRank is the 0-based position, in ascending order, of the value
	// used as a quadrant's threshold.
	thresholdRank = Pixels / 8
)

func init() {
	// QuadrantOf decides top/bottom with i < Pixels/2, which only matches
	// y < Size/2 for an even, square grid.
	if Size%2 != 0 || Pixels%4 != 0 {
		panic(fmt.Sprintf("fingerprint: Size must be even, got %d", Size))
	}
}

// Quadrant identifies one of the four equal regions of the image.
type Quadrant int

// The four quadrants, in the order used by Thresholds.All.
const (
	TopLeft Quadrant = iota
	TopRight
	BottomLeft
	BottomRight
)

// Quadrants lists every quadrant in declaration order.
var Quadrants = [4]Quadrant{TopLeft, TopRight, BottomLeft, BottomRight}

// String returns the hyphenated name of the quadrant, e.g. "top-left".
func (q Quadrant) String() string {
	switch q {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	default:
		return fmt.Sprintf("Quadrant(%d)", int(q))
	}
}

// halves returns the horizontal (0 = left, 1 = right) and vertical
// (0 = top, 1 = bottom) half of q.
func (q Quadrant) halves() (h, v int) {
	switch q {
	case TopLeft:
		return 0, 0
	case TopRight:
		return 1, 0
	case BottomLeft:
		return 0, 1
	case BottomRight:
		return 1, 1
	}
	panic(fmt.Sprintf("fingerprint: invalid quadrant %d", int(q)))
}

// QuadrantOf classifies pixel index i (0 <= i < Pixels).
//
// The horizontal half comes from x = i mod Size. The vertical half is
// decided by i < Pixels/2, which equals y < Size/2 because Size is even.
func QuadrantOf(i int) Quadrant {
	left := i%Size < Size/2
	top := i < Pixels/2

	switch {
	case left && top:
		return TopLeft
	case left:
		return BottomLeft
	case top:
		return TopRight
	default:
		return BottomRight
	}
}

// Thresholds holds one brightness threshold per quadrant, indexed by
// [horizontal half][vertical half].
type Thresholds [2][2]uint8

// Get returns the threshold of quadrant q.
func (t Thresholds) Get(q Quadrant) uint8 {
	h, v := q.halves()
	return t[h][v]
}

// All returns the thresholds in Quadrants order.
func (t Thresholds) All() [4]uint8 {
	var out [4]uint8
	for i, q := range Quadrants {
		out[i] = t.Get(q)
	}
	return out
}

func (t *Thresholds) set(q Quadrant, val uint8) {
	h, v := q.halves()
	t[h][v] = val
}
