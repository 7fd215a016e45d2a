package fingerprint

import (
	"errors"
	"image"
	"image/color"
	"math/rand"
	"sort"
	"strings"
	"testing"
)

// randomPixels returns a reproducible pseudo-random grayscale buffer.
func randomPixels(seed int64) [Pixels]uint8 {
	r := rand.New(rand.NewSource(seed))
	var px [Pixels]uint8
	for i := range px {
		px[i] = uint8(r.Intn(256))
	}
	return px
}

// topLeftRamp returns an image whose top-left quadrant ascends 0..63 in
// row-major order while every other pixel is 200.
func topLeftRamp() [Pixels]uint8 {
	var px [Pixels]uint8
	for i := range px {
		px[i] = 200
	}
	for y := 0; y < Size/2; y++ {
		for x := 0; x < Size/2; x++ {
			px[x+Size*y] = uint8(x + (Size/2)*y)
		}
	}
	return px
}

func TestQuadrantOf_Coverage(t *testing.T) {
	counts := make(map[Quadrant]int)
	for i := 0; i < Pixels; i++ {
		q := QuadrantOf(i)
		x, y := i%Size, i/Size

		var want Quadrant
		switch {
		case x < Size/2 && y < Size/2:
			want = TopLeft
		case x >= Size/2 && y < Size/2:
			want = TopRight
		case x < Size/2:
			want = BottomLeft
		default:
			want = BottomRight
		}
		if q != want {
			t.Errorf("QuadrantOf(%d) (x=%d, y=%d): got %v, want %v", i, x, y, q, want)
		}
		counts[q]++
	}

	if len(counts) != 4 {
		t.Fatalf("expected 4 quadrants, got %d", len(counts))
	}
	for q, n := range counts {
		if n != Pixels/4 {
			t.Errorf("quadrant %v: got %d pixels, want %d", q, n, Pixels/4)
		}
	}
}

func TestQuadrant_String(t *testing.T) {
	tests := []struct {
		q    Quadrant
		want string
	}{
		{TopLeft, "top-left"},
		{TopRight, "top-right"},
		{BottomLeft, "bottom-left"},
		{BottomRight, "bottom-right"},
		{Quadrant(7), "Quadrant(7)"},
	}

	for _, tt := range tests {
		if got := tt.q.String(); got != tt.want {
			t.Errorf("String(): got %q, want %q", got, tt.want)
		}
	}
}

func TestFromPixels_AllBlack(t *testing.T) {
	var px [Pixels]uint8
	fp := FromPixels(px)

	for _, q := range Quadrants {
		if got := fp.Thresholds().Get(q); got != 0 {
			t.Errorf("threshold %v: got %d, want 0", q, got)
		}
	}
	for i, b := range fp.Bits() {
		if b != 1 {
			t.Fatalf("bit %d: got %d, want 1", i, b)
		}
	}

	want := strings.Repeat("F", HexLen)
	if got := fp.Hex(); got != want {
		t.Errorf("Hex: got %s, want %s", got, want)
	}
	if fp.Partial() {
		t.Error("fingerprint built from pixels should not be partial")
	}
}

func TestFromPixels_TopLeftRamp(t *testing.T) {
	px := topLeftRamp()
	fp := FromPixels(px)

	th := fp.Thresholds()
	if got := th.Get(TopLeft); got != 32 {
		t.Errorf("top-left threshold: got %d, want 32", got)
	}
	for _, q := range []Quadrant{TopRight, BottomLeft, BottomRight} {
		if got := th.Get(q); got != 200 {
			t.Errorf("%v threshold: got %d, want 200", q, got)
		}
	}

	bits := fp.Bits()
	for i, val := range px {
		want := uint8(1)
		if QuadrantOf(i) == TopLeft && val < 32 {
			want = 0
		}
		if bits[i] != want {
			t.Errorf("bit %d (value %d): got %d, want %d", i, val, bits[i], want)
		}
	}

	// Rows 0-3 of the top-left quadrant are below the threshold.
	wantHex := strings.Repeat("00FF", 4) + strings.Repeat("F", HexLen-16)
	if got := fp.Hex(); got != wantHex {
		t.Errorf("Hex: got %s, want %s", got, wantHex)
	}

	decoded, err := FromHex(fp.Hex())
	if err != nil {
		t.Fatalf("FromHex failed: %v", err)
	}
	if decoded.Bits() != fp.Bits() {
		t.Error("decoded bits differ from original")
	}
}

func TestFromPixels_Deterministic(t *testing.T) {
	px := randomPixels(42)
	a := FromPixels(px)
	b := FromPixels(px)

	if a.Bits() != b.Bits() {
		t.Error("bits differ between identical inputs")
	}
	if a.Grayscale() != b.Grayscale() {
		t.Error("grayscale differs between identical inputs")
	}
	if a.Thresholds() != b.Thresholds() {
		t.Error("thresholds differ between identical inputs")
	}
}

func TestFromPixels_LowerMedian(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		px := randomPixels(seed)
		fp := FromPixels(px)

		var buckets [4][]int
		for i, val := range px {
			q := QuadrantOf(i)
			buckets[q] = append(buckets[q], int(val))
		}
		for _, q := range Quadrants {
			vals := buckets[q]
			sort.Ints(vals)
			want := uint8(vals[Pixels/8])
			if got := fp.Thresholds().Get(q); got != want {
				t.Errorf("seed %d, %v: got threshold %d, want %d", seed, q, got, want)
			}
		}
	}
}

func TestFromPixels_LowerMedianNotAverage(t *testing.T) {
	// Each quadrant holds 32 pixels of 10 and 32 pixels of 20. A true
	// median would be 15; the threshold is the value at rank 32.
	var px [Pixels]uint8
	for i := range px {
		if (i/Size)%2 == 0 {
			px[i] = 10
		} else {
			px[i] = 20
		}
	}
	fp := FromPixels(px)
	for _, q := range Quadrants {
		if got := fp.Thresholds().Get(q); got != 20 {
			t.Errorf("%v threshold: got %d, want 20", q, got)
		}
	}
}

func TestFromPixels_ThresholdInclusive(t *testing.T) {
	for seed := int64(100); seed < 110; seed++ {
		px := randomPixels(seed)
		fp := FromPixels(px)
		th := fp.Thresholds()
		bits := fp.Bits()

		for i, val := range px {
			thr := th.Get(QuadrantOf(i))
			want := uint8(0)
			if val >= thr {
				want = 1
			}
			if bits[i] != want {
				t.Fatalf("seed %d, pixel %d: value %d, threshold %d, got bit %d", seed, i, val, thr, bits[i])
			}
		}
	}
}

func TestFromGray(t *testing.T) {
	px := randomPixels(7)
	img := image.NewGray(image.Rect(3, 5, 3+Size, 5+Size))
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			img.SetGray(3+x, 5+y, color.Gray{Y: px[x+Size*y]})
		}
	}

	fp, err := FromGray(img)
	if err != nil {
		t.Fatalf("FromGray failed: %v", err)
	}
	if fp.Grayscale() != px {
		t.Error("grayscale buffer not copied in row-major order")
	}
	if fp.Bits() != FromPixels(px).Bits() {
		t.Error("FromGray and FromPixels disagree")
	}
}

func TestFromGray_WrongDimensions(t *testing.T) {
	tests := []struct {
		name string
		rect image.Rectangle
	}{
		{"too small", image.Rect(0, 0, 8, 8)},
		{"too wide", image.Rect(0, 0, 32, 16)},
		{"empty", image.Rect(0, 0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp, err := FromGray(image.NewGray(tt.rect))
			if !errors.Is(err, ErrDimensions) {
				t.Errorf("expected ErrDimensions, got %v", err)
			}
			if fp != nil {
				t.Error("expected nil fingerprint on error")
			}
		})
	}
}

func TestString(t *testing.T) {
	fp := FromPixels(topLeftRamp())
	s := fp.String()

	if len(s) != Pixels {
		t.Fatalf("String length: got %d, want %d", len(s), Pixels)
	}
	bits := fp.Bits()
	for i, c := range s {
		if c != '0' && c != '1' {
			t.Fatalf("String char %d: got %q", i, c)
		}
		if uint8(c-'0') != bits[i] {
			t.Errorf("String char %d: got %c, want %d", i, c, bits[i])
		}
	}
	if !strings.HasPrefix(s, "0000000011111111") {
		t.Errorf("String prefix: got %s", s[:16])
	}
}
