// Package fingerprint implements the quadrant-threshold perceptual hash.
//
// A fingerprint is derived from a Size×Size grayscale image in three steps:
//
//  1. The pixel brightness values are copied row-major into a buffer
//     (index = x + Size*y).
//  2. The image is split into four equal quadrants and each quadrant gets a
//     threshold: the value at ascending rank Pixels/8 of its sorted pixels.
//     This is a lower median, never an average of the two central values.
//  3. Every pixel becomes one bit: 1 if it is at least as bright as its
//     quadrant's threshold, 0 otherwise.
//
// The resulting bit vector is the canonical fingerprint. It renders as a
// 256-character bit string or as 64 hex digits (4 bits per digit, most
// significant bit first).
//
// # Partial Fingerprints
//
// FromHex rebuilds only the bit vector. The grayscale buffer and the
// quadrant thresholds of such a fingerprint are zero and Partial reports
// true. Use them only for bit-vector comparison.
//
// # Thread Safety
//
// Fingerprint values are immutable once constructed and safe to share
// between goroutines. Independent images can be hashed concurrently.
package fingerprint
