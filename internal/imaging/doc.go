// Package imaging prepares source images for fingerprinting.
//
// It decodes image files (with caching), normalizes them to the
// fingerprint.Size square grayscale image the hash is defined on, and
// renders fingerprints back into small preview images.
//
// # Normalization
//
// Normalize runs three steps:
//   - Resize to fingerprint.Size × fingerprint.Size, ignoring aspect ratio.
//   - Reduce each pixel to one 8-bit brightness value (luma or CIE L*).
//   - Mirror the image so its brighter halves sit left and top.
//
// The output always has bounds starting at (0,0) and can be passed to
// fingerprint.FromGray directly.
//
// Crop and CropNamed select part of a source image (a rectangle, a quadrant,
// a half or the center) before normalization, so one region can be hashed
// on its own. RenderFingerprint can blend quadrant or cell boundaries over a
// preview with GridOptions.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All other functions are stateless
// and may be called concurrently on different images.
package imaging
