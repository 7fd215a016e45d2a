// Package hasher turns image files into fingerprints.
//
// It glues the image loader, the normalization pipeline and the hash engine
// together and adds batch hashing over a bounded pool of workers.
package hasher

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/ironsheep/image-hash-mcp/internal/fingerprint"
	"github.com/ironsheep/image-hash-mcp/internal/imaging"
)

// DefaultWorkers is the pool size used when HashFiles is given workers <= 0.
const DefaultWorkers = 4

// Hasher computes fingerprints for images and image files.
//
// A Hasher is safe for concurrent use.
type Hasher struct {
	cache *imaging.ImageCache
	opts  imaging.NormalizeOptions
	debug bool
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithDebugLogging logs every hashed file to the standard logger.
func WithDebugLogging(enabled bool) Option {
	return func(h *Hasher) {
		h.debug = enabled
	}
}

// New creates a Hasher that loads files through cache. A nil cache gets a
// private one.
func New(cache *imaging.ImageCache, opts imaging.NormalizeOptions, options ...Option) *Hasher {
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	h := &Hasher{cache: cache, opts: opts}
	for _, o := range options {
		o(h)
	}
	return h
}

// HashImage normalizes img and fingerprints it.
func (h *Hasher) HashImage(img image.Image) (*fingerprint.Fingerprint, error) {
	gray, err := imaging.Normalize(img, h.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize image: %w", err)
	}
	return fingerprint.FromGray(gray)
}

// HashFile loads the image at path and fingerprints it.
func (h *Hasher) HashFile(path string) (*fingerprint.Fingerprint, error) {
	img, err := h.cache.Load(path)
	if err != nil {
		return nil, err
	}

	fp, err := h.HashImage(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if h.debug {
		log.Printf("hashed %s: %s", path, fp.Hex())
	}
	return fp, nil
}

// Selection picks the part of an image to hash. Name takes a region name
// understood by imaging.NamedRegion; otherwise Rect is used. A zero
// Selection hashes the whole image.
type Selection struct {
	Name string          `json:"name,omitempty"`
	Rect *imaging.Region `json:"rect,omitempty"`
}

// HashFileRegion loads the image at path and fingerprints the selected part.
func (h *Hasher) HashFileRegion(path string, sel Selection) (*fingerprint.Fingerprint, error) {
	if sel.Name == "" && sel.Rect == nil {
		return h.HashFile(path)
	}

	img, err := h.cache.Load(path)
	if err != nil {
		return nil, err
	}

	var part image.Image
	if sel.Name != "" {
		part, err = imaging.CropNamed(img, sel.Name)
	} else {
		part, err = imaging.Crop(img, *sel.Rect)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	fp, err := h.HashImage(part)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if h.debug {
		log.Printf("hashed %s (%+v): %s", path, sel, fp.Hex())
	}
	return fp, nil
}

// Result is the outcome of hashing one file in a batch.
type Result struct {
	Path        string
	Fingerprint *fingerprint.Fingerprint
	Err         error
}

// HashFiles fingerprints paths on up to workers goroutines.
//
// Results are returned in the order of paths. Each failure is reported on
// its own Result; other files are still hashed. Once ctx is done no new
// files are started and the remaining results carry ctx.Err(); a context
// that is already done starts nothing. Files the batch loaded itself are
// evicted from the cache after hashing; images that were cached before the
// call stay cached.
func (h *Hasher) HashFiles(ctx context.Context, paths []string, workers int) []Result {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	results := make([]Result, len(paths))
	for i, p := range paths {
		results[i].Path = p
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				path := paths[i]
				cached := h.cache.Contains(path)
				results[i].Fingerprint, results[i].Err = h.HashFile(path)
				if !cached {
					h.cache.Evict(path)
				}
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(paths); next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(paths); i++ {
		results[i].Err = ctx.Err()
	}
	return results
}
