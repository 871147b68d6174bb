package rectify

import (
	"context"
	"image"
	"math"
	"sync"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	// maxOutputPixels caps the allocation for a single rectified page.
	maxOutputPixels = 1 << 26

	defaultWorkers = 4
)

// Result is the outcome of one rectification. Original is always set.
// Cropped and Quad are both nil when rectification failed.
type Result struct {
	Original image.Image
	Cropped  image.Image
	// Quad is the outline that was rectified, in top-left origin pixels.
	Quad *geometry.Quad
}

// OK reports whether the page was rectified.
func (r Result) OK() bool {
	return r.Cropped != nil
}

// Option configures a Rectifier.
type Option func(*Rectifier)

// WithOrigin sets the convention of incoming normalized quads.
func WithOrigin(o Origin) Option {
	return func(r *Rectifier) { r.origin = o }
}

// WithMaxDimension downscales rectified pages whose longer side exceeds
// px. Zero disables downscaling.
func WithMaxDimension(px int) Option {
	return func(r *Rectifier) { r.maxDimension = px }
}

// WithEnhance applies a page filter to every rectified page.
func WithEnhance(mode imaging.EnhanceMode) Option {
	return func(r *Rectifier) { r.enhance = mode }
}

// WithWorkers bounds how many Crop calls rectify at once.
func WithWorkers(n int) Option {
	return func(r *Rectifier) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the logger used to report soft failures.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(r *Rectifier) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Rectifier turns a frame and a document outline into a flat page image.
// A Rectifier holds no per-call state and is safe for concurrent use.
type Rectifier struct {
	origin       Origin
	maxDimension int
	enhance      imaging.EnhanceMode
	workers      int
	logger       *zap.SugaredLogger

	sem      *semaphore.Weighted
	inflight sync.WaitGroup
}

// New returns a Rectifier. Defaults: bottom-left origin, no downscale, no
// enhancement, four concurrent Crop workers.
func New(opts ...Option) *Rectifier {
	r := &Rectifier{
		origin:  OriginBottomLeft,
		enhance: imaging.EnhanceNone,
		workers: defaultWorkers,
		logger:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.sem = semaphore.NewWeighted(int64(r.workers))
	return r
}

// Crop rectifies in the background. The returned channel receives exactly
// one Result and is never closed.
func (r *Rectifier) Crop(frame imaging.Frame, quad geometry.Quad) <-chan Result {
	out := make(chan Result, 1)
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		// Acquire only fails on a cancelled context.
		_ = r.sem.Acquire(context.Background(), 1)
		defer r.sem.Release(1)
		out <- r.Rectify(frame, quad)
	}()
	return out
}

// Wait blocks until every Crop started so far has delivered its Result.
func (r *Rectifier) Wait() {
	r.inflight.Wait()
}

// Rectify deskews the region of frame outlined by quad, which is given in
// normalized coordinates measured from the Rectifier's origin.
func (r *Rectifier) Rectify(frame imaging.Frame, quad geometry.Quad) Result {
	original := frame.AsImage()
	res := Result{Original: original}

	b := original.Bounds()
	size := geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
	if b.Empty() {
		r.logger.Debug("rectify skipped: empty frame")
		return res
	}

	pixels := r.toPixels(quad, size)
	loop, ok := geometry.NewQuadClockwise(pixels.Points())
	if !ok || !loop.IsConvex() {
		r.logger.Debugw("rectify skipped: degenerate quad", logging.FieldQuad, pixels.String())
		return res
	}

	fw, fh := math.Round(loop.Width()), math.Round(loop.Height())
	if !(fw >= 1 && fh >= 1 && fw*fh <= maxOutputPixels) {
		r.logger.Debugw("rectify skipped: output size out of range", logging.FieldWidth, fw, logging.FieldHeight, fh)
		return res
	}
	width, height := int(fw), int(fh)

	page, ok := warp(imaging.ToNRGBA(original), loop, width, height)
	if !ok {
		r.logger.Debugw("rectify skipped: singular transform", logging.FieldQuad, loop.String())
		return res
	}

	var cropped image.Image = page
	cropped = imaging.Downscale(cropped, r.maxDimension)
	cropped = imaging.Enhance(cropped, r.enhance)

	res.Cropped = cropped
	res.Quad = &loop
	return res
}

// toPixels converts a normalized quad to top-left origin pixels.
func (r *Rectifier) toPixels(quad geometry.Quad, size geometry.Size) geometry.Quad {
	abs := quad.Absolute(size)
	if r.origin == OriginTopLeft {
		return abs
	}
	return abs.Cartesian(size.Height)
}

// warp resamples the source region outlined by quad into a width x height
// page. Each output pixel center is mapped into the source through the
// rectangle-to-quad homography and sampled bilinearly.
func warp(src *image.NRGBA, quad geometry.Quad, width, height int) (*image.NRGBA, bool) {
	w, h := float64(width), float64(height)
	rect := [4]geometry.Point{geometry.Pt(0, 0), geometry.Pt(w, 0), geometry.Pt(w, h), geometry.Pt(0, h)}
	corners := [4]geometry.Point{quad.TopLeft, quad.TopRight, quad.BottomRight, quad.BottomLeft}

	hm, ok := solveHomography(rect, corners)
	if !ok {
		return nil, false
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < width; x++ {
			sx, sy, ok := hm.apply(float64(x)+0.5, float64(y)+0.5)
			if !ok || math.IsNaN(sx) || math.IsNaN(sy) {
				return nil, false
			}
			bilinear(src, sx, sy, row[x*4:x*4+4])
		}
	}
	return dst, true
}
