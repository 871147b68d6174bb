// Package scanner wires a sequence detector, a Stabilizer and a Rectifier
// into the live document scanning flow: frames go to the detector, its
// observations feed the Stabilizer, and the observation that locks the
// outline is rectified into the final page.
package scanner

import (
	"sync"
	"sync/atomic"

	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/rectify"
	"github.com/ironsheep/docscan-mcp/internal/scan"
	"go.uber.org/zap"
)

// Track is the tracking feedback for one Stabilizer event.
type Track struct {
	Kind        scan.EventKind
	Observation scan.Observation
	// Display is the observed outline mirrored into top-left origin
	// normalized coordinates, ready for an overlay. Nil for failures.
	Display *geometry.Quad
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger shared by the Scanner and its Stabilizer.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDispatcher routes Track and Result delivery through d.
func WithDispatcher(d scan.Dispatcher) Option {
	return func(s *Scanner) {
		if d != nil {
			s.dispatch = d
		}
	}
}

// WithRectifyOptions configures the Scanner's Rectifier. The origin is
// always top-left because the Scanner mirrors outlines before cropping.
func WithRectifyOptions(opts ...rectify.Option) Option {
	return func(s *Scanner) { s.rectifyOpts = append(s.rectifyOpts, opts...) }
}

// OnTrack sets the tracking feedback callback.
func OnTrack(fn func(Track)) Option {
	return func(s *Scanner) { s.onTrack = fn }
}

// OnResult sets the callback that receives the rectified page.
func OnResult(fn func(rectify.Result)) Option {
	return func(s *Scanner) { s.onResult = fn }
}

// Scanner runs the live scanning pipeline. Frames are ignored until Start.
type Scanner struct {
	detector    detection.SequenceDetector
	stabilizer  *scan.Stabilizer
	rectifier   *rectify.Rectifier
	rectifyOpts []rectify.Option
	dispatch    scan.Dispatcher
	logger      *zap.SugaredLogger
	onTrack     func(Track)
	onResult    func(rectify.Result)

	running atomic.Bool
	pending sync.WaitGroup
}

// New builds a Scanner around detector. The Scanner registers itself as
// the detector's update callback.
func New(detector detection.SequenceDetector, cfg scan.Config, opts ...Option) (*Scanner, error) {
	s := &Scanner{
		detector: detector,
		dispatch: scan.Inline,
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}

	stabilizer, err := scan.NewStabilizer(cfg, scan.WithSubscriber(s), scan.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.stabilizer = stabilizer

	ropts := append(append([]rectify.Option{rectify.WithLogger(s.logger)}, s.rectifyOpts...),
		rectify.WithOrigin(rectify.OriginTopLeft))
	s.rectifier = rectify.New(ropts...)

	detector.OnUpdate(func(obs scan.Observation) {
		if s.running.Load() {
			s.stabilizer.Feed(obs)
		}
	})
	return s, nil
}

// Start clears any earlier progress and begins accepting observations.
func (s *Scanner) Start() {
	s.stabilizer.Reset()
	s.running.Store(true)
	s.logger.Debug("scanner started")
}

// Stop stops accepting observations. Queued observations and an in-flight
// crop still complete.
func (s *Scanner) Stop() {
	s.running.Store(false)
}

// Frame passes a captured frame to the detector.
func (s *Scanner) Frame(frame imaging.Frame) {
	if !s.running.Load() {
		return
	}
	s.detector.Detect(frame)
}

// Sync waits until every observation fed so far has been processed.
func (s *Scanner) Sync() {
	s.stabilizer.Sync()
}

// Wait blocks until every started crop has been delivered.
func (s *Scanner) Wait() {
	s.pending.Wait()
}

// Close stops the pipeline, the detector when it can be closed, and waits
// for pending results.
func (s *Scanner) Close() {
	s.Stop()
	if c, ok := s.detector.(interface{ Close() }); ok {
		c.Close()
	}
	s.stabilizer.Close()
	s.pending.Wait()
}

// Update implements scan.Subscriber.
func (s *Scanner) Update(obs scan.Observation) {
	s.track(scan.EventUpdate, obs)
}

// Success implements scan.Subscriber. The locked outline is mirrored into
// top-left origin and cropped from the observation's frame.
func (s *Scanner) Success(obs scan.Observation) {
	s.track(scan.EventSuccess, obs)
	if obs.Quad == nil || obs.Frame == nil {
		return
	}
	mirrored, ok := obs.Quad.MirrorUp()
	if !ok {
		return
	}

	s.pending.Add(1)
	results := s.rectifier.Crop(obs.Frame, mirrored)
	go func() {
		defer s.pending.Done()
		res := <-results
		s.logger.Debugw("scan complete", "rectified", res.OK())
		if s.onResult != nil {
			s.dispatch(func() { s.onResult(res) })
		}
	}()
}

// Failed implements scan.Subscriber.
func (s *Scanner) Failed(obs scan.Observation) {
	s.track(scan.EventFailed, obs)
}

func (s *Scanner) track(kind scan.EventKind, obs scan.Observation) {
	if s.onTrack == nil {
		return
	}
	t := Track{Kind: kind, Observation: obs}
	if kind != scan.EventFailed && obs.Quad != nil {
		if mirrored, ok := obs.Quad.MirrorUp(); ok {
			t.Display = &mirrored
		}
	}
	s.dispatch(func() { s.onTrack(t) })
}
