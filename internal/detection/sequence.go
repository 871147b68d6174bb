package detection

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/logging"
	"github.com/ironsheep/docscan-mcp/internal/scan"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SequenceOption configures a Sequence.
type SequenceOption func(*Sequence)

// WithWorkers sets how many frames are detected concurrently. With more
// than one worker, observations may be reported out of capture order.
func WithWorkers(n int) SequenceOption {
	return func(s *Sequence) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithMaxFPS caps how many frames per second are passed to the detector.
// Zero or negative means no cap.
func WithMaxFPS(fps float64) SequenceOption {
	return func(s *Sequence) {
		if fps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(fps), 1)
		}
	}
}

// WithLogger sets the logger used for detector errors.
func WithLogger(logger *zap.SugaredLogger) SequenceOption {
	return func(s *Sequence) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Sequence runs an ImageDetector over a live frame stream.
//
// Detect never blocks: a frame is handed to an idle worker or dropped. A
// detector error is reported as an Observation without a quad, the same as
// a frame where nothing was found.
type Sequence struct {
	detector ImageDetector
	workers  int
	limiter  *rate.Limiter
	logger   *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.RWMutex
	closed   bool
	inbox    chan imaging.Frame
	onUpdate func(scan.Observation)

	processed atomic.Uint64
	dropped   atomic.Uint64
}

// NewSequence starts the worker pool around d. Call Close to stop it.
func NewSequence(d ImageDetector, opts ...SequenceOption) *Sequence {
	s := &Sequence{
		detector: d,
		workers:  1,
		limiter:  rate.NewLimiter(rate.Inf, 0),
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	// Unbuffered: a send only succeeds when a worker is waiting.
	s.inbox = make(chan imaging.Frame)

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.work()
	}
	return s
}

// OnUpdate registers the observation callback, replacing any earlier one.
// The callback runs on a worker goroutine.
func (s *Sequence) OnUpdate(fn func(scan.Observation)) {
	s.mu.Lock()
	s.onUpdate = fn
	s.mu.Unlock()
}

// Detect offers frame to the pool. It returns at once; the frame is dropped
// when the pool is busy, the rate ceiling is reached, or s is closed.
func (s *Sequence) Detect(frame imaging.Frame) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed || !s.limiter.Allow() {
		s.dropped.Add(1)
		return
	}
	select {
	case s.inbox <- frame:
	default:
		s.dropped.Add(1)
	}
}

// Stats returns how many frames were detected and how many were dropped.
func (s *Sequence) Stats() (processed, dropped uint64) {
	return s.processed.Load(), s.dropped.Load()
}

// Close stops the workers and waits for in-flight detections. Detections
// interrupted by Close are not reported.
func (s *Sequence) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.inbox)
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *Sequence) work() {
	defer s.wg.Done()
	for frame := range s.inbox {
		quad, err := s.detector.Detect(s.ctx, frame.AsImage())
		if s.ctx.Err() != nil {
			return
		}
		if err != nil {
			s.logger.Debugw("detection failed", logging.FieldError, err)
			quad = nil
		}
		s.processed.Add(1)

		s.mu.RLock()
		fn := s.onUpdate
		s.mu.RUnlock()
		if fn != nil {
			fn(scan.Observation{Quad: quad, Frame: frame})
		}
	}
}
