package scan

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/logging"
	"go.uber.org/zap"
)

const defaultLaneDepth = 16

// Option configures a Stabilizer.
type Option func(*Stabilizer)

// WithSubscriber sets the event receiver. Without one, events are only
// logged.
func WithSubscriber(sub Subscriber) Option {
	return func(s *Stabilizer) { s.subscriber = sub }
}

// WithDispatcher routes event delivery through d.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Stabilizer) {
		if d != nil {
			s.dispatch = d
		}
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Stabilizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLaneDepth sets how many calls may queue before Feed blocks. Reset
// never blocks.
func WithLaneDepth(n int) Option {
	return func(s *Stabilizer) {
		if n > 0 {
			s.depth = n
		}
	}
}

// State is a snapshot of a Stabilizer's accumulated data.
type State struct {
	History  []geometry.Quad
	Dropped  int
	Finished bool
}

// Stabilizer accumulates Observations and decides when a document outline
// has been held steady long enough to capture.
type Stabilizer struct {
	id         string
	cfg        Config
	subscriber Subscriber
	dispatch   Dispatcher
	logger     *zap.SugaredLogger
	depth      int

	// Owned by the lane goroutine.
	history []geometry.Quad
	dropped int

	finished atomic.Bool

	mu     sync.Mutex
	ready  *sync.Cond // queue gained work or the lane closed
	space  *sync.Cond // the lane took work off the queue
	queue  []func()
	closed bool
	done   chan struct{}
}

// NewStabilizer validates cfg and starts the Stabilizer's lane. Call Close
// to stop it.
func NewStabilizer(cfg Config, opts ...Option) (*Stabilizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Stabilizer{
		id:       uuid.NewString(),
		cfg:      cfg,
		dispatch: Inline,
		logger:   zap.NewNop().Sugar(),
		depth:    defaultLaneDepth,
		history:  make([]geometry.Quad, 0, cfg.FrameBufferSize+1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logging.FieldStabilizer, s.id)
	s.ready = sync.NewCond(&s.mu)
	s.space = sync.NewCond(&s.mu)
	s.done = make(chan struct{})

	go s.run()
	return s, nil
}

// ID returns the identifier used in this Stabilizer's log lines.
func (s *Stabilizer) ID() string { return s.id }

// Config returns the tuning the Stabilizer was built with.
func (s *Stabilizer) Config() Config { return s.cfg }

// Feed queues obs for processing. It returns once the observation is
// queued, not processed; use Sync to wait. Feeding a closed Stabilizer is
// a no-op.
func (s *Stabilizer) Feed(obs Observation) {
	s.enqueue(func() { s.process(obs) }, true)
}

// Reset queues a return to the Empty state. Observations fed before Reset
// are processed first. Reset does not wait for queue space, so a
// Subscriber may call it from an inline callback.
func (s *Stabilizer) Reset() {
	s.enqueue(func() {
		s.history = s.history[:0]
		s.dropped = 0
		s.finished.Store(false)
		s.logger.Debug("stabilizer reset")
	}, false)
}

// Sync blocks until every call queued before it has been processed.
func (s *Stabilizer) Sync() {
	s.call(func() {})
}

// Snapshot returns a copy of the current state after all queued calls
// have been processed. A closed Stabilizer reports its final state. Like
// Sync, it must not be called from an inline Subscriber.
func (s *Stabilizer) Snapshot() State {
	var st State
	s.call(func() {
		st = State{
			History:  append([]geometry.Quad(nil), s.history...),
			Dropped:  s.dropped,
			Finished: s.finished.Load(),
		}
	})
	return st
}

// Finished reports whether a Success event has been emitted since the last
// Reset. Queued observations are not waited for.
func (s *Stabilizer) Finished() bool {
	return s.finished.Load()
}

// Close drains the lane and stops it. It is safe to call more than once,
// but not from a Subscriber running inline on the lane.
func (s *Stabilizer) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.ready.Broadcast()
		s.space.Broadcast()
	}
	s.mu.Unlock()
	<-s.done
}

func (s *Stabilizer) run() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.ready.Wait()
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		fn := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.space.Signal()
		s.mu.Unlock()

		fn()
	}
}

// enqueue appends fn to the lane. With wait set it blocks while the queue
// holds depth calls; without it the queue may grow past depth.
func (s *Stabilizer) enqueue(fn func(), wait bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for wait && !s.closed && len(s.queue) >= s.depth {
		s.space.Wait()
	}
	if s.closed {
		return false
	}
	s.queue = append(s.queue, fn)
	s.ready.Signal()
	return true
}

// call runs fn on the lane and waits for it. After Close the lane is gone,
// so fn runs on the caller once the lane has exited.
func (s *Stabilizer) call(fn func()) {
	ran := make(chan struct{})
	if s.enqueue(func() { fn(); close(ran) }, true) {
		<-ran
		return
	}
	<-s.done
	fn()
}

// process applies one observation. Runs on the lane only.
func (s *Stabilizer) process(obs Observation) {
	if s.finished.Load() {
		return
	}

	if !obs.HasQuad() {
		s.dropped++
		if s.dropped < s.cfg.MaxDroppedFrames {
			return
		}
		s.fail(obs, "too many frames without a document")
		return
	}

	candidate := *obs.Quad
	if len(s.history) == 0 {
		s.history = append(s.history, candidate)
		s.logger.Debugw("baseline accepted", logging.FieldQuad, candidate.String())
		return
	}

	average := weightedAverage(s.history)
	if !candidate.InRange(average, s.cfg.Threshold) {
		s.fail(obs, "candidate outside threshold")
		return
	}

	s.history = append(s.history, candidate)
	if len(s.history) > s.cfg.FrameBufferSize {
		s.history = append(s.history[:0], s.history[1:]...)
	}
	if len(s.history) < s.cfg.MinCorrectFrames {
		return
	}

	s.emit(EventUpdate, obs)
	if len(s.history) >= s.cfg.FrameBufferSize {
		s.finished.Store(true)
		s.emit(EventSuccess, obs)
	}
}

func (s *Stabilizer) fail(obs Observation, reason string) {
	s.dropped = 0
	s.history = s.history[:0]
	s.logger.Debugw("stabilizer history discarded", logging.FieldReason, reason)
	s.emit(EventFailed, obs)
}

func (s *Stabilizer) emit(kind EventKind, obs Observation) {
	s.logger.Debugw("stabilizer event",
		logging.FieldEvent, kind.String(),
		logging.FieldHistory, len(s.history),
		logging.FieldDropped, s.dropped)

	if s.subscriber == nil {
		return
	}
	sub := s.subscriber
	e := Event{Kind: kind, Observation: obs}
	s.dispatch(func() { deliver(sub, e) })
}
