package scan

import (
	"sync"
	"testing"
	"time"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recorder collects events in delivery order.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Update(o Observation)  { r.add(EventUpdate, o) }
func (r *recorder) Success(o Observation) { r.add(EventSuccess, o) }
func (r *recorder) Failed(o Observation)  { r.add(EventFailed, o) }

func (r *recorder) add(k EventKind, o Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: k, Observation: o})
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]EventKind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}
	return kinds
}

func testConfig() Config {
	return Config{MinCorrectFrames: 2, MaxDroppedFrames: 2, FrameBufferSize: 3, Threshold: 0.05}
}

func newTestStabilizer(t *testing.T, cfg Config) (*Stabilizer, *recorder) {
	t.Helper()
	rec := &recorder{}
	s, err := NewStabilizer(cfg, WithSubscriber(rec), WithLogger(zap.NewNop().Sugar()))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, rec
}

func page() geometry.Quad {
	return geometry.Quad{
		TopLeft:     geometry.Pt(0.2, 0.8),
		TopRight:    geometry.Pt(0.8, 0.8),
		BottomRight: geometry.Pt(0.8, 0.2),
		BottomLeft:  geometry.Pt(0.2, 0.2),
	}
}

func shifted(q geometry.Quad, d float64) geometry.Quad {
	offset := geometry.Pt(d, d)
	return q.Add(geometry.Quad{TopLeft: offset, TopRight: offset, BottomRight: offset, BottomLeft: offset})
}

func withQuad(q geometry.Quad) Observation {
	return Observation{Quad: &q}
}

func TestStabilizer_LocksAfterConsistentFrames(t *testing.T) {
	s, rec := newTestStabilizer(t, testConfig())
	q1, q2, q3 := page(), shifted(page(), 0.01), shifted(page(), -0.01)

	s.Feed(withQuad(q1))
	st := s.Snapshot()
	assert.Empty(t, rec.kinds())
	assert.Equal(t, []geometry.Quad{q1}, st.History)

	s.Feed(withQuad(q2))
	st = s.Snapshot()
	assert.Equal(t, []EventKind{EventUpdate}, rec.kinds())
	assert.Equal(t, []geometry.Quad{q1, q2}, st.History)
	assert.False(t, st.Finished)

	obs3 := withQuad(q3)
	s.Feed(obs3)
	st = s.Snapshot()
	assert.Equal(t, []EventKind{EventUpdate, EventUpdate, EventSuccess}, rec.kinds())
	assert.Equal(t, []geometry.Quad{q1, q2, q3}, st.History)
	assert.True(t, st.Finished)
	assert.True(t, s.Finished())

	// Update and Success for the last frame carry the same observation.
	assert.Same(t, obs3.Quad, rec.events[1].Observation.Quad)
	assert.Same(t, obs3.Quad, rec.events[2].Observation.Quad)
}

func TestStabilizer_SilentAfterSuccess(t *testing.T) {
	s, rec := newTestStabilizer(t, testConfig())
	for i := 0; i < 3; i++ {
		s.Feed(withQuad(page()))
	}
	s.Sync()
	require.True(t, s.Finished())
	before := len(rec.kinds())

	s.Feed(withQuad(page()))
	s.Feed(withQuad(shifted(page(), 0.4)))
	s.Feed(Observation{})
	s.Feed(Observation{})
	s.Sync()

	assert.Len(t, rec.kinds(), before)
	assert.Len(t, s.Snapshot().History, 3)
}

func TestStabilizer_OutOfRangeDiscardsHistory(t *testing.T) {
	s, rec := newTestStabilizer(t, testConfig())

	s.Feed(Observation{})
	s.Feed(withQuad(page()))
	far := withQuad(shifted(page(), 0.3))
	s.Feed(far)
	st := s.Snapshot()

	assert.Equal(t, []EventKind{EventFailed}, rec.kinds())
	assert.Same(t, far.Quad, rec.events[0].Observation.Quad)
	assert.Empty(t, st.History)
	assert.Zero(t, st.Dropped)

	// The rejected candidate is not kept as the next baseline.
	s.Feed(withQuad(page()))
	assert.Equal(t, []geometry.Quad{page()}, s.Snapshot().History)
}

// A signed comparison accepts candidates whose corners are much smaller
// than the average. The gate must reject them.
func TestStabilizer_RejectsCandidateFarBelowAverage(t *testing.T) {
	s, rec := newTestStabilizer(t, testConfig())

	s.Feed(withQuad(page()))
	s.Feed(withQuad(page().Scale(0.1)))
	s.Sync()

	assert.Equal(t, []EventKind{EventFailed}, rec.kinds())
}

func TestStabilizer_DroppedFrames(t *testing.T) {
	s, rec := newTestStabilizer(t, testConfig())

	s.Feed(withQuad(page()))
	s.Feed(Observation{})
	st := s.Snapshot()
	assert.Empty(t, rec.kinds())
	assert.Equal(t, 1, st.Dropped)
	assert.Len(t, st.History, 1)

	s.Feed(Observation{})
	st = s.Snapshot()
	assert.Equal(t, []EventKind{EventFailed}, rec.kinds())
	assert.Nil(t, rec.events[0].Observation.Quad)
	assert.Zero(t, st.Dropped)
	assert.Empty(t, st.History)
}

func TestStabilizer_DroppedCounterSurvivesAcceptedFrames(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDroppedFrames = 3
	cfg.FrameBufferSize = 10
	s, rec := newTestStabilizer(t, cfg)

	s.Feed(withQuad(page()))
	s.Feed(Observation{})
	s.Feed(withQuad(page()))
	s.Feed(Observation{})
	s.Feed(withQuad(page()))
	s.Feed(Observation{})
	s.Sync()

	assert.Equal(t, []EventKind{EventUpdate, EventUpdate, EventFailed}, rec.kinds())
}

func TestStabilizer_ResetIsOrderedAfterFeeds(t *testing.T) {
	s, rec := newTestStabilizer(t, testConfig())

	s.Feed(withQuad(page()))
	s.Feed(withQuad(page()))
	s.Feed(withQuad(page()))
	s.Reset()
	s.Feed(withQuad(page()))
	s.Feed(withQuad(page()))
	st := s.Snapshot()

	assert.Equal(t, []EventKind{EventUpdate, EventUpdate, EventSuccess, EventUpdate}, rec.kinds())
	assert.Len(t, st.History, 2)
	assert.False(t, st.Finished)
}

func TestStabilizer_ResetClearsDropped(t *testing.T) {
	s, rec := newTestStabilizer(t, testConfig())

	s.Feed(Observation{})
	s.Reset()
	s.Feed(Observation{})
	st := s.Snapshot()

	assert.Empty(t, rec.kinds())
	assert.Equal(t, 1, st.Dropped)
}

func TestStabilizer_ResetFromSubscriberWithFullQueue(t *testing.T) {
	var s *Stabilizer
	var mu sync.Mutex
	var failed int
	sub := SubscriberFuncs{OnFailed: func(Observation) {
		mu.Lock()
		failed++
		mu.Unlock()
		s.Reset()
	}}

	var err error
	s, err = NewStabilizer(testConfig(), WithSubscriber(sub), WithLaneDepth(1))
	require.NoError(t, err)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			s.Feed(Observation{})
		}
		s.Sync()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("feeding stalled after a subscriber called Reset")
	}

	st := s.Snapshot()
	assert.Empty(t, st.History)
	assert.False(t, st.Finished)
	mu.Lock()
	assert.Positive(t, failed)
	mu.Unlock()
}

func TestStabilizer_LogFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s, err := NewStabilizer(testConfig(), WithLogger(zap.New(core).Sugar()))
	require.NoError(t, err)

	s.Feed(withQuad(page()))
	s.Feed(withQuad(page()))
	s.Close()

	events := logs.FilterMessage("stabilizer event").All()
	require.Len(t, events, 1)
	fields := events[0].ContextMap()
	assert.Equal(t, "update", fields[logging.FieldEvent])
	assert.EqualValues(t, 2, fields[logging.FieldHistory])
	assert.EqualValues(t, 0, fields[logging.FieldDropped])
	assert.Equal(t, s.ID(), fields[logging.FieldStabilizer])

	baseline := logs.FilterMessage("baseline accepted").All()
	require.Len(t, baseline, 1)
	assert.Contains(t, baseline[0].ContextMap(), logging.FieldQuad)
}

func TestStabilizer_SlidingWindowNeverExceedsBufferSize(t *testing.T) {
	cfg := Config{MinCorrectFrames: 1, MaxDroppedFrames: 1, FrameBufferSize: 5, Threshold: 0.05}
	s, rec := newTestStabilizer(t, cfg)

	for i := 0; i < 5; i++ {
		s.Feed(withQuad(page()))
	}
	st := s.Snapshot()

	assert.Len(t, st.History, 5)
	assert.True(t, st.Finished)
	assert.Equal(t, []EventKind{EventUpdate, EventUpdate, EventUpdate, EventUpdate, EventSuccess}, rec.kinds())
}

func TestStabilizer_Dispatcher(t *testing.T) {
	var mu sync.Mutex
	var queued []func()
	dispatch := func(fn func()) {
		mu.Lock()
		queued = append(queued, fn)
		mu.Unlock()
	}

	rec := &recorder{}
	s, err := NewStabilizer(testConfig(), WithSubscriber(rec), WithDispatcher(dispatch))
	require.NoError(t, err)
	defer s.Close()

	s.Feed(withQuad(page()))
	s.Feed(withQuad(page()))
	s.Sync()

	// Nothing is delivered until the application runs the queued work.
	assert.Empty(t, rec.kinds())
	mu.Lock()
	require.Len(t, queued, 1)
	queued[0]()
	mu.Unlock()
	assert.Equal(t, []EventKind{EventUpdate}, rec.kinds())
}

func TestStabilizer_EventChannel(t *testing.T) {
	events := make(chan Event, 8)
	s, err := NewStabilizer(testConfig(), WithSubscriber(EventChannel(events)))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		s.Feed(withQuad(page()))
	}
	s.Close()
	close(events)

	var kinds []EventKind
	for e := range events {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []EventKind{EventUpdate, EventUpdate, EventSuccess}, kinds)
}

func TestStabilizer_SubscriberFuncs(t *testing.T) {
	var failed int
	s, err := NewStabilizer(testConfig(), WithSubscriber(SubscriberFuncs{
		OnFailed: func(Observation) { failed++ },
	}))
	require.NoError(t, err)
	defer s.Close()

	// Update has no handler and must not panic.
	s.Feed(withQuad(page()))
	s.Feed(withQuad(page()))
	s.Feed(Observation{})
	s.Feed(Observation{})
	s.Sync()

	assert.Equal(t, 1, failed)
}

func TestStabilizer_ConcurrentFeeds(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDroppedFrames = 5
	s, rec := newTestStabilizer(t, cfg)

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				s.Feed(Observation{})
			}
		}()
	}
	wg.Wait()
	s.Sync()

	assert.Len(t, rec.kinds(), 20)
}

func TestStabilizer_IndependentInstances(t *testing.T) {
	a, recA := newTestStabilizer(t, testConfig())
	b, recB := newTestStabilizer(t, testConfig())

	a.Feed(withQuad(page()))
	a.Feed(withQuad(page()))
	b.Feed(Observation{})
	a.Sync()
	b.Sync()

	assert.Equal(t, []EventKind{EventUpdate}, recA.kinds())
	assert.Empty(t, recB.kinds())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestStabilizer_Close(t *testing.T) {
	s, rec := newTestStabilizer(t, testConfig())

	s.Feed(withQuad(page()))
	s.Close()
	s.Close()

	assert.NotPanics(t, func() {
		s.Feed(withQuad(page()))
		s.Reset()
		s.Sync()
	})
	assert.Empty(t, rec.kinds())
	assert.Len(t, s.Snapshot().History, 1)
}

func TestNewStabilizer_InvalidConfig(t *testing.T) {
	_, err := NewStabilizer(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
