package server

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/logging"
	"github.com/ironsheep/docscan-mcp/internal/rectify"
	"github.com/ironsheep/docscan-mcp/internal/scan"
	"github.com/mark3labs/mcp-go/mcp"
)

// ErrUnknownSession is returned for session ids that were never created or
// have been closed.
var ErrUnknownSession = errors.New("unknown tracker session")

// A feed emits at most two events and is drained before the next one, so a
// small buffer never fills.
const sessionEventBuffer = 4

// session pairs a Stabilizer with the rectifier used on its Success frame.
type session struct {
	id        string
	stab      *scan.Stabilizer
	events    chan scan.Event
	rectifier *rectify.Rectifier

	// feedMu serializes feeds so each call reports its own events.
	feedMu sync.Mutex
	paths  map[string]struct{}
}

func (sess *session) drain() []scan.Event {
	var out []scan.Event
	for {
		select {
		case e := <-sess.events:
			out = append(out, e)
		default:
			return out
		}
	}
}

type trackEvent struct {
	Event       string    `json:"event"`
	Quad        []float64 `json:"quad,omitempty"`
	DisplayQuad []float64 `json:"display_quad,omitempty"`
}

type trackerState struct {
	Session  string       `json:"session"`
	Config   *scan.Config `json:"config,omitempty"`
	Events   []trackEvent `json:"events"`
	History  int          `json:"history"`
	Dropped  int          `json:"dropped"`
	Finished bool         `json:"finished"`
	Page     *pageResult  `json:"page,omitempty"`
}

func stateOf(sess *session, st scan.State) trackerState {
	return trackerState{
		Session:  sess.id,
		Events:   []trackEvent{},
		History:  len(st.History),
		Dropped:  st.Dropped,
		Finished: st.Finished,
	}
}

// trackEventOf reports an event's quad in the detector convention plus,
// for Update and Success, the same quad mirrored into image space for
// display.
func trackEventOf(e scan.Event) trackEvent {
	te := trackEvent{Event: e.Kind.String()}
	if !e.Observation.HasQuad() {
		return te
	}
	te.Quad = quadValues(*e.Observation.Quad)
	if e.Kind != scan.EventFailed {
		if display, ok := e.Observation.Quad.MirrorUp(); ok {
			te.DisplayQuad = quadValues(display)
		}
	}
	return te
}

func (s *Server) lookup(request mcp.CallToolRequest) (*session, error) {
	id, err := request.RequireString("session")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSession, "session %q", id)
	}
	return sess, nil
}

// release stops a session and evicts the frames it loaded.
func (s *Server) release(sess *session) {
	sess.feedMu.Lock()
	defer sess.feedMu.Unlock()

	sess.stab.Close()
	sess.rectifier.Wait()
	for path := range sess.paths {
		s.cache.Evict(path)
	}
	s.logger.Infow("tracker closed", logging.FieldSession, sess.id)
}

func (s *Server) handleTrackerCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "tracker_create"
	def := s.cfg.Stabilizer
	cfg := scan.Config{
		MinCorrectFrames: request.GetInt("min_correct_frames", def.MinCorrectFrames),
		MaxDroppedFrames: request.GetInt("max_dropped_frames", def.MaxDroppedFrames),
		FrameBufferSize:  request.GetInt("frame_buffer_size", def.FrameBufferSize),
		Threshold:        request.GetFloat("threshold", def.Threshold),
	}

	events := make(chan scan.Event, sessionEventBuffer)
	stab, err := scan.NewStabilizer(cfg,
		scan.WithSubscriber(scan.EventChannel(events)),
		scan.WithLogger(s.logger),
	)
	if err != nil {
		return s.toolError(tool, err), nil
	}

	// Stabilizer quads are always in the detector convention.
	opts := append(s.cfg.RectifyOptions(s.logger), rectify.WithOrigin(rectify.OriginBottomLeft))
	sess := &session{
		id:        stab.ID(),
		stab:      stab,
		events:    events,
		rectifier: rectify.New(opts...),
		paths:     make(map[string]struct{}),
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.logger.Infow("tracker created", logging.FieldSession, sess.id)

	st := stateOf(sess, scan.State{})
	st.Config = &cfg
	return mcp.NewToolResultText(mustMarshalJSON(st)), nil
}

func (s *Server) handleTrackerFeed(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "tracker_feed"
	sess, err := s.lookup(request)
	if err != nil {
		return s.toolError(tool, err), nil
	}
	path, err := request.RequireString("path")
	if err != nil {
		return s.toolError(tool, err), nil
	}
	origin, err := rectify.ParseOrigin(request.GetString("origin", rectify.OriginBottomLeft.String()))
	if err != nil {
		return s.toolError(tool, err), nil
	}
	quad, err := parseQuad(request.GetArguments())
	if err != nil {
		return s.toolError(tool, err), nil
	}

	frame, err := s.cache.Load(path)
	if err != nil {
		return s.toolError(tool, err), nil
	}

	switch {
	case quad != nil && origin == rectify.OriginTopLeft:
		mirrored, err := mirrorQuad(*quad)
		if err != nil {
			return s.toolError(tool, err), nil
		}
		quad = &mirrored
	case quad == nil && request.GetBool("detect", false):
		quad, err = s.detector.Detect(ctx, frame.AsImage())
		if err != nil {
			return s.toolError(tool, err), nil
		}
	}

	sess.feedMu.Lock()
	defer sess.feedMu.Unlock()
	sess.paths[path] = struct{}{}

	sess.stab.Feed(scan.Observation{Quad: quad, Frame: frame})
	st := stateOf(sess, sess.stab.Snapshot())

	var success *scan.Observation
	for _, e := range sess.drain() {
		st.Events = append(st.Events, trackEventOf(e))
		if e.Kind == scan.EventSuccess {
			obs := e.Observation
			success = &obs
		}
	}
	if success == nil {
		return mcp.NewToolResultText(mustMarshalJSON(st)), nil
	}

	return s.successPage(tool, sess, *success, st), nil
}

// successPage rectifies the frame that completed a lock and attaches it.
func (s *Server) successPage(tool string, sess *session, obs scan.Observation, st trackerState) *mcp.CallToolResult {
	res := <-sess.rectifier.Crop(obs.Frame, *obs.Quad)
	if !res.OK() {
		st.Page = &pageResult{Reason: softFailure}
		return mcp.NewToolResultText(mustMarshalJSON(st))
	}

	enc, err := imaging.Encode(res.Cropped)
	if err != nil {
		return s.toolError(tool, err)
	}
	st.Page = &pageResult{
		OK:        true,
		Width:     enc.Width,
		Height:    enc.Height,
		PixelQuad: quadValues(*res.Quad),
	}
	return mcp.NewToolResultImage(mustMarshalJSON(st), enc.ImageBase64, enc.MimeType)
}

func (s *Server) handleTrackerReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "tracker_reset"
	sess, err := s.lookup(request)
	if err != nil {
		return s.toolError(tool, err), nil
	}

	sess.feedMu.Lock()
	defer sess.feedMu.Unlock()
	sess.stab.Reset()
	st := stateOf(sess, sess.stab.Snapshot())
	sess.drain()
	return mcp.NewToolResultText(mustMarshalJSON(st)), nil
}

func (s *Server) handleTrackerClose(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "tracker_close"
	sess, err := s.lookup(request)
	if err != nil {
		return s.toolError(tool, err), nil
	}

	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	s.release(sess)

	return mcp.NewToolResultText(mustMarshalJSON(map[string]interface{}{
		"session": sess.id,
		"closed":  true,
	})), nil
}

