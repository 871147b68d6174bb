package server

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/logging"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
	"github.com/ironsheep/docscan-mcp/internal/rectify"
	"github.com/mark3labs/mcp-go/mcp"
)

// ErrInvalidQuad is returned when a quad argument is not eight numbers.
var ErrInvalidQuad = errors.New("invalid quad")

// softFailure explains a rectification that produced no page.
const softFailure = "quad does not describe a convex page of usable size"

// pageResult describes a rectified page. The image itself travels as a
// separate image content block.
type pageResult struct {
	OK        bool      `json:"ok"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	PixelQuad []float64 `json:"pixel_quad,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

type detectResult struct {
	Found       bool      `json:"found"`
	Quad        []float64 `json:"quad"`
	Origin      string    `json:"origin"`
	DisplayQuad []float64 `json:"display_quad"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
}

type readTextResult struct {
	OK     bool      `json:"ok"`
	Reason string    `json:"reason,omitempty"`
	Page   *ocr.Page `json:"page,omitempty"`
}

// mustMarshalJSON converts a value to a pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// toolError logs err and converts it into an MCP tool error. Hints
// attached with errors.WithHint are appended to the message.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	s.logger.Warnw("tool failed", logging.FieldTool, tool, logging.FieldError, err)
	msg := err.Error()
	if hint := errors.FlattenHints(err); hint != "" {
		msg += " (" + hint + ")"
	}
	return mcp.NewToolResultError(msg)
}

// parseQuad reads the optional "quad" argument. A missing quad yields nil.
func parseQuad(args map[string]any) (*geometry.Quad, error) {
	raw, ok := args["quad"]
	if !ok || raw == nil {
		return nil, nil
	}
	values, ok := raw.([]any)
	if !ok || len(values) != 8 {
		return nil, errors.Wrapf(ErrInvalidQuad, "want 8 numbers, got %v", raw)
	}

	nums := make([]float64, len(values))
	for i, v := range values {
		switch n := v.(type) {
		case float64:
			nums[i] = n
		case int:
			nums[i] = float64(n)
		default:
			return nil, errors.Wrapf(ErrInvalidQuad, "element %d is %T, not a number", i, v)
		}
	}

	q, ok := geometry.NewQuadClockwise([]geometry.Point{
		geometry.Pt(nums[0], nums[1]),
		geometry.Pt(nums[2], nums[3]),
		geometry.Pt(nums[4], nums[5]),
		geometry.Pt(nums[6], nums[7]),
	})
	if !ok {
		return nil, errors.Wrapf(ErrInvalidQuad, "cannot build a quad from %v", nums)
	}
	return &q, nil
}

// mirrorQuad converts q between bottom-left and top-left origin.
func mirrorQuad(q geometry.Quad) (geometry.Quad, error) {
	mirrored, ok := q.MirrorUp()
	if !ok {
		return geometry.Quad{}, errors.Wrapf(ErrInvalidQuad, "cannot mirror %s", q)
	}
	return mirrored, nil
}

// quadValues flattens q in the same order parseQuad reads it.
func quadValues(q geometry.Quad) []float64 {
	out := make([]float64, 0, 8)
	for _, p := range q.Points() {
		out = append(out, p.X, p.Y)
	}
	return out
}

// rectifyRequest loads the frame named by the request and rectifies the
// region inside its quad.
func (s *Server) rectifyRequest(request mcp.CallToolRequest, extra ...rectify.Option) (rectify.Result, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return rectify.Result{}, err
	}
	origin, err := rectify.ParseOrigin(request.GetString("origin", s.cfg.Rectifier.Origin))
	if err != nil {
		return rectify.Result{}, err
	}
	quad, err := parseQuad(request.GetArguments())
	if err != nil {
		return rectify.Result{}, err
	}
	if quad == nil {
		return rectify.Result{}, errors.Wrap(ErrInvalidQuad, "quad is required")
	}

	frame, err := s.cache.Load(path)
	if err != nil {
		return rectify.Result{}, err
	}

	opts := append(s.cfg.RectifyOptions(s.logger), rectify.WithOrigin(origin))
	r := rectify.New(append(opts, extra...)...)
	return <-r.Crop(frame, *quad), nil
}

// pageContent packages a rectified page as text metadata plus a PNG image.
func pageContent(res rectify.Result) (*mcp.CallToolResult, error) {
	if !res.OK() {
		return mcp.NewToolResultText(mustMarshalJSON(pageResult{Reason: softFailure})), nil
	}
	enc, err := imaging.Encode(res.Cropped)
	if err != nil {
		return nil, err
	}
	meta := pageResult{
		OK:        true,
		Width:     enc.Width,
		Height:    enc.Height,
		PixelQuad: quadValues(*res.Quad),
	}
	return mcp.NewToolResultImage(mustMarshalJSON(meta), enc.ImageBase64, enc.MimeType), nil
}

func (s *Server) handleDocumentDetect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "document_detect"
	path, err := request.RequireString("path")
	if err != nil {
		return s.toolError(tool, err), nil
	}
	frame, err := s.cache.Load(path)
	if err != nil {
		return s.toolError(tool, err), nil
	}

	quad, found, err := detection.DetectOrDefault(ctx, s.detector, frame.AsImage())
	if err != nil {
		return s.toolError(tool, err), nil
	}
	display, err := mirrorQuad(quad)
	if err != nil {
		return s.toolError(tool, err), nil
	}
	size := imaging.FrameSize(frame)

	return mcp.NewToolResultText(mustMarshalJSON(detectResult{
		Found:       found,
		Quad:        quadValues(quad),
		Origin:      rectify.OriginBottomLeft.String(),
		DisplayQuad: quadValues(display),
		Width:       int(size.Width),
		Height:      int(size.Height),
	})), nil
}

func (s *Server) handleDocumentRectify(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "document_rectify"
	mode, err := imaging.ParseEnhanceMode(request.GetString("enhance", s.cfg.Rectifier.Enhance))
	if err != nil {
		return s.toolError(tool, err), nil
	}
	maxDim := request.GetInt("max_dimension", s.cfg.Rectifier.MaxDimension)

	res, err := s.rectifyRequest(request, rectify.WithEnhance(mode), rectify.WithMaxDimension(maxDim))
	if err != nil {
		return s.toolError(tool, err), nil
	}
	result, err := pageContent(res)
	if err != nil {
		return s.toolError(tool, err), nil
	}
	return result, nil
}

func (s *Server) handleDocumentReadText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "document_read_text"
	res, err := s.rectifyRequest(request)
	if err != nil {
		return s.toolError(tool, err), nil
	}
	if !res.OK() {
		return mcp.NewToolResultText(mustMarshalJSON(readTextResult{Reason: softFailure})), nil
	}

	page, err := ocr.ReadPage(res.Cropped, request.GetString("language", s.cfg.OCR.Language))
	if err != nil {
		return s.toolError(tool, err), nil
	}
	return mcp.NewToolResultText(mustMarshalJSON(readTextResult{OK: true, Page: page})), nil
}
