package server

import (
	"github.com/mark3labs/mcp-go/mcp"
)

const quadDescription = "Page corners as 8 normalized numbers, clockwise from the top-left: " +
	"[tlx, tly, trx, try, brx, bry, blx, bly]"

func quadParam(opts ...mcp.PropertyOption) mcp.ToolOption {
	opts = append([]mcp.PropertyOption{
		mcp.Description(quadDescription),
		mcp.Items(map[string]any{"type": "number"}),
	}, opts...)
	return mcp.WithArray("quad", opts...)
}

func originParam() mcp.ToolOption {
	return mcp.WithString("origin",
		mcp.Description("Where quad y coordinates are measured from: bottom-left (default, camera convention) or top-left (image space)"),
		mcp.Enum("bottom-left", "top-left"),
	)
}

func pathParam() mcp.ToolOption {
	return mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Absolute path to the image file (PNG, JPEG or GIF)"),
	)
}

func sessionParam() mcp.ToolOption {
	return mcp.WithString("session",
		mcp.Required(),
		mcp.Description("Session id returned by tracker_create"),
	)
}

// registerTools registers all MCP tools.
func (s *Server) registerTools() {
	// Still images
	s.mcp.AddTool(mcp.NewTool("document_detect",
		mcp.WithDescription("Find the outline of a document page in an image. Falls back to a centered default outline when no page is found."),
		pathParam(),
	), s.handleDocumentDetect)

	s.mcp.AddTool(mcp.NewTool("document_rectify",
		mcp.WithDescription("Flatten the page inside a quad into an upright rectangular image (perspective correction). Returns the page as PNG."),
		pathParam(),
		quadParam(mcp.Required()),
		originParam(),
		mcp.WithString("enhance",
			mcp.Description("Page filter applied after rectification: none, grayscale, document or binary"),
			mcp.Enum("none", "grayscale", "document", "binary"),
		),
		mcp.WithNumber("max_dimension",
			mcp.Description("Downscale so neither side exceeds this many pixels (0 keeps full resolution)"),
		),
	), s.handleDocumentRectify)

	s.mcp.AddTool(mcp.NewTool("document_read_text",
		mcp.WithDescription("Rectify the page inside a quad and extract its text with Tesseract OCR."),
		pathParam(),
		quadParam(mcp.Required()),
		originParam(),
		mcp.WithString("language",
			mcp.Description("Tesseract language code, for example eng or eng+deu"),
		),
	), s.handleDocumentReadText)

	// Live tracking
	s.mcp.AddTool(mcp.NewTool("tracker_create",
		mcp.WithDescription("Start a tracking session that locks onto a document after enough consistent frames. Returns the session id."),
		mcp.WithNumber("min_correct_frames",
			mcp.Description("Consistent frames required before the page is accepted"),
		),
		mcp.WithNumber("max_dropped_frames",
			mcp.Description("Frames without a page tolerated before the session reports a failure"),
		),
		mcp.WithNumber("frame_buffer_size",
			mcp.Description("Number of recent quads averaged"),
		),
		mcp.WithNumber("threshold",
			mcp.Description("Per-corner tolerance in normalized units"),
		),
	), s.handleTrackerCreate)

	s.mcp.AddTool(mcp.NewTool("tracker_feed",
		mcp.WithDescription("Feed one frame to a tracking session. Pass the quad found in the frame, omit it when nothing was found, or set detect to find it with the server's detector. Returns the events emitted; on success the rectified page is attached."),
		sessionParam(),
		pathParam(),
		quadParam(),
		originParam(),
		mcp.WithBoolean("detect",
			mcp.Description("Detect the quad with the server's detector when none is given (default: false)"),
		),
	), s.handleTrackerFeed)

	s.mcp.AddTool(mcp.NewTool("tracker_reset",
		mcp.WithDescription("Discard a session's history so it can lock onto a new page."),
		sessionParam(),
	), s.handleTrackerReset)

	s.mcp.AddTool(mcp.NewTool("tracker_close",
		mcp.WithDescription("Close a tracking session and release its cached frames."),
		sessionParam(),
	), s.handleTrackerClose)
}
