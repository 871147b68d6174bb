// Package server exposes the document scanner as MCP (Model Context
// Protocol) tools served over stdio with mcp-go.
//
// # Available Tools
//
// Still images:
//   - document_detect: Find the page outline in an image
//   - document_rectify: Flatten the region inside a quad into a page image
//   - document_read_text: Rectify, then run OCR on the page
//
// Live tracking, one Stabilizer per session:
//   - tracker_create: Start a session and return its id
//   - tracker_feed: Feed one frame (and optionally its detected quad)
//   - tracker_reset: Return a session to its empty state
//   - tracker_close: Release a session
//
// # Quads
//
// Quads travel as eight numbers, corners clockwise from the top-left:
// [tlx, tly, trx, try, brx, bry, blx, bly]. Coordinates are normalized to
// [0, 1]. The origin parameter says whether y is measured from the bottom
// edge (bottom-left, the default, as camera vision backends report it) or
// from the top edge (top-left, image space).
//
// # Error Handling
//
// Invalid arguments, unreadable images and unknown sessions are reported as
// tool errors (IsError set on the result), never as protocol errors. A quad
// that cannot be rectified is not an error: the tool answers with ok=false.
//
// # Image Caching
//
// Images are cached by path across calls. Closing a tracker session evicts
// the frames it loaded.
package server
