// Package scan turns a noisy stream of per-frame document detections into a
// single locked outline.
//
// A detection backend produces one Observation per processed frame: the
// frame itself plus the candidate Quad, or no Quad when nothing was found.
// Observations are fed to a Stabilizer, which keeps a bounded history of
// accepted quads and compares every new candidate against a recency
// weighted average of that history.
//
// # States
//
// A Stabilizer starts Empty. The first candidate becomes the baseline and
// moves it to Accumulating. Once the history holds FrameBufferSize quads the
// Stabilizer is Finished and ignores further observations until Reset.
//
// # Events
//
// Three events are delivered to the Subscriber, each carrying the
// Observation that triggered it:
//   - Update: a candidate was accepted and the history holds at least
//     MinCorrectFrames quads
//   - Success: the history window filled; always preceded by an Update for
//     the same observation
//   - Failed: a candidate fell outside the threshold, or MaxDroppedFrames
//     observations without a quad accumulated; the history is cleared
//
// Events are delivered in feed order. Nothing is delivered after Success
// until Reset.
//
// # Thread Safety
//
// Each Stabilizer owns a private lane, a goroutine that applies Feed and
// Reset calls one at a time in the order they were made. All methods are
// safe for concurrent use, and separate Stabilizers never share state.
// Subscriber callbacks run on the lane unless a Dispatcher is configured,
// so a slow subscriber delays later observations. A Subscriber may call
// Reset; Sync, Snapshot and Close wait on the lane and must not be called
// from an inline callback.
package scan
